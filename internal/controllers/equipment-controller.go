package controllers

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/services"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/utils"
)

type EquipmentController struct {
	service            services.EquipmentServiceInterface
	sealService        services.SealServiceInterface
	assignmentService  services.AssignmentServiceInterface
	maintenanceService services.MaintenanceServiceInterface
	logger             *zap.Logger
}

func NewEquipmentController(
	service services.EquipmentServiceInterface,
	sealService services.SealServiceInterface,
	assignmentService services.AssignmentServiceInterface,
	maintenanceService services.MaintenanceServiceInterface,
	logger *zap.Logger,
) *EquipmentController {
	return &EquipmentController{
		service:            service,
		sealService:        sealService,
		assignmentService:  assignmentService,
		maintenanceService: maintenanceService,
		logger:             logger,
	}
}

func (c *EquipmentController) GetAll(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	result, total, err := c.service.GetAll(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Список оборудования получен", http.StatusOK, total)
}

func (c *EquipmentController) GetAvailable(ctx echo.Context) error {
	result, err := c.service.GetAvailable(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Список свободного оборудования получен", http.StatusOK)
}

func (c *EquipmentController) GetByID(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		c.logger.Error("GetByID: неверный формат ID", zap.String("id", ctx.Param("id")), zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err, nil), c.logger)
	}

	result, err := c.service.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Оборудование найдено", http.StatusOK)
}

// GetByAssetNumber ищет карточку по инвентарному номеру (в любом виде).
func (c *EquipmentController) GetByAssetNumber(ctx echo.Context) error {
	result, err := c.service.GetByAssetNumber(ctx.Request().Context(), ctx.Param("assetNumber"))
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Оборудование найдено", http.StatusOK)
}

// GetSeals - пломбы одной единицы оборудования.
func (c *EquipmentController) GetSeals(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err, nil), c.logger)
	}

	result, err := c.sealService.ListByEquipmentID(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Пломбы оборудования получены", http.StatusOK)
}

// GetAssignments - история выдач одной единицы.
func (c *EquipmentController) GetAssignments(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err, nil), c.logger)
	}

	result, err := c.assignmentService.ListByEquipmentID(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "История выдач получена", http.StatusOK)
}

// GetMaintenance - история обслуживания одной единицы.
func (c *EquipmentController) GetMaintenance(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err, nil), c.logger)
	}

	result, err := c.maintenanceService.ListByEquipmentID(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "История обслуживания получена", http.StatusOK)
}

func (c *EquipmentController) Create(ctx echo.Context) error {
	var d dto.CreateEquipmentDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверные данные", err, nil), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	result, err := c.service.Create(ctx.Request().Context(), d)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Оборудование создано", http.StatusCreated)
}

func (c *EquipmentController) Update(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		c.logger.Error("Update: неверный формат ID", zap.String("id", ctx.Param("id")), zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err, nil), c.logger)
	}

	var d dto.UpdateEquipmentDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверные данные", err, nil), c.logger)
	}
	if err := ctx.Validate(&d); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}

	result, err := c.service.Update(ctx.Request().Context(), id, d)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Оборудование обновлено", http.StatusOK)
}

func (c *EquipmentController) Delete(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		c.logger.Error("Delete: неверный формат ID", zap.String("id", ctx.Param("id")), zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err, nil), c.logger)
	}

	if err := c.service.Delete(ctx.Request().Context(), id, queryStringPtr(ctx, "changed_by")); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Оборудование удалено", http.StatusOK)
}

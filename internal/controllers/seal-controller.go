package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/services"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/utils"
)

type SealController struct {
	service services.SealServiceInterface
	logger  *zap.Logger
}

func NewSealController(service services.SealServiceInterface, logger *zap.Logger) *SealController {
	return &SealController{service: service, logger: logger}
}

func (c *SealController) GetAll(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	result, total, err := c.service.GetAll(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Список пломб получен", http.StatusOK, total)
}

func (c *SealController) GetByID(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		c.logger.Error("GetByID: неверный формат ID", zap.String("id", ctx.Param("id")), zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err, nil), c.logger)
	}

	result, err := c.service.GetByID(ctx.Request().Context(), id)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Пломба найдена", http.StatusOK)
}

// CheckDuplicate - проверка занятости номера перед сохранением формы.
// exclude_seal_id и exclude_equipment_id сужают проверку при
// редактировании.
func (c *SealController) CheckDuplicate(ctx echo.Context) error {
	q := ctx.Request().URL.Query()

	var excludeSealID, excludeEquipmentID uint64
	if v := q.Get("exclude_seal_id"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			excludeSealID = parsed
		}
	}
	if v := q.Get("exclude_equipment_id"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			excludeEquipmentID = parsed
		}
	}

	result, err := c.service.CheckDuplicate(ctx.Request().Context(), q.Get("seal_number"), excludeSealID, excludeEquipmentID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Проверка номера выполнена", http.StatusOK)
}

func (c *SealController) Create(ctx echo.Context) error {
	var d dto.CreateSealDTO
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
	return utils.SuccessResponse(ctx, result, "Пломба создана", http.StatusCreated)
}

func (c *SealController) Update(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		c.logger.Error("Update: неверный формат ID", zap.String("id", ctx.Param("id")), zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err, nil), c.logger)
	}

	var d dto.UpdateSealDTO
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
	return utils.SuccessResponse(ctx, result, "Пломба обновлена", http.StatusOK)
}

func (c *SealController) Delete(ctx echo.Context) error {
	id, err := parseIDParam(ctx)
	if err != nil {
		c.logger.Error("Delete: неверный формат ID", zap.String("id", ctx.Param("id")), zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err, nil), c.logger)
	}

	if err := c.service.Delete(ctx.Request().Context(), id, queryStringPtr(ctx, "changed_by")); err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, struct{}{}, "Пломба удалена", http.StatusOK)
}

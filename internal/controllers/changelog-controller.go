package controllers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"equipment-system/internal/services"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/utils"
)

type ChangeLogController struct {
	service services.ChangeLogServiceInterface
	logger  *zap.Logger
}

func NewChangeLogController(service services.ChangeLogServiceInterface, logger *zap.Logger) *ChangeLogController {
	return &ChangeLogController{service: service, logger: logger}
}

func (c *ChangeLogController) GetAll(ctx echo.Context) error {
	filter := utils.ParseFilterFromQuery(ctx.Request().URL.Query())
	result, total, err := c.service.GetAll(ctx.Request().Context(), filter)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Журнал изменений получен", http.StatusOK, total)
}

// GetByEntity - история одной сущности: /change-logs/:entityType/:id.
func (c *ChangeLogController) GetByEntity(ctx echo.Context) error {
	entityID, err := parseIDParam(ctx)
	if err != nil {
		c.logger.Error("GetByEntity: неверный формат ID", zap.String("id", ctx.Param("id")), zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный формат ID", err, nil), c.logger)
	}

	result, err := c.service.ListByEntity(ctx.Request().Context(), ctx.Param("entityType"), entityID)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "История сущности получена", http.StatusOK)
}

func (c *ChangeLogController) Recent(ctx echo.Context) error {
	var limit uint64
	if v := ctx.QueryParam("limit"); v != "" {
		if parsed, err := strconv.ParseUint(v, 10, 64); err == nil {
			limit = parsed
		}
	}

	result, err := c.service.Recent(ctx.Request().Context(), limit)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Последние изменения получены", http.StatusOK)
}

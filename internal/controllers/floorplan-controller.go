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

type FloorplanController struct {
	service services.FloorplanServiceInterface
	logger  *zap.Logger
}

func NewFloorplanController(service services.FloorplanServiceInterface, logger *zap.Logger) *FloorplanController {
	return &FloorplanController{service: service, logger: logger}
}

func parseFloorParam(ctx echo.Context) (int, error) {
	return strconv.Atoi(ctx.Param("floor"))
}

func (c *FloorplanController) ListFloors(ctx echo.Context) error {
	result, err := c.service.ListFloors(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Список этажей получен", http.StatusOK)
}

func (c *FloorplanController) Get(ctx echo.Context) error {
	floor, err := parseFloorParam(ctx)
	if err != nil {
		c.logger.Error("Get: неверный номер этажа", zap.String("floor", ctx.Param("floor")), zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный номер этажа", err, nil), c.logger)
	}

	result, err := c.service.Get(ctx.Request().Context(), floor)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Рассадка получена", http.StatusOK)
}

// Save заменяет рассадку этажа целиком.
func (c *FloorplanController) Save(ctx echo.Context) error {
	floor, err := parseFloorParam(ctx)
	if err != nil {
		c.logger.Error("Save: неверный номер этажа", zap.String("floor", ctx.Param("floor")), zap.Error(err))
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверный номер этажа", err, nil), c.logger)
	}

	var d dto.SaveFloorplanDTO
	if err := ctx.Bind(&d); err != nil {
		return utils.ErrorResponse(ctx, apperrors.NewHttpError(http.StatusBadRequest, "Неверные данные", err, nil), c.logger)
	}

	result, err := c.service.Save(ctx.Request().Context(), floor, d)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Рассадка сохранена", http.StatusOK)
}

package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runChangeLogRouter(api *echo.Group, ctrl *controllers.ChangeLogController) {
	api.GET("/change-logs", ctrl.GetAll)
	api.GET("/change-logs/recent", ctrl.Recent)
	api.GET("/change-logs/:entityType/:id", ctrl.GetByEntity)
}

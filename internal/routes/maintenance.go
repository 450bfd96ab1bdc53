package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runMaintenanceRouter(api *echo.Group, ctrl *controllers.MaintenanceController) {
	api.GET("/maintenance-logs", ctrl.GetAll)
	api.GET("/maintenance-logs/:id", ctrl.GetByID)
	api.POST("/maintenance-logs", ctrl.Create)
	api.PUT("/maintenance-logs/:id", ctrl.Update)
	api.DELETE("/maintenance-logs/:id", ctrl.Delete)
}

package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runEquipmentRouter(api *echo.Group, ctrl *controllers.EquipmentController) {
	api.GET("/equipments", ctrl.GetAll)
	api.GET("/equipments/available", ctrl.GetAvailable)
	api.GET("/equipments/by-asset-number/:assetNumber", ctrl.GetByAssetNumber)
	api.GET("/equipments/:id", ctrl.GetByID)
	api.GET("/equipments/:id/seals", ctrl.GetSeals)
	api.GET("/equipments/:id/assignments", ctrl.GetAssignments)
	api.GET("/equipments/:id/maintenance", ctrl.GetMaintenance)
	api.POST("/equipments", ctrl.Create)
	api.PUT("/equipments/:id", ctrl.Update)
	api.DELETE("/equipments/:id", ctrl.Delete)
}

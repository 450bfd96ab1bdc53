package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runSealRouter(api *echo.Group, ctrl *controllers.SealController) {
	api.GET("/security-seals", ctrl.GetAll)
	api.GET("/security-seals/check-duplicate", ctrl.CheckDuplicate)
	api.GET("/security-seals/:id", ctrl.GetByID)
	api.POST("/security-seals", ctrl.Create)
	api.PUT("/security-seals/:id", ctrl.Update)
	api.DELETE("/security-seals/:id", ctrl.Delete)
}

package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runFloorplanRouter(api *echo.Group, ctrl *controllers.FloorplanController) {
	api.GET("/floorplans", ctrl.ListFloors)
	api.GET("/floorplans/:floor", ctrl.Get)
	api.POST("/floorplans/:floor", ctrl.Save)
}

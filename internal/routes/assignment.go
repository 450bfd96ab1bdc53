package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runAssignmentRouter(api *echo.Group, ctrl *controllers.AssignmentController) {
	api.GET("/assignments", ctrl.GetAll)
	api.GET("/assignments/active", ctrl.GetActive)
	api.GET("/assignments/:id", ctrl.GetByID)
	api.POST("/assignments", ctrl.Assign)
	api.POST("/assignments/:id/return", ctrl.Return)
}

package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runUserRouter(api *echo.Group, ctrl *controllers.UserController) {
	api.GET("/users", ctrl.GetAll)
	api.GET("/users/search", ctrl.Search)
	api.GET("/users/:id", ctrl.GetByID)
	api.GET("/users/:id/assignments", ctrl.GetAssignments)
	api.POST("/users", ctrl.Create)
	api.PUT("/users/:id", ctrl.Update)
	api.DELETE("/users/:id", ctrl.Delete)
}

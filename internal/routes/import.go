package routes

import (
	"github.com/labstack/echo/v4"

	"equipment-system/internal/controllers"
)

func runImportRouter(api *echo.Group, ctrl *controllers.ImportController) {
	api.POST("/import/excel/preview", ctrl.Preview)
	api.POST("/import/excel/execute", ctrl.Execute)
	api.GET("/import/template", ctrl.Template)
	api.GET("/export/excel", ctrl.Export)
}

package controllers

import (
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"equipment-system/internal/services"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/utils"
)

type ImportController struct {
	importService services.ImportServiceInterface
	exportService services.ExportServiceInterface
	uploadDir     string
	logger        *zap.Logger
}

func NewImportController(importService services.ImportServiceInterface, exportService services.ExportServiceInterface, uploadDir string, logger *zap.Logger) *ImportController {
	return &ImportController{importService: importService, exportService: exportService, uploadDir: uploadDir, logger: logger}
}

func (c *ImportController) openUpload(ctx echo.Context) (*multipart.FileHeader, multipart.File, error) {
	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return nil, nil, apperrors.NewHttpError(http.StatusBadRequest, "Файл не передан", err, nil)
	}

	name := strings.ToLower(fileHeader.Filename)
	if !strings.HasSuffix(name, ".xlsx") && !strings.HasSuffix(name, ".xls") {
		return nil, nil, apperrors.NewHttpError(http.StatusBadRequest, "Поддерживаются только файлы Excel (.xlsx, .xls)", nil, nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return nil, nil, apperrors.NewHttpError(http.StatusBadRequest, "Не удалось открыть файл", err, nil)
	}
	return fileHeader, file, nil
}

// stashUpload откладывает копию импортируемого файла: при разборе
// спорной строки всегда можно поднять оригинал. Неудача здесь не
// мешает самому импорту.
func (c *ImportController) stashUpload(fileHeader *multipart.FileHeader) {
	if err := os.MkdirAll(c.uploadDir, 0o755); err != nil {
		c.logger.Warn("не удалось создать каталог загрузок", zap.Error(err))
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.logger.Warn("не удалось сохранить копию импортируемого файла", zap.Error(err))
		return
	}
	defer src.Close()

	path := filepath.Join(c.uploadDir, uuid.New().String()+filepath.Ext(fileHeader.Filename))
	dst, err := os.Create(path)
	if err != nil {
		c.logger.Warn("не удалось сохранить копию импортируемого файла", zap.Error(err))
		return
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		c.logger.Warn("не удалось сохранить копию импортируемого файла", zap.Error(err))
		return
	}
	c.logger.Info("копия импортируемого файла сохранена",
		zap.String("path", path), zap.String("original", fileHeader.Filename))
}

func (c *ImportController) Preview(ctx echo.Context) error {
	_, file, err := c.openUpload(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer file.Close()

	result, err := c.importService.Preview(ctx.Request().Context(), file)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Файл разобран", http.StatusOK)
}

func (c *ImportController) Execute(ctx echo.Context) error {
	fileHeader, file, err := c.openUpload(ctx)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer file.Close()

	c.stashUpload(fileHeader)

	overwrite := strings.EqualFold(ctx.FormValue("overwrite"), "true")
	changedBy := ctx.FormValue("changed_by")

	result, err := c.importService.Execute(ctx.Request().Context(), file, overwrite, changedBy)
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	return utils.SuccessResponse(ctx, result, "Импорт выполнен", http.StatusOK)
}

// streamWorkbook отдает книгу как вложение. Имя файла кодируется для
// заголовка: в нем встречаются символы вне ASCII.
func streamWorkbook(ctx echo.Context, book *excelize.File, filename string) error {
	ctx.Response().Header().Set(echo.HeaderContentType, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	ctx.Response().Header().Set(echo.HeaderContentDisposition,
		fmt.Sprintf("attachment; filename*=UTF-8''%s", url.PathEscape(filename)))
	ctx.Response().WriteHeader(http.StatusOK)

	_, err := book.WriteTo(ctx.Response().Writer)
	return err
}

func (c *ImportController) Template(ctx echo.Context) error {
	book, err := c.importService.Template()
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer book.Close()

	return streamWorkbook(ctx, book, "장비임포트_템플릿.xlsx")
}

func (c *ImportController) Export(ctx echo.Context) error {
	book, filename, err := c.exportService.ExportAssignments(ctx.Request().Context())
	if err != nil {
		return utils.ErrorResponse(ctx, err, c.logger)
	}
	defer book.Close()

	return streamWorkbook(ctx, book, filename)
}

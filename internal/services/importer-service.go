package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
	"equipment-system/internal/repositories"
	"equipment-system/pkg/constants"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/utils"
)

// Имена колонок - внешний контракт: выгрузки приходят из корейских
// таблиц, заголовки менять нельзя.
const (
	colAssetNumber    = "번호"
	colCategory       = "구분"
	colModelName      = "모델 명"
	colSpec           = "규격"
	colAcquisition    = "취득일자"
	colIPAddress      = "IP"
	colLocation       = "위치"
	colUserName       = "사용자"
	colDepartment     = "부서"
	colSeal1          = "보안씰1"
	colSeal2          = "보안씰2"
	colSeal3          = "보안씰3"
	colNetworkType    = "망분리"
	colWindowsVersion = "win버전"
	colNotes          = "비고"
)

var sealColumns = []string{colSeal1, colSeal2, colSeal3}

var requiredImportColumns = []string{colAssetNumber, colCategory, colModelName}

var templateColumns = []string{
	colCategory, colSpec, colModelName, colAssetNumber, "문서번호", colAcquisition,
	colIPAddress, colLocation, colUserName, colDepartment,
	colSeal1, colSeal2, colSeal3,
	"사용월수", "사용년수", colNetworkType, colWindowsVersion, colNotes,
}

const (
	previewRowLimit   = 10
	previewErrorLimit = 20
)

type ImportServiceInterface interface {
	Preview(ctx context.Context, file io.Reader) (*dto.ImportPreviewDTO, error)
	Execute(ctx context.Context, file io.Reader, overwrite bool, changedBy string) (*dto.ImportResultDTO, error)
	Template() (*excelize.File, error)
}

type importService struct {
	storage        *pgxpool.Pool
	equipmentRepo  repositories.EquipmentRepositoryInterface
	userRepo       repositories.UserRepositoryInterface
	sealRepo       repositories.SealRepositoryInterface
	assignmentRepo repositories.AssignmentRepositoryInterface
	changeLogRepo  repositories.ChangeLogRepositoryInterface
	logger         *zap.Logger
}

func NewImportService(
	storage *pgxpool.Pool,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	sealRepo repositories.SealRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	changeLogRepo repositories.ChangeLogRepositoryInterface,
	logger *zap.Logger,
) ImportServiceInterface {
	return &importService{
		storage:        storage,
		equipmentRepo:  equipmentRepo,
		userRepo:       userRepo,
		sealRepo:       sealRepo,
		assignmentRepo: assignmentRepo,
		changeLogRepo:  changeLogRepo,
		logger:         logger,
	}
}

// importRow - одна строка файла после очистки и нормализации.
type importRow struct {
	RowNum          int
	AssetNumber     string
	Category        string
	ModelName       string
	Spec            string
	AcquisitionDate time.Time
	IPAddress       string
	NetworkType     string
	WindowsVersion  string
	Notes           string
	UserName        string
	Department      string
	Location        string
	Seals           []string
}

// sheetData - разобранный лист: заголовки и строки данных.
type sheetData struct {
	columns []string
	index   map[string]int
	rows    [][]string
}

func readSheet(file io.Reader) (*sheetData, error) {
	book, err := excelize.OpenReader(file)
	if err != nil {
		return nil, apperrors.NewInvalidInputError("не удалось открыть файл Excel: %v", err)
	}
	defer book.Close()

	sheets := book.GetSheetList()
	if len(sheets) == 0 {
		return nil, apperrors.NewInvalidInputError("в файле нет ни одного листа")
	}

	rows, err := book.GetRows(sheets[0])
	if err != nil {
		return nil, apperrors.NewInvalidInputError("не удалось прочитать лист %q: %v", sheets[0], err)
	}
	if len(rows) == 0 {
		return nil, apperrors.NewInvalidInputError("файл пуст")
	}

	data := &sheetData{index: make(map[string]int)}
	for i, header := range rows[0] {
		name := strings.TrimSpace(header)
		data.columns = append(data.columns, name)
		if _, ok := data.index[name]; !ok {
			data.index[name] = i
		}
	}
	data.rows = rows[1:]
	return data, nil
}

func (d *sheetData) cell(row []string, column string) string {
	i, ok := d.index[column]
	if !ok || i >= len(row) {
		return ""
	}
	return utils.CleanCellValue(row[i])
}

func (d *sheetData) missingRequired() []string {
	var missing []string
	for _, col := range requiredImportColumns {
		if _, ok := d.index[col]; !ok {
			missing = append(missing, col)
		}
	}
	return missing
}

// parseRow превращает сырую строку листа в importRow. Вторым значением
// возвращается текст ошибки для отчета; пустая строка с номером - это
// ошибка, полностью пустая строка пропускается молча (ошибки нет).
func (d *sheetData) parseRow(raw []string, rowNum int) (*importRow, string) {
	assetRaw := d.cell(raw, colAssetNumber)
	if assetRaw == "" {
		return nil, fmt.Sprintf("строка %d: не заполнен инвентарный номер", rowNum)
	}

	category := d.cell(raw, colCategory)
	if category == "" {
		return nil, fmt.Sprintf("строка %d: не заполнена категория", rowNum)
	}

	modelName := d.cell(raw, colModelName)
	if modelName == "" {
		return nil, fmt.Sprintf("строка %d: не заполнена модель", rowNum)
	}

	row := &importRow{
		RowNum:          rowNum,
		AssetNumber:     utils.FormatAssetNumber(assetRaw),
		Category:        category,
		ModelName:       modelName,
		Spec:            d.cell(raw, colSpec),
		AcquisitionDate: utils.ParseImportDate(d.cell(raw, colAcquisition)),
		IPAddress:       d.cell(raw, colIPAddress),
		NetworkType:     d.cell(raw, colNetworkType),
		WindowsVersion:  d.cell(raw, colWindowsVersion),
		Notes:           d.cell(raw, colNotes),
		UserName:        d.cell(raw, colUserName),
		Department:      d.cell(raw, colDepartment),
		Location:        d.cell(raw, colLocation),
	}

	for _, col := range sealColumns {
		if v := d.cell(raw, col); v != "" {
			row.Seals = append(row.Seals, utils.FormatSealNumber(v))
		}
	}

	return row, ""
}

// notes складывает графу "규격" в примечания: отдельного поля под
// спецификацию в карточке нет.
func (r *importRow) notes() *string {
	notes := r.Notes
	if r.Spec != "" {
		if notes != "" {
			notes = fmt.Sprintf("[규격: %s] %s", r.Spec, notes)
		} else {
			notes = fmt.Sprintf("[규격: %s]", r.Spec)
		}
	}
	if notes == "" {
		return nil
	}
	return utils.StringPtr(notes)
}

func (s *importService) Preview(ctx context.Context, file io.Reader) (*dto.ImportPreviewDTO, error) {
	data, err := readSheet(file)
	if err != nil {
		return nil, err
	}

	if missing := data.missingRequired(); len(missing) > 0 {
		return nil, apperrors.NewInvalidInputError("в файле нет обязательных колонок: %s", strings.Join(missing, ", "))
	}

	result := &dto.ImportPreviewDTO{
		TotalRows: len(data.rows),
		Errors:    []string{},
		Preview:   []dto.ImportRowPreviewDTO{},
		Columns:   data.columns,
	}

	var allErrors []string
	for i, raw := range data.rows {
		rowNum := i + 2
		row, rowErr := data.parseRow(raw, rowNum)
		if rowErr != "" {
			allErrors = append(allErrors, rowErr)
			continue
		}

		result.ValidRows++

		isNew := false
		if _, err := s.equipmentRepo.FindByAssetNumber(ctx, nil, row.AssetNumber); err != nil {
			if !errors.Is(err, apperrors.ErrNotFound) {
				return nil, err
			}
			isNew = true
		}
		if isNew {
			result.NewCount++
		} else {
			result.UpdateCount++
		}

		if len(result.Preview) < previewRowLimit {
			preview := dto.ImportRowPreviewDTO{
				RowNum:         row.RowNum,
				IsNew:          isNew,
				AssetNumber:    row.AssetNumber,
				Category:       row.Category,
				ModelName:      row.ModelName,
				Spec:           row.Spec,
				IPAddress:      row.IPAddress,
				NetworkType:    row.NetworkType,
				WindowsVersion: row.WindowsVersion,
				Notes:          row.Notes,
				UserName:       row.UserName,
				Department:     row.Department,
				Location:       row.Location,
				Seals:          row.Seals,
			}
			if !row.AcquisitionDate.IsZero() {
				preview.AcquisitionDate = formatDate(row.AcquisitionDate)
			}
			if preview.Seals == nil {
				preview.Seals = []string{}
			}
			result.Preview = append(result.Preview, preview)
		}
	}

	result.ErrorCount = len(allErrors)
	if len(allErrors) > previewErrorLimit {
		allErrors = allErrors[:previewErrorLimit]
	}
	if allErrors != nil {
		result.Errors = allErrors
	}

	return result, nil
}

// Execute сохраняет данные файла. Каждая строка обрабатывается в своей
// транзакции: ошибка строки попадает в отчет и не трогает остальные.
func (s *importService) Execute(ctx context.Context, file io.Reader, overwrite bool, changedBy string) (*dto.ImportResultDTO, error) {
	data, err := readSheet(file)
	if err != nil {
		return nil, err
	}

	if missing := data.missingRequired(); len(missing) > 0 {
		return nil, apperrors.NewInvalidInputError("в файле нет обязательных колонок: %s", strings.Join(missing, ", "))
	}

	if changedBy == "" {
		changedBy = "엑셀 임포트"
	}

	result := &dto.ImportResultDTO{Errors: []string{}}

	for i, raw := range data.rows {
		rowNum := i + 2
		row, rowErr := data.parseRow(raw, rowNum)
		if rowErr != "" {
			// Неполные строки уже показаны в превью, молча пропускаем.
			continue
		}

		if err := s.importRow(ctx, row, overwrite, changedBy, result); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("строка %d: %v", rowNum, err))
		}
	}

	return result, nil
}

func (s *importService) importRow(ctx context.Context, row *importRow, overwrite bool, changedBy string, result *dto.ImportResultDTO) error {
	return repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		changedByPtr := utils.StringPtr(changedBy)

		acquisitionDate := row.AcquisitionDate
		if acquisitionDate.IsZero() {
			acquisitionDate = time.Now()
		}

		equipment, err := s.equipmentRepo.FindByAssetNumber(ctx, tx, row.AssetNumber)
		switch {
		case err != nil && errors.Is(err, apperrors.ErrNotFound):
			newEquipment := entities.Equipment{
				AssetNumber:     row.AssetNumber,
				Category:        row.Category,
				ModelName:       row.ModelName,
				AcquisitionDate: acquisitionDate,
				Status:          constants.EquipmentAvailable,
				Notes:           row.notes(),
			}
			if row.IPAddress != "" {
				newEquipment.IPAddress = utils.StringPtr(row.IPAddress)
			}
			if row.NetworkType != "" {
				newEquipment.NetworkType = utils.StringPtr(row.NetworkType)
			}
			if row.WindowsVersion != "" {
				newEquipment.WindowsVersion = utils.StringPtr(row.WindowsVersion)
			}

			newID, err := s.equipmentRepo.Create(ctx, tx, newEquipment)
			if err != nil {
				return err
			}
			newEquipment.ID = newID
			equipment = &newEquipment
			result.EquipmentCreated++

			if err := recordEvent(ctx, tx, s.changeLogRepo,
				constants.EntityEquipment, newID, constants.ChangeImport, "new_equipment",
				"", fmt.Sprintf("%s (%s)", row.AssetNumber, row.ModelName), changedByPtr, nil); err != nil {
				return err
			}

		case err != nil:
			return err

		case overwrite:
			updated := *equipment
			updated.Category = row.Category
			updated.ModelName = row.ModelName
			updated.AcquisitionDate = acquisitionDate
			updated.IPAddress = nil
			updated.NetworkType = nil
			updated.WindowsVersion = nil
			if row.IPAddress != "" {
				updated.IPAddress = utils.StringPtr(row.IPAddress)
			}
			if row.NetworkType != "" {
				updated.NetworkType = utils.StringPtr(row.NetworkType)
			}
			if row.WindowsVersion != "" {
				updated.WindowsVersion = utils.StringPtr(row.WindowsVersion)
			}
			if notes := row.notes(); notes != nil {
				updated.Notes = notes
			}

			if err := s.equipmentRepo.Update(ctx, tx, equipment.ID, updated); err != nil {
				return err
			}
			equipment = &updated
			result.EquipmentUpdated++

			if err := recordEvent(ctx, tx, s.changeLogRepo,
				constants.EntityEquipment, equipment.ID, constants.ChangeImport, "equipment_update",
				"", fmt.Sprintf("%s обновлено из файла", row.AssetNumber), changedByPtr, nil); err != nil {
				return err
			}
		}

		if err := s.importSeals(ctx, tx, row, equipment.ID, overwrite, result); err != nil {
			return err
		}

		return s.importAssignment(ctx, tx, row, equipment, overwrite, changedBy, result)
	})
}

func (s *importService) importSeals(ctx context.Context, tx pgx.Tx, row *importRow, equipmentID uint64, overwrite bool, result *dto.ImportResultDTO) error {
	for _, number := range row.Seals {
		existing, err := s.sealRepo.FindDuplicate(ctx, tx, number, 0, 0)
		if err != nil {
			return err
		}

		switch {
		case existing == nil:
			if _, err := s.sealRepo.Create(ctx, tx, entities.SecuritySeal{
				SealNumber:   number,
				EquipmentID:  equipmentID,
				AttachedDate: time.Now(),
				Status:       constants.SealNormal,
			}); err != nil {
				return err
			}
			result.SealsCreated++

		case overwrite && existing.EquipmentID != equipmentID:
			// Перевешиваем пломбу на оборудование из файла.
			if err := s.sealRepo.Repoint(ctx, tx, existing.ID, equipmentID); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *importService) importAssignment(ctx context.Context, tx pgx.Tx, row *importRow, equipment *entities.Equipment, overwrite bool, changedBy string, result *dto.ImportResultDTO) error {
	if row.UserName == "" || row.Department == "" {
		return nil
	}

	changedByPtr := utils.StringPtr(changedBy)

	user, err := s.userRepo.FindByNameAndDepartment(ctx, tx, row.UserName, row.Department)
	switch {
	case err != nil && errors.Is(err, apperrors.ErrNotFound):
		newID, err := s.userRepo.Create(ctx, tx, entities.User{
			Name:       row.UserName,
			Department: row.Department,
			Location:   row.Location,
		})
		if err != nil {
			return err
		}
		user = &entities.User{ID: newID, Name: row.UserName, Department: row.Department, Location: row.Location}
		result.UsersCreated++

		if err := recordEvent(ctx, tx, s.changeLogRepo,
			constants.EntityUser, newID, constants.ChangeImport, "new_user",
			"", fmt.Sprintf("%s (%s)", row.UserName, row.Department), changedByPtr, nil); err != nil {
			return err
		}

	case err != nil:
		return err

	case row.Location != "" && user.Location != row.Location:
		updated := *user
		updated.Location = row.Location
		if err := s.userRepo.Update(ctx, tx, user.ID, updated); err != nil {
			return err
		}
	}

	active, err := s.assignmentRepo.FindActiveByEquipmentID(ctx, tx, equipment.ID)
	if err != nil {
		return err
	}

	switch {
	case active == nil:
		if _, err := s.assignmentRepo.Create(ctx, tx, entities.Assignment{
			EquipmentID:    equipment.ID,
			UserID:         user.ID,
			AssignmentDate: time.Now(),
			Status:         constants.AssignmentActive,
			AssignedBy:     changedByPtr,
			Reason:         utils.StringPtr("엑셀 임포트"),
		}); err != nil {
			return err
		}
		if err := s.equipmentRepo.UpdateStatus(ctx, tx, equipment.ID, constants.EquipmentInUse); err != nil {
			return err
		}
		result.AssignmentsCreated++

	case active.UserID != user.ID && overwrite:
		// Файл считается источником истины: старую выдачу закрываем.
		if err := s.assignmentRepo.MarkReturned(ctx, tx, active.ID, time.Now(), nil); err != nil {
			return err
		}
		if _, err := s.assignmentRepo.Create(ctx, tx, entities.Assignment{
			EquipmentID:    equipment.ID,
			UserID:         user.ID,
			AssignmentDate: time.Now(),
			Status:         constants.AssignmentActive,
			AssignedBy:     changedByPtr,
			Reason:         utils.StringPtr("엑셀 임포트 (재할당)"),
		}); err != nil {
			return err
		}
		result.AssignmentsCreated++
	}

	return nil
}

// Template собирает канонический шаблон с примерами заполнения.
func (s *importService) Template() (*excelize.File, error) {
	const sheet = "장비목록"

	book := excelize.NewFile()
	defaultSheet := book.GetSheetName(0)
	if _, err := book.NewSheet(sheet); err != nil {
		return nil, fmt.Errorf("не удалось создать лист шаблона: %w", err)
	}
	if err := book.DeleteSheet(defaultSheet); err != nil {
		return nil, fmt.Errorf("не удалось удалить лист по умолчанию: %w", err)
	}

	exampleRows := [][]interface{}{
		{"데스크탑", "일반사용자", "삼성 DB400T7B", "0001", "-", "2024-01-15", "10.4.12.53", "15층", "홍길동", "운영실", "0643", "0136", "-", "12", "1.0", "업무망", "윈도우 10", "-"},
		{"노트북", "개발자용", "LG gram 15", "0002", "-", "2024-03-20", "10.4.12.54", "16층", "김철수", "개발팀", "0644", "-", "-", "6", "0.5", "인터넷망", "윈도우 11", "신규 입사자"},
	}

	header := make([]interface{}, len(templateColumns))
	for i, col := range templateColumns {
		header[i] = col
	}
	if err := book.SetSheetRow(sheet, "A1", &header); err != nil {
		return nil, fmt.Errorf("не удалось записать заголовки шаблона: %w", err)
	}
	for i, example := range exampleRows {
		cell := fmt.Sprintf("A%d", i+2)
		if err := book.SetSheetRow(sheet, cell, &example); err != nil {
			return nil, fmt.Errorf("не удалось записать пример в шаблон: %w", err)
		}
	}

	return book, nil
}

package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"equipment-system/internal/entities"
	"equipment-system/internal/repositories"
	"equipment-system/pkg/utils"
)

const exportSheet = "전산장비목록"

var exportColumns = []string{
	"구분", "모델 명", "자산 번호", "취득일자", "IP", "사용자", "부서", "위치",
	"보안씰", "사용월수", "사용년수", "망분리", "윈도우 버전", "할당일자",
}

type ExportServiceInterface interface {
	ExportAssignments(ctx context.Context) (*excelize.File, string, error)
}

// exportService выгружает реестр: по строке на каждую активную выдачу.
type exportService struct {
	assignmentRepo repositories.AssignmentRepositoryInterface
	sealRepo       repositories.SealRepositoryInterface
	logger         *zap.Logger
}

func NewExportService(
	assignmentRepo repositories.AssignmentRepositoryInterface,
	sealRepo repositories.SealRepositoryInterface,
	logger *zap.Logger,
) ExportServiceInterface {
	return &exportService{assignmentRepo: assignmentRepo, sealRepo: sealRepo, logger: logger}
}

func exportRow(a *entities.Assignment, seals []*entities.SecuritySeal, now time.Time) []interface{} {
	e := a.Equipment
	u := a.User

	sealNumbers := make([]string, 0, len(seals))
	for _, seal := range seals {
		sealNumbers = append(sealNumbers, seal.SealNumber)
	}
	joinedSeals := strings.Join(sealNumbers, ", ")
	if joinedSeals == "" {
		joinedSeals = "-"
	}

	return []interface{}{
		e.Category,
		e.ModelName,
		e.AssetNumber,
		formatDate(e.AcquisitionDate),
		utils.StringOrDash(e.IPAddress),
		u.Name,
		u.Department,
		u.Location,
		joinedSeals,
		fmt.Sprintf("%d개월", e.UsageMonths(now)),
		fmt.Sprintf("%d년", e.UsageYears(now)),
		utils.StringOrDash(e.NetworkType),
		utils.StringOrDash(e.WindowsVersion),
		formatDate(a.AssignmentDate),
	}
}

// ExportAssignments возвращает готовую книгу и имя файла с датой.
func (s *exportService) ExportAssignments(ctx context.Context) (*excelize.File, string, error) {
	assignments, err := s.assignmentRepo.ListActive(ctx)
	if err != nil {
		return nil, "", err
	}

	equipmentIDs := make([]uint64, 0, len(assignments))
	for _, a := range assignments {
		equipmentIDs = append(equipmentIDs, a.EquipmentID)
	}
	sealsByEquipment, err := s.sealRepo.ListByEquipmentIDs(ctx, equipmentIDs)
	if err != nil {
		return nil, "", err
	}

	book := excelize.NewFile()
	defaultSheet := book.GetSheetName(0)
	if _, err := book.NewSheet(exportSheet); err != nil {
		return nil, "", fmt.Errorf("не удалось создать лист выгрузки: %w", err)
	}
	if err := book.DeleteSheet(defaultSheet); err != nil {
		return nil, "", fmt.Errorf("не удалось удалить лист по умолчанию: %w", err)
	}

	header := make([]interface{}, len(exportColumns))
	for i, col := range exportColumns {
		header[i] = col
	}
	if err := book.SetSheetRow(exportSheet, "A1", &header); err != nil {
		return nil, "", fmt.Errorf("не удалось записать заголовки выгрузки: %w", err)
	}

	now := time.Now()
	for i, a := range assignments {
		row := exportRow(a, sealsByEquipment[a.EquipmentID], now)
		cell := fmt.Sprintf("A%d", i+2)
		if err := book.SetSheetRow(exportSheet, cell, &row); err != nil {
			return nil, "", fmt.Errorf("не удалось записать строку выгрузки %d: %w", i+2, err)
		}
	}

	filename := fmt.Sprintf("전산장비목록_%s.xlsx", now.Format("20060102"))
	return book, filename, nil
}

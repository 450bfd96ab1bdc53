package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
	"equipment-system/internal/repositories"
	"equipment-system/pkg/constants"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/types"
	"equipment-system/pkg/utils"
)

type EquipmentServiceInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error)
	GetAvailable(ctx context.Context) ([]dto.ShortEquipmentDTO, error)
	GetByID(ctx context.Context, id uint64) (*dto.EquipmentDTO, error)
	GetByAssetNumber(ctx context.Context, assetNumber string) (*dto.EquipmentDTO, error)
	Create(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error)
	Delete(ctx context.Context, id uint64, changedBy *string) error
}

type equipmentService struct {
	storage        *pgxpool.Pool
	equipmentRepo  repositories.EquipmentRepositoryInterface
	sealRepo       repositories.SealRepositoryInterface
	assignmentRepo repositories.AssignmentRepositoryInterface
	changeLogRepo  repositories.ChangeLogRepositoryInterface
	logger         *zap.Logger
}

func NewEquipmentService(
	storage *pgxpool.Pool,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	sealRepo repositories.SealRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	changeLogRepo repositories.ChangeLogRepositoryInterface,
	logger *zap.Logger,
) EquipmentServiceInterface {
	return &equipmentService{
		storage:        storage,
		equipmentRepo:  equipmentRepo,
		sealRepo:       sealRepo,
		assignmentRepo: assignmentRepo,
		changeLogRepo:  changeLogRepo,
		logger:         logger,
	}
}

// parseSealNumbers разбирает строку "25, A-7,0031" в канонические
// номера без дубликатов, с сохранением порядка ввода.
func parseSealNumbers(raw string) []string {
	seen := make(map[string]struct{})
	var numbers []string
	for _, part := range strings.Split(raw, ",") {
		n := utils.FormatSealNumber(utils.CleanCellValue(part))
		if n == "" {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		numbers = append(numbers, n)
	}
	return numbers
}

func mapEquipmentToDTO(e *entities.Equipment, seals []*entities.SecuritySeal, now time.Time) dto.EquipmentDTO {
	out := dto.EquipmentDTO{
		ID:              e.ID,
		AssetNumber:     e.AssetNumber,
		Category:        e.Category,
		ModelName:       e.ModelName,
		AcquisitionDate: formatDate(e.AcquisitionDate),
		IPAddress:       e.IPAddress,
		NetworkType:     e.NetworkType,
		WindowsVersion:  e.WindowsVersion,
		Status:          e.Status,
		Notes:           e.Notes,
		UsageMonths:     e.UsageMonths(now),
		UsageYears:      e.UsageYears(now),
		SecuritySeals:   []dto.SealDTO{},
		CreatedAt:       formatDateTimePtr(e.CreatedAt),
		UpdatedAt:       formatDateTimePtr(e.UpdatedAt),
	}
	for _, s := range seals {
		out.SecuritySeals = append(out.SecuritySeals, mapSealToDTO(s))
	}
	return out
}

func (s *equipmentService) GetAll(ctx context.Context, filter types.Filter) ([]dto.EquipmentDTO, uint64, error) {
	items, total, err := s.equipmentRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	ids := make([]uint64, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ID)
	}
	sealsByEquipment, err := s.sealRepo.ListByEquipmentIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}

	now := time.Now()
	result := make([]dto.EquipmentDTO, 0, len(items))
	for _, item := range items {
		out := mapEquipmentToDTO(&item.Equipment, sealsByEquipment[item.ID], now)
		if item.CurrentUserID.Valid {
			out.CurrentUser = &dto.UserDTO{
				ID:         uint64(item.CurrentUserID.Int64),
				Name:       item.UserName.String,
				Department: item.UserDepartment.String,
				Location:   item.UserLocation.String,
			}
			if item.AssignmentDate.Valid {
				out.AssignmentDate = formatDate(item.AssignmentDate.Time)
			}
		}
		result = append(result, out)
	}
	return result, total, nil
}

func (s *equipmentService) GetAvailable(ctx context.Context) ([]dto.ShortEquipmentDTO, error) {
	items, err := s.equipmentRepo.GetAvailable(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ShortEquipmentDTO, 0, len(items))
	for _, e := range items {
		result = append(result, dto.ShortEquipmentDTO{
			ID:          e.ID,
			AssetNumber: e.AssetNumber,
			ModelName:   e.ModelName,
			Category:    e.Category,
		})
	}
	return result, nil
}

func (s *equipmentService) GetByID(ctx context.Context, id uint64) (*dto.EquipmentDTO, error) {
	e, err := s.equipmentRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	seals, err := s.sealRepo.ListByEquipmentID(ctx, nil, id)
	if err != nil {
		return nil, err
	}

	out := mapEquipmentToDTO(e, seals, time.Now())

	active, err := s.assignmentRepo.FindActiveByEquipmentID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	if active != nil {
		out.CurrentUser = mapUserToDTO(active.User)
		out.AssignmentDate = formatDate(active.AssignmentDate)
	}

	return &out, nil
}

// GetByAssetNumber ищет карточку по инвентарному номеру в любом виде:
// "1", "0001" и "A-7" находятся одинаково.
func (s *equipmentService) GetByAssetNumber(ctx context.Context, assetNumber string) (*dto.EquipmentDTO, error) {
	normalized := utils.FormatAssetNumber(assetNumber)
	if normalized == "" {
		return nil, apperrors.NewInvalidInputError("инвентарный номер не указан")
	}

	e, err := s.equipmentRepo.FindByAssetNumber(ctx, nil, normalized)
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, e.ID)
}

func (s *equipmentService) Create(ctx context.Context, payload dto.CreateEquipmentDTO) (*dto.EquipmentDTO, error) {
	assetNumber := utils.FormatAssetNumber(payload.AssetNumber)
	if assetNumber == "" {
		return nil, apperrors.NewInvalidInputError("инвентарный номер не указан")
	}

	acquisitionDate := utils.ParseImportDate(payload.AcquisitionDate)
	if acquisitionDate.IsZero() {
		return nil, apperrors.NewInvalidInputError("дата приобретения не распознана: %s", payload.AcquisitionDate)
	}

	sealNumbers := parseSealNumbers(payload.SealNumbers)

	equipment := entities.Equipment{
		AssetNumber:     assetNumber,
		Category:        payload.Category,
		ModelName:       payload.ModelName,
		AcquisitionDate: acquisitionDate,
		IPAddress:       payload.IPAddress,
		NetworkType:     payload.NetworkType,
		WindowsVersion:  payload.WindowsVersion,
		Status:          constants.EquipmentAvailable,
		Notes:           payload.Notes,
	}

	var newID uint64
	err := repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		var err error
		newID, err = s.equipmentRepo.Create(ctx, tx, equipment)
		if err != nil {
			return err
		}

		for _, number := range sealNumbers {
			dup, err := s.sealRepo.FindDuplicate(ctx, tx, number, 0, newID)
			if err != nil {
				return err
			}
			if dup != nil {
				return fmt.Errorf("пломба %s уже закреплена за оборудованием %s: %w",
					number, dup.AssetNumber, apperrors.ErrConflict)
			}
			if _, err := s.sealRepo.Create(ctx, tx, entities.SecuritySeal{
				SealNumber:   number,
				EquipmentID:  newID,
				AttachedDate: time.Now(),
				Status:       constants.SealNormal,
			}); err != nil {
				return err
			}
		}

		return recordEvent(ctx, tx, s.changeLogRepo,
			constants.EntityEquipment, newID, constants.ChangeCreate, "asset_number", "", assetNumber, payload.ChangedBy, nil)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, newID)
}

func (s *equipmentService) Update(ctx context.Context, id uint64, payload dto.UpdateEquipmentDTO) (*dto.EquipmentDTO, error) {
	err := repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		current, err := s.equipmentRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		updated := *current
		var diffs []fieldDiff

		if payload.AssetNumber != nil {
			assetNumber := utils.FormatAssetNumber(*payload.AssetNumber)
			if assetNumber == "" {
				return apperrors.NewInvalidInputError("инвентарный номер не указан")
			}
			if assetNumber != current.AssetNumber {
				diffs = diffString(diffs, "asset_number", current.AssetNumber, assetNumber)
				updated.AssetNumber = assetNumber
			}
		}
		if payload.Category != nil && *payload.Category != "" && *payload.Category != current.Category {
			diffs = diffString(diffs, "category", current.Category, *payload.Category)
			updated.Category = *payload.Category
		}
		if payload.ModelName != nil && *payload.ModelName != "" && *payload.ModelName != current.ModelName {
			diffs = diffString(diffs, "model_name", current.ModelName, *payload.ModelName)
			updated.ModelName = *payload.ModelName
		}
		if payload.AcquisitionDate != nil {
			if t := utils.ParseImportDate(*payload.AcquisitionDate); !t.IsZero() && !t.Equal(current.AcquisitionDate) {
				diffs = diffString(diffs, "acquisition_date", formatDate(current.AcquisitionDate), formatDate(t))
				updated.AcquisitionDate = t
			}
		}
		if payload.IPAddress != nil {
			diffs = diffStringPtr(diffs, "ip_address", current.IPAddress, payload.IPAddress)
			updated.IPAddress = payload.IPAddress
		}
		if payload.NetworkType != nil {
			diffs = diffStringPtr(diffs, "network_type", current.NetworkType, payload.NetworkType)
			updated.NetworkType = payload.NetworkType
		}
		if payload.WindowsVersion != nil {
			diffs = diffStringPtr(diffs, "windows_version", current.WindowsVersion, payload.WindowsVersion)
			updated.WindowsVersion = payload.WindowsVersion
		}
		if payload.Notes != nil {
			diffs = diffStringPtr(diffs, "notes", current.Notes, payload.Notes)
			updated.Notes = payload.Notes
		}
		if payload.Status != nil && *payload.Status != current.Status {
			if !constants.IsValidEquipmentStatus(*payload.Status) {
				return apperrors.NewInvalidInputError("неизвестный статус оборудования: %s", *payload.Status)
			}
			// Списать можно только свободную единицу: за выданной или
			// ремонтируемой числятся незакрытые операции.
			if *payload.Status == constants.EquipmentRetired && current.Status != constants.EquipmentAvailable {
				return fmt.Errorf("списать можно только свободное оборудование, текущий статус %s: %w",
					current.Status, apperrors.ErrConflict)
			}
			diffs = diffString(diffs, "status", current.Status, *payload.Status)
			updated.Status = *payload.Status
		}

		if len(diffs) > 0 {
			if err := s.equipmentRepo.Update(ctx, tx, id, updated); err != nil {
				return err
			}
			if err := recordDiffs(ctx, tx, s.changeLogRepo,
				constants.EntityEquipment, id, constants.ChangeUpdate, diffs, payload.ChangedBy, payload.Reason); err != nil {
				return err
			}
		}

		if payload.SealNumbers != nil {
			if err := s.reconcileSeals(ctx, tx, id, parseSealNumbers(*payload.SealNumbers), payload.ChangedBy); err != nil {
				return err
			}
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

// reconcileSeals приводит комплект пломб оборудования к заданному
// списку номеров: лишние снимаются, недостающие навешиваются. Каждое
// движение пломбы попадает в журнал.
func (s *equipmentService) reconcileSeals(ctx context.Context, tx pgx.Tx, equipmentID uint64, wanted []string, changedBy *string) error {
	current, err := s.sealRepo.ListByEquipmentID(ctx, tx, equipmentID)
	if err != nil {
		return err
	}

	wantedSet := make(map[string]struct{}, len(wanted))
	for _, n := range wanted {
		wantedSet[n] = struct{}{}
	}
	currentSet := make(map[string]*entities.SecuritySeal, len(current))
	for _, seal := range current {
		currentSet[seal.SealNumber] = seal
	}

	for _, seal := range current {
		if _, keep := wantedSet[seal.SealNumber]; keep {
			continue
		}
		if err := s.sealRepo.Delete(ctx, tx, seal.ID); err != nil {
			return err
		}
		if err := recordEvent(ctx, tx, s.changeLogRepo,
			constants.EntityEquipment, equipmentID, constants.ChangeUpdate, "seals", seal.SealNumber, "", changedBy, nil); err != nil {
			return err
		}
	}

	for _, number := range wanted {
		if _, exists := currentSet[number]; exists {
			continue
		}
		dup, err := s.sealRepo.FindDuplicate(ctx, tx, number, 0, equipmentID)
		if err != nil {
			return err
		}
		if dup != nil {
			return fmt.Errorf("пломба %s уже закреплена за оборудованием %s: %w",
				number, dup.AssetNumber, apperrors.ErrConflict)
		}
		if _, err := s.sealRepo.Create(ctx, tx, entities.SecuritySeal{
			SealNumber:   number,
			EquipmentID:  equipmentID,
			AttachedDate: time.Now(),
			Status:       constants.SealNormal,
		}); err != nil {
			return err
		}
		if err := recordEvent(ctx, tx, s.changeLogRepo,
			constants.EntityEquipment, equipmentID, constants.ChangeUpdate, "seals", "", number, changedBy, nil); err != nil {
			return err
		}
	}

	return nil
}

func (s *equipmentService) Delete(ctx context.Context, id uint64, changedBy *string) error {
	return repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		equipment, err := s.equipmentRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		active, err := s.assignmentRepo.FindActiveByEquipmentID(ctx, tx, id)
		if err != nil {
			return err
		}
		if active != nil {
			return fmt.Errorf("оборудование %s выдано пользователю %s, сначала оформите возврат: %w",
				equipment.AssetNumber, active.User.Name, apperrors.ErrConflict)
		}

		if err := s.equipmentRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return recordEvent(ctx, tx, s.changeLogRepo,
			constants.EntityEquipment, id, constants.ChangeDelete, "asset_number", equipment.AssetNumber, "", changedBy, nil)
	})
}

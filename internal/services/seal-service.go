package services

import (
	"context"
	"fmt"
	"strconv"
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

type SealServiceInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]dto.SealDTO, uint64, error)
	GetByID(ctx context.Context, id uint64) (*dto.SealDTO, error)
	ListByEquipmentID(ctx context.Context, equipmentID uint64) ([]dto.SealDTO, error)
	CheckDuplicate(ctx context.Context, sealNumber string, excludeSealID, excludeEquipmentID uint64) (*dto.SealDuplicateDTO, error)
	Create(ctx context.Context, payload dto.CreateSealDTO) (*dto.SealDTO, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateSealDTO) (*dto.SealDTO, error)
	Delete(ctx context.Context, id uint64, changedBy *string) error
}

type sealService struct {
	storage       *pgxpool.Pool
	sealRepo      repositories.SealRepositoryInterface
	equipmentRepo repositories.EquipmentRepositoryInterface
	changeLogRepo repositories.ChangeLogRepositoryInterface
	logger        *zap.Logger
}

func NewSealService(
	storage *pgxpool.Pool,
	sealRepo repositories.SealRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	changeLogRepo repositories.ChangeLogRepositoryInterface,
	logger *zap.Logger,
) SealServiceInterface {
	return &sealService{
		storage:       storage,
		sealRepo:      sealRepo,
		equipmentRepo: equipmentRepo,
		changeLogRepo: changeLogRepo,
		logger:        logger,
	}
}

func mapSealWithEquipment(item *repositories.SealWithEquipment) dto.SealDTO {
	out := mapSealToDTO(&item.SecuritySeal)
	out.Equipment = &dto.ShortEquipmentDTO{
		ID:          item.EquipmentID,
		AssetNumber: item.AssetNumber,
		ModelName:   item.ModelName,
	}
	return out
}

func (s *sealService) GetAll(ctx context.Context, filter types.Filter) ([]dto.SealDTO, uint64, error) {
	items, total, err := s.sealRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.SealDTO, 0, len(items))
	for _, item := range items {
		result = append(result, mapSealWithEquipment(item))
	}
	return result, total, nil
}

func (s *sealService) GetByID(ctx context.Context, id uint64) (*dto.SealDTO, error) {
	seal, err := s.sealRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	out := mapSealToDTO(seal)
	return &out, nil
}

func (s *sealService) ListByEquipmentID(ctx context.Context, equipmentID uint64) ([]dto.SealDTO, error) {
	seals, err := s.sealRepo.ListByEquipmentID(ctx, nil, equipmentID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.SealDTO, 0, len(seals))
	for _, seal := range seals {
		result = append(result, mapSealToDTO(seal))
	}
	return result, nil
}

// CheckDuplicate отвечает на вопрос "занят ли номер пломбы другим
// оборудованием". Номер сначала приводится к канонической форме:
// "25" и "0025" - это одна и та же пломба.
func (s *sealService) CheckDuplicate(ctx context.Context, sealNumber string, excludeSealID, excludeEquipmentID uint64) (*dto.SealDuplicateDTO, error) {
	normalized := utils.FormatSealNumber(sealNumber)
	if normalized == "" {
		return nil, apperrors.NewInvalidInputError("номер пломбы не указан")
	}

	found, err := s.sealRepo.FindDuplicate(ctx, nil, normalized, excludeSealID, excludeEquipmentID)
	if err != nil {
		return nil, err
	}

	out := &dto.SealDuplicateDTO{SealNumber: normalized}
	if found != nil {
		out.Duplicate = true
		out.EquipmentID = found.EquipmentID
		out.EquipmentAssetNumber = found.AssetNumber
	}
	return out, nil
}

func (s *sealService) Create(ctx context.Context, payload dto.CreateSealDTO) (*dto.SealDTO, error) {
	normalized := utils.FormatSealNumber(payload.SealNumber)
	if normalized == "" {
		return nil, apperrors.NewInvalidInputError("номер пломбы не указан")
	}

	seal := entities.SecuritySeal{
		SealNumber:       normalized,
		EquipmentID:      payload.EquipmentID,
		AttachedDate:     time.Now(),
		AttachedLocation: payload.AttachedLocation,
		Status:           constants.SealNormal,
		Notes:            payload.Notes,
	}
	if payload.AttachedDate != nil {
		if t := utils.ParseImportDate(*payload.AttachedDate); !t.IsZero() {
			seal.AttachedDate = t
		}
	}
	if payload.Status != nil && *payload.Status != "" {
		seal.Status = *payload.Status
	}

	var newID uint64
	err := repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		if _, err := s.equipmentRepo.FindByID(ctx, tx, payload.EquipmentID); err != nil {
			return err
		}

		dup, err := s.sealRepo.FindDuplicate(ctx, tx, normalized, 0, 0)
		if err != nil {
			return err
		}
		if dup != nil {
			return fmt.Errorf("пломба %s уже закреплена за оборудованием %s: %w",
				normalized, dup.AssetNumber, apperrors.ErrConflict)
		}

		newID, err = s.sealRepo.Create(ctx, tx, seal)
		if err != nil {
			return err
		}
		return recordEvent(ctx, tx, s.changeLogRepo,
			constants.EntitySeal, newID, constants.ChangeCreate, "seal_number", "", normalized, payload.ChangedBy, nil)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, newID)
}

func (s *sealService) Update(ctx context.Context, id uint64, payload dto.UpdateSealDTO) (*dto.SealDTO, error) {
	err := repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		current, err := s.sealRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		updated := *current
		var diffs []fieldDiff

		if payload.SealNumber != nil {
			normalized := utils.FormatSealNumber(*payload.SealNumber)
			if normalized == "" {
				return apperrors.NewInvalidInputError("номер пломбы не указан")
			}
			if normalized != current.SealNumber {
				dup, err := s.sealRepo.FindDuplicate(ctx, tx, normalized, id, 0)
				if err != nil {
					return err
				}
				if dup != nil {
					return fmt.Errorf("пломба %s уже закреплена за оборудованием %s: %w",
						normalized, dup.AssetNumber, apperrors.ErrConflict)
				}
				diffs = diffString(diffs, "seal_number", current.SealNumber, normalized)
				updated.SealNumber = normalized
			}
		}
		// Перевешивание на другое оборудование: проверяем, что цель
		// существует, и прогоняем номер через проверку дубликатов для
		// новой принадлежности.
		if payload.EquipmentID != nil && *payload.EquipmentID != current.EquipmentID {
			target, err := s.equipmentRepo.FindByID(ctx, tx, *payload.EquipmentID)
			if err != nil {
				return err
			}
			dup, err := s.sealRepo.FindDuplicate(ctx, tx, updated.SealNumber, id, 0)
			if err != nil {
				return err
			}
			if dup != nil {
				return fmt.Errorf("пломба %s уже закреплена за оборудованием %s: %w",
					updated.SealNumber, dup.AssetNumber, apperrors.ErrConflict)
			}
			diffs = diffString(diffs, "equipment_id",
				strconv.FormatUint(current.EquipmentID, 10), strconv.FormatUint(target.ID, 10))
			updated.EquipmentID = target.ID
		}
		if payload.AttachedDate != nil {
			if t := utils.ParseImportDate(*payload.AttachedDate); !t.IsZero() && !t.Equal(current.AttachedDate) {
				diffs = diffString(diffs, "attached_date", formatDate(current.AttachedDate), formatDate(t))
				updated.AttachedDate = t
			}
		}
		if payload.InspectionDate != nil {
			if t := utils.ParseImportDate(*payload.InspectionDate); !t.IsZero() {
				old := ""
				if current.InspectionDate != nil {
					old = formatDate(*current.InspectionDate)
				}
				diffs = diffString(diffs, "inspection_date", old, formatDate(t))
				updated.InspectionDate = &t
			}
		}
		if payload.AttachedLocation != nil {
			diffs = diffStringPtr(diffs, "attached_location", current.AttachedLocation, payload.AttachedLocation)
			updated.AttachedLocation = payload.AttachedLocation
		}
		if payload.Status != nil && *payload.Status != "" && *payload.Status != current.Status {
			diffs = diffString(diffs, "status", current.Status, *payload.Status)
			updated.Status = *payload.Status
		}
		if payload.Notes != nil {
			diffs = diffStringPtr(diffs, "notes", current.Notes, payload.Notes)
			updated.Notes = payload.Notes
		}

		if len(diffs) == 0 {
			return nil
		}

		if err := s.sealRepo.Update(ctx, tx, id, updated); err != nil {
			return err
		}
		return recordDiffs(ctx, tx, s.changeLogRepo,
			constants.EntitySeal, id, constants.ChangeUpdate, diffs, payload.ChangedBy, nil)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

func (s *sealService) Delete(ctx context.Context, id uint64, changedBy *string) error {
	return repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		seal, err := s.sealRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.sealRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return recordEvent(ctx, tx, s.changeLogRepo,
			constants.EntitySeal, id, constants.ChangeDelete, "seal_number", seal.SealNumber, "", changedBy, nil)
	})
}

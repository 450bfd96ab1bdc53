package services

import (
	"context"

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

type MaintenanceServiceInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]dto.MaintenanceDTO, uint64, error)
	GetByID(ctx context.Context, id uint64) (*dto.MaintenanceDTO, error)
	ListByEquipmentID(ctx context.Context, equipmentID uint64) ([]dto.MaintenanceDTO, error)
	Create(ctx context.Context, payload dto.CreateMaintenanceDTO) (*dto.MaintenanceDTO, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateMaintenanceDTO) (*dto.MaintenanceDTO, error)
	Delete(ctx context.Context, id uint64) error
}

type maintenanceService struct {
	storage         *pgxpool.Pool
	maintenanceRepo repositories.MaintenanceRepositoryInterface
	equipmentRepo   repositories.EquipmentRepositoryInterface
	assignmentRepo  repositories.AssignmentRepositoryInterface
	logger          *zap.Logger
}

func NewMaintenanceService(
	storage *pgxpool.Pool,
	maintenanceRepo repositories.MaintenanceRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	logger *zap.Logger,
) MaintenanceServiceInterface {
	return &maintenanceService{
		storage:         storage,
		maintenanceRepo: maintenanceRepo,
		equipmentRepo:   equipmentRepo,
		assignmentRepo:  assignmentRepo,
		logger:          logger,
	}
}

func (s *maintenanceService) GetAll(ctx context.Context, filter types.Filter) ([]dto.MaintenanceDTO, uint64, error) {
	items, total, err := s.maintenanceRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.MaintenanceDTO, 0, len(items))
	for _, m := range items {
		result = append(result, mapMaintenanceToDTO(m))
	}
	return result, total, nil
}

func (s *maintenanceService) GetByID(ctx context.Context, id uint64) (*dto.MaintenanceDTO, error) {
	m, err := s.maintenanceRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	out := mapMaintenanceToDTO(m)
	return &out, nil
}

func (s *maintenanceService) ListByEquipmentID(ctx context.Context, equipmentID uint64) ([]dto.MaintenanceDTO, error) {
	items, err := s.maintenanceRepo.ListByEquipmentID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.MaintenanceDTO, 0, len(items))
	for _, m := range items {
		result = append(result, mapMaintenanceToDTO(m))
	}
	return result, nil
}

// Create регистрирует обслуживание. Открытый ремонт сразу переводит
// оборудование в статус under_repair.
func (s *maintenanceService) Create(ctx context.Context, payload dto.CreateMaintenanceDTO) (*dto.MaintenanceDTO, error) {
	maintenanceDate := utils.ParseImportDate(payload.MaintenanceDate)
	if maintenanceDate.IsZero() {
		return nil, apperrors.NewInvalidInputError("дата обслуживания не распознана: %s", payload.MaintenanceDate)
	}

	record := entities.MaintenanceLog{
		EquipmentID:     payload.EquipmentID,
		MaintenanceDate: maintenanceDate,
		MaintenanceType: payload.MaintenanceType,
		Description:     payload.Description,
		Technician:      payload.Technician,
		Status:          constants.MaintenanceInProgress,
		Notes:           payload.Notes,
		CreatedBy:       payload.CreatedBy,
	}
	if payload.Cost.Valid {
		record.Cost = &payload.Cost.Int64
	}
	if payload.Status != nil && *payload.Status != "" {
		record.Status = *payload.Status
	}

	var newID uint64
	err := repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		if _, err := s.equipmentRepo.FindByID(ctx, tx, payload.EquipmentID); err != nil {
			return err
		}

		var err error
		newID, err = s.maintenanceRepo.Create(ctx, tx, record)
		if err != nil {
			return err
		}

		if record.MaintenanceType == constants.MaintenanceTypeRepair && record.Status == constants.MaintenanceInProgress {
			if err := s.equipmentRepo.UpdateStatus(ctx, tx, payload.EquipmentID, constants.EquipmentUnderRepair); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, newID)
}

func (s *maintenanceService) Update(ctx context.Context, id uint64, payload dto.UpdateMaintenanceDTO) (*dto.MaintenanceDTO, error) {
	err := repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		current, err := s.maintenanceRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		updated := *current
		if payload.MaintenanceDate != nil {
			if t := utils.ParseImportDate(*payload.MaintenanceDate); !t.IsZero() {
				updated.MaintenanceDate = t
			}
		}
		if payload.MaintenanceType != nil && *payload.MaintenanceType != "" {
			updated.MaintenanceType = *payload.MaintenanceType
		}
		if payload.Description != nil && *payload.Description != "" {
			updated.Description = *payload.Description
		}
		if payload.Technician != nil {
			updated.Technician = payload.Technician
		}
		if payload.Cost.Valid {
			updated.Cost = &payload.Cost.Int64
		}
		if payload.Status != nil && *payload.Status != "" {
			updated.Status = *payload.Status
		}
		if payload.Notes != nil {
			updated.Notes = payload.Notes
		}

		if err := s.maintenanceRepo.Update(ctx, tx, id, updated); err != nil {
			return err
		}

		return s.recomputeEquipmentStatus(ctx, tx, current.EquipmentID)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

func (s *maintenanceService) Delete(ctx context.Context, id uint64) error {
	return repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		current, err := s.maintenanceRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := s.maintenanceRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return s.recomputeEquipmentStatus(ctx, tx, current.EquipmentID)
	})
}

// recomputeEquipmentStatus выводит статус единицы из фактов: открытый
// ремонт держит under_repair, активная выдача - in_use, иначе
// оборудование свободно. Списанную единицу не трогаем.
func (s *maintenanceService) recomputeEquipmentStatus(ctx context.Context, tx pgx.Tx, equipmentID uint64) error {
	equipment, err := s.equipmentRepo.FindByID(ctx, tx, equipmentID)
	if err != nil {
		return err
	}
	if equipment.Status == constants.EquipmentRetired {
		return nil
	}

	newStatus := constants.EquipmentAvailable

	openRepairs, err := s.maintenanceRepo.CountOpenRepairs(ctx, tx, equipmentID)
	if err != nil {
		return err
	}
	if openRepairs > 0 {
		newStatus = constants.EquipmentUnderRepair
	} else {
		active, err := s.assignmentRepo.FindActiveByEquipmentID(ctx, tx, equipmentID)
		if err != nil {
			return err
		}
		if active != nil {
			newStatus = constants.EquipmentInUse
		}
	}

	if newStatus == equipment.Status {
		return nil
	}
	return s.equipmentRepo.UpdateStatus(ctx, tx, equipmentID, newStatus)
}

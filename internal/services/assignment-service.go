package services

import (
	"context"
	"errors"
	"fmt"
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

type AssignmentServiceInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]dto.AssignmentDTO, uint64, error)
	GetByID(ctx context.Context, id uint64) (*dto.AssignmentDTO, error)
	ListByEquipmentID(ctx context.Context, equipmentID uint64) ([]dto.AssignmentDTO, error)
	ListByUserID(ctx context.Context, userID uint64) ([]dto.AssignmentDTO, error)
	ListActive(ctx context.Context) ([]dto.AssignmentDTO, error)
	Assign(ctx context.Context, payload dto.CreateAssignmentDTO) (*dto.AssignmentDTO, error)
	Return(ctx context.Context, id uint64, payload dto.ReturnAssignmentDTO) (*dto.AssignmentDTO, error)
}

type assignmentService struct {
	storage         *pgxpool.Pool
	assignmentRepo  repositories.AssignmentRepositoryInterface
	equipmentRepo   repositories.EquipmentRepositoryInterface
	userRepo        repositories.UserRepositoryInterface
	maintenanceRepo repositories.MaintenanceRepositoryInterface
	changeLogRepo   repositories.ChangeLogRepositoryInterface
	logger          *zap.Logger
}

func NewAssignmentService(
	storage *pgxpool.Pool,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	maintenanceRepo repositories.MaintenanceRepositoryInterface,
	changeLogRepo repositories.ChangeLogRepositoryInterface,
	logger *zap.Logger,
) AssignmentServiceInterface {
	return &assignmentService{
		storage:         storage,
		assignmentRepo:  assignmentRepo,
		equipmentRepo:   equipmentRepo,
		userRepo:        userRepo,
		maintenanceRepo: maintenanceRepo,
		changeLogRepo:   changeLogRepo,
		logger:          logger,
	}
}

func mapAssignmentToDTO(a *entities.Assignment) dto.AssignmentDTO {
	out := dto.AssignmentDTO{
		ID:             a.ID,
		EquipmentID:    a.EquipmentID,
		UserID:         a.UserID,
		AssignmentDate: formatDate(a.AssignmentDate),
		ReturnDate:     formatDatePtr(a.ReturnDate),
		Status:         a.Status,
		Reason:         a.Reason,
		AssignedBy:     a.AssignedBy,
		CreatedAt:      formatDateTime(a.CreatedAt),
	}
	if a.Equipment != nil {
		eq := mapEquipmentToDTO(a.Equipment, nil, time.Now())
		out.Equipment = &eq
	}
	if a.User != nil {
		out.User = mapUserToDTO(a.User)
	}
	return out
}

func (s *assignmentService) GetAll(ctx context.Context, filter types.Filter) ([]dto.AssignmentDTO, uint64, error) {
	items, total, err := s.assignmentRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.AssignmentDTO, 0, len(items))
	for _, a := range items {
		result = append(result, mapAssignmentToDTO(a))
	}
	return result, total, nil
}

func (s *assignmentService) GetByID(ctx context.Context, id uint64) (*dto.AssignmentDTO, error) {
	a, err := s.assignmentRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	out := mapAssignmentToDTO(a)
	return &out, nil
}

func (s *assignmentService) ListByEquipmentID(ctx context.Context, equipmentID uint64) ([]dto.AssignmentDTO, error) {
	items, err := s.assignmentRepo.ListByEquipmentID(ctx, equipmentID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.AssignmentDTO, 0, len(items))
	for _, a := range items {
		result = append(result, mapAssignmentToDTO(a))
	}
	return result, nil
}

func (s *assignmentService) ListByUserID(ctx context.Context, userID uint64) ([]dto.AssignmentDTO, error) {
	items, err := s.assignmentRepo.ListByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.AssignmentDTO, 0, len(items))
	for _, a := range items {
		result = append(result, mapAssignmentToDTO(a))
	}
	return result, nil
}

func (s *assignmentService) ListActive(ctx context.Context) ([]dto.AssignmentDTO, error) {
	items, err := s.assignmentRepo.ListActive(ctx)
	if err != nil {
		return nil, err
	}

	result := make([]dto.AssignmentDTO, 0, len(items))
	for _, a := range items {
		result = append(result, mapAssignmentToDTO(a))
	}
	return result, nil
}

// Assign выдает оборудование пользователю. Оборудование ищется по
// инвентарному номеру в канонической форме. Создание выдачи, смена
// статуса и запись в журнал идут одной транзакцией.
func (s *assignmentService) Assign(ctx context.Context, payload dto.CreateAssignmentDTO) (*dto.AssignmentDTO, error) {
	assetNumber := utils.FormatAssetNumber(payload.AssetNumber)
	if assetNumber == "" {
		return nil, apperrors.NewInvalidInputError("инвентарный номер не указан")
	}

	assignmentDate := time.Now()
	if payload.AssignmentDate != nil {
		if t := utils.ParseImportDate(*payload.AssignmentDate); !t.IsZero() {
			assignmentDate = t
		}
	}

	var newID uint64
	err := repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		equipment, err := s.equipmentRepo.FindByAssetNumber(ctx, tx, assetNumber)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return apperrors.NewNotFoundError(fmt.Sprintf("оборудование %s не найдено", assetNumber))
			}
			return err
		}

		user, err := s.userRepo.FindByID(ctx, tx, payload.UserID)
		if err != nil {
			return err
		}

		switch equipment.Status {
		case constants.EquipmentRetired:
			return fmt.Errorf("оборудование %s списано и не может быть выдано: %w", assetNumber, apperrors.ErrConflict)
		case constants.EquipmentUnderRepair:
			return fmt.Errorf("оборудование %s находится в ремонте: %w", assetNumber, apperrors.ErrConflict)
		}

		active, err := s.assignmentRepo.FindActiveByEquipmentID(ctx, tx, equipment.ID)
		if err != nil {
			return err
		}
		if active != nil {
			return fmt.Errorf("оборудование %s уже выдано пользователю %s: %w",
				assetNumber, active.User.Name, apperrors.ErrConflict)
		}

		newID, err = s.assignmentRepo.Create(ctx, tx, entities.Assignment{
			EquipmentID:    equipment.ID,
			UserID:         user.ID,
			AssignmentDate: assignmentDate,
			Status:         constants.AssignmentActive,
			Reason:         payload.Reason,
			AssignedBy:     payload.AssignedBy,
		})
		if err != nil {
			return err
		}

		if err := s.equipmentRepo.UpdateStatus(ctx, tx, equipment.ID, constants.EquipmentInUse); err != nil {
			return err
		}

		return recordEvent(ctx, tx, s.changeLogRepo,
			constants.EntityAssignment, newID, constants.ChangeAssign, "assignment", "",
			fmt.Sprintf("%s → %s", user.Name, assetNumber),
			payload.AssignedBy, payload.Reason)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, newID)
}

// Return закрывает выдачу. Статус оборудования пересчитывается: если
// по единице остались открытые ремонты, она уходит в under_repair,
// иначе становится свободной.
func (s *assignmentService) Return(ctx context.Context, id uint64, payload dto.ReturnAssignmentDTO) (*dto.AssignmentDTO, error) {
	returnDate := time.Now()
	if payload.ReturnDate != nil {
		if t := utils.ParseImportDate(*payload.ReturnDate); !t.IsZero() {
			returnDate = t
		}
	}

	err := repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		assignment, err := s.assignmentRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if assignment.Status != constants.AssignmentActive {
			return fmt.Errorf("выдача уже закрыта: %w", apperrors.ErrConflict)
		}

		if err := s.assignmentRepo.MarkReturned(ctx, tx, id, returnDate, payload.Reason); err != nil {
			return err
		}

		newStatus := constants.EquipmentAvailable
		openRepairs, err := s.maintenanceRepo.CountOpenRepairs(ctx, tx, assignment.EquipmentID)
		if err != nil {
			return err
		}
		if openRepairs > 0 {
			newStatus = constants.EquipmentUnderRepair
		}
		if err := s.equipmentRepo.UpdateStatus(ctx, tx, assignment.EquipmentID, newStatus); err != nil {
			return err
		}

		return recordEvent(ctx, tx, s.changeLogRepo,
			constants.EntityAssignment, id, constants.ChangeReturn, "assignment",
			fmt.Sprintf("%s → %s", assignment.User.Name, assignment.Equipment.AssetNumber), "",
			payload.AssignedBy, payload.Reason)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

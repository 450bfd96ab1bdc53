package services

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
	"equipment-system/internal/repositories"
	"equipment-system/pkg/constants"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/types"
)

type UserServiceInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error)
	Search(ctx context.Context, name, department, location string) ([]dto.UserDTO, error)
	GetByID(ctx context.Context, id uint64) (*dto.UserDTO, error)
	Create(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserDTO, error)
	Update(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*dto.UserDTO, error)
	Delete(ctx context.Context, id uint64, changedBy *string) error
}

type userService struct {
	storage        *pgxpool.Pool
	userRepo       repositories.UserRepositoryInterface
	assignmentRepo repositories.AssignmentRepositoryInterface
	changeLogRepo  repositories.ChangeLogRepositoryInterface
	floorplanRepo  repositories.FloorplanRepositoryInterface
	logger         *zap.Logger
}

func NewUserService(
	storage *pgxpool.Pool,
	userRepo repositories.UserRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	changeLogRepo repositories.ChangeLogRepositoryInterface,
	floorplanRepo repositories.FloorplanRepositoryInterface,
	logger *zap.Logger,
) UserServiceInterface {
	return &userService{
		storage:        storage,
		userRepo:       userRepo,
		assignmentRepo: assignmentRepo,
		changeLogRepo:  changeLogRepo,
		floorplanRepo:  floorplanRepo,
		logger:         logger,
	}
}

func (s *userService) GetAll(ctx context.Context, filter types.Filter) ([]dto.UserDTO, uint64, error) {
	users, total, err := s.userRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		result = append(result, *mapUserToDTO(u))
	}
	return result, total, nil
}

func (s *userService) Search(ctx context.Context, name, department, location string) ([]dto.UserDTO, error) {
	users, err := s.userRepo.Search(ctx, name, department, location)
	if err != nil {
		return nil, err
	}

	result := make([]dto.UserDTO, 0, len(users))
	for _, u := range users {
		result = append(result, *mapUserToDTO(u))
	}
	return result, nil
}

func (s *userService) GetByID(ctx context.Context, id uint64) (*dto.UserDTO, error) {
	u, err := s.userRepo.FindByID(ctx, nil, id)
	if err != nil {
		return nil, err
	}
	return mapUserToDTO(u), nil
}

func (s *userService) Create(ctx context.Context, payload dto.CreateUserDTO) (*dto.UserDTO, error) {
	user := entities.User{
		Name:       payload.Name,
		Department: payload.Department,
		Location:   payload.Location,
		Phone:      payload.Phone,
		Email:      payload.Email,
	}

	var newID uint64
	err := repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		var err error
		newID, err = s.userRepo.Create(ctx, tx, user)
		if err != nil {
			return err
		}
		return recordEvent(ctx, tx, s.changeLogRepo,
			constants.EntityUser, newID, constants.ChangeCreate, "name", "", payload.Name, payload.ChangedBy, nil)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, newID)
}

func (s *userService) Update(ctx context.Context, id uint64, payload dto.UpdateUserDTO) (*dto.UserDTO, error) {
	err := repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		current, err := s.userRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		updated := *current
		var diffs []fieldDiff

		if payload.Name != nil && *payload.Name != current.Name {
			diffs = diffString(diffs, "name", current.Name, *payload.Name)
			updated.Name = *payload.Name
		}
		if payload.Department != nil && *payload.Department != current.Department {
			diffs = diffString(diffs, "department", current.Department, *payload.Department)
			updated.Department = *payload.Department
		}
		if payload.Location != nil && *payload.Location != current.Location {
			diffs = diffString(diffs, "location", current.Location, *payload.Location)
			updated.Location = *payload.Location
		}
		if payload.Phone != nil {
			diffs = diffStringPtr(diffs, "phone", current.Phone, payload.Phone)
			updated.Phone = payload.Phone
		}
		if payload.Email != nil {
			diffs = diffStringPtr(diffs, "email", current.Email, payload.Email)
			updated.Email = payload.Email
		}

		if len(diffs) == 0 {
			return nil
		}

		if err := s.userRepo.Update(ctx, tx, id, updated); err != nil {
			return err
		}
		return recordDiffs(ctx, tx, s.changeLogRepo,
			constants.EntityUser, id, constants.ChangeUpdate, diffs, payload.ChangedBy, payload.Reason)
	})
	if err != nil {
		return nil, err
	}

	return s.GetByID(ctx, id)
}

func (s *userService) Delete(ctx context.Context, id uint64, changedBy *string) error {
	err := repositories.WithTx(ctx, s.storage, func(tx pgx.Tx) error {
		user, err := s.userRepo.FindByID(ctx, tx, id)
		if err != nil {
			return err
		}

		active, err := s.assignmentRepo.CountActiveByUserID(ctx, tx, id)
		if err != nil {
			return err
		}
		if active > 0 {
			return fmt.Errorf("за пользователем числится оборудование (%d), сначала оформите возврат: %w", active, apperrors.ErrConflict)
		}

		if err := s.userRepo.Delete(ctx, tx, id); err != nil {
			return err
		}
		return recordEvent(ctx, tx, s.changeLogRepo,
			constants.EntityUser, id, constants.ChangeDelete, "name", user.Name, "", changedBy, nil)
	})
	if err != nil {
		return err
	}

	// Рассадка живет вне базы, поэтому чистим ее после коммита.
	// Ошибка здесь не откатывает удаление - только пишется в лог.
	if err := s.floorplanRepo.DetachUser(id); err != nil {
		s.logger.Warn("не удалось снять пользователя с рассадки", zap.Uint64("user_id", id), zap.Error(err))
	}
	return nil
}

package services

import (
	"context"

	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
	"equipment-system/internal/repositories"
	apperrors "equipment-system/pkg/errors"
)

type FloorplanServiceInterface interface {
	Get(ctx context.Context, floor int) (*dto.FloorplanDTO, error)
	Save(ctx context.Context, floor int, payload dto.SaveFloorplanDTO) (*dto.FloorplanDTO, error)
	ListFloors(ctx context.Context) ([]int, error)
}

type floorplanService struct {
	floorplanRepo repositories.FloorplanRepositoryInterface
	userRepo      repositories.UserRepositoryInterface
	logger        *zap.Logger
}

func NewFloorplanService(
	floorplanRepo repositories.FloorplanRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	logger *zap.Logger,
) FloorplanServiceInterface {
	return &floorplanService{floorplanRepo: floorplanRepo, userRepo: userRepo, logger: logger}
}

func (s *floorplanService) Get(ctx context.Context, floor int) (*dto.FloorplanDTO, error) {
	if floor <= 0 {
		return nil, apperrors.NewInvalidInputError("номер этажа должен быть положительным")
	}

	doc, err := s.floorplanRepo.Load(floor)
	if err != nil {
		return nil, err
	}

	return &dto.FloorplanDTO{
		Floor:         doc.Floor,
		Items:         doc.Items,
		ItemIDCounter: doc.Items.MaxID() + 1,
	}, nil
}

// Save заменяет документ этажа целиком: редактор всегда присылает
// полную рассадку. Места с назначенным пользователем проверяются на
// существование этого пользователя.
func (s *floorplanService) Save(ctx context.Context, floor int, payload dto.SaveFloorplanDTO) (*dto.FloorplanDTO, error) {
	if floor <= 0 {
		return nil, apperrors.NewInvalidInputError("номер этажа должен быть положительным")
	}

	for _, seat := range payload.Items.Seats {
		if !seat.UserID.Valid {
			continue
		}
		if _, err := s.userRepo.FindByID(ctx, nil, uint64(seat.UserID.Int64)); err != nil {
			return nil, apperrors.NewInvalidInputError("место %q ссылается на несуществующего пользователя %d", seat.Code, seat.UserID.Int64)
		}
	}

	doc := &entities.FloorplanDocument{Floor: floor, Items: payload.Items}
	if err := s.floorplanRepo.Save(doc); err != nil {
		return nil, err
	}

	return s.Get(ctx, floor)
}

func (s *floorplanService) ListFloors(ctx context.Context) ([]int, error) {
	floors, err := s.floorplanRepo.ListFloors()
	if err != nil {
		return nil, err
	}
	if floors == nil {
		floors = []int{}
	}
	return floors, nil
}

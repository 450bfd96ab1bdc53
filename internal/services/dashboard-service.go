package services

import (
	"context"
	"encoding/json"
	"time"

	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/repositories"
)

// StatisticsCacheKey - ключ кэша сводки. Его же сбрасывает middleware
// инвалидации после мутаций.
const StatisticsCacheKey = "dashboard:statistics"

type DashboardServiceInterface interface {
	Statistics(ctx context.Context) (*dto.StatisticsDTO, error)
}

// dashboardService отдает агрегаты для главной страницы. Результат
// кэшируется в Redis на statsTTL: сводка терпит небольшое отставание,
// а база не получает пачку GROUP BY на каждое открытие дашборда.
type dashboardService struct {
	statsRepo      repositories.StatisticsRepositoryInterface
	equipmentRepo  repositories.EquipmentRepositoryInterface
	userRepo       repositories.UserRepositoryInterface
	sealRepo       repositories.SealRepositoryInterface
	assignmentRepo repositories.AssignmentRepositoryInterface
	cacheRepo      repositories.CacheRepositoryInterface
	statsTTL       time.Duration
	logger         *zap.Logger
}

func NewDashboardService(
	statsRepo repositories.StatisticsRepositoryInterface,
	equipmentRepo repositories.EquipmentRepositoryInterface,
	userRepo repositories.UserRepositoryInterface,
	sealRepo repositories.SealRepositoryInterface,
	assignmentRepo repositories.AssignmentRepositoryInterface,
	cacheRepo repositories.CacheRepositoryInterface,
	statsTTL time.Duration,
	logger *zap.Logger,
) DashboardServiceInterface {
	return &dashboardService{
		statsRepo:      statsRepo,
		equipmentRepo:  equipmentRepo,
		userRepo:       userRepo,
		sealRepo:       sealRepo,
		assignmentRepo: assignmentRepo,
		cacheRepo:      cacheRepo,
		statsTTL:       statsTTL,
		logger:         logger,
	}
}

func (s *dashboardService) Statistics(ctx context.Context) (*dto.StatisticsDTO, error) {
	if cached, err := s.cacheRepo.Get(ctx, StatisticsCacheKey); err == nil {
		var stats dto.StatisticsDTO
		if err := json.Unmarshal(cached, &stats); err != nil {
			s.logger.Warn("поврежденная запись в кэше статистики, пересчитываем", zap.Error(err))
		} else {
			return &stats, nil
		}
	}

	stats, err := s.collect(ctx)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(stats); err == nil {
		// Недоступный Redis не должен ломать дашборд.
		if err := s.cacheRepo.Set(ctx, StatisticsCacheKey, data, s.statsTTL); err != nil {
			s.logger.Warn("не удалось записать статистику в кэш", zap.Error(err))
		}
	}

	return stats, nil
}

func (s *dashboardService) collect(ctx context.Context) (*dto.StatisticsDTO, error) {
	stats := &dto.StatisticsDTO{}

	var err error
	if stats.TotalEquipment, err = s.equipmentRepo.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.TotalUsers, err = s.userRepo.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.TotalSeals, err = s.sealRepo.CountAll(ctx); err != nil {
		return nil, err
	}
	if stats.ActiveAssignments, err = s.assignmentRepo.CountActive(ctx); err != nil {
		return nil, err
	}
	if stats.ByStatus, err = s.statsRepo.EquipmentByStatus(ctx); err != nil {
		return nil, err
	}
	if stats.ByCategory, err = s.statsRepo.EquipmentByCategory(ctx); err != nil {
		return nil, err
	}
	if stats.ByDepartment, err = s.statsRepo.UsersByDepartment(ctx); err != nil {
		return nil, err
	}
	if stats.ByLocation, err = s.statsRepo.UsersByLocation(ctx); err != nil {
		return nil, err
	}
	if stats.BySealStatus, err = s.statsRepo.SealsByStatus(ctx); err != nil {
		return nil, err
	}

	return stats, nil
}

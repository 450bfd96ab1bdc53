package repositories

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-system/pkg/constants"
)

// StatisticsRepositoryInterface собирает агрегаты для дашборда.
type StatisticsRepositoryInterface interface {
	EquipmentByStatus(ctx context.Context) (map[string]uint64, error)
	EquipmentByCategory(ctx context.Context) (map[string]uint64, error)
	UsersByDepartment(ctx context.Context) (map[string]uint64, error)
	UsersByLocation(ctx context.Context) (map[string]uint64, error)
	SealsByStatus(ctx context.Context) (map[string]uint64, error)
}

type statisticsRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewStatisticsRepository(storage *pgxpool.Pool, logger *zap.Logger) StatisticsRepositoryInterface {
	return &statisticsRepository{storage: storage, logger: logger}
}

func (r *statisticsRepository) groupCount(ctx context.Context, table, column string) (map[string]uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(column, "COUNT(id)").
		From(table).
		GroupBy(column).
		OrderBy(column + " ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки группировки %s.%s: %w", table, column, err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка группировки %s.%s: %w", table, column, err)
	}
	defer rows.Close()

	result := make(map[string]uint64)
	for rows.Next() {
		var key string
		var count uint64
		if err := rows.Scan(&key, &count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования группировки %s.%s: %w", table, column, err)
		}
		result[key] = count
	}
	return result, rows.Err()
}

func (r *statisticsRepository) EquipmentByStatus(ctx context.Context) (map[string]uint64, error) {
	result, err := r.groupCount(ctx, equipmentTable, "status")
	if err != nil {
		return nil, err
	}
	// Нулевые статусы тоже показываем: дашборд рисует все четыре.
	for _, status := range []string{
		constants.EquipmentAvailable,
		constants.EquipmentInUse,
		constants.EquipmentUnderRepair,
		constants.EquipmentRetired,
	} {
		if _, ok := result[status]; !ok {
			result[status] = 0
		}
	}
	return result, nil
}

func (r *statisticsRepository) EquipmentByCategory(ctx context.Context) (map[string]uint64, error) {
	return r.groupCount(ctx, equipmentTable, "category")
}

func (r *statisticsRepository) UsersByDepartment(ctx context.Context) (map[string]uint64, error) {
	return r.groupCount(ctx, userTable, "department")
}

func (r *statisticsRepository) UsersByLocation(ctx context.Context) (map[string]uint64, error) {
	return r.groupCount(ctx, userTable, "location")
}

func (r *statisticsRepository) SealsByStatus(ctx context.Context) (map[string]uint64, error) {
	return r.groupCount(ctx, sealTable, "status")
}

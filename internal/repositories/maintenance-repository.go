package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-system/internal/entities"
	"equipment-system/pkg/constants"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/types"
)

const (
	maintenanceTable  = "maintenance_logs"
	maintenanceFields = "id, equipment_id, maintenance_date, maintenance_type, description, technician, cost, status, notes, created_at, created_by"
)

type MaintenanceRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]*entities.MaintenanceLog, uint64, error)
	ListByEquipmentID(ctx context.Context, equipmentID uint64) ([]*entities.MaintenanceLog, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceLog, error)
	CountOpenRepairs(ctx context.Context, tx pgx.Tx, equipmentID uint64) (uint64, error)
	Create(ctx context.Context, tx pgx.Tx, m entities.MaintenanceLog) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, id uint64, m entities.MaintenanceLog) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
}

type maintenanceRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewMaintenanceRepository(storage *pgxpool.Pool, logger *zap.Logger) MaintenanceRepositoryInterface {
	return &maintenanceRepository{storage: storage, logger: logger}
}

func (r *maintenanceRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *maintenanceRepository) scanRow(row pgx.Row) (*entities.MaintenanceLog, error) {
	var m entities.MaintenanceLog
	var technician, notes, createdBy sql.NullString
	var cost sql.NullInt64

	err := row.Scan(
		&m.ID, &m.EquipmentID, &m.MaintenanceDate, &m.MaintenanceType, &m.Description,
		&technician, &cost, &m.Status, &notes, &m.CreatedAt, &createdBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования maintenance_logs: %w", err)
	}

	if technician.Valid {
		m.Technician = &technician.String
	}
	if cost.Valid {
		m.Cost = &cost.Int64
	}
	if notes.Valid {
		m.Notes = &notes.String
	}
	if createdBy.Valid {
		m.CreatedBy = &createdBy.String
	}

	return &m, nil
}

func (r *maintenanceRepository) GetAll(ctx context.Context, filter types.Filter) ([]*entities.MaintenanceLog, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	applyFilters := func(builder sq.SelectBuilder) sq.SelectBuilder {
		if v, ok := filter.Filter["equipment_id"]; ok {
			builder = builder.Where(sq.Eq{"equipment_id": v})
		}
		if v, ok := filter.Filter["maintenance_type"]; ok {
			builder = builder.Where(sq.Eq{"maintenance_type": v})
		}
		if v, ok := filter.Filter["status"]; ok {
			builder = builder.Where(sq.Eq{"status": v})
		}
		if v, ok := filter.Filter["date_from"]; ok {
			builder = builder.Where(sq.GtOrEq{"maintenance_date": v})
		}
		if v, ok := filter.Filter["date_to"]; ok {
			builder = builder.Where(sq.LtOrEq{"maintenance_date": v})
		}
		return builder
	}

	countQuery, countArgs, err := applyFilters(psql.Select("COUNT(id)").From(maintenanceTable)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT maintenance_logs: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета maintenance_logs: %w", err)
	}

	builder := applyFilters(psql.Select(maintenanceFields).From(maintenanceTable)).
		OrderBy("maintenance_date DESC", "id DESC")
	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SELECT maintenance_logs: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выборки maintenance_logs: %w", err)
	}
	defer rows.Close()

	var items []*entities.MaintenanceLog
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, m)
	}
	return items, total, rows.Err()
}

func (r *maintenanceRepository) ListByEquipmentID(ctx context.Context, equipmentID uint64) ([]*entities.MaintenanceLog, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(maintenanceFields).
		From(maintenanceTable).
		Where(sq.Eq{"equipment_id": equipmentID}).
		OrderBy("maintenance_date DESC", "id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса ListByEquipmentID maintenance_logs: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки истории обслуживания: %w", err)
	}
	defer rows.Close()

	var items []*entities.MaintenanceLog
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *maintenanceRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.MaintenanceLog, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(maintenanceFields).
		From(maintenanceTable).
		Where(sq.Eq{"id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindByID maintenance_logs: %w", err)
	}
	return r.scanRow(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

// CountOpenRepairs считает незавершенные ремонты единицы: пока их
// больше нуля, статус оборудования остается under_repair.
func (r *maintenanceRepository) CountOpenRepairs(ctx context.Context, tx pgx.Tx, equipmentID uint64) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select("COUNT(id)").
		From(maintenanceTable).
		Where(sq.Eq{
			"equipment_id":     equipmentID,
			"maintenance_type": constants.MaintenanceTypeRepair,
			"status":           constants.MaintenanceInProgress,
		}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса CountOpenRepairs: %w", err)
	}

	var total uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчета открытых ремонтов: %w", err)
	}
	return total, nil
}

func (r *maintenanceRepository) Create(ctx context.Context, tx pgx.Tx, m entities.MaintenanceLog) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(maintenanceTable).
		Columns("equipment_id", "maintenance_date", "maintenance_type", "description", "technician", "cost", "status", "notes", "created_at", "created_by").
		Values(m.EquipmentID, m.MaintenanceDate, m.MaintenanceType, m.Description, m.Technician, m.Cost, m.Status, m.Notes, sq.Expr("NOW()"), m.CreatedBy).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create maintenance_logs: %w", err)
	}

	var newID uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return 0, fmt.Errorf("оборудование не существует: %w", apperrors.ErrConflict)
		}
		return 0, fmt.Errorf("ошибка создания maintenance_logs: %w", err)
	}
	return newID, nil
}

func (r *maintenanceRepository) Update(ctx context.Context, tx pgx.Tx, id uint64, m entities.MaintenanceLog) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(maintenanceTable).
		Set("maintenance_date", m.MaintenanceDate).
		Set("maintenance_type", m.MaintenanceType).
		Set("description", m.Description).
		Set("technician", m.Technician).
		Set("cost", m.Cost).
		Set("status", m.Status).
		Set("notes", m.Notes).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Update maintenance_logs: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления maintenance_logs: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *maintenanceRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Delete(maintenanceTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Delete maintenance_logs: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка удаления maintenance_logs: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

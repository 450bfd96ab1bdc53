package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"equipment-system/internal/entities"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/types"
)

const (
	changelogTable  = "change_logs"
	changelogFields = "id, entity_type, entity_id, change_date, change_type, field_name, old_value, new_value, changed_by, reason"

	// Журнал отдается только срезами: полная выгрузка не нужна никому.
	changelogHardLimit = 500
)

// ChangeLogRepositoryInterface - только вставка и чтение.
// Методов Update/Delete нет намеренно: журнал append-only.
type ChangeLogRepositoryInterface interface {
	Create(ctx context.Context, tx pgx.Tx, c entities.ChangeLog) error
	GetAll(ctx context.Context, filter types.Filter) ([]*entities.ChangeLog, uint64, error)
	ListByEntity(ctx context.Context, entityType string, entityID uint64) ([]*entities.ChangeLog, error)
	Recent(ctx context.Context, limit uint64) ([]*entities.ChangeLog, error)
}

type changeLogRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewChangeLogRepository(storage *pgxpool.Pool, logger *zap.Logger) ChangeLogRepositoryInterface {
	return &changeLogRepository{storage: storage, logger: logger}
}

func (r *changeLogRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *changeLogRepository) scanRow(row pgx.Row) (*entities.ChangeLog, error) {
	var c entities.ChangeLog
	var oldValue, newValue, changedBy, reason sql.NullString

	err := row.Scan(&c.ID, &c.EntityType, &c.EntityID, &c.ChangeDate, &c.ChangeType, &c.FieldName, &oldValue, &newValue, &changedBy, &reason)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования change_logs: %w", err)
	}

	if oldValue.Valid {
		c.OldValue = &oldValue.String
	}
	if newValue.Valid {
		c.NewValue = &newValue.String
	}
	if changedBy.Valid {
		c.ChangedBy = &changedBy.String
	}
	if reason.Valid {
		c.Reason = &reason.String
	}

	return &c, nil
}

func (r *changeLogRepository) Create(ctx context.Context, tx pgx.Tx, c entities.ChangeLog) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(changelogTable).
		Columns("entity_type", "entity_id", "change_date", "change_type", "field_name", "old_value", "new_value", "changed_by", "reason").
		Values(c.EntityType, c.EntityID, sq.Expr("NOW()"), c.ChangeType, c.FieldName, c.OldValue, c.NewValue, c.ChangedBy, c.Reason).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Create change_logs: %w", err)
	}

	if _, err := r.getQuerier(tx).Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("ошибка записи в журнал изменений: %w", err)
	}
	return nil
}

func (r *changeLogRepository) GetAll(ctx context.Context, filter types.Filter) ([]*entities.ChangeLog, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	applyFilters := func(builder sq.SelectBuilder) sq.SelectBuilder {
		if v, ok := filter.Filter["entity_type"]; ok {
			builder = builder.Where(sq.Eq{"entity_type": v})
		}
		if v, ok := filter.Filter["entity_id"]; ok {
			builder = builder.Where(sq.Eq{"entity_id": v})
		}
		if v, ok := filter.Filter["change_type"]; ok {
			builder = builder.Where(sq.Eq{"change_type": v})
		}
		if v, ok := filter.Filter["changed_by"]; ok {
			builder = builder.Where(sq.ILike{"changed_by": fmt.Sprintf("%%%v%%", v)})
		}
		if v, ok := filter.Filter["date_from"]; ok {
			builder = builder.Where(sq.GtOrEq{"change_date": v})
		}
		if v, ok := filter.Filter["date_to"]; ok {
			builder = builder.Where(sq.LtOrEq{"change_date": v})
		}
		return builder
	}

	countQuery, countArgs, err := applyFilters(psql.Select("COUNT(id)").From(changelogTable)).ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT change_logs: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета change_logs: %w", err)
	}

	limit := uint64(changelogHardLimit)
	offset := uint64(0)
	if filter.WithPagination && filter.Limit > 0 && uint64(filter.Limit) < limit {
		limit = uint64(filter.Limit)
		offset = uint64(filter.Offset)
	}

	builder := applyFilters(psql.Select(changelogFields).From(changelogTable)).
		OrderBy("change_date DESC", "id DESC").
		Limit(limit).
		Offset(offset)

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SELECT change_logs: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выборки change_logs: %w", err)
	}
	defer rows.Close()

	var items []*entities.ChangeLog
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, c)
	}
	return items, total, rows.Err()
}

func (r *changeLogRepository) ListByEntity(ctx context.Context, entityType string, entityID uint64) ([]*entities.ChangeLog, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(changelogFields).
		From(changelogTable).
		Where(sq.Eq{"entity_type": entityType, "entity_id": entityID}).
		OrderBy("change_date DESC", "id DESC").
		Limit(changelogHardLimit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса ListByEntity: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки истории сущности: %w", err)
	}
	defer rows.Close()

	var items []*entities.ChangeLog
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

func (r *changeLogRepository) Recent(ctx context.Context, limit uint64) ([]*entities.ChangeLog, error) {
	if limit == 0 || limit > changelogHardLimit {
		limit = changelogHardLimit
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(changelogFields).
		From(changelogTable).
		OrderBy("change_date DESC", "id DESC").
		Limit(limit).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса Recent change_logs: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки последних изменений: %w", err)
	}
	defer rows.Close()

	var items []*entities.ChangeLog
	for rows.Next() {
		c, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	return items, rows.Err()
}

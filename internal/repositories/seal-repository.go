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
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/types"
)

const (
	sealTable  = "security_seals"
	sealFields = "id, seal_number, equipment_id, attached_date, attached_location, status, inspection_date, notes, created_at"
)

// SealWithEquipment - пломба вместе с инвентарным номером оборудования,
// для списков и проверки дубликатов.
type SealWithEquipment struct {
	entities.SecuritySeal
	AssetNumber string `db:"asset_number"`
	ModelName   string `db:"model_name"`
}

type SealRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]*SealWithEquipment, uint64, error)
	ListByEquipmentID(ctx context.Context, tx pgx.Tx, equipmentID uint64) ([]*entities.SecuritySeal, error)
	ListByEquipmentIDs(ctx context.Context, equipmentIDs []uint64) (map[uint64][]*entities.SecuritySeal, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.SecuritySeal, error)
	FindDuplicate(ctx context.Context, tx pgx.Tx, sealNumber string, excludeSealID, excludeEquipmentID uint64) (*SealWithEquipment, error)
	Create(ctx context.Context, tx pgx.Tx, s entities.SecuritySeal) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, id uint64, s entities.SecuritySeal) error
	Repoint(ctx context.Context, tx pgx.Tx, id, equipmentID uint64) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
	CountAll(ctx context.Context) (uint64, error)
}

type sealRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewSealRepository(storage *pgxpool.Pool, logger *zap.Logger) SealRepositoryInterface {
	return &sealRepository{storage: storage, logger: logger}
}

func (r *sealRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *sealRepository) scanRow(row pgx.Row) (*entities.SecuritySeal, error) {
	var s entities.SecuritySeal
	var location, notes sql.NullString
	var inspection sql.NullTime

	err := row.Scan(&s.ID, &s.SealNumber, &s.EquipmentID, &s.AttachedDate, &location, &s.Status, &inspection, &notes, &s.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования security_seals: %w", err)
	}

	if location.Valid {
		s.AttachedLocation = &location.String
	}
	if inspection.Valid {
		s.InspectionDate = &inspection.Time
	}
	if notes.Valid {
		s.Notes = &notes.String
	}

	return &s, nil
}

func (r *sealRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.SecuritySeal, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(sealFields).From(sealTable).Where(sq.Eq{"id": id}).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для security_seals: %w", err)
	}
	return r.scanRow(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

// FindDuplicate ищет пломбу с тем же номером на другом оборудовании.
// excludeSealID исключает саму редактируемую пломбу, excludeEquipmentID -
// все пломбы редактируемого оборудования (замена комплекта не конфликтует
// сама с собой). Возвращает nil, если дубликата нет.
func (r *sealRepository) FindDuplicate(ctx context.Context, tx pgx.Tx, sealNumber string, excludeSealID, excludeEquipmentID uint64) (*SealWithEquipment, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select(
		"s.id, s.seal_number, s.equipment_id, s.attached_date, s.attached_location, s.status, s.inspection_date, s.notes, s.created_at",
		"e.asset_number, e.model_name",
	).
		From(sealTable + " s").
		Join("equipments e ON e.id = s.equipment_id").
		Where(sq.Eq{"s.seal_number": sealNumber})

	if excludeSealID != 0 {
		builder = builder.Where(sq.NotEq{"s.id": excludeSealID})
	}
	if excludeEquipmentID != 0 {
		builder = builder.Where(sq.NotEq{"s.equipment_id": excludeEquipmentID})
	}

	query, args, err := builder.Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindDuplicate: %w", err)
	}

	item, err := r.scanJoinedRow(r.getQuerier(tx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return item, nil
}

func (r *sealRepository) scanJoinedRow(row pgx.Row) (*SealWithEquipment, error) {
	var item SealWithEquipment
	var location, notes sql.NullString
	var inspection sql.NullTime

	err := row.Scan(
		&item.ID, &item.SealNumber, &item.EquipmentID, &item.AttachedDate, &location,
		&item.Status, &inspection, &notes, &item.CreatedAt,
		&item.AssetNumber, &item.ModelName,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования security_seals: %w", err)
	}

	if location.Valid {
		item.AttachedLocation = &location.String
	}
	if inspection.Valid {
		item.InspectionDate = &inspection.Time
	}
	if notes.Valid {
		item.Notes = &notes.String
	}

	return &item, nil
}

func (r *sealRepository) GetAll(ctx context.Context, filter types.Filter) ([]*SealWithEquipment, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	applyFilters := func(builder sq.SelectBuilder) sq.SelectBuilder {
		if filter.Search != "" {
			pattern := fmt.Sprintf("%%%s%%", filter.Search)
			builder = builder.Where(sq.Or{
				sq.ILike{"s.seal_number": pattern},
				sq.ILike{"e.asset_number": pattern},
			})
		}
		if v, ok := filter.Filter["seal_number"]; ok {
			builder = builder.Where(sq.ILike{"s.seal_number": fmt.Sprintf("%%%v%%", v)})
		}
		if v, ok := filter.Filter["status"]; ok {
			builder = builder.Where(sq.Eq{"s.status": v})
		}
		if v, ok := filter.Filter["asset_number"]; ok {
			builder = builder.Where(sq.ILike{"e.asset_number": fmt.Sprintf("%%%v%%", v)})
		}
		return builder
	}

	countBuilder := applyFilters(psql.Select("COUNT(s.id)").
		From(sealTable + " s").
		Join("equipments e ON e.id = s.equipment_id"))
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT security_seals: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета security_seals: %w", err)
	}

	builder := applyFilters(psql.Select(
		"s.id, s.seal_number, s.equipment_id, s.attached_date, s.attached_location, s.status, s.inspection_date, s.notes, s.created_at",
		"e.asset_number, e.model_name",
	).
		From(sealTable + " s").
		Join("equipments e ON e.id = s.equipment_id")).
		OrderBy("s.seal_number ASC")

	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SELECT security_seals: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выборки security_seals: %w", err)
	}
	defer rows.Close()

	var items []*SealWithEquipment
	for rows.Next() {
		item, err := r.scanJoinedRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, item)
	}
	return items, total, rows.Err()
}

func (r *sealRepository) ListByEquipmentID(ctx context.Context, tx pgx.Tx, equipmentID uint64) ([]*entities.SecuritySeal, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(sealFields).
		From(sealTable).
		Where(sq.Eq{"equipment_id": equipmentID}).
		OrderBy("seal_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса ListByEquipmentID: %w", err)
	}

	rows, err := r.getQuerier(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки пломб оборудования: %w", err)
	}
	defer rows.Close()

	var seals []*entities.SecuritySeal
	for rows.Next() {
		s, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		seals = append(seals, s)
	}
	return seals, rows.Err()
}

// ListByEquipmentIDs загружает пломбы пачкой для списка оборудования,
// чтобы не ходить в базу по одной строке.
func (r *sealRepository) ListByEquipmentIDs(ctx context.Context, equipmentIDs []uint64) (map[uint64][]*entities.SecuritySeal, error) {
	result := make(map[uint64][]*entities.SecuritySeal)
	if len(equipmentIDs) == 0 {
		return result, nil
	}

	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(sealFields).
		From(sealTable).
		Where(sq.Eq{"equipment_id": equipmentIDs}).
		OrderBy("seal_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса ListByEquipmentIDs: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки пломб: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		s, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		result[s.EquipmentID] = append(result[s.EquipmentID], s)
	}
	return result, rows.Err()
}

func (r *sealRepository) Create(ctx context.Context, tx pgx.Tx, s entities.SecuritySeal) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(sealTable).
		Columns("seal_number", "equipment_id", "attached_date", "attached_location", "status", "inspection_date", "notes", "created_at").
		Values(s.SealNumber, s.EquipmentID, s.AttachedDate, s.AttachedLocation, s.Status, s.InspectionDate, s.Notes, sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create security_seals: %w", err)
	}

	var newID uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("пломба с таким номером уже существует: %w", apperrors.ErrConflict)
		}
		return 0, fmt.Errorf("ошибка создания security_seals: %w", err)
	}
	return newID, nil
}

func (r *sealRepository) Update(ctx context.Context, tx pgx.Tx, id uint64, s entities.SecuritySeal) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(sealTable).
		Set("seal_number", s.SealNumber).
		Set("equipment_id", s.EquipmentID).
		Set("attached_date", s.AttachedDate).
		Set("attached_location", s.AttachedLocation).
		Set("status", s.Status).
		Set("inspection_date", s.InspectionDate).
		Set("notes", s.Notes).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Update security_seals: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("пломба с таким номером уже существует: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("ошибка обновления security_seals: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

// Repoint перевешивает пломбу на другое оборудование.
func (r *sealRepository) Repoint(ctx context.Context, tx pgx.Tx, id, equipmentID uint64) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(sealTable).
		Set("equipment_id", equipmentID).
		Set("attached_date", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Repoint: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка переноса пломбы: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *sealRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Delete(sealTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Delete security_seals: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка удаления security_seals: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *sealRepository) CountAll(ctx context.Context) (uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, "SELECT COUNT(id) FROM "+sealTable).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчета security_seals: %w", err)
	}
	return total, nil
}

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
	equipmentTable  = "equipments"
	equipmentFields = "id, asset_number, category, model_name, acquisition_date, ip_address, network_type, windows_version, status, notes, created_at, updated_at"
)

// EquipmentListItem - строка списка, обогащенная текущим держателем
// (активная выдача, если есть).
type EquipmentListItem struct {
	entities.Equipment
	CurrentUserID   sql.NullInt64  `db:"current_user_id"`
	UserName        sql.NullString `db:"user_name"`
	UserDepartment  sql.NullString `db:"user_department"`
	UserLocation    sql.NullString `db:"user_location"`
	AssignmentDate  sql.NullTime   `db:"assignment_date"`
}

type EquipmentRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]*EquipmentListItem, uint64, error)
	GetAvailable(ctx context.Context) ([]*entities.Equipment, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error)
	FindByAssetNumber(ctx context.Context, tx pgx.Tx, assetNumber string) (*entities.Equipment, error)
	Create(ctx context.Context, tx pgx.Tx, e entities.Equipment) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, id uint64, e entities.Equipment) error
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status string) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
	CountAll(ctx context.Context) (uint64, error)
}

type equipmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewEquipmentRepository(storage *pgxpool.Pool, logger *zap.Logger) EquipmentRepositoryInterface {
	return &equipmentRepository{storage: storage, logger: logger}
}

func (r *equipmentRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *equipmentRepository) scanRow(row pgx.Row) (*entities.Equipment, error) {
	var e entities.Equipment
	var ip, network, win, notes sql.NullString

	err := row.Scan(
		&e.ID, &e.AssetNumber, &e.Category, &e.ModelName, &e.AcquisitionDate,
		&ip, &network, &win, &e.Status, &notes,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования equipments: %w", err)
	}

	if ip.Valid {
		e.IPAddress = &ip.String
	}
	if network.Valid {
		e.NetworkType = &network.String
	}
	if win.Valid {
		e.WindowsVersion = &win.String
	}
	if notes.Valid {
		e.Notes = &notes.String
	}

	return &e, nil
}

func (r *equipmentRepository) findOne(ctx context.Context, querier Querier, where sq.Sqlizer) (*entities.Equipment, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(equipmentFields).From(equipmentTable).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для equipments: %w", err)
	}
	return r.scanRow(querier.QueryRow(ctx, query, args...))
}

func (r *equipmentRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Equipment, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"id": id})
}

func (r *equipmentRepository) FindByAssetNumber(ctx context.Context, tx pgx.Tx, assetNumber string) (*entities.Equipment, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"asset_number": assetNumber})
}

// applyListFilters навешивает условия списка на билдер. Фильтры по
// пользователю/отделу идут через LEFT JOIN активной выдачи, поэтому
// join присутствует всегда — колонки держателя нужны и без фильтра.
func applyEquipmentFilters(builder sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if v, ok := filter.Filter["asset_number"]; ok {
		builder = builder.Where(sq.ILike{"e.asset_number": fmt.Sprintf("%%%v%%", v)})
	}
	if v, ok := filter.Filter["model_name"]; ok {
		builder = builder.Where(sq.ILike{"e.model_name": fmt.Sprintf("%%%v%%", v)})
	}
	if v, ok := filter.Filter["category"]; ok {
		builder = builder.Where(sq.Eq{"e.category": v})
	}
	if v, ok := filter.Filter["status"]; ok {
		builder = builder.Where(sq.Eq{"e.status": v})
	}
	if v, ok := filter.Filter["user_name"]; ok {
		builder = builder.Where(sq.ILike{"u.name": fmt.Sprintf("%%%v%%", v)})
	}
	if v, ok := filter.Filter["department"]; ok {
		builder = builder.Where(sq.ILike{"u.department": fmt.Sprintf("%%%v%%", v)})
	}
	return builder
}

func (r *equipmentRepository) listJoin(builder sq.SelectBuilder) sq.SelectBuilder {
	return builder.
		From(equipmentTable + " e").
		LeftJoin(fmt.Sprintf("assignments a ON a.equipment_id = e.id AND a.status = '%s'", constants.AssignmentActive)).
		LeftJoin("users u ON u.id = a.user_id")
}

func (r *equipmentRepository) GetAll(ctx context.Context, filter types.Filter) ([]*EquipmentListItem, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := applyEquipmentFilters(r.listJoin(psql.Select("COUNT(e.id)")), filter)
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT equipments: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета equipments: %w", err)
	}

	builder := applyEquipmentFilters(r.listJoin(psql.Select(
		"e.id, e.asset_number, e.category, e.model_name, e.acquisition_date, e.ip_address, e.network_type, e.windows_version, e.status, e.notes, e.created_at, e.updated_at",
		"u.id AS current_user_id, u.name AS user_name, u.department AS user_department, u.location AS user_location",
		"a.assignment_date",
	)), filter)

	builder = builder.OrderBy("e.asset_number ASC")
	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SELECT equipments: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выборки equipments: %w", err)
	}
	defer rows.Close()

	var items []*EquipmentListItem
	for rows.Next() {
		var item EquipmentListItem
		var ip, network, win, notes sql.NullString

		err := rows.Scan(
			&item.ID, &item.AssetNumber, &item.Category, &item.ModelName, &item.AcquisitionDate,
			&ip, &network, &win, &item.Status, &notes,
			&item.CreatedAt, &item.UpdatedAt,
			&item.CurrentUserID, &item.UserName, &item.UserDepartment, &item.UserLocation,
			&item.AssignmentDate,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("ошибка сканирования списка equipments: %w", err)
		}

		if ip.Valid {
			item.IPAddress = &ip.String
		}
		if network.Valid {
			item.NetworkType = &network.String
		}
		if win.Valid {
			item.WindowsVersion = &win.String
		}
		if notes.Valid {
			item.Notes = &notes.String
		}

		items = append(items, &item)
	}
	return items, total, rows.Err()
}

func (r *equipmentRepository) GetAvailable(ctx context.Context) ([]*entities.Equipment, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(equipmentFields).
		From(equipmentTable).
		Where(sq.Eq{"status": constants.EquipmentAvailable}).
		OrderBy("asset_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса GetAvailable: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки доступного оборудования: %w", err)
	}
	defer rows.Close()

	var list []*entities.Equipment
	for rows.Next() {
		e, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, e)
	}
	return list, rows.Err()
}

func (r *equipmentRepository) Create(ctx context.Context, tx pgx.Tx, e entities.Equipment) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(equipmentTable).
		Columns("asset_number", "category", "model_name", "acquisition_date", "ip_address", "network_type", "windows_version", "status", "notes", "created_at", "updated_at").
		Values(e.AssetNumber, e.Category, e.ModelName, e.AcquisitionDate, e.IPAddress, e.NetworkType, e.WindowsVersion, e.Status, e.Notes, sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create equipments: %w", err)
	}

	var newID uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return 0, fmt.Errorf("оборудование с таким инвентарным номером уже существует: %w", apperrors.ErrConflict)
		}
		return 0, fmt.Errorf("ошибка создания equipments: %w", err)
	}
	return newID, nil
}

func (r *equipmentRepository) Update(ctx context.Context, tx pgx.Tx, id uint64, e entities.Equipment) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(equipmentTable).
		Set("asset_number", e.AssetNumber).
		Set("category", e.Category).
		Set("model_name", e.ModelName).
		Set("acquisition_date", e.AcquisitionDate).
		Set("ip_address", e.IPAddress).
		Set("network_type", e.NetworkType).
		Set("windows_version", e.WindowsVersion).
		Set("status", e.Status).
		Set("notes", e.Notes).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Update equipments: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return fmt.Errorf("оборудование с таким инвентарным номером уже существует: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("ошибка обновления equipments: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *equipmentRepository) UpdateStatus(ctx context.Context, tx pgx.Tx, id uint64, status string) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(equipmentTable).
		Set("status", status).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса UpdateStatus: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления статуса equipments: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *equipmentRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Delete(equipmentTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Delete equipments: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка удаления equipments: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *equipmentRepository) CountAll(ctx context.Context) (uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, "SELECT COUNT(id) FROM "+equipmentTable).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчета equipments: %w", err)
	}
	return total, nil
}

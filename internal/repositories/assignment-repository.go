package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

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
	assignmentTable = "assignments"
)

type AssignmentRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]*entities.Assignment, uint64, error)
	ListActive(ctx context.Context) ([]*entities.Assignment, error)
	ListByEquipmentID(ctx context.Context, equipmentID uint64) ([]*entities.Assignment, error)
	ListByUserID(ctx context.Context, userID uint64) ([]*entities.Assignment, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Assignment, error)
	FindActiveByEquipmentID(ctx context.Context, tx pgx.Tx, equipmentID uint64) (*entities.Assignment, error)
	CountActiveByUserID(ctx context.Context, tx pgx.Tx, userID uint64) (uint64, error)
	Create(ctx context.Context, tx pgx.Tx, a entities.Assignment) (uint64, error)
	MarkReturned(ctx context.Context, tx pgx.Tx, id uint64, returnDate time.Time, reason *string) error
	CountActive(ctx context.Context) (uint64, error)
}

type assignmentRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewAssignmentRepository(storage *pgxpool.Pool, logger *zap.Logger) AssignmentRepositoryInterface {
	return &assignmentRepository{storage: storage, logger: logger}
}

func (r *assignmentRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

const assignmentJoinedFields = `a.id, a.equipment_id, a.user_id, a.assignment_date, a.return_date, a.status, a.reason, a.assigned_by, a.created_at,
	e.id, e.asset_number, e.category, e.model_name, e.acquisition_date, e.ip_address, e.network_type, e.windows_version, e.status, e.notes,
	u.id, u.name, u.department, u.location, u.phone, u.email`

func (r *assignmentRepository) joinedBuilder(psql sq.StatementBuilderType, fields string) sq.SelectBuilder {
	return psql.Select(fields).
		From(assignmentTable + " a").
		Join("equipments e ON e.id = a.equipment_id").
		Join("users u ON u.id = a.user_id")
}

func (r *assignmentRepository) scanJoinedRow(row pgx.Row) (*entities.Assignment, error) {
	var a entities.Assignment
	var e entities.Equipment
	var u entities.User
	var returnDate sql.NullTime
	var reason, assignedBy sql.NullString
	var ip, network, win, eqNotes sql.NullString
	var phone, email sql.NullString

	err := row.Scan(
		&a.ID, &a.EquipmentID, &a.UserID, &a.AssignmentDate, &returnDate, &a.Status, &reason, &assignedBy, &a.CreatedAt,
		&e.ID, &e.AssetNumber, &e.Category, &e.ModelName, &e.AcquisitionDate, &ip, &network, &win, &e.Status, &eqNotes,
		&u.ID, &u.Name, &u.Department, &u.Location, &phone, &email,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования assignments: %w", err)
	}

	if returnDate.Valid {
		a.ReturnDate = &returnDate.Time
	}
	if reason.Valid {
		a.Reason = &reason.String
	}
	if assignedBy.Valid {
		a.AssignedBy = &assignedBy.String
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
	if eqNotes.Valid {
		e.Notes = &eqNotes.String
	}
	if phone.Valid {
		u.Phone = &phone.String
	}
	if email.Valid {
		u.Email = &email.String
	}

	a.Equipment = &e
	a.User = &u
	return &a, nil
}

func applyAssignmentFilters(builder sq.SelectBuilder, filter types.Filter) sq.SelectBuilder {
	if v, ok := filter.Filter["status"]; ok {
		builder = builder.Where(sq.Eq{"a.status": v})
	}
	if v, ok := filter.Filter["asset_number"]; ok {
		builder = builder.Where(sq.ILike{"e.asset_number": fmt.Sprintf("%%%v%%", v)})
	}
	if v, ok := filter.Filter["user_name"]; ok {
		builder = builder.Where(sq.ILike{"u.name": fmt.Sprintf("%%%v%%", v)})
	}
	if v, ok := filter.Filter["department"]; ok {
		builder = builder.Where(sq.ILike{"u.department": fmt.Sprintf("%%%v%%", v)})
	}
	return builder
}

func (r *assignmentRepository) GetAll(ctx context.Context, filter types.Filter) ([]*entities.Assignment, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := applyAssignmentFilters(r.joinedBuilder(psql, "COUNT(a.id)"), filter)
	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT assignments: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета assignments: %w", err)
	}

	builder := applyAssignmentFilters(r.joinedBuilder(psql, assignmentJoinedFields), filter).
		OrderBy("a.assignment_date DESC", "a.id DESC")
	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SELECT assignments: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выборки assignments: %w", err)
	}
	defer rows.Close()

	var items []*entities.Assignment
	for rows.Next() {
		a, err := r.scanJoinedRow(rows)
		if err != nil {
			return nil, 0, err
		}
		items = append(items, a)
	}
	return items, total, rows.Err()
}

func (r *assignmentRepository) ListActive(ctx context.Context) ([]*entities.Assignment, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := r.joinedBuilder(psql, assignmentJoinedFields).
		Where(sq.Eq{"a.status": constants.AssignmentActive}).
		OrderBy("e.asset_number ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса ListActive: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки активных выдач: %w", err)
	}
	defer rows.Close()

	var items []*entities.Assignment
	for rows.Next() {
		a, err := r.scanJoinedRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// ListByEquipmentID - история выдач одной единицы, свежие сверху.
func (r *assignmentRepository) ListByEquipmentID(ctx context.Context, equipmentID uint64) ([]*entities.Assignment, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := r.joinedBuilder(psql, assignmentJoinedFields).
		Where(sq.Eq{"a.equipment_id": equipmentID}).
		OrderBy("a.assignment_date DESC", "a.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса ListByEquipmentID: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки истории выдач: %w", err)
	}
	defer rows.Close()

	var items []*entities.Assignment
	for rows.Next() {
		a, err := r.scanJoinedRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

// ListByUserID - история выдач пользователя, свежие сверху.
func (r *assignmentRepository) ListByUserID(ctx context.Context, userID uint64) ([]*entities.Assignment, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := r.joinedBuilder(psql, assignmentJoinedFields).
		Where(sq.Eq{"a.user_id": userID}).
		OrderBy("a.assignment_date DESC", "a.id DESC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса ListByUserID: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки выдач пользователя: %w", err)
	}
	defer rows.Close()

	var items []*entities.Assignment
	for rows.Next() {
		a, err := r.scanJoinedRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *assignmentRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.Assignment, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := r.joinedBuilder(psql, assignmentJoinedFields).
		Where(sq.Eq{"a.id": id}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindByID assignments: %w", err)
	}
	return r.scanJoinedRow(r.getQuerier(tx).QueryRow(ctx, query, args...))
}

// FindActiveByEquipmentID возвращает nil без ошибки, если активной
// выдачи нет: отсутствие выдачи - штатная ситуация для assign.
func (r *assignmentRepository) FindActiveByEquipmentID(ctx context.Context, tx pgx.Tx, equipmentID uint64) (*entities.Assignment, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := r.joinedBuilder(psql, assignmentJoinedFields).
		Where(sq.Eq{"a.equipment_id": equipmentID, "a.status": constants.AssignmentActive}).
		Limit(1).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки запроса FindActiveByEquipmentID: %w", err)
	}

	a, err := r.scanJoinedRow(r.getQuerier(tx).QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return a, nil
}

func (r *assignmentRepository) CountActiveByUserID(ctx context.Context, tx pgx.Tx, userID uint64) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select("COUNT(id)").
		From(assignmentTable).
		Where(sq.Eq{"user_id": userID, "status": constants.AssignmentActive}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса CountActiveByUserID: %w", err)
	}

	var total uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчета активных выдач пользователя: %w", err)
	}
	return total, nil
}

func (r *assignmentRepository) Create(ctx context.Context, tx pgx.Tx, a entities.Assignment) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(assignmentTable).
		Columns("equipment_id", "user_id", "assignment_date", "return_date", "status", "reason", "assigned_by", "created_at").
		Values(a.EquipmentID, a.UserID, a.AssignmentDate, a.ReturnDate, a.Status, a.Reason, a.AssignedBy, sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create assignments: %w", err)
	}

	var newID uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) {
			// Частичный уникальный индекс по активным выдачам
			if pgErr.Code == "23505" {
				return 0, fmt.Errorf("у оборудования уже есть активная выдача: %w", apperrors.ErrConflict)
			}
			if pgErr.Code == "23503" {
				return 0, fmt.Errorf("оборудование или пользователь не существует: %w", apperrors.ErrConflict)
			}
		}
		return 0, fmt.Errorf("ошибка создания assignments: %w", err)
	}
	return newID, nil
}

func (r *assignmentRepository) MarkReturned(ctx context.Context, tx pgx.Tx, id uint64, returnDate time.Time, reason *string) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Update(assignmentTable).
		Set("status", constants.AssignmentReturned).
		Set("return_date", returnDate).
		Where(sq.Eq{"id": id, "status": constants.AssignmentActive})
	if reason != nil {
		builder = builder.Set("reason", reason)
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса MarkReturned: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка закрытия выдачи: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("выдача уже закрыта или не существует: %w", apperrors.ErrConflict)
	}
	return nil
}

func (r *assignmentRepository) CountActive(ctx context.Context) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select("COUNT(id)").
		From(assignmentTable).
		Where(sq.Eq{"status": constants.AssignmentActive}).
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса CountActive: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, query, args...).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчета активных выдач: %w", err)
	}
	return total, nil
}

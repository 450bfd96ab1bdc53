package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

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
	userTable  = "users"
	userFields = "id, name, department, location, phone, email, created_at, updated_at"
)

// Белый список для фильтрации (защита от SQL Injection)
var allowedUserFilters = map[string]string{
	"name":       "name",
	"department": "department",
	"location":   "location",
}

type UserRepositoryInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]*entities.User, uint64, error)
	Search(ctx context.Context, name, department, location string) ([]*entities.User, error)
	FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.User, error)
	FindByNameAndDepartment(ctx context.Context, tx pgx.Tx, name, department string) (*entities.User, error)
	Create(ctx context.Context, tx pgx.Tx, u entities.User) (uint64, error)
	Update(ctx context.Context, tx pgx.Tx, id uint64, u entities.User) error
	Delete(ctx context.Context, tx pgx.Tx, id uint64) error
	CountAll(ctx context.Context) (uint64, error)
}

type userRepository struct {
	storage *pgxpool.Pool
	logger  *zap.Logger
}

func NewUserRepository(storage *pgxpool.Pool, logger *zap.Logger) UserRepositoryInterface {
	return &userRepository{storage: storage, logger: logger}
}

func (r *userRepository) getQuerier(tx pgx.Tx) Querier {
	if tx != nil {
		return tx
	}
	return r.storage
}

func (r *userRepository) scanRow(row pgx.Row) (*entities.User, error) {
	var u entities.User
	var phone, email sql.NullString

	err := row.Scan(&u.ID, &u.Name, &u.Department, &u.Location, &phone, &email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrNotFound
		}
		return nil, fmt.Errorf("ошибка сканирования users: %w", err)
	}

	if phone.Valid {
		u.Phone = &phone.String
	}
	if email.Valid {
		u.Email = &email.String
	}

	return &u, nil
}

func (r *userRepository) findOne(ctx context.Context, querier Querier, where sq.Sqlizer) (*entities.User, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Select(userFields).From(userTable).Where(where).Limit(1).ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки SQL для users: %w", err)
	}
	return r.scanRow(querier.QueryRow(ctx, query, args...))
}

func (r *userRepository) FindByID(ctx context.Context, tx pgx.Tx, id uint64) (*entities.User, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"id": id})
}

func (r *userRepository) FindByNameAndDepartment(ctx context.Context, tx pgx.Tx, name, department string) (*entities.User, error) {
	return r.findOne(ctx, r.getQuerier(tx), sq.Eq{"name": name, "department": department})
}

func (r *userRepository) GetAll(ctx context.Context, filter types.Filter) ([]*entities.User, uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

	countBuilder := psql.Select("COUNT(id)").From(userTable)
	if filter.Search != "" {
		countBuilder = countBuilder.Where(sq.ILike{"name": "%" + filter.Search + "%"})
	}
	for key, value := range filter.Filter {
		if dbColumn, ok := allowedUserFilters[key]; ok {
			if items, ok := value.(string); ok && strings.Contains(items, ",") {
				countBuilder = countBuilder.Where(sq.Eq{dbColumn: strings.Split(items, ",")})
			} else {
				countBuilder = countBuilder.Where(sq.Eq{dbColumn: value})
			}
		}
	}

	countQuery, countArgs, err := countBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки COUNT users: %w", err)
	}

	var total uint64
	if err := r.storage.QueryRow(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("ошибка подсчета users: %w", err)
	}

	builder := psql.Select(userFields).From(userTable)
	if filter.Search != "" {
		builder = builder.Where(sq.ILike{"name": "%" + filter.Search + "%"})
	}
	for key, value := range filter.Filter {
		if dbColumn, ok := allowedUserFilters[key]; ok {
			if items, ok := value.(string); ok && strings.Contains(items, ",") {
				builder = builder.Where(sq.Eq{dbColumn: strings.Split(items, ",")})
			} else {
				builder = builder.Where(sq.Eq{dbColumn: value})
			}
		}
	}
	builder = builder.OrderBy("name ASC")
	if filter.WithPagination && filter.Limit > 0 {
		builder = builder.Limit(uint64(filter.Limit)).Offset(uint64(filter.Offset))
	}

	query, args, err := builder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка сборки SELECT users: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("ошибка выборки users: %w", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		u, err := r.scanRow(rows)
		if err != nil {
			return nil, 0, err
		}
		users = append(users, u)
	}
	return users, total, rows.Err()
}

func (r *userRepository) Search(ctx context.Context, name, department, location string) ([]*entities.User, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	builder := psql.Select(userFields).From(userTable)

	if name != "" {
		builder = builder.Where(sq.ILike{"name": "%" + name + "%"})
	}
	if department != "" {
		builder = builder.Where(sq.ILike{"department": "%" + department + "%"})
	}
	if location != "" {
		builder = builder.Where(sq.ILike{"location": "%" + location + "%"})
	}

	query, args, err := builder.OrderBy("name ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("ошибка сборки поиска users: %w", err)
	}

	rows, err := r.storage.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("ошибка поиска users: %w", err)
	}
	defer rows.Close()

	var users []*entities.User
	for rows.Next() {
		u, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (r *userRepository) Create(ctx context.Context, tx pgx.Tx, u entities.User) (uint64, error) {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Insert(userTable).
		Columns("name", "department", "location", "phone", "email", "created_at", "updated_at").
		Values(u.Name, u.Department, u.Location, u.Phone, u.Email, sq.Expr("NOW()"), sq.Expr("NOW()")).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return 0, fmt.Errorf("ошибка сборки запроса Create users: %w", err)
	}

	var newID uint64
	if err := r.getQuerier(tx).QueryRow(ctx, query, args...).Scan(&newID); err != nil {
		return 0, fmt.Errorf("ошибка создания users: %w", err)
	}
	return newID, nil
}

func (r *userRepository) Update(ctx context.Context, tx pgx.Tx, id uint64, u entities.User) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Update(userTable).
		Set("name", u.Name).
		Set("department", u.Department).
		Set("location", u.Location).
		Set("phone", u.Phone).
		Set("email", u.Email).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Update users: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("ошибка обновления users: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) Delete(ctx context.Context, tx pgx.Tx, id uint64) error {
	psql := sq.StatementBuilder.PlaceholderFormat(sq.Dollar)
	query, args, err := psql.Delete(userTable).Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return fmt.Errorf("ошибка сборки запроса Delete users: %w", err)
	}

	result, err := r.getQuerier(tx).Exec(ctx, query, args...)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23503" {
			return fmt.Errorf("пользователь используется другими записями: %w", apperrors.ErrConflict)
		}
		return fmt.Errorf("ошибка удаления users: %w", err)
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *userRepository) CountAll(ctx context.Context) (uint64, error) {
	var total uint64
	if err := r.storage.QueryRow(ctx, "SELECT COUNT(id) FROM "+userTable).Scan(&total); err != nil {
		return 0, fmt.Errorf("ошибка подсчета users: %w", err)
	}
	return total, nil
}

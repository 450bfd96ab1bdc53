package services

import (
	"context"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
	"equipment-system/internal/repositories"
	"equipment-system/pkg/types"
	"equipment-system/pkg/utils"
)

type ChangeLogServiceInterface interface {
	GetAll(ctx context.Context, filter types.Filter) ([]dto.ChangeLogDTO, uint64, error)
	ListByEntity(ctx context.Context, entityType string, entityID uint64) ([]dto.ChangeLogDTO, error)
	Recent(ctx context.Context, limit uint64) ([]dto.ChangeLogDTO, error)
}

type changeLogService struct {
	changeLogRepo repositories.ChangeLogRepositoryInterface
	logger        *zap.Logger
}

func NewChangeLogService(changeLogRepo repositories.ChangeLogRepositoryInterface, logger *zap.Logger) ChangeLogServiceInterface {
	return &changeLogService{changeLogRepo: changeLogRepo, logger: logger}
}

func (s *changeLogService) GetAll(ctx context.Context, filter types.Filter) ([]dto.ChangeLogDTO, uint64, error) {
	items, total, err := s.changeLogRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]dto.ChangeLogDTO, 0, len(items))
	for _, c := range items {
		result = append(result, mapChangeLogToDTO(c))
	}
	return result, total, nil
}

func (s *changeLogService) ListByEntity(ctx context.Context, entityType string, entityID uint64) ([]dto.ChangeLogDTO, error) {
	items, err := s.changeLogRepo.ListByEntity(ctx, entityType, entityID)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ChangeLogDTO, 0, len(items))
	for _, c := range items {
		result = append(result, mapChangeLogToDTO(c))
	}
	return result, nil
}

func (s *changeLogService) Recent(ctx context.Context, limit uint64) ([]dto.ChangeLogDTO, error) {
	items, err := s.changeLogRepo.Recent(ctx, limit)
	if err != nil {
		return nil, err
	}

	result := make([]dto.ChangeLogDTO, 0, len(items))
	for _, c := range items {
		result = append(result, mapChangeLogToDTO(c))
	}
	return result, nil
}

// fieldDiff - одно изменение поля для журнала. Old/New пустые для
// записей о создании и удалении.
type fieldDiff struct {
	Field string
	Old   string
	New   string
}

// diffString добавляет запись, только если значение реально поменялось.
func diffString(diffs []fieldDiff, field, oldValue, newValue string) []fieldDiff {
	if oldValue == newValue {
		return diffs
	}
	return append(diffs, fieldDiff{Field: field, Old: oldValue, New: newValue})
}

func diffStringPtr(diffs []fieldDiff, field string, oldValue, newValue *string) []fieldDiff {
	var o, n string
	if oldValue != nil {
		o = *oldValue
	}
	if newValue != nil {
		n = *newValue
	}
	return diffString(diffs, field, o, n)
}

// recordDiffs пишет по строке журнала на каждое измененное поле.
// Вызывается внутри той же транзакции, что и само изменение: либо
// сохраняется все вместе, либо ничего.
func recordDiffs(ctx context.Context, tx pgx.Tx, repo repositories.ChangeLogRepositoryInterface,
	entityType string, entityID uint64, changeType string, diffs []fieldDiff, changedBy, reason *string) error {

	for _, d := range diffs {
		entry := entities.ChangeLog{
			EntityType: entityType,
			EntityID:   entityID,
			ChangeType: changeType,
			FieldName:  d.Field,
			ChangedBy:  changedBy,
			Reason:     reason,
		}
		if d.Old != "" {
			entry.OldValue = utils.StringPtr(d.Old)
		}
		if d.New != "" {
			entry.NewValue = utils.StringPtr(d.New)
		}
		if err := repo.Create(ctx, tx, entry); err != nil {
			return err
		}
	}
	return nil
}

// recordEvent - одна строка журнала без диффа полей (создание,
// удаление, выдача, возврат).
func recordEvent(ctx context.Context, tx pgx.Tx, repo repositories.ChangeLogRepositoryInterface,
	entityType string, entityID uint64, changeType, field string, oldValue, newValue string, changedBy, reason *string) error {

	entry := entities.ChangeLog{
		EntityType: entityType,
		EntityID:   entityID,
		ChangeType: changeType,
		FieldName:  field,
		ChangedBy:  changedBy,
		Reason:     reason,
	}
	if oldValue != "" {
		entry.OldValue = utils.StringPtr(oldValue)
	}
	if newValue != "" {
		entry.NewValue = utils.StringPtr(newValue)
	}
	return repo.Create(ctx, tx, entry)
}

package services

import (
	"context"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-system/internal/dto"
	"equipment-system/pkg/constants"
	apperrors "equipment-system/pkg/errors"
)

// Пломбу можно перевесить на другое оборудование через обычное
// обновление: equipment_id меняется, в журнал пишется дифф.
func TestSealService_UpdateRepoints(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sourceID := env.seedEquipment(t, "0001", constants.EquipmentAvailable)
	targetID := env.seedEquipment(t, "0002", constants.EquipmentAvailable)

	created, err := env.seals.Create(ctx, dto.CreateSealDTO{
		SealNumber:  "12",
		EquipmentID: sourceID,
	})
	require.NoError(t, err)
	assert.Equal(t, "0012", created.SealNumber)

	updated, err := env.seals.Update(ctx, created.ID, dto.UpdateSealDTO{
		EquipmentID: &targetID,
	})
	require.NoError(t, err)
	assert.Equal(t, targetID, updated.EquipmentID)

	moved, err := env.sealRepo.ListByEquipmentID(ctx, nil, targetID)
	require.NoError(t, err)
	require.Len(t, moved, 1)
	assert.Equal(t, "0012", moved[0].SealNumber)

	left, err := env.sealRepo.ListByEquipmentID(ctx, nil, sourceID)
	require.NoError(t, err)
	assert.Empty(t, left)

	history, err := env.changeLogRepo.ListByEntity(ctx, constants.EntitySeal, created.ID)
	require.NoError(t, err)
	var found bool
	for _, entry := range history {
		if entry.FieldName == "equipment_id" {
			found = true
			assert.Equal(t, strconv.FormatUint(sourceID, 10), *entry.OldValue)
			assert.Equal(t, strconv.FormatUint(targetID, 10), *entry.NewValue)
		}
	}
	assert.True(t, found, "перенос должен оставить запись equipment_id в журнале")
}

func TestSealService_UpdateRepointUnknownEquipment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sourceID := env.seedEquipment(t, "0001", constants.EquipmentAvailable)

	created, err := env.seals.Create(ctx, dto.CreateSealDTO{
		SealNumber:  "12",
		EquipmentID: sourceID,
	})
	require.NoError(t, err)

	missing := uint64(9999)
	_, err = env.seals.Update(ctx, created.ID, dto.UpdateSealDTO{EquipmentID: &missing})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Неудачный перенос не двигает пломбу.
	seals, err := env.sealRepo.ListByEquipmentID(ctx, nil, sourceID)
	require.NoError(t, err)
	assert.Len(t, seals, 1)
}

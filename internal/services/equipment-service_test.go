package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-system/internal/dto"
	"equipment-system/pkg/constants"
	apperrors "equipment-system/pkg/errors"
	"equipment-system/pkg/utils"
)

func TestEquipmentService_CreateWithSeals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.equipments.Create(ctx, dto.CreateEquipmentDTO{
		AssetNumber:     "1",
		Category:        "데스크탑",
		ModelName:       "삼성 DB400T7B",
		AcquisitionDate: "2024-01-15",
		SealNumbers:     "643, 136",
	})
	require.NoError(t, err)
	assert.Equal(t, "0001", created.AssetNumber, "номер сохраняется в канонической форме")
	assert.Equal(t, constants.EquipmentAvailable, created.Status)

	seals, err := env.sealRepo.ListByEquipmentID(ctx, nil, created.ID)
	require.NoError(t, err)
	require.Len(t, seals, 2)
	assert.Equal(t, "0643", seals[0].SealNumber)
	assert.Equal(t, "0136", seals[1].SealNumber)
}

func TestEquipmentService_UpdateReconcilesSeals(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	created, err := env.equipments.Create(ctx, dto.CreateEquipmentDTO{
		AssetNumber:     "0001",
		Category:        "데스크탑",
		ModelName:       "삼성 DB400T7B",
		AcquisitionDate: "2024-01-15",
		SealNumbers:     "0643, 0136",
	})
	require.NoError(t, err)

	// 0136 пропадает, 0777 добавляется, 0643 остается нетронутой.
	_, err = env.equipments.Update(ctx, created.ID, dto.UpdateEquipmentDTO{
		SealNumbers: utils.StringPtr("0643, 0777"),
	})
	require.NoError(t, err)

	seals, err := env.sealRepo.ListByEquipmentID(ctx, nil, created.ID)
	require.NoError(t, err)

	numbers := make([]string, 0, len(seals))
	for _, s := range seals {
		numbers = append(numbers, s.SealNumber)
	}
	assert.ElementsMatch(t, []string{"0643", "0777"}, numbers)
}

func TestEquipmentService_RetireOnlyFromAvailable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	availableID := env.seedEquipment(t, "0001", constants.EquipmentAvailable)
	inUseID := env.seedEquipment(t, "0002", constants.EquipmentInUse)

	_, err := env.equipments.Update(ctx, availableID, dto.UpdateEquipmentDTO{
		Status: utils.StringPtr(constants.EquipmentRetired),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.EquipmentRetired, env.equipmentStatus(t, availableID))

	_, err = env.equipments.Update(ctx, inUseID, dto.UpdateEquipmentDTO{
		Status: utils.StringPtr(constants.EquipmentRetired),
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Equal(t, constants.EquipmentInUse, env.equipmentStatus(t, inUseID))
}

func TestEquipmentService_UpdateWritesFieldDiffs(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	id := env.seedEquipment(t, "0001", constants.EquipmentAvailable)

	_, err := env.equipments.Update(ctx, id, dto.UpdateEquipmentDTO{
		ModelName: utils.StringPtr("LG gram 15"),
		IPAddress: utils.StringPtr("10.4.12.99"),
		ChangedBy: utils.StringPtr("관리자"),
	})
	require.NoError(t, err)

	history, err := env.changeLogRepo.ListByEntity(ctx, constants.EntityEquipment, id)
	require.NoError(t, err)
	require.Len(t, history, 2, "по записи на каждое измененное поле")

	fields := map[string]bool{}
	for _, h := range history {
		fields[h.FieldName] = true
		assert.Equal(t, constants.ChangeUpdate, h.ChangeType)
		require.NotNil(t, h.ChangedBy)
		assert.Equal(t, "관리자", *h.ChangedBy)
	}
	assert.True(t, fields["model_name"])
	assert.True(t, fields["ip_address"])
}

func TestEquipmentService_DuplicateSealRejected(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.equipments.Create(ctx, dto.CreateEquipmentDTO{
		AssetNumber:     "0001",
		Category:        "데스크탑",
		ModelName:       "삼성 DB400T7B",
		AcquisitionDate: "2024-01-15",
		SealNumbers:     "0643",
	})
	require.NoError(t, err)

	// Та же пломба на другом оборудовании - конфликт.
	_, err = env.equipments.Create(ctx, dto.CreateEquipmentDTO{
		AssetNumber:     "0002",
		Category:        "노트북",
		ModelName:       "LG gram 15",
		AcquisitionDate: "2024-03-20",
		SealNumbers:     "643",
	})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

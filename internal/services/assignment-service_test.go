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

func TestAssignmentService_Assign(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	equipmentID := env.seedEquipment(t, "0001", constants.EquipmentAvailable)
	userID := env.seedUser(t, "홍길동")

	// Номер намеренно неканонический: сервис обязан его дополнить.
	result, err := env.assignments.Assign(ctx, dto.CreateAssignmentDTO{
		AssetNumber: "1",
		UserID:      userID,
		AssignedBy:  utils.StringPtr("관리자"),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.AssignmentActive, result.Status)
	assert.Equal(t, equipmentID, result.EquipmentID)

	assert.Equal(t, constants.EquipmentInUse, env.equipmentStatus(t, equipmentID))

	// Выдача логируется как своя сущность, /change-logs/assignment/:id
	// показывает ее историю.
	history, err := env.changeLogRepo.ListByEntity(ctx, constants.EntityAssignment, result.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, constants.ChangeAssign, history[0].ChangeType)
	assert.Equal(t, "홍길동 → 0001", *history[0].NewValue)
}

func TestAssignmentService_AssignTwice(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	equipmentID := env.seedEquipment(t, "0001", constants.EquipmentAvailable)
	firstUser := env.seedUser(t, "홍길동")
	secondUser := env.seedUser(t, "김철수")

	_, err := env.assignments.Assign(ctx, dto.CreateAssignmentDTO{AssetNumber: "0001", UserID: firstUser})
	require.NoError(t, err)

	_, err = env.assignments.Assign(ctx, dto.CreateAssignmentDTO{AssetNumber: "0001", UserID: secondUser})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	// Откат транзакции не должен оставить вторую выдачу в истории.
	list, err := env.assignmentRepo.ListByEquipmentID(ctx, equipmentID)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestAssignmentService_AssignRejectedStatuses(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedEquipment(t, "0001", constants.EquipmentRetired)
	env.seedEquipment(t, "0002", constants.EquipmentUnderRepair)
	userID := env.seedUser(t, "홍길동")

	_, err := env.assignments.Assign(ctx, dto.CreateAssignmentDTO{AssetNumber: "0001", UserID: userID})
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = env.assignments.Assign(ctx, dto.CreateAssignmentDTO{AssetNumber: "0002", UserID: userID})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

func TestAssignmentService_AssignUnknownAssetNumber(t *testing.T) {
	env := newTestEnv(t)

	userID := env.seedUser(t, "홍길동")

	_, err := env.assignments.Assign(context.Background(), dto.CreateAssignmentDTO{AssetNumber: "9999", UserID: userID})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAssignmentService_Return(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	equipmentID := env.seedEquipment(t, "0001", constants.EquipmentAvailable)
	userID := env.seedUser(t, "홍길동")

	assigned, err := env.assignments.Assign(ctx, dto.CreateAssignmentDTO{AssetNumber: "0001", UserID: userID})
	require.NoError(t, err)

	returned, err := env.assignments.Return(ctx, assigned.ID, dto.ReturnAssignmentDTO{
		Reason: utils.StringPtr("퇴사"),
	})
	require.NoError(t, err)
	assert.Equal(t, constants.AssignmentReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)

	assert.Equal(t, constants.EquipmentAvailable, env.equipmentStatus(t, equipmentID))

	history, err := env.changeLogRepo.ListByEntity(ctx, constants.EntityAssignment, assigned.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, constants.ChangeReturn, history[0].ChangeType)
	assert.Equal(t, "홍길동 → 0001", *history[0].OldValue)

	// Повторный возврат - конфликт.
	_, err = env.assignments.Return(ctx, assigned.ID, dto.ReturnAssignmentDTO{})
	assert.ErrorIs(t, err, apperrors.ErrConflict)
}

// Если по оборудованию остался открытый ремонт, после возврата оно
// уходит в ремонт, а не в свободные.
func TestAssignmentService_ReturnWithOpenRepair(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	equipmentID := env.seedEquipment(t, "0001", constants.EquipmentAvailable)
	userID := env.seedUser(t, "홍길동")

	assigned, err := env.assignments.Assign(ctx, dto.CreateAssignmentDTO{AssetNumber: "0001", UserID: userID})
	require.NoError(t, err)

	env.seedOpenRepair(t, equipmentID)

	_, err = env.assignments.Return(ctx, assigned.ID, dto.ReturnAssignmentDTO{})
	require.NoError(t, err)
	assert.Equal(t, constants.EquipmentUnderRepair, env.equipmentStatus(t, equipmentID))
}

func TestEquipmentService_DeleteBlockedByActiveAssignment(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	equipmentID := env.seedEquipment(t, "0001", constants.EquipmentAvailable)
	userID := env.seedUser(t, "홍길동")

	_, err := env.assignments.Assign(ctx, dto.CreateAssignmentDTO{AssetNumber: "0001", UserID: userID})
	require.NoError(t, err)

	err = env.equipments.Delete(ctx, equipmentID, nil)
	assert.ErrorIs(t, err, apperrors.ErrConflict)

	_, err = env.equipmentRepo.FindByID(ctx, nil, equipmentID)
	assert.NoError(t, err, "оборудование не должно быть удалено")
}

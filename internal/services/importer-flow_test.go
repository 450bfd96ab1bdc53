package services

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"equipment-system/pkg/constants"
)

var importHeader = []interface{}{
	"번호", "구분", "모델 명", "취득일자", "사용자", "부서", "위치", "보안씰1",
}

func importWorkbook(t *testing.T, rows ...[]interface{}) io.Reader {
	t.Helper()
	all := append([][]interface{}{importHeader}, rows...)
	return buildWorkbook(t, all)
}

// Повторный импорт того же файла без overwrite ничего не создает.
func TestImportService_ExecuteIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	row := []interface{}{"7", "데스크탑", "X1", "2024-01-15", "김철수", "운영실", "15층", "12"}

	first, err := env.importer.Execute(ctx, importWorkbook(t, row), false, "tester")
	require.NoError(t, err)
	assert.Empty(t, first.Errors)
	assert.Equal(t, 1, first.EquipmentCreated)
	assert.Equal(t, 1, first.UsersCreated)
	assert.Equal(t, 1, first.AssignmentsCreated)
	assert.Equal(t, 1, first.SealsCreated)

	equipment, err := env.equipmentRepo.FindByAssetNumber(ctx, nil, "0007")
	require.NoError(t, err, "номер из файла сохранен в канонической форме")
	assert.Equal(t, constants.EquipmentInUse, equipment.Status)

	second, err := env.importer.Execute(ctx, importWorkbook(t, row), false, "tester")
	require.NoError(t, err)
	assert.Empty(t, second.Errors)
	assert.Equal(t, 0, second.EquipmentCreated)
	assert.Equal(t, 0, second.EquipmentUpdated)
	assert.Equal(t, 0, second.UsersCreated)
	assert.Equal(t, 0, second.AssignmentsCreated)
	assert.Equal(t, 0, second.SealsCreated)
}

// С overwrite файл считается источником истины: оборудование
// перезаписывается, выдача переоформляется на пользователя из файла,
// пломба перевешивается.
func TestImportService_ExecuteOverwriteReassigns(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.importer.Execute(ctx,
		importWorkbook(t, []interface{}{"7", "데스크탑", "X1", "2024-01-15", "김철수", "운영실", "15층", "12"}),
		false, "tester")
	require.NoError(t, err)

	result, err := env.importer.Execute(ctx,
		importWorkbook(t, []interface{}{"7", "노트북", "X2", "2024-01-15", "이영희", "개발팀", "16층", "12"}),
		true, "tester")
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 1, result.EquipmentUpdated)
	assert.Equal(t, 1, result.UsersCreated)
	assert.Equal(t, 1, result.AssignmentsCreated)

	equipment, err := env.equipmentRepo.FindByAssetNumber(ctx, nil, "0007")
	require.NoError(t, err)
	assert.Equal(t, "노트북", equipment.Category)
	assert.Equal(t, "X2", equipment.ModelName)

	active, err := env.assignmentRepo.FindActiveByEquipmentID(ctx, nil, equipment.ID)
	require.NoError(t, err)
	require.NotNil(t, active)
	assert.Equal(t, "이영희", active.User.Name)

	history, err := env.assignmentRepo.ListByEquipmentID(ctx, equipment.ID)
	require.NoError(t, err)
	assert.Len(t, history, 2, "старая выдача закрыта, а не удалена")
}

// Пломба, закрепленная за другим оборудованием, при overwrite
// перевешивается на оборудование из файла.
func TestImportService_ExecuteOverwriteRepointsSeal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	_, err := env.importer.Execute(ctx,
		importWorkbook(t, []interface{}{"1", "데스크탑", "X1", "2024-01-15", "", "", "", "12"}),
		false, "tester")
	require.NoError(t, err)

	result, err := env.importer.Execute(ctx,
		importWorkbook(t, []interface{}{"2", "데스크탑", "X1", "2024-01-15", "", "", "", "12"}),
		true, "tester")
	require.NoError(t, err)
	assert.Empty(t, result.Errors)
	assert.Equal(t, 0, result.SealsCreated)

	target, err := env.equipmentRepo.FindByAssetNumber(ctx, nil, "0002")
	require.NoError(t, err)

	seals, err := env.sealRepo.ListByEquipmentID(ctx, nil, target.ID)
	require.NoError(t, err)
	require.Len(t, seals, 1)
	assert.Equal(t, "0012", seals[0].SealNumber)
}

func TestImportService_Preview(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.seedEquipment(t, "0007", constants.EquipmentAvailable)

	preview, err := env.importer.Preview(ctx, importWorkbook(t,
		[]interface{}{"7", "데스크탑", "X1", "2024-01-15", "", "", "", ""},
		[]interface{}{"8", "노트북", "X2", "2024-03-20", "", "", "", ""},
		[]interface{}{"", "노트북", "X3", "", "", "", "", ""},
	))
	require.NoError(t, err)

	assert.Equal(t, 3, preview.TotalRows)
	assert.Equal(t, 2, preview.ValidRows)
	assert.Equal(t, 1, preview.NewCount)
	assert.Equal(t, 1, preview.UpdateCount)
	assert.Equal(t, 1, preview.ErrorCount)
	require.Len(t, preview.Errors, 1)
	assert.Contains(t, preview.Errors[0], "строка 4")
	require.Len(t, preview.Preview, 2)
	assert.False(t, preview.Preview[0].IsNew)
	assert.True(t, preview.Preview[1].IsNew)
}

func TestImportService_MissingRequiredColumns(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.importer.Execute(context.Background(),
		buildWorkbook(t, [][]interface{}{{"번호", "비고"}}), false, "tester")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "обязательных колонок")
}

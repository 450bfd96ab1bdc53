package repositories

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/aarondl/null/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"equipment-system/internal/entities"
)

func newTestFloorplanRepo(t *testing.T) FloorplanRepositoryInterface {
	t.Helper()
	repo, err := NewFloorplanRepository(t.TempDir(), zap.NewNop())
	require.NoError(t, err)
	return repo
}

func TestFloorplanRepository_LoadMissingFloor(t *testing.T) {
	repo := newTestFloorplanRepo(t)

	doc, err := repo.Load(15)
	require.NoError(t, err)
	assert.Equal(t, 15, doc.Floor)
	assert.Empty(t, doc.Items.Seats)
	assert.Empty(t, doc.Items.Facilities)
}

func TestFloorplanRepository_SaveLoadRoundTrip(t *testing.T) {
	repo := newTestFloorplanRepo(t)

	doc := &entities.FloorplanDocument{
		Floor: 16,
		Items: entities.FloorplanItems{
			Seats: []entities.FloorplanSeat{
				{ID: 1, Code: "C-1", Name: "홍길동", X: 10, Y: 20, Width: 70, Height: 50, UserID: null.Int64From(7)},
			},
			Facilities: []entities.FloorplanFacility{
				{ID: 2, Name: "서버실", FacilityType: "facility-room", Width: 100, Height: 80},
			},
		},
	}
	require.NoError(t, repo.Save(doc))

	loaded, err := repo.Load(16)
	require.NoError(t, err)
	assert.Equal(t, doc.Items.Seats, loaded.Items.Seats)
	assert.Equal(t, doc.Items.Facilities, loaded.Items.Facilities)
}

// Сохранение заменяет документ целиком: элементы, которых нет в новой
// версии, пропадают.
func TestFloorplanRepository_SaveReplacesDocument(t *testing.T) {
	repo := newTestFloorplanRepo(t)

	require.NoError(t, repo.Save(&entities.FloorplanDocument{
		Floor: 15,
		Items: entities.FloorplanItems{
			Seats: []entities.FloorplanSeat{{ID: 1, Code: "C-1"}, {ID: 2, Code: "C-2"}},
		},
	}))
	require.NoError(t, repo.Save(&entities.FloorplanDocument{
		Floor: 15,
		Items: entities.FloorplanItems{
			Seats: []entities.FloorplanSeat{{ID: 2, Code: "C-2"}},
		},
	}))

	loaded, err := repo.Load(15)
	require.NoError(t, err)
	require.Len(t, loaded.Items.Seats, 1)
	assert.Equal(t, "C-2", loaded.Items.Seats[0].Code)
}

func TestFloorplanRepository_ListFloors(t *testing.T) {
	repo := newTestFloorplanRepo(t)

	floors, err := repo.ListFloors()
	require.NoError(t, err)
	assert.Empty(t, floors)

	require.NoError(t, repo.Save(&entities.FloorplanDocument{Floor: 14}))
	require.NoError(t, repo.Save(&entities.FloorplanDocument{Floor: 16}))

	floors, err = repo.ListFloors()
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{14, 16}, floors)
}

func TestFloorplanRepository_DetachUser(t *testing.T) {
	repo := newTestFloorplanRepo(t)

	require.NoError(t, repo.Save(&entities.FloorplanDocument{
		Floor: 15,
		Items: entities.FloorplanItems{
			Seats: []entities.FloorplanSeat{
				{ID: 1, Code: "C-1", UserID: null.Int64From(7)},
				{ID: 2, Code: "C-2", UserID: null.Int64From(8)},
			},
		},
	}))
	require.NoError(t, repo.Save(&entities.FloorplanDocument{
		Floor: 16,
		Items: entities.FloorplanItems{
			Seats: []entities.FloorplanSeat{{ID: 1, Code: "D-1", UserID: null.Int64From(7)}},
		},
	}))

	require.NoError(t, repo.DetachUser(7))

	doc15, err := repo.Load(15)
	require.NoError(t, err)
	assert.False(t, doc15.Items.Seats[0].UserID.Valid)
	assert.True(t, doc15.Items.Seats[1].UserID.Valid, "чужие места не трогаем")

	doc16, err := repo.Load(16)
	require.NoError(t, err)
	assert.False(t, doc16.Items.Seats[0].UserID.Valid)
}

// Поврежденный файл должен давать внятную ошибку, а не пустой этаж.
func TestFloorplanRepository_LoadCorruptedFile(t *testing.T) {
	dir := t.TempDir()
	repo, err := NewFloorplanRepository(dir, zap.NewNop())
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "floor_15.json"), []byte("{не json"), 0o644))

	_, err = repo.Load(15)
	require.Error(t, err)
}

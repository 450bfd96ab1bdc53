package repositories

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"

	"equipment-system/internal/entities"
)

// FloorplanRepositoryInterface хранит рассадку по этажам. Документ
// этажа всегда читается и пишется целиком.
type FloorplanRepositoryInterface interface {
	Load(floor int) (*entities.FloorplanDocument, error)
	Save(doc *entities.FloorplanDocument) error
	ListFloors() ([]int, error)
	DetachUser(userID uint64) error
}

// floorplanRepository пишет каждый этаж в свой JSON-файл. Запись идет
// через временный файл и rename, чтобы упавший процесс не оставил
// наполовину записанный документ.
type floorplanRepository struct {
	dir    string
	logger *zap.Logger
	mu     sync.Mutex
}

func NewFloorplanRepository(dir string, logger *zap.Logger) (FloorplanRepositoryInterface, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("не удалось создать каталог рассадки %q: %w", dir, err)
	}
	return &floorplanRepository{dir: dir, logger: logger}, nil
}

func (r *floorplanRepository) path(floor int) string {
	return filepath.Join(r.dir, fmt.Sprintf("floor_%d.json", floor))
}

func (r *floorplanRepository) Load(floor int) (*entities.FloorplanDocument, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.loadLocked(floor)
}

func (r *floorplanRepository) loadLocked(floor int) (*entities.FloorplanDocument, error) {
	data, err := os.ReadFile(r.path(floor))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			// Пустой этаж - это не ошибка, просто еще никто не рисовал.
			return &entities.FloorplanDocument{Floor: floor}, nil
		}
		return nil, fmt.Errorf("ошибка чтения рассадки этажа %d: %w", floor, err)
	}

	var doc entities.FloorplanDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("поврежденный файл рассадки этажа %d: %w", floor, err)
	}
	doc.Floor = floor
	return &doc, nil
}

func (r *floorplanRepository) Save(doc *entities.FloorplanDocument) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saveLocked(doc)
}

func (r *floorplanRepository) saveLocked(doc *entities.FloorplanDocument) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("ошибка сериализации рассадки этажа %d: %w", doc.Floor, err)
	}

	tmp, err := os.CreateTemp(r.dir, fmt.Sprintf("floor_%d_*.tmp", doc.Floor))
	if err != nil {
		return fmt.Errorf("не удалось создать временный файл рассадки: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи рассадки этажа %d: %w", doc.Floor, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка записи рассадки этажа %d: %w", doc.Floor, err)
	}

	if err := os.Rename(tmpName, r.path(doc.Floor)); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("ошибка сохранения рассадки этажа %d: %w", doc.Floor, err)
	}
	return nil
}

func (r *floorplanRepository) ListFloors() ([]int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return nil, fmt.Errorf("ошибка чтения каталога рассадки: %w", err)
	}

	var floors []int
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var floor int
		if _, err := fmt.Sscanf(entry.Name(), "floor_%d.json", &floor); err == nil {
			floors = append(floors, floor)
		}
	}
	return floors, nil
}

// DetachUser снимает пользователя со всех мест на всех этажах.
// Вызывается при удалении пользователя, чтобы рассадка не ссылалась
// на несуществующий id.
func (r *floorplanRepository) DetachUser(userID uint64) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, err := os.ReadDir(r.dir)
	if err != nil {
		return fmt.Errorf("ошибка чтения каталога рассадки: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		var floor int
		if _, err := fmt.Sscanf(entry.Name(), "floor_%d.json", &floor); err != nil {
			continue
		}

		doc, err := r.loadLocked(floor)
		if err != nil {
			return err
		}

		changed := false
		for i := range doc.Items.Seats {
			seat := &doc.Items.Seats[i]
			if seat.UserID.Valid && seat.UserID.Int64 == int64(userID) {
				seat.UserID.Valid = false
				seat.UserID.Int64 = 0
				changed = true
			}
		}
		if !changed {
			continue
		}

		if err := r.saveLocked(doc); err != nil {
			return err
		}
	}
	return nil
}

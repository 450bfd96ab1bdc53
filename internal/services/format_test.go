package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"equipment-system/internal/entities"
)

func TestMapMaintenanceToDTO_Cost(t *testing.T) {
	record := entities.MaintenanceLog{
		ID:              1,
		EquipmentID:     2,
		MaintenanceDate: time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC),
		MaintenanceType: "repair",
		Description:     "디스크 교체",
		Status:          "in_progress",
	}

	out := mapMaintenanceToDTO(&record)
	assert.False(t, out.Cost.Valid, "без стоимости поле остается null")

	cost := int64(150000)
	record.Cost = &cost
	out = mapMaintenanceToDTO(&record)
	assert.True(t, out.Cost.Valid)
	assert.Equal(t, cost, out.Cost.Int64)
}

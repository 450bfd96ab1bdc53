package entities

import (
	"time"

	"equipment-system/pkg/types"
)

type Equipment struct {
	ID              uint64    `json:"id" db:"id"`
	AssetNumber     string    `json:"asset_number" db:"asset_number"`
	Category        string    `json:"category" db:"category"`
	ModelName       string    `json:"model_name" db:"model_name"`
	AcquisitionDate time.Time `json:"acquisition_date" db:"acquisition_date"`
	IPAddress       *string   `json:"ip_address" db:"ip_address"`
	NetworkType     *string   `json:"network_type" db:"network_type"`
	WindowsVersion  *string   `json:"windows_version" db:"windows_version"`
	Status          string    `json:"status" db:"status"`
	Notes           *string   `json:"notes" db:"notes"`

	types.BaseEntity

	// Связанные данные (не колонки таблицы)
	Seals []SecuritySeal `json:"-" db:"-"`
}

// UsageMonths — целое число месяцев с даты приобретения (30 дней = месяц).
func (e *Equipment) UsageMonths(now time.Time) int {
	if e.AcquisitionDate.IsZero() {
		return 0
	}
	days := int(now.Sub(e.AcquisitionDate).Hours() / 24)
	return days / 30
}

func (e *Equipment) UsageYears(now time.Time) int {
	return e.UsageMonths(now) / 12
}

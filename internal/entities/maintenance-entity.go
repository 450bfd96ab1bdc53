package entities

import "time"

type MaintenanceLog struct {
	ID              uint64    `json:"id" db:"id"`
	EquipmentID     uint64    `json:"equipment_id" db:"equipment_id"`
	MaintenanceDate time.Time `json:"maintenance_date" db:"maintenance_date"`
	MaintenanceType string    `json:"maintenance_type" db:"maintenance_type"`
	Description     string    `json:"description" db:"description"`
	Technician      *string   `json:"technician" db:"technician"`
	Cost            *int64    `json:"cost" db:"cost"`
	Status          string    `json:"status" db:"status"`
	Notes           *string   `json:"notes" db:"notes"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	CreatedBy       *string   `json:"created_by" db:"created_by"`
}

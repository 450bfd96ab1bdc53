package dto

import "github.com/aarondl/null/v8"

type CreateMaintenanceDTO struct {
	EquipmentID     uint64     `json:"equipment_id" validate:"required,gt=0"`
	MaintenanceDate string     `json:"maintenance_date" validate:"required,dateformat"`
	MaintenanceType string     `json:"maintenance_type" validate:"required"`
	Description     string     `json:"description" validate:"required"`
	Technician      *string    `json:"technician,omitempty"`
	Cost            null.Int64 `json:"cost,omitempty"`
	Status          *string    `json:"status,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	CreatedBy       *string    `json:"created_by,omitempty"`
}

type UpdateMaintenanceDTO struct {
	MaintenanceDate *string    `json:"maintenance_date,omitempty" validate:"omitempty,dateformat"`
	MaintenanceType *string    `json:"maintenance_type,omitempty"`
	Description     *string    `json:"description,omitempty"`
	Technician      *string    `json:"technician,omitempty"`
	Cost            null.Int64 `json:"cost,omitempty"`
	Status          *string    `json:"status,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
}

type MaintenanceDTO struct {
	ID              uint64     `json:"id"`
	EquipmentID     uint64     `json:"equipment_id"`
	MaintenanceDate string     `json:"maintenance_date"`
	MaintenanceType string     `json:"maintenance_type"`
	Description     string     `json:"description"`
	Technician      *string    `json:"technician"`
	Cost            null.Int64 `json:"cost"`
	Status          string     `json:"status"`
	Notes           *string    `json:"notes"`
	CreatedAt       string     `json:"created_at"`
	CreatedBy       *string    `json:"created_by"`

	Equipment *ShortEquipmentDTO `json:"equipment,omitempty"`
}

package entities

import "time"

type SecuritySeal struct {
	ID               uint64     `json:"id" db:"id"`
	SealNumber       string     `json:"seal_number" db:"seal_number"`
	EquipmentID      uint64     `json:"equipment_id" db:"equipment_id"`
	AttachedDate     time.Time  `json:"attached_date" db:"attached_date"`
	AttachedLocation *string    `json:"attached_location" db:"attached_location"`
	Status           string     `json:"status" db:"status"`
	InspectionDate   *time.Time `json:"inspection_date" db:"inspection_date"`
	Notes            *string    `json:"notes" db:"notes"`
	CreatedAt        time.Time  `json:"created_at" db:"created_at"`
}

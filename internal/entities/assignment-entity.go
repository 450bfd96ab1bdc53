package entities

import "time"

type Assignment struct {
	ID             uint64     `json:"id" db:"id"`
	EquipmentID    uint64     `json:"equipment_id" db:"equipment_id"`
	UserID         uint64     `json:"user_id" db:"user_id"`
	AssignmentDate time.Time  `json:"assignment_date" db:"assignment_date"`
	ReturnDate     *time.Time `json:"return_date" db:"return_date"`
	Status         string     `json:"status" db:"status"`
	Reason         *string    `json:"reason" db:"reason"`
	AssignedBy     *string    `json:"assigned_by" db:"assigned_by"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`

	// Связанные данные (не колонки таблицы)
	Equipment *Equipment `json:"-" db:"-"`
	User      *User      `json:"-" db:"-"`
}

package entities

import (
	"equipment-system/pkg/types"
)

type User struct {
	ID         uint64  `json:"id" db:"id"`
	Name       string  `json:"name" db:"name"`
	Department string  `json:"department" db:"department"`
	Location   string  `json:"location" db:"location"`
	Phone      *string `json:"phone" db:"phone"`
	Email      *string `json:"email" db:"email"`

	types.BaseEntity
}

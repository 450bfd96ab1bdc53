package dto

type CreateUserDTO struct {
	Name       string  `json:"name" validate:"required"`
	Department string  `json:"department" validate:"required"`
	Location   string  `json:"location" validate:"required"`
	Phone      *string `json:"phone,omitempty" validate:"omitempty"`
	Email      *string `json:"email,omitempty" validate:"omitempty,email"`
	ChangedBy  *string `json:"changed_by,omitempty"`
}

type UpdateUserDTO struct {
	Name       *string `json:"name,omitempty"       validate:"omitempty"`
	Department *string `json:"department,omitempty" validate:"omitempty"`
	Location   *string `json:"location,omitempty"   validate:"omitempty"`
	Phone      *string `json:"phone,omitempty"      validate:"omitempty"`
	Email      *string `json:"email,omitempty"      validate:"omitempty,email"`
	ChangedBy  *string `json:"changed_by,omitempty"`
	Reason     *string `json:"reason,omitempty"`
}

type UserDTO struct {
	ID         uint64  `json:"id"`
	Name       string  `json:"name"`
	Department string  `json:"department"`
	Location   string  `json:"location"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

type ShortUserDTO struct {
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"`
}

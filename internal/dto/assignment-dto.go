package dto

type CreateAssignmentDTO struct {
	// Выдача идет по инвентарному номеру: так оператор работает со сканером.
	AssetNumber    string  `json:"asset_number" validate:"required"`
	UserID         uint64  `json:"user_id" validate:"required,gt=0"`
	AssignmentDate *string `json:"assignment_date,omitempty" validate:"omitempty,dateformat"`
	Reason         *string `json:"reason,omitempty"`
	AssignedBy     *string `json:"assigned_by,omitempty"`
}

type ReturnAssignmentDTO struct {
	ReturnDate *string `json:"return_date,omitempty" validate:"omitempty,dateformat"`
	Reason     *string `json:"reason,omitempty"`
	AssignedBy *string `json:"assigned_by,omitempty"`
}

type AssignmentDTO struct {
	ID             uint64  `json:"id"`
	EquipmentID    uint64  `json:"equipment_id"`
	UserID         uint64  `json:"user_id"`
	AssignmentDate string  `json:"assignment_date"`
	ReturnDate     *string `json:"return_date"`
	Status         string  `json:"status"`
	Reason         *string `json:"reason"`
	AssignedBy     *string `json:"assigned_by"`
	CreatedAt      string  `json:"created_at"`

	Equipment *EquipmentDTO `json:"equipment,omitempty"`
	User      *UserDTO      `json:"user,omitempty"`
}

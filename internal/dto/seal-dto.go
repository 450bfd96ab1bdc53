package dto

type CreateSealDTO struct {
	SealNumber       string  `json:"seal_number" validate:"required"`
	EquipmentID      uint64  `json:"equipment_id" validate:"required,gt=0"`
	AttachedDate     *string `json:"attached_date,omitempty" validate:"omitempty,dateformat"`
	AttachedLocation *string `json:"attached_location,omitempty"`
	Status           *string `json:"status,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	ChangedBy        *string `json:"changed_by,omitempty"`
}

type UpdateSealDTO struct {
	SealNumber       *string `json:"seal_number,omitempty"       validate:"omitempty"`
	EquipmentID      *uint64 `json:"equipment_id,omitempty"      validate:"omitempty,gt=0"`
	AttachedDate     *string `json:"attached_date,omitempty"     validate:"omitempty,dateformat"`
	InspectionDate   *string `json:"inspection_date,omitempty"   validate:"omitempty,dateformat"`
	AttachedLocation *string `json:"attached_location,omitempty"`
	Status           *string `json:"status,omitempty"`
	Notes            *string `json:"notes,omitempty"`
	ChangedBy        *string `json:"changed_by,omitempty"`
}

type SealDTO struct {
	ID               uint64  `json:"id"`
	SealNumber       string  `json:"seal_number"`
	EquipmentID      uint64  `json:"equipment_id"`
	AttachedDate     string  `json:"attached_date"`
	AttachedLocation *string `json:"attached_location"`
	Status           string  `json:"status"`
	InspectionDate   *string `json:"inspection_date"`
	Notes            *string `json:"notes"`
	CreatedAt        string  `json:"created_at"`

	Equipment *ShortEquipmentDTO `json:"equipment,omitempty"`
}

// SealDuplicateDTO — ответ проверки номера пломбы на занятость.
type SealDuplicateDTO struct {
	Duplicate            bool   `json:"duplicate"`
	SealNumber           string `json:"seal_number"`
	EquipmentID          uint64 `json:"equipment_id,omitempty"`
	EquipmentAssetNumber string `json:"equipment_asset_number,omitempty"`
}

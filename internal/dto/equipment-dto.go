package dto

type CreateEquipmentDTO struct {
	AssetNumber     string  `json:"asset_number" validate:"required"`
	Category        string  `json:"category" validate:"required"`
	ModelName       string  `json:"model_name" validate:"required"`
	AcquisitionDate string  `json:"acquisition_date" validate:"required,dateformat"`
	IPAddress       *string `json:"ip_address,omitempty"`
	NetworkType     *string `json:"network_type,omitempty"`
	WindowsVersion  *string `json:"windows_version,omitempty"`
	Notes           *string `json:"notes,omitempty"`

	// Номера пломб одной строкой через запятую, как их вводит оператор.
	SealNumbers string  `json:"seal_numbers,omitempty"`
	ChangedBy   *string `json:"changed_by,omitempty"`
}

type UpdateEquipmentDTO struct {
	AssetNumber     *string `json:"asset_number,omitempty"     validate:"omitempty"`
	Category        *string `json:"category,omitempty"         validate:"omitempty"`
	ModelName       *string `json:"model_name,omitempty"       validate:"omitempty"`
	AcquisitionDate *string `json:"acquisition_date,omitempty" validate:"omitempty,dateformat"`
	IPAddress       *string `json:"ip_address,omitempty"`
	NetworkType     *string `json:"network_type,omitempty"`
	WindowsVersion  *string `json:"windows_version,omitempty"`
	Status          *string `json:"status,omitempty"`
	Notes           *string `json:"notes,omitempty"`
	SealNumbers     *string `json:"seal_numbers,omitempty"`
	ChangedBy       *string `json:"changed_by,omitempty"`
	Reason          *string `json:"reason,omitempty"`
}

type EquipmentDTO struct {
	ID              uint64    `json:"id"`
	AssetNumber     string    `json:"asset_number"`
	Category        string    `json:"category"`
	ModelName       string    `json:"model_name"`
	AcquisitionDate string    `json:"acquisition_date"`
	IPAddress       *string   `json:"ip_address"`
	NetworkType     *string   `json:"network_type"`
	WindowsVersion  *string   `json:"windows_version"`
	Status          string    `json:"status"`
	Notes           *string   `json:"notes"`
	UsageMonths     int       `json:"usage_months"`
	UsageYears      int       `json:"usage_years"`
	SecuritySeals   []SealDTO `json:"security_seals"`
	CreatedAt       string    `json:"created_at"`
	UpdatedAt       string    `json:"updated_at"`

	// Заполняется для списков и карточки: кто держит оборудование сейчас.
	CurrentUser    *UserDTO `json:"current_user,omitempty"`
	AssignmentDate string   `json:"assignment_date,omitempty"`
}

type ShortEquipmentDTO struct {
	ID          uint64 `json:"id"`
	AssetNumber string `json:"asset_number"`
	ModelName   string `json:"model_name"`
	Category    string `json:"category"`
}

package dto

// ImportRowPreviewDTO — одна разобранная строка файла перед импортом.
type ImportRowPreviewDTO struct {
	RowNum          int      `json:"row_num"`
	IsNew           bool     `json:"is_new"`
	AssetNumber     string   `json:"asset_number"`
	Category        string   `json:"category"`
	ModelName       string   `json:"model_name"`
	Spec            string   `json:"spec,omitempty"`
	AcquisitionDate string   `json:"acquisition_date,omitempty"`
	IPAddress       string   `json:"ip_address,omitempty"`
	NetworkType     string   `json:"network_type,omitempty"`
	WindowsVersion  string   `json:"windows_version,omitempty"`
	Notes           string   `json:"notes,omitempty"`
	UserName        string   `json:"user_name,omitempty"`
	Department      string   `json:"department,omitempty"`
	Location        string   `json:"location,omitempty"`
	Seals           []string `json:"seals"`
}

type ImportPreviewDTO struct {
	TotalRows   int                   `json:"total_rows"`
	ValidRows   int                   `json:"valid_rows"`
	NewCount    int                   `json:"new_count"`
	UpdateCount int                   `json:"update_count"`
	Errors      []string              `json:"errors"`
	ErrorCount  int                   `json:"error_count"`
	Preview     []ImportRowPreviewDTO `json:"preview"`
	Columns     []string              `json:"columns"`
}

// ImportResultDTO — итог выполненного импорта. Ошибки по строкам
// накапливаются, но не прерывают обработку остальных строк.
type ImportResultDTO struct {
	EquipmentCreated   int      `json:"equipment_created"`
	EquipmentUpdated   int      `json:"equipment_updated"`
	UsersCreated       int      `json:"users_created"`
	AssignmentsCreated int      `json:"assignments_created"`
	SealsCreated       int      `json:"seals_created"`
	Errors             []string `json:"errors"`
}

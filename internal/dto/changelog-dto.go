package dto

type ChangeLogDTO struct {
	ID         uint64  `json:"id"`
	EntityType string  `json:"entity_type"`
	EntityID   uint64  `json:"entity_id"`
	ChangeDate string  `json:"change_date"`
	ChangeType string  `json:"change_type"`
	FieldName  string  `json:"field_name"`
	OldValue   *string `json:"old_value"`
	NewValue   *string `json:"new_value"`
	ChangedBy  *string `json:"changed_by"`
	Reason     *string `json:"reason"`
}

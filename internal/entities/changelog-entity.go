package entities

import "time"

// ChangeLog — единственный журнал аудита. Строки только добавляются,
// обновление и удаление не предусмотрены нигде в коде.
type ChangeLog struct {
	ID         uint64    `json:"id" db:"id"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   uint64    `json:"entity_id" db:"entity_id"`
	ChangeDate time.Time `json:"change_date" db:"change_date"`
	ChangeType string    `json:"change_type" db:"change_type"`
	FieldName  string    `json:"field_name" db:"field_name"`
	OldValue   *string   `json:"old_value" db:"old_value"`
	NewValue   *string   `json:"new_value" db:"new_value"`
	ChangedBy  *string   `json:"changed_by" db:"changed_by"`
	Reason     *string   `json:"reason" db:"reason"`
}

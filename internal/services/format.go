package services

import (
	"time"

	"equipment-system/internal/dto"
	"equipment-system/internal/entities"
)

const dateLayout = "2006-01-02"

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatDatePtr(t *time.Time) *string {
	if t == nil || t.IsZero() {
		return nil
	}
	s := t.Format(dateLayout)
	return &s
}

func formatDateTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(time.RFC3339)
}

func formatDateTimePtr(t *time.Time) string {
	if t == nil {
		return ""
	}
	return formatDateTime(*t)
}

func mapUserToDTO(u *entities.User) *dto.UserDTO {
	if u == nil {
		return nil
	}
	return &dto.UserDTO{
		ID:         u.ID,
		Name:       u.Name,
		Department: u.Department,
		Location:   u.Location,
		Phone:      u.Phone,
		Email:      u.Email,
		CreatedAt:  formatDateTimePtr(u.CreatedAt),
		UpdatedAt:  formatDateTimePtr(u.UpdatedAt),
	}
}

func mapSealToDTO(s *entities.SecuritySeal) dto.SealDTO {
	return dto.SealDTO{
		ID:               s.ID,
		SealNumber:       s.SealNumber,
		EquipmentID:      s.EquipmentID,
		AttachedDate:     formatDate(s.AttachedDate),
		AttachedLocation: s.AttachedLocation,
		Status:           s.Status,
		InspectionDate:   formatDatePtr(s.InspectionDate),
		Notes:            s.Notes,
		CreatedAt:        formatDateTime(s.CreatedAt),
	}
}

func mapChangeLogToDTO(c *entities.ChangeLog) dto.ChangeLogDTO {
	return dto.ChangeLogDTO{
		ID:         c.ID,
		EntityType: c.EntityType,
		EntityID:   c.EntityID,
		ChangeDate: formatDateTime(c.ChangeDate),
		ChangeType: c.ChangeType,
		FieldName:  c.FieldName,
		OldValue:   c.OldValue,
		NewValue:   c.NewValue,
		ChangedBy:  c.ChangedBy,
		Reason:     c.Reason,
	}
}

func mapMaintenanceToDTO(m *entities.MaintenanceLog) dto.MaintenanceDTO {
	out := dto.MaintenanceDTO{
		ID:              m.ID,
		EquipmentID:     m.EquipmentID,
		MaintenanceDate: formatDate(m.MaintenanceDate),
		MaintenanceType: m.MaintenanceType,
		Description:     m.Description,
		Technician:      m.Technician,
		Status:          m.Status,
		Notes:           m.Notes,
		CreatedAt:       formatDateTime(m.CreatedAt),
		CreatedBy:       m.CreatedBy,
	}
	if m.Cost != nil {
		out.Cost.SetValid(*m.Cost)
	}
	return out
}

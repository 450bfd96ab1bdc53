package dto

type StatisticsDTO struct {
	TotalEquipment    uint64            `json:"total_equipment"`
	TotalUsers        uint64            `json:"total_users"`
	TotalSeals        uint64            `json:"total_seals"`
	ActiveAssignments uint64            `json:"active_assignments"`
	ByStatus          map[string]uint64 `json:"by_status"`
	ByCategory        map[string]uint64 `json:"by_category"`
	ByDepartment      map[string]uint64 `json:"by_department"`
	ByLocation        map[string]uint64 `json:"by_location"`
	BySealStatus      map[string]uint64 `json:"by_seal_status"`
}

package constants

// --- СТАТУСЫ ОБОРУДОВАНИЯ (совпадают с кодами в БД) ---
const (
	EquipmentAvailable   = "available"
	EquipmentInUse       = "in_use"
	EquipmentUnderRepair = "under_repair"
	EquipmentRetired     = "retired"
)

// --- СТАТУСЫ ВЫДАЧИ ---
const (
	AssignmentActive   = "active"
	AssignmentReturned = "returned"
)

// --- СТАТУСЫ ПЛОМБ ---
const (
	SealNormal = "normal"
)

// --- СТАТУСЫ ОБСЛУЖИВАНИЯ ---
const (
	MaintenanceInProgress = "in_progress"
	MaintenanceCompleted  = "completed"
)

// Тип обслуживания, переводящий оборудование в ремонт.
const MaintenanceTypeRepair = "repair"

// --- ТИПЫ СУЩНОСТЕЙ ДЛЯ ЖУРНАЛА ИЗМЕНЕНИЙ ---
const (
	EntityEquipment  = "equipment"
	EntityUser       = "user"
	EntityAssignment = "assignment"
	EntitySeal       = "security_seal"
)

// --- ТИПЫ ИЗМЕНЕНИЙ В ЖУРНАЛЕ ---
const (
	ChangeCreate = "create"
	ChangeUpdate = "update"
	ChangeDelete = "delete"
	ChangeAssign = "assign"
	ChangeReturn = "return"
	ChangeImport = "excel import"
)

var equipmentStatuses = []string{
	EquipmentAvailable,
	EquipmentInUse,
	EquipmentUnderRepair,
	EquipmentRetired,
}

func IsValidEquipmentStatus(code string) bool {
	for _, s := range equipmentStatuses {
		if s == code {
			return true
		}
	}
	return false
}

package domain

import "time"

// BackupBundle is a full serializable snapshot of system state. Exporting and
// re-importing a bundle must reproduce an equivalent state, including every
// expense's history and the full audit log.
type BackupBundle struct {
	TakenAt    time.Time      `json:"takenAt"`
	Users      []User         `json:"users"`
	Categories []Category     `json:"categories"`
	Projects   []Project      `json:"projects"`
	Sites      []Site         `json:"sites"`
	Expenses   []Expense      `json:"expenses"`
	AuditLog   []AuditLogItem `json:"auditLog"`
}

package models

import "time"

// AuditLogItem represents a row in the audit_log table. Rows are append-only.
type AuditLogItem struct {
	AuditID   string    `json:"auditID"` // Primary Key (UUID)
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actorID"`
	ActorName string    `json:"actorName"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

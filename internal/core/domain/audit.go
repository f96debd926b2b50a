package domain

import "time"

// AuditLogItem records an administrative or bulk action system-wide. It is
// separate from per-expense history: history narrates one expense's lifecycle,
// the audit log narrates what operators did. Entries are append-only and are
// never mutated or deleted.
type AuditLogItem struct {
	AuditID   string    `json:"auditID"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actorId"`
	ActorName string    `json:"actorName"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

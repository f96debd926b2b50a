package dto

import (
	"time"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
)

// AuditLogItemResponse defines the data returned for one audit entry.
type AuditLogItemResponse struct {
	AuditID   string    `json:"auditID"`
	Timestamp time.Time `json:"timestamp"`
	ActorID   string    `json:"actorId"`
	ActorName string    `json:"actorName"`
	Action    string    `json:"action"`
	Details   string    `json:"details"`
}

// ListAuditLogResponse wraps an audit log listing, newest first.
type ListAuditLogResponse struct {
	Items []AuditLogItemResponse `json:"items"`
}

// ToAuditLogItemResponse converts a domain.AuditLogItem to its response DTO.
func ToAuditLogItemResponse(a *domain.AuditLogItem) AuditLogItemResponse {
	return AuditLogItemResponse{
		AuditID:   a.AuditID,
		Timestamp: a.Timestamp,
		ActorID:   a.ActorID,
		ActorName: a.ActorName,
		Action:    a.Action,
		Details:   a.Details,
	}
}

// ToAuditLogItemResponses converts a slice of domain audit entries.
func ToAuditLogItemResponses(items []domain.AuditLogItem) []AuditLogItemResponse {
	responses := make([]AuditLogItemResponse, len(items))
	for i := range items {
		responses[i] = ToAuditLogItemResponse(&items[i])
	}
	return responses
}

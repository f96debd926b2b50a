package domain

import "time"

// Role identifies which part of the approval pipeline a user acts in.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleRequestor Role = "requestor"
	RoleVerifier  Role = "verifier"
	RoleApprover  Role = "approver"
)

// IsValid reports whether r is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleAdmin, RoleRequestor, RoleVerifier, RoleApprover:
		return true
	}
	return false
}

// User represents an application user. Identity provisioning is external;
// the core only needs id, display name and the workflow role.
type User struct {
	UserID       string `json:"userID"` // Primary Key (e.g., UUID)
	Username     string `json:"username"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	PasswordHash string `json:"-"`
	Role         Role   `json:"role"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}

// Actor is the identity attached to every workflow mutation. Names are
// captured into history/audit records at write time, not re-derived later.
type Actor struct {
	UserID string
	Name   string
	Role   Role
}

// SystemActor attributes automated transitions such as auto-approval.
var SystemActor = Actor{UserID: "system", Name: "System"}

// AsActor converts a user into the actor identity used for history and audit records.
func (u *User) AsActor() Actor {
	return Actor{UserID: u.UserID, Name: u.Name, Role: u.Role}
}

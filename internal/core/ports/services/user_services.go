package services

import (
	"context"

	"github.com/expensehub/expense_approval_app/internal/core/domain"
	"github.com/expensehub/expense_approval_app/internal/dto"
)

// UserReaderSvc defines read operations for user data
type UserReaderSvc interface {
	// GetUserByID retrieves a user by ID.
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)

	// GetUserByUsername retrieves a user by username.
	GetUserByUsername(ctx context.Context, username string) (*domain.User, error)

	// ListUsers retrieves all users.
	ListUsers(ctx context.Context) ([]domain.User, error)

	// ListUsersByRole retrieves all users holding a role. The workflow uses
	// this to fan notifications out to verifiers and approvers.
	ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error)
}

// UserWriterSvc defines write operations for user data
type UserWriterSvc interface {
	// CreateUser creates a new user. Admin-gated except for self-registration.
	CreateUser(ctx context.Context, req dto.CreateUserRequest, actor domain.Actor) (*domain.User, error)

	// UpdateUser updates an existing user.
	UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, actor domain.Actor) (*domain.User, error)

	// CreateOAuthUser finds the user with the given verified email or creates a
	// requestor account for them. Used by the Google OAuth login flow.
	CreateOAuthUser(ctx context.Context, name, email string) (*domain.User, error)
}

// UserLifecycleSvc defines operations for managing user lifecycle
type UserLifecycleSvc interface {
	// DeleteUser marks a user as deleted (soft delete).
	DeleteUser(ctx context.Context, userID string, actor domain.Actor) error
}

// UserAuthSvc defines operations for user authentication
type UserAuthSvc interface {
	// AuthenticateUser authenticates a user with username and password.
	AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error)
}

// UserSvcFacade combines all user-related service interfaces
type UserSvcFacade interface {
	UserReaderSvc
	UserWriterSvc
	UserLifecycleSvc
	UserAuthSvc
}

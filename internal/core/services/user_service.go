package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/expensehub/expense_approval_app/internal/apperrors"
	"github.com/expensehub/expense_approval_app/internal/core/domain"
	portsrepo "github.com/expensehub/expense_approval_app/internal/core/ports/repositories"
	portssvc "github.com/expensehub/expense_approval_app/internal/core/ports/services"
	"github.com/expensehub/expense_approval_app/internal/dto"
	"github.com/expensehub/expense_approval_app/internal/middleware"
	"github.com/expensehub/expense_approval_app/internal/utils"
)

type userService struct {
	userRepo portsrepo.UserRepositoryFacade
	auditSvc portssvc.AuditSvcFacade
}

// NewUserService creates the user service facade.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, auditSvc portssvc.AuditSvcFacade) portssvc.UserSvcFacade {
	return &userService{userRepo: userRepo, auditSvc: auditSvc}
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %q: %w", username, err)
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]domain.User, error) {
	users, err := s.userRepo.FindUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return users, nil
}

func (s *userService) ListUsersByRole(ctx context.Context, role domain.Role) ([]domain.User, error) {
	users, err := s.userRepo.FindUsersByRole(ctx, role)
	if err != nil {
		return nil, fmt.Errorf("failed to list users by role %s: %w", role, err)
	}
	return users, nil
}

// CreateUser provisions an account. Administrators may create any role;
// self-registration (SystemActor) is restricted to the requestor role.
func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest, actor domain.Actor) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	role := domain.Role(req.Role)
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, req.Role)
	}
	if actor.Role != domain.RoleAdmin {
		if actor != domain.SystemActor {
			return nil, fmt.Errorf("%w: %s role required", apperrors.ErrForbidden, domain.RoleAdmin)
		}
		if role != domain.RoleRequestor {
			return nil, fmt.Errorf("%w: self-registration is limited to the %s role", apperrors.ErrForbidden, domain.RoleRequestor)
		}
	}

	if _, err := s.userRepo.FindUserByUsername(ctx, req.Username); err == nil {
		return nil, fmt.Errorf("%w: username %q is taken", apperrors.ErrDuplicate, req.Username)
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to check username %q: %w", req.Username, err)
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	user := domain.User{
		UserID:       uuid.NewString(),
		Username:     req.Username,
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         role,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     actor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: actor.UserID,
		},
	}
	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	if actor.Role == domain.RoleAdmin {
		if err := s.auditSvc.Record(ctx, actor, "Created User", fmt.Sprintf("User %q with role %s", user.Username, user.Role)); err != nil {
			return nil, err
		}
	}

	logger.Info("User created", slog.String("user_id", user.UserID), slog.String("role", string(user.Role)))
	return &user, nil
}

func (s *userService) UpdateUser(ctx context.Context, userID string, req dto.UpdateUserRequest, actor domain.Actor) (*domain.User, error) {
	// Users may edit their own profile; role changes stay admin-only.
	if actor.Role != domain.RoleAdmin && actor.UserID != userID {
		return nil, fmt.Errorf("%w: cannot modify another user", apperrors.ErrForbidden)
	}
	if req.Role != nil && actor.Role != domain.RoleAdmin {
		return nil, fmt.Errorf("%w: role changes require the %s role", apperrors.ErrForbidden, domain.RoleAdmin)
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to find user %s: %w", userID, err)
	}

	if req.Name != nil {
		user.Name = *req.Name
	}
	if req.Email != nil {
		user.Email = *req.Email
	}
	if req.Role != nil {
		role := domain.Role(*req.Role)
		if !role.IsValid() {
			return nil, fmt.Errorf("%w: unknown role %q", apperrors.ErrValidation, *req.Role)
		}
		user.Role = role
	}
	user.LastUpdatedAt = time.Now().UTC()
	user.LastUpdatedBy = actor.UserID

	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	if actor.Role == domain.RoleAdmin && actor.UserID != userID {
		if err := s.auditSvc.Record(ctx, actor, "Updated User", fmt.Sprintf("User %q", user.Username)); err != nil {
			return nil, err
		}
	}
	return user, nil
}

func (s *userService) DeleteUser(ctx context.Context, userID string, actor domain.Actor) error {
	if err := requireAdmin(actor); err != nil {
		return err
	}
	if actor.UserID == userID {
		return fmt.Errorf("%w: cannot delete own account", apperrors.ErrValidation)
	}
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to find user %s: %w", userID, err)
	}
	if err := s.userRepo.MarkUserDeleted(ctx, userID, time.Now().UTC(), actor.UserID); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return s.auditSvc.Record(ctx, actor, "Deleted User", fmt.Sprintf("User %q", user.Username))
}

// CreateOAuthUser finds the account holding a verified email or provisions a
// requestor account for it. The generated password is never shared, so OAuth
// accounts can only log in through the OAuth flow until an admin resets them.
func (s *userService) CreateOAuthUser(ctx context.Context, name, email string) (*domain.User, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	user, err := s.userRepo.FindUserByEmail(ctx, email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user by email: %w", err)
	}

	randomPassword, err := utils.GenerateSecureRandomString(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate password: %w", err)
	}
	hash, err := utils.HashPassword(randomPassword)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	created := domain.User{
		UserID:       uuid.NewString(),
		Username:     email,
		Name:         name,
		Email:        email,
		PasswordHash: hash,
		Role:         domain.RoleRequestor,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     domain.SystemActor.UserID,
			LastUpdatedAt: now,
			LastUpdatedBy: domain.SystemActor.UserID,
		},
	}
	if err := s.userRepo.SaveUser(ctx, created); err != nil {
		return nil, fmt.Errorf("failed to save user: %w", err)
	}

	logger.Info("OAuth user created", slog.String("user_id", created.UserID))
	return &created, nil
}

// AuthenticateUser checks credentials. Unknown usernames and wrong passwords
// are indistinguishable to the caller.
func (s *userService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("failed to find user %q: %w", username, err)
	}
	if !utils.CheckPasswordHash(password, user.PasswordHash) {
		return nil, fmt.Errorf("%w: invalid credentials", apperrors.ErrUnauthorized)
	}
	return user, nil
}

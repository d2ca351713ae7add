package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"sahaya_api/internal/common"
	"sahaya_api/internal/domain/model"
	"sahaya_api/internal/domain/repository"
	"sahaya_api/internal/platform/metrics"
)

const (
	msgUserNotFound = "User not found"
	msgNotOwner     = "You are not authorized to update this user"
	msgEmailTaken   = "Email is already in use"
)

type UserService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	events   EventPublisher
	metrics  *metrics.Auth
	logger   *slog.Logger
	now      func() time.Time
}

func NewUserService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	events EventPublisher,
	m *metrics.Auth,
	logger *slog.Logger,
) *UserService {
	return &UserService{
		userRepo: userRepo,
		hasher:   hasher,
		events:   events,
		metrics:  m,
		logger:   logger.With(slog.String("service", "user")),
		now:      time.Now,
	}
}

// UpdateUserRequest carries the fields a user may change on their own record.
// Nil means "leave unchanged".
type UpdateUserRequest struct {
	Username *string `json:"username,omitempty"`
	Email    *string `json:"email,omitempty"`
	Password *string `json:"password,omitempty"`
}

type UpdateRoleRequest struct {
	UserID  string `json:"userId"`
	NewRole string `json:"newRole"`
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	user, err := s.userRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.NewError(common.ErrNotFound, msgUserNotFound)
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// UpdateUser applies the supplied fields of req to targetID. Only the owner
// may update. Columns not in req are never written.
func (s *UserService) UpdateUser(ctx context.Context, identity model.Identity, targetID string, req UpdateUserRequest) (*model.User, error) {
	if identity.UserID == "" || identity.UserID != targetID {
		return nil, common.NewError(common.ErrUnauthorized, msgNotOwner)
	}

	if req.Password != nil {
		if err := validateField(*req.Password, passwordRules); err != nil {
			return nil, err
		}
	}
	if req.Username != nil {
		if err := validateField(*req.Username, usernameRules); err != nil {
			return nil, err
		}
	}
	if req.Email != nil {
		if err := validateField(*req.Email, emailRules); err != nil {
			return nil, err
		}
	}

	user, err := s.GetUserByID(ctx, targetID)
	if err != nil {
		return nil, err
	}

	update := repository.ProfileUpdate{Username: req.Username}
	if req.Email != nil && *req.Email != user.Email {
		other, err := s.userRepo.FindByEmail(ctx, *req.Email)
		switch {
		case err == nil && other.ID != user.ID:
			return nil, common.NewError(common.ErrConflict, msgEmailTaken)
		case err != nil && !errors.Is(err, common.ErrNotFound):
			return nil, fmt.Errorf("failed to look up email: %w", err)
		}
		update.Email = req.Email
	}
	if req.Password != nil {
		hashedPassword, err := s.hasher.Hash(*req.Password)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		update.HashedPassword = &hashedPassword
	}

	user, err = s.userRepo.UpdateProfile(ctx, targetID, update)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			return nil, common.NewError(common.ErrNotFound, msgUserNotFound)
		case errors.Is(err, common.ErrConflict):
			return nil, common.NewError(common.ErrConflict, msgEmailTaken)
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}

	s.logger.InfoContext(ctx, "User updated", slog.String("user_id", user.ID))
	return user, nil
}

// UpdateUserRole sets the role of userID. Callers are expected to have passed
// the admin gate.
func (s *UserService) UpdateUserRole(ctx context.Context, userID, newRole string) error {
	user, err := s.GetUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if !model.IsValidRole(newRole) {
		return common.NewError(common.ErrBadRequest, msgInvalidRole)
	}

	if err := s.userRepo.UpdateRole(ctx, user.ID, newRole); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrNotFound, msgUserNotFound)
		}
		return fmt.Errorf("failed to update role: %w", err)
	}

	s.logger.InfoContext(ctx, "User role updated",
		slog.String("user_id", user.ID),
		slog.String("from", user.Role),
		slog.String("to", newRole),
	)
	s.metrics.ObserveRoleChange()
	publish(ctx, s.events, s.logger, model.Event{Type: model.EventUserRoleUpdated, UserID: user.ID, Role: newRole, At: s.now()})
	return nil
}

func (s *UserService) GetTotalUsers(ctx context.Context) (int64, error) {
	n, err := s.userRepo.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"sahaya_api/internal/common"
	"sahaya_api/internal/common/security"
	"sahaya_api/internal/domain/model"
	"sahaya_api/internal/domain/repository"
	"sahaya_api/internal/platform/metrics"

	"github.com/google/uuid"
)

const (
	msgInvalidCredentials = "Invalid email or password"
	msgUserExists         = "User already exists with this email"
	msgForgotUnknown      = "Invalid Credentials"
	msgResetInvalid       = "Invalid or expired token"

	resetMailSubject = "Reset Password"
)

type AuthOptions struct {
	// FrontendURL is the base of the reset link sent by mail.
	FrontendURL   string
	ResetTokenTTL time.Duration
	Metrics       *metrics.Auth
}

type AuthService struct {
	userRepo repository.UserRepository
	hasher   PasswordHasher
	tokens   TokenIssuer
	mailer   MailDispatcher
	events   EventPublisher
	logger   *slog.Logger
	opts     AuthOptions
	now      func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

func NewAuthService(
	userRepo repository.UserRepository,
	hasher PasswordHasher,
	tokens TokenIssuer,
	mailer MailDispatcher,
	events EventPublisher,
	logger *slog.Logger,
	opts AuthOptions,
) *AuthService {
	if opts.ResetTokenTTL <= 0 {
		opts.ResetTokenTTL = time.Hour
	}
	return &AuthService{
		userRepo: userRepo,
		hasher:   hasher,
		tokens:   tokens,
		mailer:   mailer,
		events:   events,
		logger:   logger.With(slog.String("service", "auth")),
		opts:     opts,
		now:      time.Now,
	}
}

type SignUpRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role,omitempty"`
}

type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResult is a freshly authenticated user and its session token.
type AuthResult struct {
	User  *model.User
	Token string
}

func (s *AuthService) SignUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	res, err := s.signUp(ctx, req)
	s.opts.Metrics.ObserveSignUp(err)
	return res, err
}

func (s *AuthService) signUp(ctx context.Context, req SignUpRequest) (*AuthResult, error) {
	if err := validateField(req.Username, usernameRules); err != nil {
		return nil, err
	}
	if err := validateField(req.Email, emailRules); err != nil {
		return nil, err
	}

	_, err := s.userRepo.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		return nil, common.NewError(common.ErrConflict, msgUserExists)
	case !errors.Is(err, common.ErrNotFound):
		return nil, fmt.Errorf("failed to look up email: %w", err)
	}

	if err := validateField(req.Password, passwordRules); err != nil {
		return nil, err
	}

	role := req.Role
	if role == "" {
		role = model.RoleUser
	}
	if !model.IsValidRole(role) {
		return nil, common.NewError(common.ErrBadRequest, msgInvalidRole)
	}

	hashedPassword, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:             uuid.NewString(),
		Username:       req.Username,
		Email:          req.Email,
		HashedPassword: hashedPassword,
		Role:           role,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		// Lost a race with a concurrent sign-up for the same email.
		if errors.Is(err, common.ErrConflict) {
			return nil, common.NewError(common.ErrConflict, msgUserExists)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}

	s.logger.InfoContext(ctx, "User registered", slog.String("user_id", user.ID), slog.String("role", user.Role))
	publish(ctx, s.events, s.logger, model.Event{Type: model.EventUserSignedUp, UserID: user.ID, Role: user.Role, At: s.now()})
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) SignIn(ctx context.Context, req SignInRequest) (*AuthResult, error) {
	res, err := s.signIn(ctx, req)
	s.opts.Metrics.ObserveSignIn(err)
	return res, err
}

func (s *AuthService) signIn(ctx context.Context, req SignInRequest) (*AuthResult, error) {
	user, err := s.userRepo.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			// Burn the same bcrypt time as a real comparison.
			s.hasher.Compare(s.dummyPasswordHash(), req.Password)
			return nil, common.NewError(common.ErrUnauthorized, msgInvalidCredentials)
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !s.hasher.Compare(user.HashedPassword, req.Password) {
		return nil, common.NewError(common.ErrUnauthorized, msgInvalidCredentials)
	}

	token, err := s.tokens.Issue(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to generate token: %w", err)
	}
	return &AuthResult{User: user, Token: token}, nil
}

func (s *AuthService) dummyPasswordHash() string {
	s.dummyOnce.Do(func() {
		h, err := s.hasher.Hash(uuid.NewString())
		if err != nil {
			s.logger.Error("Failed to prepare dummy password hash", slog.Any("error", err))
			return
		}
		s.dummyHash = h
	})
	return s.dummyHash
}

// ForgotPassword stores a fresh reset token for email and mails the link.
// The user's email address is returned for the confirmation message.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) (string, error) {
	to, err := s.forgotPassword(ctx, email)
	s.opts.Metrics.ObservePasswordReset("request", err)
	return to, err
}

func (s *AuthService) forgotPassword(ctx context.Context, email string) (string, error) {
	user, err := s.userRepo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return "", common.NewError(common.ErrUnauthorized, msgForgotUnknown)
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	token, digest, err := security.NewResetToken()
	if err != nil {
		return "", fmt.Errorf("failed to generate reset token: %w", err)
	}
	if err := s.userRepo.SetResetToken(ctx, user.ID, digest, s.now().Add(s.opts.ResetTokenTTL)); err != nil {
		return "", fmt.Errorf("failed to store reset token: %w", err)
	}

	url := fmt.Sprintf("%s/resetpassword/%s", s.opts.FrontendURL, token)
	text := fmt.Sprintf("Click on this link to reset your password: %s. If you did not request this, please ignore.", url)
	if err := s.mailer.Send(ctx, user.Email, resetMailSubject, text); err != nil {
		return "", fmt.Errorf("failed to send reset mail: %w", err)
	}

	s.logger.InfoContext(ctx, "Password reset requested", slog.String("user_id", user.ID))
	return user.Email, nil
}

func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	err := s.resetPassword(ctx, token, newPassword)
	s.opts.Metrics.ObservePasswordReset("complete", err)
	return err
}

func (s *AuthService) resetPassword(ctx context.Context, token, newPassword string) error {
	digest := security.HashResetToken(token)
	if _, err := s.userRepo.FindByResetToken(ctx, digest, s.now()); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrInvalidOrExpired, msgResetInvalid)
		}
		return fmt.Errorf("failed to find reset token: %w", err)
	}

	if err := validateField(newPassword, passwordRules); err != nil {
		return err
	}
	hashedPassword, err := s.hasher.Hash(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	// A concurrent reset may have consumed the token since the lookup.
	userID, err := s.userRepo.ConsumeResetToken(ctx, digest, s.now(), hashedPassword)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return common.NewError(common.ErrInvalidOrExpired, msgResetInvalid)
		}
		return fmt.Errorf("failed to update password: %w", err)
	}

	s.logger.InfoContext(ctx, "Password reset completed", slog.String("user_id", userID))
	publish(ctx, s.events, s.logger, model.Event{Type: model.EventUserPasswordReset, UserID: userID, At: s.now()})
	return nil
}

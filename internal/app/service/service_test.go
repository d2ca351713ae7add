package service

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"sahaya_api/internal/common/security"
	"sahaya_api/internal/domain/model"
	"sahaya_api/internal/domain/repository/repotest"
	"sahaya_api/internal/platform/metrics"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/mock"
	"golang.org/x/crypto/bcrypt"
)

type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event model.Event) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

// hookedRepo runs a one-shot callback right after a read returns, standing
// in for a request that lands between another request's read and write.
type hookedRepo struct {
	*repotest.MemoryUserRepository
	afterFindByID         func()
	afterFindByResetToken func()
}

func (r *hookedRepo) FindByID(ctx context.Context, id string) (*model.User, error) {
	u, err := r.MemoryUserRepository.FindByID(ctx, id)
	if hook := r.afterFindByID; hook != nil {
		r.afterFindByID = nil
		hook()
	}
	return u, err
}

func (r *hookedRepo) FindByResetToken(ctx context.Context, digest string, now time.Time) (*model.User, error) {
	u, err := r.MemoryUserRepository.FindByResetToken(ctx, digest, now)
	if hook := r.afterFindByResetToken; hook != nil {
		r.afterFindByResetToken = nil
		hook()
	}
	return u, err
}

type fixture struct {
	repo    *repotest.MemoryUserRepository
	hooks   *hookedRepo
	mailer  *MockMailer
	events  *MockPublisher
	metrics *metrics.Auth
	auth    *AuthService
	users   *UserService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	hasher := security.NewBcryptHasher(bcrypt.MinCost)
	m := metrics.NewAuth(prometheus.NewRegistry())

	f := &fixture{
		repo:    repotest.NewMemoryUserRepository(),
		mailer:  new(MockMailer),
		events:  new(MockPublisher),
		metrics: m,
	}
	f.hooks = &hookedRepo{MemoryUserRepository: f.repo}
	f.auth = NewAuthService(f.hooks, hasher, security.NewTokenIssuer([]byte("test-secret"), time.Hour),
		f.mailer, f.events, logger, AuthOptions{
			FrontendURL:   "https://sahaya.test",
			ResetTokenTTL: time.Hour,
			Metrics:       m,
		})
	f.users = NewUserService(f.hooks, hasher, f.events, m, logger)
	return f
}

// signUp registers a user and fails the test on error.
func (f *fixture) signUp(t *testing.T, username, email, password, role string) *model.User {
	t.Helper()
	f.events.On("Publish", mock.Anything, mock.MatchedBy(func(e model.Event) bool {
		return e.Type == model.EventUserSignedUp
	})).Return(nil).Once()
	res, err := f.auth.SignUp(context.Background(), SignUpRequest{
		Username: username, Email: email, Password: password, Role: role,
	})
	if err != nil {
		t.Fatalf("sign up %s: %v", email, err)
	}
	return res.User
}

func strPtr(s string) *string { return &s }

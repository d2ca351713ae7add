// Package repotest provides an in-memory UserRepository for tests.
package repotest

import (
	"context"
	"sync"
	"time"

	"sahaya_api/internal/common"
	"sahaya_api/internal/domain/model"
	"sahaya_api/internal/domain/repository"
)

type MemoryUserRepository struct {
	mu    sync.Mutex
	users map[string]model.User
}

var _ repository.UserRepository = (*MemoryUserRepository)(nil)

func NewMemoryUserRepository(users ...*model.User) *MemoryUserRepository {
	r := &MemoryUserRepository{users: make(map[string]model.User)}
	for _, u := range users {
		r.users[u.ID] = *u
	}
	return r
}

func (r *MemoryUserRepository) Create(_ context.Context, user *model.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emailTakenLocked(user.Email, user.ID) {
		return common.ErrConflict
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.users[user.ID] = *user
	return nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &u, nil
}

func (r *MemoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryUserRepository) FindByResetToken(_ context.Context, digest string, now time.Time) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == digest &&
			u.ResetExpiresAt != nil && u.ResetExpiresAt.After(now) {
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *MemoryUserRepository) UpdateProfile(_ context.Context, id string, p repository.ProfileUpdate) (*model.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	if p.Email != nil && r.emailTakenLocked(*p.Email, id) {
		return nil, common.ErrConflict
	}
	if p.Username != nil {
		u.Username = *p.Username
	}
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.HashedPassword != nil {
		u.HashedPassword = *p.HashedPassword
	}
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return &u, nil
}

func (r *MemoryUserRepository) UpdateRole(_ context.Context, id, role string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.Role = role
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) SetResetToken(_ context.Context, id, digest string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return common.ErrNotFound
	}
	u.SetResetToken(digest, expiresAt)
	u.UpdatedAt = time.Now()
	r.users[id] = u
	return nil
}

func (r *MemoryUserRepository) ConsumeResetToken(_ context.Context, digest string, now time.Time, hashedPassword string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, u := range r.users {
		if u.ResetTokenHash != nil && *u.ResetTokenHash == digest &&
			u.ResetExpiresAt != nil && u.ResetExpiresAt.After(now) {
			u.HashedPassword = hashedPassword
			u.ClearResetToken()
			u.UpdatedAt = time.Now()
			r.users[id] = u
			return id, nil
		}
	}
	return "", common.ErrNotFound
}

func (r *MemoryUserRepository) Count(context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.users)), nil
}

// Get returns a copy of the stored record, or nil.
func (r *MemoryUserRepository) Get(id string) *model.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil
	}
	return &u
}

func (r *MemoryUserRepository) emailTakenLocked(email, exceptID string) bool {
	for id, u := range r.users {
		if id != exceptID && u.Email == email {
			return true
		}
	}
	return false
}

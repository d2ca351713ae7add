package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"sahaya_api/internal/common"
	"sahaya_api/internal/domain/model"

	"github.com/google/uuid"
)

// UserRepository is the Credential Store. Every write touches only the
// columns its operation owns, in a single statement.
type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// FindByResetToken returns the user holding digest whose expiry is
	// strictly after now.
	FindByResetToken(ctx context.Context, digest string, now time.Time) (*model.User, error)
	// UpdateProfile sets the non-nil fields of p and returns the stored record.
	UpdateProfile(ctx context.Context, id string, p ProfileUpdate) (*model.User, error)
	UpdateRole(ctx context.Context, id, role string) error
	SetResetToken(ctx context.Context, id, digest string, expiresAt time.Time) error
	// ConsumeResetToken replaces the password of the user holding an
	// unexpired digest and clears the token pair. At most one caller wins
	// a given token; the others get ErrNotFound.
	ConsumeResetToken(ctx context.Context, digest string, now time.Time, hashedPassword string) (string, error)
	Count(ctx context.Context) (int64, error)
}

// ProfileUpdate carries self-service changes. Nil leaves a column unchanged.
type ProfileUpdate struct {
	Username       *string
	Email          *string
	HashedPassword *string
}

type pgUserRepository struct {
	db *sql.DB
}

func NewPgUserRepository(db *sql.DB) UserRepository {
	return &pgUserRepository{db: db}
}

const userColumns = `id, username, email, hashed_password, role, reset_token_hash, reset_expires_at,
	profession, experience, city, age, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(
		&user.ID, &user.Username, &user.Email, &user.HashedPassword, &user.Role,
		&user.ResetTokenHash, &user.ResetExpiresAt,
		&user.Profession, &user.Experience, &user.City, &user.Age,
		&user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, err
	}
	return user, nil
}

func (r *pgUserRepository) Create(ctx context.Context, user *model.User) error {
	query := `INSERT INTO users (id, username, email, hashed_password, role, profession, experience, city, age)
	          VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	          RETURNING created_at, updated_at`
	err := r.db.QueryRowContext(ctx, query,
		user.ID, user.Username, user.Email, user.HashedPassword, user.Role,
		user.Profession, user.Experience, user.City, user.Age,
	).Scan(&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if common.IsUniqueViolation(err) {
			return fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return fmt.Errorf("pgUserRepository.Create: %w", err)
	}
	return nil
}

func (r *pgUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	// Ids that are not UUIDs cannot exist; asking Postgres would be a type error.
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrNotFound
	}
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByID: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, email))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByEmail: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) FindByResetToken(ctx context.Context, digest string, now time.Time) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users
	          WHERE reset_token_hash = $1 AND reset_expires_at > $2`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, digest, now))
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return nil, fmt.Errorf("pgUserRepository.FindByResetToken: %w", err)
	}
	return user, err
}

func (r *pgUserRepository) UpdateProfile(ctx context.Context, id string, p ProfileUpdate) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, common.ErrNotFound
	}
	query := `UPDATE users SET
	              username = COALESCE($2, username),
	              email = COALESCE($3, email),
	              hashed_password = COALESCE($4, hashed_password),
	              updated_at = NOW()
	          WHERE id = $1
	          RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, p.Username, p.Email, p.HashedPassword))
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, err
		}
		if common.IsUniqueViolation(err) {
			return nil, fmt.Errorf("user with given email already exists: %w", common.ErrConflict)
		}
		return nil, fmt.Errorf("pgUserRepository.UpdateProfile: %w", err)
	}
	return user, nil
}

func (r *pgUserRepository) UpdateRole(ctx context.Context, id, role string) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET role = $2, updated_at = NOW() WHERE id = $1`, id, role)
	if err != nil {
		return fmt.Errorf("pgUserRepository.UpdateRole: %w", err)
	}
	return requireOneRow(res, "pgUserRepository.UpdateRole")
}

func (r *pgUserRepository) SetResetToken(ctx context.Context, id, digest string, expiresAt time.Time) error {
	if _, err := uuid.Parse(id); err != nil {
		return common.ErrNotFound
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_token_hash = $2, reset_expires_at = $3, updated_at = NOW() WHERE id = $1`,
		id, digest, expiresAt)
	if err != nil {
		return fmt.Errorf("pgUserRepository.SetResetToken: %w", err)
	}
	return requireOneRow(res, "pgUserRepository.SetResetToken")
}

func (r *pgUserRepository) ConsumeResetToken(ctx context.Context, digest string, now time.Time, hashedPassword string) (string, error) {
	query := `UPDATE users SET
	              hashed_password = $3,
	              reset_token_hash = NULL,
	              reset_expires_at = NULL,
	              updated_at = NOW()
	          WHERE reset_token_hash = $1 AND reset_expires_at > $2
	          RETURNING id`
	var id string
	if err := r.db.QueryRowContext(ctx, query, digest, now, hashedPassword).Scan(&id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrNotFound
		}
		return "", fmt.Errorf("pgUserRepository.ConsumeResetToken: %w", err)
	}
	return id, nil
}

func requireOneRow(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *pgUserRepository) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("pgUserRepository.Count: %w", err)
	}
	return n, nil
}

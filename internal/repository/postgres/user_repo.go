package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/habalhub/habal-hub/internal/domain/user"
)

// UserRepository implements user.Repository on PostgreSQL
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, u *user.User, passwordHash string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, phone, role, avatar_url, password_hash, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, NOW(), NOW())
	`, u.ID, u.Name, u.Email, u.Phone, string(u.Role), u.AvatarURL, passwordHash)

	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
		return user.ErrEmailTaken
	}
	return err
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, role, avatar_url, created_at, updated_at
		FROM users
		WHERE id = $1
	`, id)

	u, err := scanUser(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, user.ErrUserNotFound
	}
	return u, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*user.User, string, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, role, avatar_url, created_at, updated_at, password_hash
		FROM users
		WHERE email = $1
	`, email)

	var u user.User
	var avatar sql.NullString
	var hash string
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &avatar, &u.CreatedAt, &u.UpdatedAt, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, "", user.ErrUserNotFound
	}
	if err != nil {
		return nil, "", err
	}
	if avatar.Valid {
		u.AvatarURL = &avatar.String
	}
	return &u, hash, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, upd user.ProfileUpdate) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE users
		SET name = $1, phone = $2, avatar_url = $3, updated_at = NOW()
		WHERE id = $4
	`, upd.Name, upd.Phone, upd.AvatarURL, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) List(ctx context.Context, role *user.Role) ([]*user.User, error) {
	query := `
		SELECT id, name, email, phone, role, avatar_url, created_at, updated_at
		FROM users
	`
	args := []interface{}{}
	if role != nil {
		query += " WHERE role = $1"
		args = append(args, string(*role))
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*user.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*user.User, error) {
	var u user.User
	var avatar sql.NullString
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Role, &avatar, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	if avatar.Valid {
		u.AvatarURL = &avatar.String
	}
	return &u, nil
}

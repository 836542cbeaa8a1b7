package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-discussion-board/internal/model"
)

// Postgres error codes the repositories translate into domain errors.
const (
	uniqueViolationCode     = "23505"
	foreignKeyViolationCode = "23503"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, avatar_url, created_at FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Username, &u.AvatarURL, &u.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by id: %w", err)
	}
	return u, nil
}

// FindByUsername matches exactly as stored; usernames are case-sensitive.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`SELECT id, username, avatar_url, created_at FROM users WHERE username = $1`, username).
		Scan(&u.ID, &u.Username, &u.AvatarURL, &u.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("find user by username: %w", err)
	}
	return u, nil
}

// Create inserts a new user row. A unique-constraint violation comes back as
// model.ErrUserAlreadyExists so the auth service can fall back to login when
// a concurrent registration wins the race.
func (r *UserRepository) Create(ctx context.Context, username string) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username)
		 VALUES ($1)
		 RETURNING id, username, avatar_url, created_at`, username).
		Scan(&u.ID, &u.Username, &u.AvatarURL, &u.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return model.User{}, model.ErrUserAlreadyExists
	}
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *UserRepository) UpdateAvatar(ctx context.Context, id int64, avatarURL *string) (model.User, error) {
	var u model.User
	err := r.pool.QueryRow(ctx,
		`UPDATE users SET avatar_url = $2
		 WHERE id = $1
		 RETURNING id, username, avatar_url, created_at`, id, avatarURL).
		Scan(&u.ID, &u.Username, &u.AvatarURL, &u.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.User{}, model.ErrUserNotFound
	}
	if err != nil {
		return model.User{}, fmt.Errorf("update avatar: %w", err)
	}
	return u, nil
}

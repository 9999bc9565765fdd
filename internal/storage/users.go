package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"ledger/internal/core"
)

const userColumns = `id, name, email, password_hash, image, email_verified, verify_token, verify_token_expiry, created_at`

func (r *SQLiteRepository) CreateUser(ctx context.Context, u core.User) (core.User, error) {
	u.Email = core.NormalizeEmail(u.Email)
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO users (`+userColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Name, u.Email, nullString(u.PasswordHash), u.Image, u.EmailVerified,
		nullString(u.VerifyToken), nullTime(u.VerifyTokenExpiry), unixNano(u.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.User{}, core.Conflict("Email already in use")
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}
	return u, nil
}

func (r *SQLiteRepository) GetUserByID(ctx context.Context, id string) (core.User, error) {
	return r.getUser(ctx, `id = ?`, id)
}

func (r *SQLiteRepository) GetUserByEmail(ctx context.Context, email string) (core.User, error) {
	return r.getUser(ctx, `email = ?`, core.NormalizeEmail(email))
}

func (r *SQLiteRepository) GetUserByVerifyToken(ctx context.Context, token string) (core.User, error) {
	if token == "" {
		return core.User{}, core.NotFound("user not found")
	}
	return r.getUser(ctx, `verify_token = ?`, token)
}

func (r *SQLiteRepository) UpdateUser(ctx context.Context, u core.User) error {
	u.Email = core.NormalizeEmail(u.Email)
	res, err := r.db.ExecContext(ctx,
		`UPDATE users
		    SET name = ?, email = ?, password_hash = ?, image = ?, email_verified = ?, verify_token = ?, verify_token_expiry = ?
		  WHERE id = ?`,
		u.Name, u.Email, nullString(u.PasswordHash), u.Image, u.EmailVerified,
		nullString(u.VerifyToken), nullTime(u.VerifyTokenExpiry), u.ID,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return core.Conflict("Email already in use")
		}
		return fmt.Errorf("update user: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return core.NotFound("user not found")
	}
	return nil
}

func (r *SQLiteRepository) getUser(ctx context.Context, where string, arg any) (core.User, error) {
	var (
		u           core.User
		hash, token sql.NullString
		expiry      sql.NullInt64
		created     int64
	)
	err := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE `+where, arg).
		Scan(&u.ID, &u.Name, &u.Email, &hash, &u.Image, &u.EmailVerified, &token, &expiry, &created)
	if errors.Is(err, sql.ErrNoRows) {
		return core.User{}, core.NotFound("user not found")
	}
	if err != nil {
		return core.User{}, fmt.Errorf("get user: %w", err)
	}
	u.PasswordHash = hash.String
	u.VerifyToken = token.String
	if expiry.Valid {
		t := fromUnixNano(expiry.Int64)
		u.VerifyTokenExpiry = &t
	}
	u.CreatedAt = fromUnixNano(created)
	return u, nil
}

func nullTime(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixNano(), Valid: true}
}

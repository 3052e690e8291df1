package identity

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// CreateUser inserts a new user. A unique violation on email maps to ErrEmailTaken.
func (r *PostgresRepository) CreateUser(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, email, password_hash, name, role, status, country, is_verified, phone_number, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		userID, user.Email, user.PasswordHash, user.Name, user.Role, user.Status,
		user.Country, user.IsVerified, user.PhoneNumber, user.CreatedAt.UTC())
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return ErrEmailTaken
	}
	return err
}

const userColumns = `id, email, password_hash, name, role, status, country, is_verified, last_login_at, phone_number, created_at`

// FindUserByID fetches a user by primary key.
func (r *PostgresRepository) FindUserByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrUserNotFound
	}
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID)
	return scanUser(row)
}

// FindUserByEmail fetches a user by email.
func (r *PostgresRepository) FindUserByEmail(ctx context.Context, email string) (User, error) {
	row := r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UpdateProfile stores the mutable profile fields.
func (r *PostgresRepository) UpdateProfile(ctx context.Context, id, name, phoneNumber string) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET name = $1, phone_number = $2 WHERE id = $3`, name, phoneNumber, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdatePassword replaces the stored password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	cmd, err := r.db.Exec(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// UpdateLastLogin records the most recent successful login.
func (r *PostgresRepository) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, at.UTC(), id)
	return err
}

// DeleteUser removes the user and, via FK cascade, its verification codes.
func (r *PostgresRepository) DeleteUser(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// CreateOTP inserts a verification code.
func (r *PostgresRepository) CreateOTP(ctx context.Context, otp OTP) error {
	_, err := r.db.Exec(ctx, `INSERT INTO otps (id, user_id, code, expires_at, is_used, created_at)
        VALUES ($1, $2, $3, $4, $5, $6)`,
		otp.ID, otp.UserID, otp.Code, otp.ExpiresAt.UTC(), otp.IsUsed, otp.CreatedAt.UTC())
	return err
}

// FindActiveOTP looks up an unused, unexpired code for the user.
func (r *PostgresRepository) FindActiveOTP(ctx context.Context, userID, code string, now time.Time) (OTP, error) {
	row := r.db.QueryRow(ctx, `SELECT id, user_id, code, expires_at, is_used, created_at
        FROM otps WHERE user_id = $1 AND code = $2 AND is_used = FALSE AND expires_at > $3
        ORDER BY created_at DESC LIMIT 1`, userID, code, now.UTC())
	var otp OTP
	var expiresAt, createdAt time.Time
	if err := row.Scan(&otp.ID, &otp.UserID, &otp.Code, &expiresAt, &otp.IsUsed, &createdAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return OTP{}, ErrOTPNotFound
		}
		return OTP{}, err
	}
	otp.ExpiresAt = expiresAt.UTC()
	otp.CreatedAt = createdAt.UTC()
	return otp, nil
}

// ConsumeOTP flips otp.is_used and user.is_verified inside one transaction.
func (r *PostgresRepository) ConsumeOTP(ctx context.Context, userID, otpID string) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin consume otp: %w", err)
	}
	defer tx.Rollback(ctx)

	cmd, err := tx.Exec(ctx, `UPDATE otps SET is_used = TRUE WHERE id = $1 AND is_used = FALSE`, otpID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrOTPNotFound
	}

	cmd, err = tx.Exec(ctx, `UPDATE users SET is_verified = TRUE WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return tx.Commit(ctx)
}

func scanUser(row pgx.Row) (User, error) {
	var (
		id        uuid.UUID
		lastLogin *time.Time
		createdAt time.Time
		user      User
	)
	err := row.Scan(&id, &user.Email, &user.PasswordHash, &user.Name, &user.Role,
		&user.Status, &user.Country, &user.IsVerified, &lastLogin, &user.PhoneNumber, &createdAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, ErrUserNotFound
		}
		return User{}, err
	}
	user.ID = id.String()
	user.LastLoginAt = lastLogin
	user.CreatedAt = createdAt.UTC()
	return user, nil
}

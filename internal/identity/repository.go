package identity

import (
	"context"
	"errors"
	"time"
)

// Repository errors callers can branch on.
var (
	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
	ErrOTPNotFound  = errors.New("otp not found")
)

// Repository persists users and their verification codes.
type Repository interface {
	CreateUser(ctx context.Context, user User) error
	FindUserByID(ctx context.Context, id string) (User, error)
	FindUserByEmail(ctx context.Context, email string) (User, error)
	UpdateProfile(ctx context.Context, id, name, phoneNumber string) error
	UpdatePassword(ctx context.Context, id string, hash []byte) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	DeleteUser(ctx context.Context, id string) error

	CreateOTP(ctx context.Context, otp OTP) error
	// FindActiveOTP returns the OTP matching (userID, code) that is unused
	// and unexpired at the given instant, or ErrOTPNotFound.
	FindActiveOTP(ctx context.Context, userID, code string, now time.Time) (OTP, error)
	// ConsumeOTP marks the OTP used and the user verified in a single
	// atomic update. Either both fields change or neither does.
	ConsumeOTP(ctx context.Context, userID, otpID string) error
}

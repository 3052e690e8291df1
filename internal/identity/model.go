package identity

import "time"

// User roles.
const (
	RoleAdmin  = "admin"
	RoleDriver = "driver"
	RoleClient = "client"
)

// Account statuses.
const (
	StatusActive    = "active"
	StatusInactive  = "inactive"
	StatusSuspended = "suspended"
)

// User represents a registered account. PasswordHash is never serialized.
type User struct {
	ID           string
	Email        string
	PasswordHash []byte
	Name         string
	Role         string
	Status       string
	Country      string
	IsVerified   bool
	LastLoginAt  *time.Time
	PhoneNumber  string
	CreatedAt    time.Time
}

// OTP is a short-lived email verification code tied to a user.
type OTP struct {
	ID        string
	UserID    string
	Code      string
	ExpiresAt time.Time
	IsUsed    bool
	CreatedAt time.Time
}

// Profile is the client-facing view of a user.
type Profile struct {
	ID          string     `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        string     `json:"role"`
	Status      string     `json:"status"`
	Country     string     `json:"country"`
	IsVerified  bool       `json:"is_verified"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`
	PhoneNumber string     `json:"phone_number,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// Sanitize strips credentials from a user record before it leaves the service layer.
func Sanitize(u User) Profile {
	return Profile{
		ID:          u.ID,
		Email:       u.Email,
		Name:        u.Name,
		Role:        u.Role,
		Status:      u.Status,
		Country:     u.Country,
		IsVerified:  u.IsVerified,
		LastLoginAt: u.LastLoginAt,
		PhoneNumber: u.PhoneNumber,
		CreatedAt:   u.CreatedAt,
	}
}

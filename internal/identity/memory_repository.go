package identity

import (
	"context"
	"sync"
	"time"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User // keyed by id
	otps  map[string]OTP  // keyed by id
}

// NewMemoryRepository builds an in-memory credential store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{
		users: make(map[string]User),
		otps:  make(map[string]OTP),
	}
}

func (r *memoryRepository) CreateUser(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepository) FindUserByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindUserByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (r *memoryRepository) UpdateProfile(_ context.Context, id, name, phoneNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.Name = name
	user.PhoneNumber = phoneNumber
	r.users[id] = user
	return nil
}

func (r *memoryRepository) UpdatePassword(_ context.Context, id string, hash []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.PasswordHash = hash
	r.users[id] = user
	return nil
}

func (r *memoryRepository) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	user.LastLoginAt = &at
	r.users[id] = user
	return nil
}

func (r *memoryRepository) DeleteUser(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	for otpID, otp := range r.otps {
		if otp.UserID == id {
			delete(r.otps, otpID)
		}
	}
	return nil
}

func (r *memoryRepository) CreateOTP(_ context.Context, otp OTP) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.otps[otp.ID] = otp
	return nil
}

func (r *memoryRepository) FindActiveOTP(_ context.Context, userID, code string, now time.Time) (OTP, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var match OTP
	found := false
	for _, otp := range r.otps {
		if otp.UserID != userID || otp.Code != code || otp.IsUsed || !otp.ExpiresAt.After(now) {
			continue
		}
		if !found || otp.CreatedAt.After(match.CreatedAt) {
			match = otp
			found = true
		}
	}
	if !found {
		return OTP{}, ErrOTPNotFound
	}
	return match, nil
}

func (r *memoryRepository) ConsumeOTP(_ context.Context, userID, otpID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	otp, ok := r.otps[otpID]
	if !ok || otp.IsUsed {
		return ErrOTPNotFound
	}
	user, ok := r.users[userID]
	if !ok {
		return ErrUserNotFound
	}
	otp.IsUsed = true
	user.IsVerified = true
	r.otps[otpID] = otp
	r.users[userID] = user
	return nil
}

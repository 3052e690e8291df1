package identity

import (
	"context"
	"errors"

	"golang.org/x/crypto/bcrypt"
)

// ErrWrongPassword indicates the current password check failed on a password change.
var ErrWrongPassword = errors.New("current password is incorrect")

// Service manages user profiles.
type Service struct {
	repo Repository
}

// NewService creates a new profile service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetProfile returns the sanitized profile for a user.
func (s *Service) GetProfile(ctx context.Context, userID string) (Profile, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	return Sanitize(user), nil
}

// ProfileUpdate carries the optional profile fields a user may change.
type ProfileUpdate struct {
	Name        string
	PhoneNumber string
}

// UpdateProfile applies the provided fields, keeping current values for empty ones.
func (s *Service) UpdateProfile(ctx context.Context, userID string, update ProfileUpdate) (Profile, error) {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if update.Name != "" {
		user.Name = update.Name
	}
	if update.PhoneNumber != "" {
		user.PhoneNumber = update.PhoneNumber
	}
	if err := s.repo.UpdateProfile(ctx, userID, user.Name, user.PhoneNumber); err != nil {
		return Profile{}, err
	}
	return Sanitize(user), nil
}

// ChangePassword verifies the current password and stores a hash of the new one.
func (s *Service) ChangePassword(ctx context.Context, userID, current, next string) error {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(current)); err != nil {
		return ErrWrongPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return s.repo.UpdatePassword(ctx, userID, hash)
}

// DeleteAccount permanently removes the user.
func (s *Service) DeleteAccount(ctx context.Context, userID string) error {
	return s.repo.DeleteUser(ctx, userID)
}

// Package auth implements the registration, verification and login
// workflow plus session token issuing.
package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/rideway/rideway/internal/geo"
	"github.com/rideway/rideway/internal/identity"
	"github.com/rideway/rideway/internal/mailer"
)

// Restrictor gates registrations by country.
type Restrictor interface {
	IsRestricted(countryCode string) bool
}

// OTPMailer delivers verification codes.
type OTPMailer interface {
	SendOTP(ctx context.Context, to, code string, codeTTL time.Duration) (mailer.Result, error)
}

// ServiceConfig tunes the workflow.
type ServiceConfig struct {
	OTPLength int
	OTPExpiry time.Duration
	// Development exposes the raw OTP code in registration responses so
	// flows can be exercised without a mailbox. Never enabled in production.
	Development bool
}

// Service orchestrates the auth workflow over the credential store, the
// geo checker, the mailer and the token issuer.
type Service struct {
	repo       identity.Repository
	mail       OTPMailer
	restrictor Restrictor
	lookup     geo.Lookup
	tokens     *TokenIssuer
	cfg        ServiceConfig
	logger     *slog.Logger
	now        func() time.Time
}

// NewService wires the workflow engine.
func NewService(repo identity.Repository, mail OTPMailer, restrictor Restrictor, lookup geo.Lookup, tokens *TokenIssuer, cfg ServiceConfig, logger *slog.Logger) *Service {
	if cfg.OTPLength <= 0 {
		cfg.OTPLength = 6
	}
	if cfg.OTPExpiry <= 0 {
		cfg.OTPExpiry = 10 * time.Minute
	}
	return &Service{
		repo:       repo,
		mail:       mail,
		restrictor: restrictor,
		lookup:     lookup,
		tokens:     tokens,
		cfg:        cfg,
		logger:     logger,
		now:        time.Now,
	}
}

// Registration carries the signup input. CountryCode wins over IP; when
// only an IP is present the geo lookup resolves it.
type Registration struct {
	Email       string
	Password    string
	Name        string
	PhoneNumber string
	Role        string
	CountryCode string
	IP          string
}

// RegistrationResult reports a created, not-yet-verified account.
type RegistrationResult struct {
	UserID string
	// DebugCode is only populated in development deployments.
	DebugCode string
}

// AuthPayload is a session token with the sanitized account it belongs to.
type AuthPayload struct {
	Token string
	User  identity.Profile
}

// Register creates an unverified account and emails its first OTP. If the
// email cannot be delivered the account is rolled back so the caller can
// retry registration cleanly.
func (s *Service) Register(ctx context.Context, reg Registration) (RegistrationResult, error) {
	// User.Country always holds the 2-letter code, whichever way it was
	// resolved.
	country := strings.ToUpper(strings.TrimSpace(reg.CountryCode))
	if country == "" && reg.IP != "" {
		loc, err := s.lookup.Locate(ctx, reg.IP)
		if err != nil {
			s.logger.Error("geo lookup failed", slog.String("ip", reg.IP), slog.Any("error", err))
			return RegistrationResult{}, failure(CodeLocationUnavailable, "Unable to verify your location. Please try again later.")
		}
		country = strings.ToUpper(loc.CountryCode)
	}

	if s.restrictor.IsRestricted(country) {
		s.logger.Warn("registration blocked by geography",
			slog.String("country", country),
			slog.String("email", reg.Email),
		)
		return RegistrationResult{}, failure(CodeRestrictedLocation, "Registration not allowed from your location")
	}

	if _, err := s.repo.FindUserByEmail(ctx, reg.Email); err == nil {
		return RegistrationResult{}, failure(CodeUserExists, "User already exists with this email")
	} else if !errors.Is(err, identity.ErrUserNotFound) {
		return RegistrationResult{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(reg.Password), bcrypt.DefaultCost)
	if err != nil {
		return RegistrationResult{}, err
	}

	role := reg.Role
	switch role {
	case identity.RoleAdmin, identity.RoleDriver, identity.RoleClient:
	default:
		role = identity.RoleClient
	}

	user := identity.User{
		ID:           uuid.NewString(),
		Email:        reg.Email,
		PasswordHash: hash,
		Name:         reg.Name,
		Role:         role,
		Status:       identity.StatusActive,
		Country:      country,
		IsVerified:   false,
		PhoneNumber:  reg.PhoneNumber,
		CreatedAt:    s.now().UTC(),
	}

	if err := s.repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, identity.ErrEmailTaken) {
			return RegistrationResult{}, failure(CodeUserExists, "User already exists with this email")
		}
		return RegistrationResult{}, err
	}

	code, err := s.issueOTP(ctx, user.ID)
	if err != nil {
		s.rollbackRegistration(ctx, user.ID)
		return RegistrationResult{}, err
	}

	if _, err := s.mail.SendOTP(ctx, user.Email, code, s.cfg.OTPExpiry); err != nil {
		// An account nobody can verify is worse than asking the caller to
		// register again, so delivery failure undoes the registration.
		s.rollbackRegistration(ctx, user.ID)
		switch {
		case errors.Is(err, mailer.ErrRateLimited):
			return RegistrationResult{}, failure(CodeOTPRateLimit, "Please wait before requesting another OTP")
		case errors.Is(err, mailer.ErrDeliveryFailed):
			return RegistrationResult{}, failure(CodeEmailSendFailed, "Failed to send verification email")
		default:
			return RegistrationResult{}, err
		}
	}

	s.logger.Info("user registered",
		slog.String("user_id", user.ID),
		slog.String("country", country),
	)

	result := RegistrationResult{UserID: user.ID}
	if s.cfg.Development {
		result.DebugCode = code
	}
	return result, nil
}

// ResendOTP issues and emails a fresh code. Old codes are not revoked;
// they simply keep failing the unused/unexpired checks. An unknown user id
// gets the same answer as an unverified one so ids cannot be probed.
func (s *Service) ResendOTP(ctx context.Context, userID string) error {
	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return failure(CodeUnverifiedUser, "Please verify your email first")
		}
		return err
	}

	code, err := s.issueOTP(ctx, user.ID)
	if err != nil {
		return err
	}

	if _, err := s.mail.SendOTP(ctx, user.Email, code, s.cfg.OTPExpiry); err != nil {
		switch {
		case errors.Is(err, mailer.ErrRateLimited):
			return failure(CodeOTPRateLimit, "Please wait before requesting another OTP")
		case errors.Is(err, mailer.ErrDeliveryFailed):
			return failure(CodeEmailSendFailed, "Failed to send verification email")
		default:
			return err
		}
	}
	return nil
}

// VerifyOTP consumes a matching unused, unexpired code, marks the account
// verified and returns a session. Wrong, reused and expired codes all fail
// the same way so callers learn nothing about which one occurred.
func (s *Service) VerifyOTP(ctx context.Context, userID, code string) (AuthPayload, error) {
	otp, err := s.repo.FindActiveOTP(ctx, userID, code, s.now())
	if err != nil {
		if errors.Is(err, identity.ErrOTPNotFound) {
			return AuthPayload{}, failure(CodeInvalidOTP, "Invalid or expired OTP")
		}
		return AuthPayload{}, err
	}

	if err := s.repo.ConsumeOTP(ctx, userID, otp.ID); err != nil {
		if errors.Is(err, identity.ErrOTPNotFound) {
			return AuthPayload{}, failure(CodeInvalidOTP, "Invalid or expired OTP")
		}
		return AuthPayload{}, err
	}

	user, err := s.repo.FindUserByID(ctx, userID)
	if err != nil {
		return AuthPayload{}, err
	}

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return AuthPayload{}, err
	}

	s.logger.Info("email verified", slog.String("user_id", user.ID))
	return AuthPayload{Token: token, User: identity.Sanitize(user)}, nil
}

// Login checks credentials and issues a session token. A missing account
// and a wrong password produce the identical failure.
func (s *Service) Login(ctx context.Context, email, password string) (AuthPayload, error) {
	user, err := s.repo.FindUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, identity.ErrUserNotFound) {
			return AuthPayload{}, failure(CodeInvalidCredentials, "Invalid email or password")
		}
		return AuthPayload{}, err
	}

	if err := bcrypt.CompareHashAndPassword(user.PasswordHash, []byte(password)); err != nil {
		return AuthPayload{}, failure(CodeInvalidCredentials, "Invalid email or password")
	}

	if !user.IsVerified {
		return AuthPayload{}, &Error{
			Code:    CodeUnverifiedUser,
			Message: "Please verify your email first",
			UserID:  user.ID,
		}
	}

	if user.Status != identity.StatusActive {
		return AuthPayload{}, failure(CodeAccountInactive, "Account is not active")
	}

	now := s.now().UTC()
	if err := s.repo.UpdateLastLogin(ctx, user.ID, now); err != nil {
		return AuthPayload{}, err
	}
	user.LastLoginAt = &now

	token, err := s.tokens.Issue(user.ID, user.Email)
	if err != nil {
		return AuthPayload{}, err
	}

	s.logger.Info("user logged in", slog.String("user_id", user.ID))
	return AuthPayload{Token: token, User: identity.Sanitize(user)}, nil
}

func (s *Service) issueOTP(ctx context.Context, userID string) (string, error) {
	code, err := GenerateOTP(s.cfg.OTPLength)
	if err != nil {
		return "", err
	}
	otp := identity.OTP{
		ID:        uuid.NewString(),
		UserID:    userID,
		Code:      code,
		ExpiresAt: s.now().Add(s.cfg.OTPExpiry).UTC(),
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.CreateOTP(ctx, otp); err != nil {
		return "", err
	}
	return code, nil
}

func (s *Service) rollbackRegistration(ctx context.Context, userID string) {
	if err := s.repo.DeleteUser(ctx, userID); err != nil {
		s.logger.Error("registration rollback failed",
			slog.String("user_id", userID),
			slog.Any("error", err),
		)
	}
}

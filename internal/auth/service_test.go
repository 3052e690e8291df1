package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rideway/rideway/internal/geo"
	"github.com/rideway/rideway/internal/identity"
	"github.com/rideway/rideway/internal/logging"
	"github.com/rideway/rideway/internal/mailer"
)

type fakeMailer struct {
	codes []string
	to    []string
	err   error
}

func (m *fakeMailer) SendOTP(_ context.Context, to, code string, _ time.Duration) (mailer.Result, error) {
	if m.err != nil {
		return mailer.Result{}, m.err
	}
	m.to = append(m.to, to)
	m.codes = append(m.codes, code)
	return mailer.Result{MessageID: "msg-1", Attempts: 1}, nil
}

func (m *fakeMailer) lastCode(t *testing.T) string {
	t.Helper()
	if len(m.codes) == 0 {
		t.Fatal("no OTP was sent")
	}
	return m.codes[len(m.codes)-1]
}

type fakeLookup struct {
	loc geo.Location
	err error
}

func (l *fakeLookup) Locate(_ context.Context, _ string) (geo.Location, error) {
	return l.loc, l.err
}

func newTestService(t *testing.T) (*Service, identity.Repository, *fakeMailer) {
	t.Helper()
	repo := identity.NewMemoryRepository()
	mail := &fakeMailer{}
	logger := logging.Discard()
	restrictor := geo.NewRestrictor([]string{"SY", "AF", "IR", "KP", "CU"}, logger)
	lookup := &fakeLookup{loc: geo.Location{Country: "Canada", CountryCode: "CA"}}
	tokens := NewTokenIssuer("test-secret", time.Hour)
	svc := NewService(repo, mail, restrictor, lookup, tokens, ServiceConfig{
		OTPLength:   6,
		OTPExpiry:   10 * time.Minute,
		Development: true,
	}, logger)
	return svc, repo, mail
}

func validRegistration() Registration {
	return Registration{
		Email:       "rider@example.com",
		Password:    "s3cret-pass",
		Name:        "Ada",
		CountryCode: "US",
	}
}

func TestRegisterCreatesUnverifiedUser(t *testing.T) {
	svc, repo, mail := newTestService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if result.UserID == "" {
		t.Fatal("expected a user id")
	}
	if result.DebugCode == "" {
		t.Fatal("expected debug code in development mode")
	}

	user, err := repo.FindUserByID(ctx, result.UserID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if user.IsVerified {
		t.Fatal("new user must start unverified")
	}
	if user.Status != identity.StatusActive {
		t.Fatalf("expected active status, got %s", user.Status)
	}
	if string(user.PasswordHash) == "s3cret-pass" {
		t.Fatal("password stored in plaintext")
	}
	if user.Country != "US" {
		t.Fatalf("expected country code US, got %q", user.Country)
	}

	if mail.lastCode(t) != result.DebugCode {
		t.Fatalf("mailed code %s does not match debug code %s", mail.lastCode(t), result.DebugCode)
	}
	if mail.to[0] != "rider@example.com" {
		t.Fatalf("OTP sent to %s", mail.to[0])
	}
}

func TestRegisterRestrictedCountry(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	reg := validRegistration()
	reg.CountryCode = "SY"
	_, err := svc.Register(ctx, reg)

	var authErr *Error
	if !errors.As(err, &authErr) || authErr.Code != CodeRestrictedLocation {
		t.Fatalf("expected RESTRICTED_LOCATION, got %v", err)
	}
	if _, err := repo.FindUserByEmail(ctx, reg.Email); !errors.Is(err, identity.ErrUserNotFound) {
		t.Fatal("no user record may be created for a restricted registration")
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("first register: %v", err)
	}
	_, err := svc.Register(ctx, validRegistration())

	var authErr *Error
	if !errors.As(err, &authErr) || authErr.Code != CodeUserExists {
		t.Fatalf("expected USER_ALREADY_EXISTS, got %v", err)
	}
}

func TestRegisterResolvesCountryFromIP(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	reg := validRegistration()
	reg.CountryCode = ""
	reg.IP = "203.0.113.7"
	result, err := svc.Register(ctx, reg)
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	user, err := repo.FindUserByID(ctx, result.UserID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	// IP-resolved registrations store the same representation as
	// client-supplied ones: the 2-letter code.
	if user.Country != "CA" {
		t.Fatalf("expected resolved country code CA, got %q", user.Country)
	}
}

func TestRegisterLookupFailure(t *testing.T) {
	svc, repo, _ := newTestService(t)
	svc.lookup = &fakeLookup{err: geo.ErrLookupUnavailable}
	ctx := context.Background()

	reg := validRegistration()
	reg.CountryCode = ""
	reg.IP = "203.0.113.7"
	_, err := svc.Register(ctx, reg)

	var authErr *Error
	if !errors.As(err, &authErr) || authErr.Code != CodeLocationUnavailable {
		t.Fatalf("expected LOCATION_UNAVAILABLE, got %v", err)
	}
	if _, err := repo.FindUserByEmail(ctx, reg.Email); !errors.Is(err, identity.ErrUserNotFound) {
		t.Fatal("lookup failure must not create a user")
	}
}

func TestRegisterEmailFailureRollsBack(t *testing.T) {
	svc, repo, mail := newTestService(t)
	mail.err = mailer.ErrDeliveryFailed
	ctx := context.Background()

	_, err := svc.Register(ctx, validRegistration())

	var authErr *Error
	if !errors.As(err, &authErr) || authErr.Code != CodeEmailSendFailed {
		t.Fatalf("expected EMAIL_SEND_FAILED, got %v", err)
	}
	if _, err := repo.FindUserByEmail(ctx, "rider@example.com"); !errors.Is(err, identity.ErrUserNotFound) {
		t.Fatal("failed delivery must roll back the created user")
	}

	// A clean retry must succeed once delivery works again.
	mail.err = nil
	if _, err := svc.Register(ctx, validRegistration()); err != nil {
		t.Fatalf("retry after rollback: %v", err)
	}
}

func TestVerifyOTPConsumesCodeOnce(t *testing.T) {
	svc, repo, mail := newTestService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	code := mail.lastCode(t)

	payload, err := svc.VerifyOTP(ctx, result.UserID, code)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if !payload.User.IsVerified {
		t.Fatal("payload user must be verified")
	}

	userID, email, err := svc.tokens.Verify(payload.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if userID != result.UserID || email != "rider@example.com" {
		t.Fatalf("token decoded to (%s, %s)", userID, email)
	}

	user, err := repo.FindUserByID(ctx, result.UserID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if !user.IsVerified {
		t.Fatal("user record must be verified")
	}

	// Consumed codes never validate again.
	_, err = svc.VerifyOTP(ctx, result.UserID, code)
	var authErr *Error
	if !errors.As(err, &authErr) || authErr.Code != CodeInvalidOTP {
		t.Fatalf("expected INVALID_OTP on reuse, got %v", err)
	}
}

func TestVerifyOTPWrongCode(t *testing.T) {
	svc, _, mail := newTestService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	wrong := "000000"
	if mail.lastCode(t) == wrong {
		wrong = "000001"
	}
	_, err = svc.VerifyOTP(ctx, result.UserID, wrong)
	var authErr *Error
	if !errors.As(err, &authErr) || authErr.Code != CodeInvalidOTP {
		t.Fatalf("expected INVALID_OTP, got %v", err)
	}
}

func TestVerifyOTPExpired(t *testing.T) {
	svc, _, mail := newTestService(t)
	ctx := context.Background()

	base := time.Now()
	svc.now = func() time.Time { return base }

	result, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	code := mail.lastCode(t)

	// Past the expiry window the exact code string no longer validates.
	svc.now = func() time.Time { return base.Add(11 * time.Minute) }
	_, err = svc.VerifyOTP(ctx, result.UserID, code)
	var authErr *Error
	if !errors.As(err, &authErr) || authErr.Code != CodeInvalidOTP {
		t.Fatalf("expected INVALID_OTP for expired code, got %v", err)
	}
}

func TestResendOTPIssuesFreshCode(t *testing.T) {
	svc, _, mail := newTestService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := svc.ResendOTP(ctx, result.UserID); err != nil {
		t.Fatalf("resend: %v", err)
	}
	if len(mail.codes) != 2 {
		t.Fatalf("expected 2 sends, got %d", len(mail.codes))
	}

	// The new code still verifies.
	if _, err := svc.VerifyOTP(ctx, result.UserID, mail.lastCode(t)); err != nil {
		t.Fatalf("verify resent code: %v", err)
	}
}

func TestResendOTPUnknownUser(t *testing.T) {
	svc, _, _ := newTestService(t)

	err := svc.ResendOTP(context.Background(), "b6e62d4a-0000-0000-0000-000000000000")
	var authErr *Error
	if !errors.As(err, &authErr) || authErr.Code != CodeUnverifiedUser {
		t.Fatalf("expected UNVERIFIED_USER for unknown id, got %v", err)
	}
}

func registerAndVerify(t *testing.T, svc *Service, mail *fakeMailer) string {
	t.Helper()
	ctx := context.Background()
	result, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := svc.VerifyOTP(ctx, result.UserID, mail.lastCode(t)); err != nil {
		t.Fatalf("verify: %v", err)
	}
	return result.UserID
}

func TestLoginSuccess(t *testing.T) {
	svc, repo, mail := newTestService(t)
	ctx := context.Background()
	userID := registerAndVerify(t, svc, mail)

	payload, err := svc.Login(ctx, "rider@example.com", "s3cret-pass")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	decodedID, _, err := svc.tokens.Verify(payload.Token)
	if err != nil {
		t.Fatalf("verify token: %v", err)
	}
	if decodedID != userID {
		t.Fatalf("token decoded to %s, want %s", decodedID, userID)
	}

	user, err := repo.FindUserByID(ctx, userID)
	if err != nil {
		t.Fatalf("find user: %v", err)
	}
	if user.LastLoginAt == nil {
		t.Fatal("last login must be recorded")
	}
}

func TestLoginBadCredentialsAreUniform(t *testing.T) {
	svc, _, mail := newTestService(t)
	ctx := context.Background()
	registerAndVerify(t, svc, mail)

	_, wrongPass := errCode(svc.Login(ctx, "rider@example.com", "wrong"))
	_, noUser := errCode(svc.Login(ctx, "ghost@example.com", "s3cret-pass"))

	if wrongPass != CodeInvalidCredentials || noUser != CodeInvalidCredentials {
		t.Fatalf("expected identical INVALID_CREDENTIALS, got %q and %q", wrongPass, noUser)
	}
}

func TestLoginUnverifiedUser(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	result, err := svc.Register(ctx, validRegistration())
	if err != nil {
		t.Fatalf("register: %v", err)
	}

	_, err = svc.Login(ctx, "rider@example.com", "s3cret-pass")
	var authErr *Error
	if !errors.As(err, &authErr) || authErr.Code != CodeUnverifiedUser {
		t.Fatalf("expected UNVERIFIED_USER, got %v", err)
	}
	if authErr.UserID != result.UserID {
		t.Fatalf("error must carry the user id, got %q", authErr.UserID)
	}
}

func TestLoginInactiveAccount(t *testing.T) {
	svc, repo, _ := newTestService(t)
	ctx := context.Background()

	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	err = repo.CreateUser(ctx, identity.User{
		ID:           "5f4e9c1e-0000-0000-0000-000000000001",
		Email:        "banned@example.com",
		PasswordHash: hash,
		Name:         "Banned",
		Role:         identity.RoleClient,
		Status:       identity.StatusSuspended,
		IsVerified:   true,
		CreatedAt:    time.Now(),
	})
	if err != nil {
		t.Fatalf("seed user: %v", err)
	}

	_, err = svc.Login(ctx, "banned@example.com", "s3cret-pass")
	var authErr *Error
	if !errors.As(err, &authErr) || authErr.Code != CodeAccountInactive {
		t.Fatalf("expected ACCOUNT_INACTIVE, got %v", err)
	}
}

func errCode(_ AuthPayload, err error) (AuthPayload, string) {
	var authErr *Error
	if errors.As(err, &authErr) {
		return AuthPayload{}, authErr.Code
	}
	return AuthPayload{}, ""
}

// Package mailer delivers transactional email with retry, backoff and
// per-recipient rate limiting for verification codes.
package mailer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Delivery outcomes callers can branch on.
var (
	// ErrRateLimited means the recipient is inside the OTP cooldown window;
	// the transport was not contacted.
	ErrRateLimited = errors.New("please wait before requesting another code")
	// ErrDeliveryFailed means every attempt, including retries, failed.
	ErrDeliveryFailed = errors.New("failed to send email after multiple retries")
)

const (
	maxRetries      = 3
	backoffCap      = 10 * time.Second
	defaultCooldown = 5 * time.Minute
)

// Result reports a completed delivery.
type Result struct {
	MessageID string
	Attempts  int
}

// Service sends templated mail through a Transport, retrying transient
// failures and enforcing the OTP cooldown.
type Service struct {
	transport Transport
	cooldown  Cooldown
	window    time.Duration
	logger    *slog.Logger

	// sleep is swapped out in tests to observe the backoff schedule.
	sleep func(time.Duration)
}

// NewService builds a mail service. A zero window falls back to the
// default 5 minute cooldown.
func NewService(transport Transport, cooldown Cooldown, window time.Duration, logger *slog.Logger) *Service {
	if window <= 0 {
		window = defaultCooldown
	}
	return &Service{
		transport: transport,
		cooldown:  cooldown,
		window:    window,
		logger:    logger,
		sleep:     time.Sleep,
	}
}

// Send delivers the message, retrying transient failures with exponential
// backoff before reporting ErrDeliveryFailed.
func (s *Service) Send(ctx context.Context, to, subject, html string) (Result, error) {
	msg := Message{To: to, Subject: subject, HTML: html}

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		id, err := s.transport.Send(ctx, msg)
		if err == nil {
			return Result{MessageID: id, Attempts: attempt + 1}, nil
		}
		lastErr = err
		if s.logger != nil {
			s.logger.Error("email send failed",
				slog.String("to", to),
				slog.Int("attempt", attempt+1),
				slog.Any("error", err),
			)
		}
		if attempt < maxRetries {
			delay := backoff(attempt)
			if s.logger != nil {
				s.logger.Info("retrying email",
					slog.String("to", to),
					slog.Duration("delay", delay),
					slog.Int("next_attempt", attempt+2),
				)
			}
			s.sleep(delay)
		}
	}

	return Result{Attempts: maxRetries + 1}, fmt.Errorf("%w: %v", ErrDeliveryFailed, lastErr)
}

// SendOTP delivers a verification code, failing fast with ErrRateLimited
// while the recipient's cooldown window is open. The window opens only
// after a successful send so a failed delivery can be retried immediately.
func (s *Service) SendOTP(ctx context.Context, to, code string, codeTTL time.Duration) (Result, error) {
	if s.cooldown != nil {
		active, err := s.cooldown.Active(ctx, to)
		if err != nil {
			// A broken cache must not block verification mail.
			if s.logger != nil {
				s.logger.Warn("cooldown check failed", slog.Any("error", err))
			}
		} else if active {
			return Result{}, ErrRateLimited
		}
	}

	result, err := s.Send(ctx, to, "Your Verification Code", otpTemplate(code, codeTTL))
	if err != nil {
		return result, err
	}

	if s.cooldown != nil {
		if err := s.cooldown.Start(ctx, to, s.window); err != nil && s.logger != nil {
			s.logger.Warn("cooldown start failed", slog.Any("error", err))
		}
	}
	return result, nil
}

// backoff returns min(2^attempt seconds, 10s).
func backoff(attempt int) time.Duration {
	delay := time.Duration(1<<uint(attempt)) * time.Second
	if delay > backoffCap {
		return backoffCap
	}
	return delay
}

func otpTemplate(code string, ttl time.Duration) string {
	return fmt.Sprintf(`
        <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
            <h2>Your Verification Code</h2>
            <p>Please use the following code to verify your account:</p>
            <h1 style="font-size: 32px; letter-spacing: 5px; text-align: center; padding: 20px; background: #f5f5f5; border-radius: 5px;">%s</h1>
            <p>This code will expire in %d minutes.</p>
            <p>If you didn't request this code, please ignore this email.</p>
        </div>
    `, code, int(ttl.Minutes()))
}

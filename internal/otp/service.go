package otp

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/geocoder89/notehub/internal/apperr"
	"github.com/geocoder89/notehub/internal/domain/user"
	"github.com/geocoder89/notehub/internal/observability"
	"github.com/go-playground/validator/v10"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var (
	ErrInvalidEmail    = apperr.Validation("invalid_email", "Invalid email address")
	ErrInvalidOTP      = apperr.Validation("invalid_otp", "Invalid OTP")
	ErrTooManyAttempts = apperr.Validation("otp_attempts_exceeded", "Too many invalid attempts. Request a new OTP.")
)

// Sender delivers a code to an email address.
type Sender interface {
	SendOTP(ctx context.Context, email, code string) error
}

type Config struct {
	TTL         time.Duration
	MaxAttempts int
}

type Service struct {
	store    Store
	sender   Sender
	cfg      Config
	validate *validator.Validate
	generate func() (string, error)
	prom     *observability.Prom
}

func NewService(store Store, sender Sender, cfg Config, prom *observability.Prom) *Service {
	if cfg.TTL <= 0 {
		cfg.TTL = 10 * time.Minute
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 5
	}

	return &Service{
		store:    store,
		sender:   sender,
		cfg:      cfg,
		validate: validator.New(),
		generate: GenerateCode,
		prom:     prom,
	}
}

// Send issues a fresh code for email, replacing any live one, and mails it.
// If delivery fails the stored code is discarded.
func (s *Service) Send(ctx context.Context, email string) (err error) {
	ctx, span := observability.Tracer().Start(ctx, "otp.Send")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	email = user.NormalizeEmail(email)
	if err := s.validate.Var(email, "required,email"); err != nil {
		s.prom.ObserveOTP("send", "invalid_email")
		return ErrInvalidEmail
	}

	code, err := s.generate()
	if err != nil {
		s.prom.ObserveOTP("send", "error")
		return apperr.Dependency("Failed to send OTP", err)
	}

	if err := s.store.Put(ctx, email, code, s.cfg.TTL); err != nil {
		s.prom.ObserveOTP("send", "error")
		return apperr.Dependency("Failed to send OTP", err)
	}

	if err := s.sender.SendOTP(ctx, email, code); err != nil {
		if delErr := s.store.Delete(context.WithoutCancel(ctx), email); delErr != nil {
			slog.WarnContext(ctx, "otp_discard_failed", "err", delErr)
		}
		s.prom.ObserveOTP("send", "delivery_failed")
		return apperr.Delivery("Failed to send OTP", err)
	}

	s.prom.ObserveOTP("send", "ok")
	return nil
}

// Verify consumes the live code for email when code matches it.
func (s *Service) Verify(ctx context.Context, email, code string) (err error) {
	ctx, span := observability.Tracer().Start(ctx, "otp.Verify")
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	email = user.NormalizeEmail(email)
	code = strings.TrimSpace(code)
	if email == "" || code == "" {
		s.prom.ObserveOTP("verify", "invalid")
		return ErrInvalidOTP
	}

	outcome, err := s.store.Verify(ctx, email, code, s.cfg.MaxAttempts)
	if err != nil {
		s.prom.ObserveOTP("verify", "error")
		return apperr.Dependency("Failed to verify OTP", err)
	}
	span.SetAttributes(attribute.Int("otp.outcome", int(outcome)))

	switch outcome {
	case Matched:
		s.prom.ObserveOTP("verify", "ok")
		return nil
	case Exhausted:
		s.prom.ObserveOTP("verify", "exhausted")
		return ErrTooManyAttempts
	default:
		s.prom.ObserveOTP("verify", "invalid")
		return ErrInvalidOTP
	}
}

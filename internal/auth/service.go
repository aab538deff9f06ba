package auth

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/notehub/internal/apperr"
	"github.com/geocoder89/notehub/internal/domain/user"
	"github.com/geocoder89/notehub/internal/observability"
	"github.com/geocoder89/notehub/internal/security"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	ErrUnknownEmail = apperr.NotFound("user_not_found", "User with this email does not exist.")
	ErrBadPassword  = apperr.Unauthorized("invalid_password", "Invalid password.")
	ErrOldPassword  = apperr.Unauthorized("invalid_password", "Old password is incorrect.")
)

type UserStore interface {
	Create(ctx context.Context, username, email, phone, passwordHash string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id int64) (user.User, error)
	GetByIdentity(ctx context.Context, id user.Identity) (user.User, error)
	ChangePassword(ctx context.Context, id int64, replace func(currentHash string) (string, error)) error
	UpdatePasswordByIdentity(ctx context.Context, id user.Identity, passwordHash string) error
	UpdateUsername(ctx context.Context, id int64, username string) (user.User, error)
	Availability(ctx context.Context, email, phone string) (user.Availability, error)
}

type LoginResult struct {
	User      user.Summary
	Token     string
	ExpiresAt time.Time
}

type Service struct {
	users  UserStore
	hasher *security.Hasher
	tokens *Manager
	prom   *observability.Prom
}

func NewService(users UserStore, hasher *security.Hasher, tokens *Manager, prom *observability.Prom) *Service {
	return &Service{users: users, hasher: hasher, tokens: tokens, prom: prom}
}

func (s *Service) Signup(ctx context.Context, req user.SignUpRequest) (u user.User, err error) {
	ctx, span := startSpan(ctx, "auth.Signup")
	defer func() { endSpan(span, err) }()

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return user.User{}, apperr.Dependency("Could not create user", err)
	}

	u, err = s.users.Create(ctx, req.Username, user.NormalizeEmail(req.Email), req.Phone, hash)
	if err != nil {
		return user.User{}, storeErr(err, "Could not create user")
	}

	span.SetAttributes(attribute.Int64("user.id", u.ID))
	return u, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (res LoginResult, err error) {
	ctx, span := startSpan(ctx, "auth.Login")
	defer func() { endSpan(span, err) }()

	u, err := s.users.GetByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			s.prom.ObserveLogin("unknown_user")
			return LoginResult{}, ErrUnknownEmail
		}
		s.prom.ObserveLogin("error")
		return LoginResult{}, apperr.Dependency("Could not log in", err)
	}

	if err := s.hasher.Check(u.PasswordHash, password); err != nil {
		if security.IsMismatch(err) {
			s.prom.ObserveLogin("bad_password")
			return LoginResult{}, ErrBadPassword
		}
		s.prom.ObserveLogin("error")
		return LoginResult{}, apperr.Dependency("Could not log in", err)
	}

	token, exp, err := s.tokens.Issue(u.ID, u.Username)
	if err != nil {
		s.prom.ObserveLogin("error")
		return LoginResult{}, apperr.Dependency("Could not create session", err)
	}

	s.prom.ObserveLogin("ok")
	span.SetAttributes(attribute.Int64("user.id", u.ID))
	return LoginResult{User: u.Summary(), Token: token, ExpiresAt: exp}, nil
}

// ChangePassword verifies oldPassword and stores newPassword under a row lock so
// two concurrent changes cannot both pass the old-password check.
func (s *Service) ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) (err error) {
	ctx, span := startSpan(ctx, "auth.ChangePassword")
	defer func() { endSpan(span, err) }()

	next, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Dependency("Could not update password", err)
	}

	err = s.users.ChangePassword(ctx, userID, func(current string) (string, error) {
		if err := s.hasher.Check(current, oldPassword); err != nil {
			if security.IsMismatch(err) {
				return "", ErrOldPassword
			}
			return "", err
		}
		return next, nil
	})
	if err != nil {
		return storeErr(err, "Could not update password")
	}
	return nil
}

func (s *Service) ResetPassword(ctx context.Context, id user.Identity, newPassword string) (err error) {
	ctx, span := startSpan(ctx, "auth.ResetPassword")
	defer func() { endSpan(span, err) }()

	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return apperr.Dependency("Could not update password", err)
	}

	id.Email = user.NormalizeEmail(id.Email)
	if err := s.users.UpdatePasswordByIdentity(ctx, id, hash); err != nil {
		return storeErr(err, "Could not update password")
	}
	return nil
}

func (s *Service) UpdateUsername(ctx context.Context, userID int64, username string) (user.User, error) {
	u, err := s.users.UpdateUsername(ctx, userID, username)
	if err != nil {
		return user.User{}, storeErr(err, "Could not update username")
	}
	return u, nil
}

func (s *Service) Profile(ctx context.Context, userID int64) (user.User, error) {
	u, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return user.User{}, storeErr(err, "Could not load user")
	}
	return u, nil
}

// CheckAvailability fails with a Conflict naming the first taken field, email before phone.
func (s *Service) CheckAvailability(ctx context.Context, email, phone string) error {
	a, err := s.users.Availability(ctx, user.NormalizeEmail(email), phone)
	if err != nil {
		return apperr.Dependency("Could not check availability", err)
	}

	switch {
	case a.EmailExists:
		return user.ErrEmailTaken
	case a.PhoneExists:
		return user.ErrPhoneTaken
	}
	return nil
}

func (s *Service) VerifyIdentity(ctx context.Context, id user.Identity) (user.User, error) {
	id.Email = user.NormalizeEmail(id.Email)
	u, err := s.users.GetByIdentity(ctx, id)
	if err != nil {
		return user.User{}, storeErr(err, "Could not check user")
	}
	return u, nil
}

// storeErr passes typed errors through and hides anything else behind a 500.
func storeErr(err error, message string) error {
	if _, ok := apperr.As(err); ok {
		return err
	}
	return apperr.Dependency(message, err)
}

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return observability.Tracer().Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

package user

import (
	"strings"
	"time"

	"github.com/geocoder89/notehub/internal/apperr"
)

type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone"`
	PasswordHash string    `json:"-"` // never expose hash in JSON
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Summary is the projection returned alongside a session token.
type Summary struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (u User) Summary() Summary {
	return Summary{ID: u.ID, Username: u.Username, Email: u.Email}
}

// Identity is the username+email+phone triple used to re-verify an account owner.
type Identity struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Phone    string `json:"phone" binding:"required"`
}

// NormalizeEmail is the stored form of an address: trimmed and lowercased.
// Signup, login and OTP all key on it.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

type Availability struct {
	EmailExists bool
	PhoneExists bool
}

var (
	ErrNotFound      = apperr.NotFound("user_not_found", "User not found.")
	ErrDuplicate     = apperr.Conflict("user_exists", "Username, email, or phone already exists.")
	ErrUsernameTaken = apperr.Conflict("username_taken", "Username is already in use.")
	ErrEmailTaken    = apperr.Conflict("email_taken", "Email already exists.")
	ErrPhoneTaken    = apperr.Conflict("phone_taken", "Phone number already exists.")
)

type SignUpRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email,max=254"`
	Phone    string `json:"phone" binding:"required,min=7,max=20"`
	Password string `json:"password" binding:"required,min=8,max=72"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type AvailabilityRequest struct {
	Email string `json:"email" binding:"required,email"`
	Phone string `json:"phone" binding:"required"`
}

type UpdateUsernameRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
}

type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}

type ResetPasswordRequest struct {
	Identity
	NewPassword string `json:"newPassword" binding:"required,min=8,max=72"`
}

package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/notehub/internal/config"
	"github.com/geocoder89/notehub/internal/domain/user"
	"github.com/gin-gonic/gin"
)

type UserService interface {
	Profile(ctx context.Context, userID int64) (user.User, error)
	UpdateUsername(ctx context.Context, userID int64, username string) (user.User, error)
	ChangePassword(ctx context.Context, userID int64, oldPassword, newPassword string) error
	ResetPassword(ctx context.Context, id user.Identity, newPassword string) error
	CheckAvailability(ctx context.Context, email, phone string) error
	VerifyIdentity(ctx context.Context, id user.Identity) (user.User, error)
}

type UsersHandler struct {
	users UserService
}

func NewUsersHandler(users UserService) *UsersHandler {
	return &UsersHandler{users: users}
}

const msgUserNotFound = "User not found."

func (h *UsersHandler) Profile(ctx *gin.Context) {
	userID, ok := pathID(ctx, "user_id", "Invalid user ID")
	if !ok || !ownedBy(ctx, userID, "user_not_found", msgUserNotFound) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.Profile(cctx, userID)
	if err != nil {
		RespondAppError(ctx, err, "Could not load user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *UsersHandler) UpdateUsername(ctx *gin.Context) {
	userID, ok := pathID(ctx, "user_id", "Invalid user ID")
	if !ok || !ownedBy(ctx, userID, "user_not_found", msgUserNotFound) {
		return
	}

	var req user.UpdateUsernameRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	u, err := h.users.UpdateUsername(cctx, userID, req.Username)
	if err != nil {
		RespondAppError(ctx, err, "Could not update username")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"user": u})
}

func (h *UsersHandler) ChangePassword(ctx *gin.Context) {
	userID, ok := pathID(ctx, "user_id", "Invalid user ID")
	if !ok || !ownedBy(ctx, userID, "user_not_found", msgUserNotFound) {
		return
	}

	var req user.ChangePasswordRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.users.ChangePassword(cctx, userID, req.OldPassword, req.NewPassword); err != nil {
		RespondAppError(ctx, err, "Could not update password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password updated successfully."})
}

func (h *UsersHandler) ResetPassword(ctx *gin.Context) {
	var req user.ResetPasswordRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	if err := h.users.ResetPassword(cctx, req.Identity, req.NewPassword); err != nil {
		RespondAppError(ctx, err, "Could not update password")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Password updated successfully."})
}

// Availability lets the signup form reject a taken email or phone before sending an OTP.
func (h *UsersHandler) Availability(ctx *gin.Context) {
	var req user.AvailabilityRequest
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	if err := h.users.CheckAvailability(cctx, req.Email, req.Phone); err != nil {
		RespondAppError(ctx, err, "Could not check availability")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Email and phone are available."})
}

// Identity confirms that a username, email and phone belong to one account, the
// first step of the password reset flow.
func (h *UsersHandler) Identity(ctx *gin.Context) {
	var req user.Identity
	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 2*time.Second)
	defer cancel()

	u, err := h.users.VerifyIdentity(cctx, req)
	if err != nil {
		RespondAppError(ctx, err, "Could not check user")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{
		"exists":  true,
		"message": "User exists.",
		"user": user.Identity{
			Username: u.Username,
			Email:    u.Email,
			Phone:    u.Phone,
		},
	})
}

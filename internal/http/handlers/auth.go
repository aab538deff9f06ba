package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/geocoder89/notehub/internal/auth"
	"github.com/geocoder89/notehub/internal/config"
	"github.com/geocoder89/notehub/internal/domain/user"
	"github.com/geocoder89/notehub/internal/http/middlewares"
	"github.com/gin-gonic/gin"
)

type AuthService interface {
	Signup(ctx context.Context, req user.SignUpRequest) (user.User, error)
	Login(ctx context.Context, email, password string) (auth.LoginResult, error)
}

type SessionChecker interface {
	Session(token string) auth.Session
}

type CookieConfig struct {
	Secure bool
	Domain string
}

type AuthHandler struct {
	auth     AuthService
	sessions SessionChecker
	cookie   CookieConfig
}

func NewAuthHandler(svc AuthService, sessions SessionChecker, cookie CookieConfig) *AuthHandler {
	return &AuthHandler{
		auth:     svc,
		sessions: sessions,
		cookie:   cookie,
	}
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req user.SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 5*time.Second)
	defer cancel()

	u, err := h.auth.Signup(cctx, req)
	if err != nil {
		RespondAppError(ctx, err, "Could not create user")
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{
		"message": "User registered successfully",
		"user":    u,
	})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req user.LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	res, err := h.auth.Login(cctx, req.Email, req.Password)
	if err != nil {
		RespondAppError(ctx, err, "Could not log in")
		return
	}

	h.setSessionCookie(ctx, res.Token, res.ExpiresAt)

	ctx.JSON(http.StatusOK, gin.H{
		"message":   "Login successful",
		"user":      res.User,
		"token":     res.Token,
		"expiresAt": res.ExpiresAt,
	})
}

// Logout clears the session cookie. Tokens are stateless, so there is nothing to revoke.
func (h *AuthHandler) Logout(ctx *gin.Context) {
	h.clearSessionCookie(ctx)
	ctx.Status(http.StatusNoContent)
}

// Session reports whether the presented token is still usable.
func (h *AuthHandler) Session(ctx *gin.Context) {
	s := h.sessions.Session(middlewares.SessionToken(ctx))
	if !s.Valid {
		RespondError(ctx, http.StatusUnauthorized, "session_expired", "Session expired or invalid. Please log in again.", nil)
		return
	}

	body := gin.H{
		"valid":    true,
		"userId":   s.Claims.UserID,
		"username": s.Claims.Username,
	}
	if s.Claims.ExpiresAt != nil {
		body["expiresAt"] = s.Claims.ExpiresAt.Time
	}
	ctx.JSON(http.StatusOK, body)
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string, expiresAt time.Time) {
	maxAge := int(time.Until(expiresAt).Seconds())

	// Lax so the SPA keeps the cookie on top-level navigations.
	ctx.SetSameSite(http.SameSiteLaxMode)

	ctx.SetCookie(
		middlewares.SessionCookie,
		token,
		maxAge,
		"/",
		h.cookie.Domain,
		h.cookie.Secure,
		true, // HttpOnly.
	)
}

func (h *AuthHandler) clearSessionCookie(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(
		middlewares.SessionCookie,
		"",
		-1,
		"/",
		h.cookie.Domain,
		h.cookie.Secure,
		true,
	)
}

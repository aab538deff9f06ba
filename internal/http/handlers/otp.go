package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/geocoder89/notehub/internal/config"
	"github.com/gin-gonic/gin"
)

type OTPService interface {
	Send(ctx context.Context, email string) error
	Verify(ctx context.Context, email, code string) error
}

type OTPHandler struct {
	otp OTPService
}

func NewOTPHandler(otp OTPService) *OTPHandler {
	return &OTPHandler{otp: otp}
}

// The email is validated by the OTP service so a malformed address gets its
// own "Invalid email address" answer rather than a generic bind error.
type sendOTPRequest struct {
	Email string `json:"email"`
}

type verifyOTPRequest struct {
	Email string  `json:"email" binding:"required"`
	OTP   otpCode `json:"otp" binding:"required"`
}

// otpCode accepts the code as a JSON string or a JSON number.
type otpCode string

func (c *otpCode) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = otpCode(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*c = otpCode(n.String())
	return nil
}

func (h *OTPHandler) Send(ctx *gin.Context) {
	var req sendOTPRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 10*time.Second)
	defer cancel()

	if err := h.otp.Send(cctx, req.Email); err != nil {
		RespondAppError(ctx, err, "Failed to send OTP")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "OTP sent successfully"})
}

func (h *OTPHandler) Verify(ctx *gin.Context) {
	var req verifyOTPRequest

	if !BindJSON(ctx, &req) {
		return
	}

	cctx, cancel := config.WithTimeout(ctx.Request.Context(), 3*time.Second)
	defer cancel()

	if err := h.otp.Verify(cctx, req.Email, string(req.OTP)); err != nil {
		RespondAppError(ctx, err, "Failed to verify OTP")
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "OTP verified"})
}

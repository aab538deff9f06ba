package notifications

import "context"

const otpSubject = "OTP for Note Taking Application"

// Notifier delivers one-time codes to users.
type Notifier interface {
	SendOTP(ctx context.Context, email, code string) error
}

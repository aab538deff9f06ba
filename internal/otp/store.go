package otp

import (
	"context"
	"time"
)

// Outcome is the result of one verification attempt against a store.
type Outcome int

const (
	Missing   Outcome = iota // no live code for the email
	Matched                  // code matched and was consumed
	Mismatch                 // wrong code, attempts remain
	Exhausted                // wrong code and the attempt budget is spent; entry removed
)

// Store holds at most one live code per email. Verify must compare, count and
// delete atomically so a code is consumed at most once.
type Store interface {
	Put(ctx context.Context, email, code string, ttl time.Duration) error
	Verify(ctx context.Context, email, code string, maxAttempts int) (Outcome, error)
	Delete(ctx context.Context, email string) error
}

package payments

import (
	"context"
	"strings"
	"time"
)

// Request is what the payer typed in from their mobile-money receipt.
type Request struct {
	TransactionID string
	PhoneNumber   string
	UserID        string
	Amount        float64
}

// Verifier confirms that a mobile-money transaction happened.
type Verifier interface {
	Verify(ctx context.Context, req Request) (bool, error)
}

// MockVerifier stands in for a real payment rail. It accepts any transaction id of at least
// 8 characters paired with a phone number of at least 10 characters.
type MockVerifier struct {
	// Delay simulates rail latency.
	Delay time.Duration
}

func (m MockVerifier) Verify(ctx context.Context, req Request) (bool, error) {
	if m.Delay > 0 {
		t := time.NewTimer(m.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-t.C:
		}
	}
	return len(strings.TrimSpace(req.TransactionID)) >= 8 && len(strings.TrimSpace(req.PhoneNumber)) >= 10, nil
}

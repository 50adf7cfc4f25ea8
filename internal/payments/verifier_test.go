package payments

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMockVerifier(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want bool
	}{
		{"valid", Request{TransactionID: "MP240601", PhoneNumber: "0771234567"}, true},
		{"short transaction", Request{TransactionID: "MP2406", PhoneNumber: "0771234567"}, false},
		{"short phone", Request{TransactionID: "MP240601", PhoneNumber: "077123456"}, false},
		{"whitespace padding does not count", Request{TransactionID: "  MP2406  ", PhoneNumber: "0771234567"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := MockVerifier{}.Verify(context.Background(), tt.req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestMockVerifier_DelayHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := MockVerifier{Delay: time.Minute}.Verify(ctx, Request{TransactionID: "MP240601", PhoneNumber: "0771234567"})
	assert.ErrorIs(t, err, context.Canceled)
}

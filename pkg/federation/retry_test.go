package federation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewRetryPolicy_Defaults(t *testing.T) {
	p := NewRetryPolicy(nil)
	assert.Equal(t, 3, p.Retries)
	assert.Equal(t, time.Second, p.Delay)
}

func TestNewRetryPolicy_ClampsNegatives(t *testing.T) {
	p := NewRetryPolicy(&ErrorHandling{Retries: -1, RetryDelay: -time.Second})
	assert.Equal(t, 0, p.Retries)
	assert.Equal(t, time.Duration(0), p.Delay)
}

func TestRetryPolicy_Next(t *testing.T) {
	p := RetryPolicy{Retries: 2, Delay: 250 * time.Millisecond}

	tests := []struct {
		attempt int
		ok      bool
		phase   Phase
	}{
		{0, false, PhaseGivenUp},
		{1, true, PhaseRetrying},
		{2, true, PhaseRetrying},
		{3, false, PhaseGivenUp},
	}
	for _, tt := range tests {
		d, ok := p.Next(tt.attempt)
		assert.Equal(t, tt.ok, ok, "attempt %d", tt.attempt)
		if ok {
			assert.Equal(t, 250*time.Millisecond, d)
		}
		assert.Equal(t, tt.phase, p.afterError(tt.attempt), "attempt %d", tt.attempt)
	}
}

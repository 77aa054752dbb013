package camunda

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestIsRetryableZeebeError(t *testing.T) {
	tests := []struct {
		err      string
		expected bool
	}{
		{"rpc error: code = Unavailable desc = connection refused", true},
		{"context deadline exceeded", true},
		{"write: broken pipe", true},
		{"rpc error: code = NotFound desc = process not found", false},
		{"permission denied", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, isRetryableZeebeError(stderrors.New(tt.err)), tt.err)
	}
}

func TestBackoffDelay(t *testing.T) {
	rc := &RetryConfig{MaxRetries: 5, BaseDelay: time.Second, MaxDelay: 5 * time.Second}

	assert.Equal(t, time.Second, backoffDelay(rc, 0))
	assert.Equal(t, 2*time.Second, backoffDelay(rc, 1))
	assert.Equal(t, 4*time.Second, backoffDelay(rc, 2))
	assert.Equal(t, 5*time.Second, backoffDelay(rc, 3))
	assert.Equal(t, 5*time.Second, backoffDelay(rc, 62))
}

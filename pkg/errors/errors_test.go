package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewUpstream_MapsStatus(t *testing.T) {
	tests := []struct {
		status int
		want   ErrorCode
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusInternalServerError, ErrUpstream},
		{http.StatusUnprocessableEntity, ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := NewUpstream(tt.status, "detail")
			assert.Equal(t, tt.want, err.Code)
			assert.Equal(t, tt.status, err.Status)
		})
	}
}

func TestHelpers_ThroughWrapping(t *testing.T) {
	err := fmt.Errorf("failed to list records: %w", NewUpstream(http.StatusForbidden, "Not allowed"))

	assert.True(t, Is(err, ErrForbidden))
	assert.Equal(t, http.StatusForbidden, StatusOf(err))
	assert.Equal(t, "Not allowed", DetailOf(err))
}

func TestHelpers_NonAppError(t *testing.T) {
	err := fmt.Errorf("boom")

	assert.Equal(t, ErrInternal, CodeOf(err))
	assert.Zero(t, StatusOf(err))
	assert.Empty(t, DetailOf(err))
}

func TestUnavailable_HasNoDetail(t *testing.T) {
	err := NewUnavailable(fmt.Errorf("connection refused"))

	assert.Equal(t, ErrUnavailable, err.Code)
	assert.Empty(t, DetailOf(err))
	assert.Equal(t, http.StatusServiceUnavailable, err.StatusCode())
	assert.Contains(t, err.Error(), "connection refused")
}

func TestMessageOf(t *testing.T) {
	assert.Equal(t, "fallback", MessageOf(fmt.Errorf("plain"), "fallback"))
	assert.Equal(t, "fallback", MessageOf(NewUpstream(http.StatusBadRequest, ""), "fallback"))
	assert.Equal(t, "Invalid credentials", MessageOf(NewUpstream(http.StatusBadRequest, "Invalid credentials"), "fallback"))
}

func TestWithMessage(t *testing.T) {
	cause := NewUpstream(http.StatusForbidden, "Not your logs")
	err := WithMessage(cause, "Access denied")

	assert.Equal(t, ErrForbidden, err.Code)
	assert.Equal(t, http.StatusForbidden, err.Status)
	assert.Equal(t, "Access denied", err.Message)
	assert.ErrorIs(t, err, cause)

	plain := WithMessage(fmt.Errorf("boom"), "Something went wrong")
	assert.Equal(t, ErrInternal, plain.Code)
}

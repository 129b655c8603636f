package apperr

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestCodeOfWrapped(t *testing.T) {
	base := Conflict("completion request already pending")
	wrapped := fmt.Errorf("raise: %w", base)

	assert.Equal(t, CodeConflict, CodeOf(wrapped))
	assert.True(t, Is(wrapped, CodeConflict))
	assert.False(t, Is(wrapped, CodeNotFound))
	assert.Equal(t, "completion request already pending", MessageOf(wrapped))
}

func TestUnclassifiedErrorsAreInternal(t *testing.T) {
	err := errors.New("connection reset by peer")

	assert.Equal(t, CodeInternal, CodeOf(err))
	assert.Equal(t, "internal server error", MessageOf(err))
	assert.False(t, Is(nil, CodeInternal))
}

func TestInternalKeepsCause(t *testing.T) {
	cause := errors.New("disk full")
	err := Internal("failed to save project", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to save project: disk full", err.Error())
}

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeValidation:   http.StatusBadRequest,
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeConflict:     http.StatusConflict,
		CodeRateLimited:  http.StatusTooManyRequests,
		CodeInternal:     http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, HTTPStatus(code), string(code))
	}
}

package apierr

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesSentinelForStatus(t *testing.T) {
	tests := []struct {
		status int
		target error
	}{
		{http.StatusUnauthorized, ErrUnauthorized},
		{http.StatusForbidden, ErrForbidden},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusBadRequest, ErrInvalidInput},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			err := Wrapf(&Error{Status: tt.status}, "fetching member")
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestError_IsDoesNotMatchOtherStatuses(t *testing.T) {
	err := &Error{Status: http.StatusInternalServerError, Message: "boom"}

	assert.False(t, errors.Is(err, ErrUnauthorized))
	assert.False(t, errors.Is(err, ErrNotFound))
	assert.Equal(t, "backend returned status 500: boom", err.Error())
}

func TestWrapf_NilPassesThrough(t *testing.T) {
	assert.NoError(t, Wrapf(nil, "nothing to wrap"))
}

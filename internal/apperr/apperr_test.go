package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{ErrValidation, http.StatusBadRequest},
		{ErrNotFound, http.StatusNotFound},
		{ErrExpired, http.StatusBadRequest},
		{ErrMismatch, http.StatusBadRequest},
		{ErrConflict, http.StatusConflict},
		{ErrDependency, http.StatusBadGateway},
		{errors.New("anything else"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StatusCode(tt.err))
	}
}

func TestStatusCodeUnwrapsWrappedErrors(t *testing.T) {
	err := fmt.Errorf("%w: response already submitted", ErrConflict)
	assert.Equal(t, http.StatusConflict, StatusCode(err))

	err = fmt.Errorf("outer: %w", fmt.Errorf("%w: code has expired", ErrExpired))
	assert.Equal(t, http.StatusBadRequest, StatusCode(err))
}

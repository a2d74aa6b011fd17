package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServerError(t *testing.T) {
	err := fmt.Errorf("%w: %w", ErrNotFound, &ServerError{Status: 404, Message: "Product doesn't exist"})

	assert.ErrorIs(t, err, ErrServerReported)
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrConnectivity)

	var serverErr *ServerError
	require.True(t, errors.As(err, &serverErr))
	assert.Equal(t, 404, serverErr.Status)
	assert.Equal(t, "Product doesn't exist", serverErr.Message)
	assert.Equal(t, "shop API status 404: Product doesn't exist", serverErr.Error())
}

func TestIsValidationWarning(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{ErrNotLoggedIn, true},
		{fmt.Errorf("add: %w", ErrAlreadyInCart), true},
		{ErrEmptyCart, false},
		{&ServerError{Status: 500}, false},
		{nil, false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsValidationWarning(tt.err), "%v", tt.err)
	}
}

func TestSessionAuthenticated(t *testing.T) {
	var nilSession *Session
	assert.False(t, nilSession.Authenticated())
	assert.False(t, (&Session{ID: "x"}).Authenticated())
	assert.True(t, (&Session{ID: "x", Token: "t"}).Authenticated())
}

package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrServerReported matches any *ServerError via errors.Is
	ErrServerReported = errors.New("shop API reported an error")

	// ErrNotFound is returned when the shop API has no results for a request
	ErrNotFound = errors.New("not found")

	// ErrConnectivity is returned when no usable response came back from the shop API
	ErrConnectivity = errors.New("shop API unreachable")

	// ErrNotLoggedIn is returned when an authenticated call is attempted without a token
	ErrNotLoggedIn = errors.New("please log in to add item to the cart")

	// ErrAlreadyInCart is returned when a duplicate add is attempted from the catalog
	ErrAlreadyInCart = errors.New("item already in cart")

	// ErrEmptyCart is returned when checking out a cart with nothing in it
	ErrEmptyCart = errors.New("cart is empty")

	// ErrStaleResponse is returned when a search response was superseded by a newer request
	ErrStaleResponse = errors.New("search response superseded by a newer request")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrSessionNotFound is returned when a session id is unknown or expired
	ErrSessionNotFound = errors.New("session not found")
)

// ServerError is an error response from the shop API carrying a message
// meant to be shown to the user verbatim.
type ServerError struct {
	Status  int
	Message string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("shop API status %d: %s", e.Status, e.Message)
}

// Is lets errors.Is(err, ErrServerReported) match any ServerError
func (e *ServerError) Is(target error) bool {
	return target == ErrServerReported
}

// IsValidationWarning reports whether err is a client-side precondition failure
func IsValidationWarning(err error) bool {
	return errors.Is(err, ErrNotLoggedIn) || errors.Is(err, ErrAlreadyInCart)
}

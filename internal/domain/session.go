package domain

import "time"

// Session carries the per-user state that authenticated calls need.
// It is passed explicitly to whatever issues a bearer-authenticated request.
type Session struct {
	ID        string    `json:"sessionId"`
	Username  string    `json:"username"`
	Token     string    `json:"token,omitempty"`
	Balance   int64     `json:"balance"`
	CreatedAt time.Time `json:"createdAt"`
}

// Authenticated reports whether the session holds a bearer token
func (s *Session) Authenticated() bool {
	return s != nil && s.Token != ""
}

// LoginRequest is the payload that opens a session
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Token    string `json:"token" binding:"required"`
	Balance  int64  `json:"balance"`
}

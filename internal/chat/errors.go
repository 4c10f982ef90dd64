package chat

import "errors"

// Error kinds recovered at the connection boundary. Each one is delivered
// to the originating connection as an `error` frame; none of them closes
// the connection.
var (
	ErrInvalidAddress    = errors.New("invalid address: expected 0x followed by 40 hex characters")
	ErrInvalidUsername   = errors.New("invalid username: 3-20 characters, alphanumeric, underscore or hyphen")
	ErrDuplicateSession  = errors.New("address already connected")
	ErrNotAuthenticated  = errors.New("not authenticated")
	ErrInvalidMessage    = errors.New("message is empty")
	ErrRateLimitExceeded = errors.New("rate limit exceeded, slow down")
)

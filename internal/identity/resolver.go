package identity

import "errors"

// Principal identifies the authenticated caller of a request.
type Principal struct {
	UserID uint
	Role   string
}

// ErrInvalidToken is returned when a credential cannot be resolved to a principal.
var ErrInvalidToken = errors.New("invalid token")

// Resolver turns an opaque bearer credential into a caller principal.
type Resolver interface {
	Resolve(token string) (Principal, error)
}

package auth

import "errors"

var (
	ErrInvalidToken     = errors.New("invalid or expired token")
	ErrInvalidDeviceKey = errors.New("invalid device key")
	ErrForbidden        = errors.New("insufficient role for this action")
	ErrResidentClaim    = errors.New("token carries no resident id")
)

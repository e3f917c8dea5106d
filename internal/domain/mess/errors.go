package mess

import "errors"

var (
	ErrTokenNotFound      = errors.New("mess token not found")
	ErrTokenClosed        = errors.New("mess token already closed")
	ErrNoSpecialFood      = errors.New("no special food is scheduled")
	ErrRegistrationClosed = errors.New("special food registration is closed")
)

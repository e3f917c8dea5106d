package mess

import (
	"context"
	"time"
)

type TokenRepository interface {
	Create(ctx context.Context, t Token) (Token, error)
	GetByID(ctx context.Context, id string) (Token, error)
	// ListActive returns active tokens, newest first. A non-nil residentID narrows to that resident.
	ListActive(ctx context.Context, residentID *string) ([]Token, error)
	// Close bills an active token. It returns ErrTokenClosed when the token is no longer active.
	Close(ctx context.Context, id string, price float64, closedAt time.Time, closedBy string) (Token, error)
}

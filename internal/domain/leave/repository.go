package leave

import (
	"context"
)

// LeaveRepository - interface for the leaves table
type LeaveRepository interface {
	Create(ctx context.Context, leave Leave) (Leave, error)
	GetByID(ctx context.Context, id string) (Leave, error)
	Update(ctx context.Context, leave Leave) error
	Delete(ctx context.Context, id string) error

	// ListByResident returns the resident's leaves, newest first.
	ListByResident(ctx context.Context, residentID string) ([]Leave, error)
	Search(ctx context.Context, filter SearchFilter) ([]Leave, error)

	// FindNewestApproved returns the newest leave with both approvals, or nil.
	FindNewestApproved(ctx context.Context, residentID string) (*Leave, error)
	// FindNewestAwaitingOutpass returns the newest parent-approved leave without an outpass, or nil.
	FindNewestAwaitingOutpass(ctx context.Context, residentID string) (*Leave, error)

	// SaveOutpass persists an issued outpass only if the stored leave still has none.
	// It returns ErrOutpassAlreadyGenerated when another writer got there first.
	SaveOutpass(ctx context.Context, leave Leave) error
}

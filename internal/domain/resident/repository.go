package resident

import (
	"context"
)

// ResidentRepository is the resident store. Bulk updates are set-based so the
// heartbeat and the request path never read-modify-write the same row.
type ResidentRepository interface {
	Create(ctx context.Context, resident Resident) (Resident, error)
	GetByID(ctx context.Context, id string) (Resident, error)
	GetByRollNo(ctx context.Context, rollNo string) (Resident, error)
	List(ctx context.Context, filter Filter) ([]Resident, error)

	// BulkUpdate applies patch to every resident matching filter and returns
	// the number of rows changed.
	BulkUpdate(ctx context.Context, filter Filter, patch Patch) (int64, error)
}

package resident

import (
	"context"
)

// AttendanceService decides fingerprint scans.
type AttendanceService interface {
	MarkAttendance(ctx context.Context, req MarkAttendanceRequest) (MarkAttendanceResponse, error)
}

// ResidentService covers warden administration of resident records.
type ResidentService interface {
	Register(ctx context.Context, req RegisterResidentRequest) (ResidentResponse, error)
	Get(ctx context.Context, id string) (ResidentResponse, error)
	List(ctx context.Context, req ListResidentsRequest) ([]ResidentResponse, error)
	ListBlocked(ctx context.Context) ([]ResidentResponse, error)

	// SetBlocked is the only operation that clears a block on a single resident.
	SetBlocked(ctx context.Context, req SetBlockedRequest) (BlockStatusResponse, error)
	BlockAbsentees(ctx context.Context) (BulkResult, error)
	UnblockAll(ctx context.Context) (BulkResult, error)
}

package leave

import (
	"context"
)

type LeaveService interface {
	// Application lifecycle
	Apply(ctx context.Context, req ApplyLeaveRequest) (LeaveResponse, error)
	ReviewByWarden(ctx context.Context, req ReviewRequest) (LeaveResponse, error)
	ReviewByParent(ctx context.Context, req ReviewRequest) (LeaveResponse, error)
	ListByResident(ctx context.Context, residentID string) ([]LeaveResponse, error)
	Search(ctx context.Context, req SearchRequest) ([]LeaveResponse, error)
	Withdraw(ctx context.Context, req WithdrawRequest) error

	// Outpass
	GenerateOutpass(ctx context.Context, req GenerateOutpassRequest) (OutpassResponse, error)
	TriggerPhysicalOutpass(ctx context.Context, req TriggerPhysicalOutpassRequest) (PhysicalOutpassResponse, error)
}

// ReceiptPrinter sends a physical outpass to the kiosk printer. Best effort.
type ReceiptPrinter interface {
	PrintReceipt(ctx context.Context, payload PrintPayload) error
}

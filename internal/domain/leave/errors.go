package leave

import "errors"

var (
	ErrLeaveNotFound = errors.New("leave not found")
	ErrLeaveNotOwned = errors.New("leave belongs to another resident")

	// Outpass preconditions, checked in this order.
	ErrOutpassAlreadyGenerated = errors.New("outpass already generated")
	ErrParentApprovalRequired  = errors.New("parent approval required for outpass")
	ErrOutpassTooEarly         = errors.New("outpass cannot be generated before the departure time")

	ErrNoPendingLeave         = errors.New("no pending approved leave found for this resident")
	ErrWardenApprovalRequired = errors.New("awaiting warden approval first")
	ErrLeaveNotWithdrawable   = errors.New("leave can no longer be withdrawn")
	ErrOutsideLeaveHours      = errors.New("departure time is not allowed for this leave type")
)

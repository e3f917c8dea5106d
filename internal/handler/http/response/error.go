package response

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/hostel-arena/hms-backend-go/internal/domain/auth"
	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
	"github.com/hostel-arena/hms-backend-go/internal/domain/mess"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/domain/sysconfig"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/database"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Auth
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrInvalidDeviceKey):
		Unauthorized(w, err.Error())
	case errors.Is(err, auth.ErrForbidden), errors.Is(err, auth.ErrResidentClaim):
		Forbidden(w, err.Error())

	// Resident
	case errors.Is(err, resident.ErrResidentNotFound):
		NotFound(w, "Resident not found")
	case errors.Is(err, resident.ErrRollNoExists):
		Conflict(w, "Roll number already registered")
	case errors.Is(err, resident.ErrAttendanceWindowClosed):
		Fail(w, http.StatusForbidden, CodeWindowClosed, "Attendance window is closed")

	// Leave and outpass
	case errors.Is(err, leave.ErrLeaveNotFound):
		NotFound(w, "Leave not found")
	case errors.Is(err, leave.ErrLeaveNotOwned):
		Forbidden(w, "Leave belongs to another resident")
	case errors.Is(err, leave.ErrOutpassAlreadyGenerated):
		Fail(w, http.StatusConflict, CodeAlreadyGenerated, "Outpass already generated")
	case errors.Is(err, leave.ErrParentApprovalRequired):
		Fail(w, http.StatusBadRequest, CodeParentApprovalRequired, "Parent approval required")
	case errors.Is(err, leave.ErrOutpassTooEarly):
		Fail(w, http.StatusBadRequest, CodeTooEarly, "Outpass cannot be generated before the departure time")
	case errors.Is(err, leave.ErrWardenApprovalRequired):
		Fail(w, http.StatusBadRequest, CodeWardenApprovalRequired, "Awaiting warden approval first")
	case errors.Is(err, leave.ErrNoPendingLeave):
		Fail(w, http.StatusBadRequest, CodeNoPendingLeave, "No pending approved leave found")
	case errors.Is(err, leave.ErrLeaveNotWithdrawable):
		Fail(w, http.StatusConflict, CodeNotWithdrawable, "Leave can no longer be withdrawn")
	case errors.Is(err, leave.ErrOutsideLeaveHours):
		Fail(w, http.StatusForbidden, CodeOutsideLeaveHours, err.Error())

	// Mess
	case errors.Is(err, mess.ErrTokenNotFound):
		NotFound(w, "Mess token not found")
	case errors.Is(err, mess.ErrTokenClosed):
		Fail(w, http.StatusConflict, CodeTokenClosed, "Mess token already closed")
	case errors.Is(err, mess.ErrNoSpecialFood):
		Fail(w, http.StatusForbidden, CodeNoSpecialFood, "No special food is scheduled")
	case errors.Is(err, mess.ErrRegistrationClosed):
		Fail(w, http.StatusForbidden, CodeRegistrationClosed, err.Error())

	// Configuration
	case errors.Is(err, sysconfig.ErrNoFieldsToUpdate):
		BadRequest(w, "No configuration fields to update", nil)

	// Store
	case errors.Is(err, database.ErrStoreUnavailable):
		slog.Error("store unavailable", "error", err)
		Fail(w, http.StatusServiceUnavailable, CodeStoreUnavailable, "Store unavailable, try again later")

	default:
		slog.Error("unhandled error", "error", err)
		InternalServerError(w, "An unexpected error occurred")
	}
}

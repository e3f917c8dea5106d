package http

import (
	"net/http"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/handler/http/response"
)

// KioskHandler serves the fingerprint devices at the hostel gate.
type KioskHandler interface {
	MarkAttendance(w http.ResponseWriter, r *http.Request)
	TriggerOutpass(w http.ResponseWriter, r *http.Request)
}

type KioskHandlerImpl struct {
	attendanceService resident.AttendanceService
	leaveService      leave.LeaveService
	dispatcher        event.Dispatcher
}

func NewKioskHandler(attendanceService resident.AttendanceService, leaveService leave.LeaveService, dispatcher event.Dispatcher) KioskHandler {
	return &KioskHandlerImpl{
		attendanceService: attendanceService,
		leaveService:      leaveService,
		dispatcher:        dispatcher,
	}
}

// MarkAttendance implements KioskHandler.
func (h *KioskHandlerImpl) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	var req resident.MarkAttendanceRequest
	if !decodeJSON(w, r, &req, "MarkAttendance") {
		return
	}

	resp, err := h.attendanceService.MarkAttendance(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.dispatcher.Dispatch(r.Context(), resp.Events...)
	response.SuccessWithMessage(w, resp.Message, resp)
}

// TriggerOutpass implements KioskHandler.
func (h *KioskHandlerImpl) TriggerOutpass(w http.ResponseWriter, r *http.Request) {
	var req leave.TriggerPhysicalOutpassRequest
	if !decodeJSON(w, r, &req, "TriggerOutpass") {
		return
	}

	resp, err := h.leaveService.TriggerPhysicalOutpass(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.dispatcher.Dispatch(r.Context(), resp.Events...)
	response.SuccessWithMessage(w, resp.Message, resp)
}

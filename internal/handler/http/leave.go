package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/hostel-arena/hms-backend-go/internal/domain/auth"
	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
	"github.com/hostel-arena/hms-backend-go/internal/handler/http/response"
)

type LeaveHandler interface {
	Apply(w http.ResponseWriter, r *http.Request)
	ListByResident(w http.ResponseWriter, r *http.Request)
	Search(w http.ResponseWriter, r *http.Request)
	WardenReview(w http.ResponseWriter, r *http.Request)
	ParentReview(w http.ResponseWriter, r *http.Request)
	GenerateOutpass(w http.ResponseWriter, r *http.Request)
	Withdraw(w http.ResponseWriter, r *http.Request)
}

type LeaveHandlerImpl struct {
	leaveService leave.LeaveService
	dispatcher   event.Dispatcher
}

func NewLeaveHandler(leaveService leave.LeaveService, dispatcher event.Dispatcher) LeaveHandler {
	return &LeaveHandlerImpl{
		leaveService: leaveService,
		dispatcher:   dispatcher,
	}
}

// Apply implements LeaveHandler.
func (h *LeaveHandlerImpl) Apply(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}
	residentID, ok := studentResidentID(w, claims)
	if !ok {
		return
	}

	var req leave.ApplyLeaveRequest
	if !decodeJSON(w, r, &req, "ApplyLeave") {
		return
	}
	req.ResidentID = residentID

	created, err := h.leaveService.Apply(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Leave applied successfully", created)
}

// ListByResident implements LeaveHandler. Students may only list their own leaves.
func (h *LeaveHandlerImpl) ListByResident(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	residentID := chi.URLParam(r, "residentID")
	if residentID == "" {
		response.BadRequest(w, "Resident ID is required", nil)
		return
	}
	if claims.HasRole(auth.RoleStudent) && claims.ResidentID != residentID {
		response.HandleError(w, auth.ErrForbidden)
		return
	}

	leaves, err := h.leaveService.ListByResident(r.Context(), residentID)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, leaves, len(leaves))
}

// Search implements LeaveHandler.
func (h *LeaveHandlerImpl) Search(w http.ResponseWriter, r *http.Request) {
	req := leave.SearchRequest{Query: chi.URLParam(r, "query")}

	leaves, err := h.leaveService.Search(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, leaves, len(leaves))
}

// WardenReview implements LeaveHandler.
func (h *LeaveHandlerImpl) WardenReview(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "WardenReview", h.leaveService.ReviewByWarden)
}

// ParentReview implements LeaveHandler.
func (h *LeaveHandlerImpl) ParentReview(w http.ResponseWriter, r *http.Request) {
	h.review(w, r, "ParentReview", h.leaveService.ReviewByParent)
}

func (h *LeaveHandlerImpl) review(w http.ResponseWriter, r *http.Request, op string, fn func(context.Context, leave.ReviewRequest) (leave.LeaveResponse, error)) {
	var req leave.ReviewRequest
	if !decodeJSON(w, r, &req, op) {
		return
	}
	req.LeaveID = chi.URLParam(r, "id")

	updated, err := fn(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave "+strings.ToLower(req.Status), updated)
}

// GenerateOutpass implements LeaveHandler.
func (h *LeaveHandlerImpl) GenerateOutpass(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}
	residentID, ok := studentResidentID(w, claims)
	if !ok {
		return
	}

	var req leave.GenerateOutpassRequest
	if !decodeJSON(w, r, &req, "GenerateOutpass") {
		return
	}
	req.LeaveID = chi.URLParam(r, "id")
	req.ResidentID = &residentID

	resp, err := h.leaveService.GenerateOutpass(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.dispatcher.Dispatch(r.Context(), resp.Events...)
	response.SuccessWithMessage(w, resp.Message, resp.Leave)
}

// Withdraw implements LeaveHandler. Wardens may withdraw any leave, students only their own.
func (h *LeaveHandlerImpl) Withdraw(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	req := leave.WithdrawRequest{LeaveID: chi.URLParam(r, "id")}
	if !claims.IsWarden() {
		residentID, ok := studentResidentID(w, claims)
		if !ok {
			return
		}
		req.ResidentID = &residentID
	}

	if err := h.leaveService.Withdraw(r.Context(), req); err != nil {
		response.HandleError(w, err)
		return
	}

	response.SuccessWithMessage(w, "Leave withdrawn", nil)
}

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hostel-arena/hms-backend-go/internal/domain/auth"
	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/mess"
	"github.com/hostel-arena/hms-backend-go/internal/handler/http/response"
)

type MessHandler interface {
	ScheduleSpecialFood(w http.ResponseWriter, r *http.Request)
	GenerateToken(w http.ResponseWriter, r *http.Request)
	ListActive(w http.ResponseWriter, r *http.Request)
	ListByResident(w http.ResponseWriter, r *http.Request)
	CloseToken(w http.ResponseWriter, r *http.Request)
}

type MessHandlerImpl struct {
	messService mess.MessService
	dispatcher  event.Dispatcher
}

func NewMessHandler(messService mess.MessService, dispatcher event.Dispatcher) MessHandler {
	return &MessHandlerImpl{
		messService: messService,
		dispatcher:  dispatcher,
	}
}

// ScheduleSpecialFood implements MessHandler.
func (h *MessHandlerImpl) ScheduleSpecialFood(w http.ResponseWriter, r *http.Request) {
	var req mess.ScheduleSpecialFoodRequest
	if !decodeJSON(w, r, &req, "ScheduleSpecialFood") {
		return
	}

	resp, err := h.messService.ScheduleSpecialFood(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.dispatcher.Dispatch(r.Context(), resp.Events...)
	response.SuccessWithMessage(w, "Special food updated", resp)
}

// GenerateToken implements MessHandler.
func (h *MessHandlerImpl) GenerateToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}
	residentID, ok := studentResidentID(w, claims)
	if !ok {
		return
	}

	var req mess.GenerateTokenRequest
	if !decodeJSON(w, r, &req, "GenerateToken") {
		return
	}
	req.ResidentID = residentID

	token, err := h.messService.GenerateToken(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.dispatcher.Dispatch(r.Context(), token.Events...)
	response.Created(w, "Token generated", token)
}

// ListActive implements MessHandler.
func (h *MessHandlerImpl) ListActive(w http.ResponseWriter, r *http.Request) {
	tokens, err := h.messService.ListActive(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.List(w, tokens, len(tokens))
}

// ListByResident implements MessHandler. Students may only list their own tokens.
func (h *MessHandlerImpl) ListByResident(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	residentID := chi.URLParam(r, "residentID")
	if claims.HasRole(auth.RoleStudent) && claims.ResidentID != residentID {
		response.HandleError(w, auth.ErrForbidden)
		return
	}

	tokens, err := h.messService.ListActiveByResident(r.Context(), residentID)
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.List(w, tokens, len(tokens))
}

// CloseToken implements MessHandler.
func (h *MessHandlerImpl) CloseToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	var req mess.CloseTokenRequest
	if !decodeJSON(w, r, &req, "CloseToken") {
		return
	}
	req.TokenID = chi.URLParam(r, "id")
	req.ClosedBy = claims.UserID

	token, err := h.messService.CloseToken(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.dispatcher.Dispatch(r.Context(), token.Events...)
	response.SuccessWithMessage(w, "Token closed and billed", token)
}

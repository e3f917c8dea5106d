package http

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/handler/http/response"
)

type ResidentHandler interface {
	List(w http.ResponseWriter, r *http.Request)
	Register(w http.ResponseWriter, r *http.Request)
	Get(w http.ResponseWriter, r *http.Request)
	ListBlocked(w http.ResponseWriter, r *http.Request)
	SetBlocked(w http.ResponseWriter, r *http.Request)
	BlockAbsentees(w http.ResponseWriter, r *http.Request)
	UnblockAll(w http.ResponseWriter, r *http.Request)
}

type ResidentHandlerImpl struct {
	residentService resident.ResidentService
	dispatcher      event.Dispatcher
}

func NewResidentHandler(residentService resident.ResidentService, dispatcher event.Dispatcher) ResidentHandler {
	return &ResidentHandlerImpl{
		residentService: residentService,
		dispatcher:      dispatcher,
	}
}

// List implements ResidentHandler. Filters: ?status=, ?blocked=, ?search=.
func (h *ResidentHandlerImpl) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var req resident.ListResidentsRequest
	if v := q.Get("status"); v != "" {
		req.Status = &v
	}
	if v := q.Get("search"); v != "" {
		req.Search = &v
	}
	if v := q.Get("blocked"); v != "" {
		blocked, err := strconv.ParseBool(v)
		if err != nil {
			response.BadRequest(w, "blocked must be true or false", nil)
			return
		}
		req.IsBlocked = &blocked
	}

	residents, err := h.residentService.List(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.List(w, residents, len(residents))
}

// Register implements ResidentHandler.
func (h *ResidentHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	var req resident.RegisterResidentRequest
	if !decodeJSON(w, r, &req, "RegisterResident") {
		return
	}

	created, err := h.residentService.Register(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Resident registered", created)
}

// Get implements ResidentHandler.
func (h *ResidentHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	res, err := h.residentService.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, res)
}

// ListBlocked implements ResidentHandler.
func (h *ResidentHandlerImpl) ListBlocked(w http.ResponseWriter, r *http.Request) {
	residents, err := h.residentService.ListBlocked(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.List(w, residents, len(residents))
}

// SetBlocked implements ResidentHandler.
func (h *ResidentHandlerImpl) SetBlocked(w http.ResponseWriter, r *http.Request) {
	var req resident.SetBlockedRequest
	if !decodeJSON(w, r, &req, "SetBlocked") {
		return
	}
	req.ID = chi.URLParam(r, "id")

	resp, err := h.residentService.SetBlocked(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.dispatcher.Dispatch(r.Context(), resp.Events...)
	response.SuccessWithMessage(w, resp.Message, resp.Resident)
}

// BlockAbsentees implements ResidentHandler.
func (h *ResidentHandlerImpl) BlockAbsentees(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.residentService.BlockAbsentees)
}

// UnblockAll implements ResidentHandler.
func (h *ResidentHandlerImpl) UnblockAll(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, h.residentService.UnblockAll)
}

func (h *ResidentHandlerImpl) bulk(w http.ResponseWriter, r *http.Request, fn func(context.Context) (resident.BulkResult, error)) {
	result, err := fn(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.dispatcher.Dispatch(r.Context(), result.Events...)
	response.SuccessWithMessage(w, result.Message, result)
}

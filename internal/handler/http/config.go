package http

import (
	"net/http"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/sysconfig"
	"github.com/hostel-arena/hms-backend-go/internal/handler/http/response"
)

type ConfigHandler interface {
	Get(w http.ResponseWriter, r *http.Request)
	Update(w http.ResponseWriter, r *http.Request)
}

type ConfigHandlerImpl struct {
	configService sysconfig.ConfigService
	dispatcher    event.Dispatcher
}

func NewConfigHandler(configService sysconfig.ConfigService, dispatcher event.Dispatcher) ConfigHandler {
	return &ConfigHandlerImpl{
		configService: configService,
		dispatcher:    dispatcher,
	}
}

// Get implements ConfigHandler.
func (h *ConfigHandlerImpl) Get(w http.ResponseWriter, r *http.Request) {
	cfg, err := h.configService.Get(r.Context())
	if err != nil {
		response.HandleError(w, err)
		return
	}
	response.Success(w, cfg)
}

// Update implements ConfigHandler.
func (h *ConfigHandlerImpl) Update(w http.ResponseWriter, r *http.Request) {
	var req sysconfig.UpdateConfigRequest
	if !decodeJSON(w, r, &req, "UpdateConfig") {
		return
	}

	cfg, err := h.configService.Update(r.Context(), req)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	h.dispatcher.Dispatch(r.Context(), cfg.Events...)
	response.SuccessWithMessage(w, "Security settings updated", cfg)
}

package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/hostel-arena/hms-backend-go/internal/domain/auth"
	"github.com/hostel-arena/hms-backend-go/internal/handler/http/response"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/jwt"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/sse"
)

const keepaliveInterval = 30 * time.Second

type EventsHandler interface {
	StreamToken(w http.ResponseWriter, r *http.Request)
	Stream(w http.ResponseWriter, r *http.Request)
}

type EventsHandlerImpl struct {
	hub        *sse.Hub
	jwtService jwt.Service
	keepalive  time.Duration
}

func NewEventsHandler(hub *sse.Hub, jwtService jwt.Service) EventsHandler {
	return &EventsHandlerImpl{
		hub:        hub,
		jwtService: jwtService,
		keepalive:  keepaliveInterval,
	}
}

type streamTokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"`
}

// StreamToken implements EventsHandler. EventSource cannot send an
// Authorization header, so dashboards trade their access token for a
// short-lived token passed as ?token=.
func (h *EventsHandlerImpl) StreamToken(w http.ResponseWriter, r *http.Request) {
	claims, ok := callerClaims(w, r)
	if !ok {
		return
	}

	token, expiresIn, err := h.jwtService.GenerateStreamToken(claims)
	if err != nil {
		slog.Error("failed to generate stream token", "error", err, "user_id", claims.UserID)
		response.InternalServerError(w, "Failed to generate stream token")
		return
	}

	response.Success(w, streamTokenResponse{Token: token, ExpiresIn: expiresIn})
}

// Stream implements EventsHandler.
func (h *EventsHandlerImpl) Stream(w http.ResponseWriter, r *http.Request) {
	claims, err := h.streamClaims(r)
	if err != nil {
		response.HandleError(w, err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		response.InternalServerError(w, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")

	events, cleanup := h.hub.Subscribe(claims.UserID)
	defer cleanup()

	fmt.Fprintf(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()

	keepalive := time.NewTicker(h.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case e, ok := <-events:
			if !ok {
				return
			}
			data, err := json.Marshal(e.Payload)
			if err != nil {
				slog.Warn("dropping unencodable event", "event", e.Name, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Name, data)
			flusher.Flush()

		case <-keepalive.C:
			fmt.Fprintf(w, "event: ping\ndata: {\"timestamp\":%d}\n\n", time.Now().Unix())
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}

// streamClaims accepts a ?token= stream token, or falls back to a verified
// access token from the Authorization header.
func (h *EventsHandlerImpl) streamClaims(r *http.Request) (auth.Claims, error) {
	if tokenStr := r.URL.Query().Get("token"); tokenStr != "" {
		return h.jwtService.ValidateStreamToken(tokenStr)
	}

	token, m, err := jwtauth.FromContext(r.Context())
	if err != nil || token == nil {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	claims := auth.ClaimsFromMap(m)
	if claims.Type != auth.TokenTypeAccess || claims.UserID == "" {
		return auth.Claims{}, auth.ErrInvalidToken
	}
	return claims, nil
}

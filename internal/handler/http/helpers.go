package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/hostel-arena/hms-backend-go/internal/domain/auth"
	"github.com/hostel-arena/hms-backend-go/internal/handler/http/middleware"
	"github.com/hostel-arena/hms-backend-go/internal/handler/http/response"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads the request body into dst. An empty body leaves dst untouched.
// On failure it writes a 400 and returns false.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}, op string) bool {
	err := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes)).Decode(dst)
	if err == nil || errors.Is(err, io.EOF) {
		return true
	}
	slog.Debug(op+" decode error", "error", err)
	response.BadRequest(w, "Invalid request format", nil)
	return false
}

// callerClaims returns the authenticated caller or writes a 401.
func callerClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		response.HandleError(w, auth.ErrInvalidToken)
		return auth.Claims{}, false
	}
	return claims, true
}

// studentResidentID returns the resident bound to a student token or writes a 403.
func studentResidentID(w http.ResponseWriter, claims auth.Claims) (string, bool) {
	if claims.ResidentID == "" {
		response.HandleError(w, auth.ErrResidentClaim)
		return "", false
	}
	return claims.ResidentID, true
}

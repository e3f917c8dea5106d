package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/hostel-arena/hms-backend-go/internal/domain/auth"
	"github.com/hostel-arena/hms-backend-go/internal/handler/http/response"
)

const DeviceKeyHeader = "X-Device-Key"

// DeviceKey authenticates fingerprint kiosks by their shared key.
func DeviceKey(key string) func(http.Handler) http.Handler {
	expected := []byte(key)
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got := []byte(r.Header.Get(DeviceKeyHeader))
			if len(expected) == 0 || subtle.ConstantTimeCompare(got, expected) != 1 {
				response.HandleError(w, auth.ErrInvalidDeviceKey)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
	"github.com/hostel-arena/hms-backend-go/internal/domain/mess"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/database"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandleError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"resident not found", resident.ErrResidentNotFound, http.StatusNotFound, CodeNotFound},
		{"leave not found wrapped", fmt.Errorf("get leave: %w", leave.ErrLeaveNotFound), http.StatusNotFound, CodeNotFound},
		{"window closed", resident.ErrAttendanceWindowClosed, http.StatusForbidden, CodeWindowClosed},
		{"already generated", leave.ErrOutpassAlreadyGenerated, http.StatusConflict, CodeAlreadyGenerated},
		{"parent approval", leave.ErrParentApprovalRequired, http.StatusBadRequest, CodeParentApprovalRequired},
		{"too early", leave.ErrOutpassTooEarly, http.StatusBadRequest, CodeTooEarly},
		{"mess token not found", mess.ErrTokenNotFound, http.StatusNotFound, CodeNotFound},
		{"mess token closed", mess.ErrTokenClosed, http.StatusConflict, CodeTokenClosed},
		{"no special food", mess.ErrNoSpecialFood, http.StatusForbidden, CodeNoSpecialFood},
		{"registration closed", fmt.Errorf("%w: Biryani is available 17:00 - 21:00", mess.ErrRegistrationClosed), http.StatusForbidden, CodeRegistrationClosed},
		{"validation", validator.ValidationErrors{{Field: "roll_no", Message: "required"}}, http.StatusUnprocessableEntity, CodeValidation},
		{"store unavailable", fmt.Errorf("%w: %w", database.ErrStoreUnavailable, errors.New("dial tcp")), http.StatusServiceUnavailable, CodeStoreUnavailable},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, CodeInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			HandleError(rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			var body Response
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
			assert.False(t, body.Success)
			require.NotNil(t, body.Error)
			assert.Equal(t, tt.wantCode, body.Error.Code)
		})
	}
}

func TestOutsideLeaveHoursKeepsDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	HandleError(rec, fmt.Errorf("%w: outings must leave between 06:00 and 22:00", leave.ErrOutsideLeaveHours))

	var body Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, body.Error.Message, "06:00")
}

package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/hostel-arena/hms-backend-go/internal/domain/auth"
	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/clock"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/jwt"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/printer"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/sse"
	"github.com/hostel-arena/hms-backend-go/internal/repository/memory"
	attendanceService "github.com/hostel-arena/hms-backend-go/internal/service/attendance"
	leaveService "github.com/hostel-arena/hms-backend-go/internal/service/leave"
	messService "github.com/hostel-arena/hms-backend-go/internal/service/mess"
	residentService "github.com/hostel-arena/hms-backend-go/internal/service/resident"
	configService "github.com/hostel-arena/hms-backend-go/internal/service/sysconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	testSecret    = "router-test-secret"
	testDeviceKey = "gate-kiosk-key"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

type recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *recorder) Dispatch(_ context.Context, events ...event.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, events...)
}

func (r *recorder) names() []event.Name {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]event.Name, 0, len(r.events))
	for _, e := range r.events {
		names = append(names, e.Name)
	}
	return names
}

type testServer struct {
	router    *chi.Mux
	clock     *clock.Manual
	residents resident.ResidentRepository
	events    *recorder
	jwt       jwt.Service
}

func newTestServer(t *testing.T, now time.Time) *testServer {
	t.Helper()

	clk := clock.NewManual(now)
	store := memory.NewStore(clk)
	residents := memory.NewResidentRepository(store)
	leaves := memory.NewLeaveRepository(store)
	configs := memory.NewConfigRepository(store)

	rec := &recorder{}
	jwtService := jwt.NewJWTService(testSecret)

	attendanceSvc := attendanceService.NewAttendanceService(store, residents, leaves, configs, clk, nil)
	leaveSvc := leaveService.NewLeaveService(store, leaves, residents, configs, printer.NewTCPPrinter("", time.Second), clk, nil)

	router := NewRouter(
		RouterOptions{FrontendURL: "http://localhost:5173", DeviceKey: testDeviceKey, Env: "test"},
		jwtService,
		NewKioskHandler(attendanceSvc, leaveSvc, rec),
		NewLeaveHandler(leaveSvc, rec),
		NewConfigHandler(configService.NewConfigService(configs), rec),
		NewResidentHandler(residentService.NewResidentService(residents), rec),
		NewMessHandler(messService.NewMessService(memory.NewTokenRepository(store), residents, configs, clk, nil), rec),
		NewEventsHandler(sse.NewHub(), jwtService),
	)

	return &testServer{router: router, clock: clk, residents: residents, events: rec, jwt: jwtService}
}

func (s *testServer) token(t *testing.T, role auth.Role, residentID string) string {
	t.Helper()
	_, token, err := s.jwt.JWTAuth().Encode(map[string]interface{}{
		"user_id":     "user-" + string(role),
		"role":        string(role),
		"resident_id": residentID,
		"type":        auth.TokenTypeAccess,
		"exp":         time.Now().Add(time.Hour).Unix(),
	})
	require.NoError(t, err)
	return token
}

func (s *testServer) seedResident(t *testing.T, rollNo string) resident.Resident {
	t.Helper()
	res, err := s.residents.Create(context.Background(), resident.Resident{
		RollNo:           rollNo,
		Name:             "Resident " + rollNo,
		AttendanceStatus: resident.StatusAbsent,
	})
	require.NoError(t, err)
	return res
}

type apiResponse struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string            `json:"code"`
		Message string            `json:"message"`
		Details map[string]string `json:"details"`
	} `json:"error"`
	Meta *struct {
		Total int `json:"total"`
	} `json:"meta"`
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}, headers map[string]string) (*httptest.ResponseRecorder, apiResponse) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	rr := httptest.NewRecorder()
	s.router.ServeHTTP(rr, req)

	var resp apiResponse
	if rr.Header().Get("Content-Type") == "application/json" {
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	}
	return rr, resp
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, time.Date(2026, 3, 10, 12, 0, 0, 0, ist))

	rr, _ := s.do(t, http.MethodGet, "/health", nil, nil)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestKiosk_DeviceKey(t *testing.T) {
	s := newTestServer(t, time.Date(2026, 3, 10, 19, 30, 0, 0, ist))
	s.seedResident(t, "21CS001")
	body := map[string]string{"roll_no": "21CS001"}

	tests := []struct {
		name    string
		headers map[string]string
	}{
		{name: "missing key", headers: nil},
		{name: "wrong key", headers: map[string]string{"X-Device-Key": "nope"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr, resp := s.do(t, http.MethodPost, "/api/v1/kiosk/attendance", body, tt.headers)
			assert.Equal(t, http.StatusUnauthorized, rr.Code)
			require.NotNil(t, resp.Error)
			assert.Equal(t, "UNAUTHORIZED", resp.Error.Code)
		})
	}
}

func TestKiosk_MarkAttendance(t *testing.T) {
	s := newTestServer(t, time.Date(2026, 3, 10, 19, 30, 0, 0, ist))
	res := s.seedResident(t, "21CS001")
	device := map[string]string{"X-Device-Key": testDeviceKey}

	rr, resp := s.do(t, http.MethodPost, "/api/v1/kiosk/attendance", map[string]string{"roll_no": "21CS001"}, device)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.True(t, resp.Success)

	var data resident.MarkAttendanceResponse
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	assert.Equal(t, resident.OutcomePresent, data.Status)
	assert.Equal(t, []event.Name{event.CensusUpdate}, s.events.names())

	stored, err := s.residents.GetByID(context.Background(), res.ID)
	require.NoError(t, err)
	assert.Equal(t, resident.StatusPresent, stored.AttendanceStatus)

	s.clock.Set(time.Date(2026, 3, 10, 20, 1, 0, 0, ist))
	rr, resp = s.do(t, http.MethodPost, "/api/v1/kiosk/attendance", map[string]string{"roll_no": "21CS001"}, device)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "WINDOW_CLOSED", resp.Error.Code)
}

func TestKiosk_UnknownRollNo(t *testing.T) {
	s := newTestServer(t, time.Date(2026, 3, 10, 19, 30, 0, 0, ist))

	rr, resp := s.do(t, http.MethodPost, "/api/v1/kiosk/attendance",
		map[string]string{"roll_no": "MISSING"}, map[string]string{"X-Device-Key": testDeviceKey})
	assert.Equal(t, http.StatusNotFound, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NOT_FOUND", resp.Error.Code)
}

func TestAuth_TokenRequired(t *testing.T) {
	s := newTestServer(t, time.Date(2026, 3, 10, 12, 0, 0, 0, ist))

	rr, _ := s.do(t, http.MethodGet, "/api/v1/config", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	rr, _ = s.do(t, http.MethodGet, "/api/v1/config", nil, bearer("not-a-token"))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)

	// Stream tokens only open event streams.
	streamToken, _, err := s.jwt.GenerateStreamToken(auth.Claims{UserID: "u1", Role: auth.RoleWarden})
	require.NoError(t, err)
	rr, _ = s.do(t, http.MethodGet, "/api/v1/config", nil, bearer(streamToken))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestConfig_GetAndUpdate(t *testing.T) {
	s := newTestServer(t, time.Date(2026, 3, 10, 12, 0, 0, 0, ist))

	rr, resp := s.do(t, http.MethodGet, "/api/v1/config", nil, bearer(s.token(t, auth.RoleStudent, "r1")))
	require.Equal(t, http.StatusOK, rr.Code)
	var cfg map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &cfg))
	assert.Equal(t, "19:00", cfg["attendance_start"])

	update := map[string]string{"curfew_time": "21:30"}

	rr, resp = s.do(t, http.MethodPut, "/api/v1/config", update, bearer(s.token(t, auth.RoleStudent, "r1")))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "FORBIDDEN", resp.Error.Code)

	rr, resp = s.do(t, http.MethodPut, "/api/v1/config", update, bearer(s.token(t, auth.RoleWarden, "")))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(resp.Data, &cfg))
	assert.Equal(t, "21:30", cfg["curfew_time"])
	assert.Contains(t, s.events.names(), event.ConfigUpdate)

	rr, resp = s.do(t, http.MethodPut, "/api/v1/config", map[string]string{"curfew_time": "25:00"}, bearer(s.token(t, auth.RoleWarden, "")))
	assert.Equal(t, http.StatusUnprocessableEntity, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Contains(t, resp.Error.Details, "curfew_time")
}

func TestResidents_RegisterAndList(t *testing.T) {
	s := newTestServer(t, time.Date(2026, 3, 10, 12, 0, 0, 0, ist))
	warden := bearer(s.token(t, auth.RoleWarden, ""))

	rr, _ := s.do(t, http.MethodGet, "/api/v1/residents", nil, bearer(s.token(t, auth.RoleStudent, "r1")))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, resp := s.do(t, http.MethodPost, "/api/v1/residents", map[string]string{"roll_no": "21CS010", "name": "Asha"}, warden)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created resident.ResidentResponse
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, "21CS010", created.RollNo)
	assert.NotEmpty(t, created.ID)

	rr, _ = s.do(t, http.MethodPost, "/api/v1/residents", map[string]string{"roll_no": "21CS010", "name": "Dup"}, warden)
	assert.Equal(t, http.StatusConflict, rr.Code)

	rr, resp = s.do(t, http.MethodGet, "/api/v1/residents?search=21CS", nil, warden)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)

	rr, _ = s.do(t, http.MethodGet, "/api/v1/residents?blocked=maybe", nil, warden)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr, _ = s.do(t, http.MethodGet, "/api/v1/residents/"+created.ID, nil, warden)
	assert.Equal(t, http.StatusOK, rr.Code)
}

func TestLeaves_ApplyAsStudent(t *testing.T) {
	s := newTestServer(t, time.Date(2026, 3, 9, 10, 0, 0, 0, ist))
	res := s.seedResident(t, "21CS020")

	body := map[string]string{
		"leave_type": "Leave",
		"out_date":   "2026-03-10",
		"out_time":   "16:00",
		"in_date":    "2026-03-12",
		"in_time":    "18:00",
		"reason":     "family function",
	}

	rr, _ := s.do(t, http.MethodPost, "/api/v1/leaves", body, bearer(s.token(t, auth.RoleStudent, "")))
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, resp := s.do(t, http.MethodPost, "/api/v1/leaves", body, bearer(s.token(t, auth.RoleStudent, res.ID)))
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var created map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &created))
	assert.Equal(t, res.ID, created["resident_id"])
	assert.Equal(t, "Pending", created["warden_status"])

	body["out_time"] = "11:00"
	rr, resp = s.do(t, http.MethodPost, "/api/v1/leaves", body, bearer(s.token(t, auth.RoleStudent, res.ID)))
	assert.Equal(t, http.StatusForbidden, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "OUTSIDE_LEAVE_HOURS", resp.Error.Code)

	rr, resp = s.do(t, http.MethodGet, "/api/v1/leaves/resident/"+res.ID, nil, bearer(s.token(t, auth.RoleStudent, res.ID)))
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)

	rr, _ = s.do(t, http.MethodGet, "/api/v1/leaves/resident/"+res.ID, nil, bearer(s.token(t, auth.RoleStudent, "someone-else")))
	assert.Equal(t, http.StatusForbidden, rr.Code)
}

func TestMess_SpecialFoodTokenFlow(t *testing.T) {
	s := newTestServer(t, time.Date(2026, 3, 10, 18, 0, 0, 0, ist))
	res := s.seedResident(t, "21CS050")
	student := bearer(s.token(t, auth.RoleStudent, res.ID))
	messWarden := bearer(s.token(t, auth.RoleMessWarden, ""))

	rr, resp := s.do(t, http.MethodPost, "/api/v1/mess/tokens", map[string]string{"token_type": "Digital"}, student)
	assert.Equal(t, http.StatusForbidden, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "NO_SPECIAL_FOOD", resp.Error.Code)

	schedule := map[string]string{
		"name":           "Biryani",
		"session":        "Dinner",
		"date":           "2026-03-10",
		"start_time":     "17:00",
		"end_time":       "00:00",
		"providing_date": "2026-03-11",
	}
	rr, _ = s.do(t, http.MethodPut, "/api/v1/mess/special-food", schedule, student)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr, _ = s.do(t, http.MethodPut, "/api/v1/mess/special-food", schedule, messWarden)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, s.events.names(), event.ConfigUpdate)

	s.clock.Set(time.Date(2026, 3, 10, 23, 45, 0, 0, ist))
	rr, resp = s.do(t, http.MethodPost, "/api/v1/mess/tokens", map[string]string{"token_type": "Digital"}, student)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	var token map[string]interface{}
	require.NoError(t, json.Unmarshal(resp.Data, &token))
	assert.Equal(t, "Biryani", token["food_name"])
	assert.Equal(t, "Active", token["status"])
	assert.Contains(t, s.events.names(), event.MessTokenUpdate)
	tokenID := token["id"].(string)

	rr, resp = s.do(t, http.MethodGet, "/api/v1/mess/tokens/resident/"+res.ID, nil, student)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 1, resp.Meta.Total)

	rr, _ = s.do(t, http.MethodGet, "/api/v1/mess/tokens/active", nil, student)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	billing := map[string]interface{}{"total_spent": 1200, "student_count": 10}
	rr, resp = s.do(t, http.MethodPost, "/api/v1/mess/tokens/"+tokenID+"/close", billing, messWarden)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	require.NoError(t, json.Unmarshal(resp.Data, &token))
	assert.Equal(t, "Closed", token["status"])
	assert.EqualValues(t, 120, token["price"])

	rr, resp = s.do(t, http.MethodPost, "/api/v1/mess/tokens/"+tokenID+"/close", billing, messWarden)
	assert.Equal(t, http.StatusConflict, rr.Code)
	require.NotNil(t, resp.Error)
	assert.Equal(t, "TOKEN_CLOSED", resp.Error.Code)

	rr, resp = s.do(t, http.MethodGet, "/api/v1/mess/tokens/active", nil, messWarden)
	require.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, resp.Meta)
	assert.Zero(t, resp.Meta.Total)
}

func TestEvents_StreamToken(t *testing.T) {
	s := newTestServer(t, time.Date(2026, 3, 10, 12, 0, 0, 0, ist))

	rr, resp := s.do(t, http.MethodPost, "/api/v1/events/token", nil, bearer(s.token(t, auth.RoleWarden, "")))
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())

	var data struct {
		Token     string `json:"token"`
		ExpiresIn int    `json:"expires_in"`
	}
	require.NoError(t, json.Unmarshal(resp.Data, &data))
	require.NotEmpty(t, data.Token)

	claims, err := s.jwt.ValidateStreamToken(data.Token)
	require.NoError(t, err)
	assert.Equal(t, "user-warden", claims.UserID)

	rr, _ = s.do(t, http.MethodGet, "/api/v1/events/stream?token=garbage", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

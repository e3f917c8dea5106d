package leave

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hostel-arena/hms-backend-go/internal/domain/event"
	"github.com/hostel-arena/hms-backend-go/internal/domain/leave"
	"github.com/hostel-arena/hms-backend-go/internal/domain/resident"
	"github.com/hostel-arena/hms-backend-go/internal/domain/sysconfig"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/clock"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/metrics"
	"github.com/hostel-arena/hms-backend-go/internal/pkg/validator"
	"github.com/hostel-arena/hms-backend-go/internal/repository/memory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var ist = time.FixedZone("IST", 5*3600+30*60)

type fakePrinter struct {
	err      error
	received []leave.PrintPayload
}

func (p *fakePrinter) PrintReceipt(_ context.Context, payload leave.PrintPayload) error {
	p.received = append(p.received, payload)
	return p.err
}

type fixture struct {
	clock     *clock.Manual
	residents resident.ResidentRepository
	leaves    leave.LeaveRepository
	config    sysconfig.ConfigRepository
	printer   *fakePrinter
	metrics   *metrics.Metrics
	svc       leave.LeaveService
}

func newFixture(t *testing.T, now time.Time) *fixture {
	t.Helper()
	clk := clock.NewManual(now)
	store := memory.NewStore(clk)
	f := &fixture{
		clock:     clk,
		residents: memory.NewResidentRepository(store),
		leaves:    memory.NewLeaveRepository(store),
		config:    memory.NewConfigRepository(store),
		printer:   &fakePrinter{},
		metrics:   metrics.New(prometheus.NewRegistry()),
	}
	f.svc = NewLeaveService(store, f.leaves, f.residents, f.config, f.printer, clk, f.metrics)
	return f
}

func (f *fixture) seedResident(t *testing.T, rollNo string) resident.Resident {
	t.Helper()
	res, err := f.residents.Create(context.Background(), resident.Resident{
		RollNo:           rollNo,
		Name:             "Resident " + rollNo,
		AttendanceStatus: resident.StatusPresent,
	})
	require.NoError(t, err)
	return res
}

// seedLeave stores a leave departing on 2026-03-10 at outTime and returning on 2026-03-12.
func (f *fixture) seedLeave(t *testing.T, residentID, outTime string, warden, parent leave.ApprovalStatus) leave.Leave {
	t.Helper()
	l, err := f.leaves.Create(context.Background(), leave.Leave{
		ResidentID:    residentID,
		Type:          leave.TypeLeave,
		OutDate:       time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		OutTime:       outTime,
		InDate:        time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		InTime:        "18:00",
		Reason:        "family function",
		WardenStatus:  warden,
		ParentStatus:  parent,
		OutpassType:   leave.OutpassNone,
		OutpassStatus: leave.OutpassOpen,
	})
	require.NoError(t, err)
	return l
}

func applyRequest(residentID, leaveType, outTime string) leave.ApplyLeaveRequest {
	return leave.ApplyLeaveRequest{
		ResidentID: residentID,
		LeaveType:  leaveType,
		OutDate:    "2026-03-10",
		OutTime:    outTime,
		InDate:     "2026-03-12",
		InTime:     "18:00",
		Reason:     "family function",
	}
}

func TestApply(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 9, 10, 0, 0, 0, ist))
	r := f.seedResident(t, "21CS101")

	tests := []struct {
		name       string
		req        leave.ApplyLeaveRequest
		wantErr    error
		wantWarden string
	}{
		{name: "leave after college hours", req: applyRequest(r.ID, "Leave", "16:00"), wantWarden: "Pending"},
		{name: "leave during college hours", req: applyRequest(r.ID, "Leave", "15:59"), wantErr: leave.ErrOutsideLeaveHours},
		{name: "general leave is pre-approved by warden", req: applyRequest(r.ID, "General Leave", "17:00"), wantWarden: "Approved"},
		{name: "emergency at any hour", req: applyRequest(r.ID, "Emergency", "03:00"), wantWarden: "Pending"},
		{name: "outing at curfew", req: applyRequest(r.ID, "Outing", "22:00"), wantWarden: "Pending"},
		{name: "outing after curfew", req: applyRequest(r.ID, "Outing", "22:01"), wantErr: leave.ErrOutsideLeaveHours},
		{name: "outing before six", req: applyRequest(r.ID, "Outing", "05:59"), wantErr: leave.ErrOutsideLeaveHours},
		{name: "unknown resident", req: applyRequest("missing", "Emergency", "10:00"), wantErr: resident.ErrResidentNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := f.svc.Apply(context.Background(), tt.req)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantWarden, resp.WardenStatus)
			assert.Equal(t, "Pending", resp.ParentStatus)
			assert.Equal(t, "None", resp.OutpassType)
			assert.Equal(t, "2026-03-10", resp.OutDate)
		})
	}
}

func TestApply_OutingWithMidnightCurfew(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 9, 10, 0, 0, 0, ist))
	r := f.seedResident(t, "21CS109")
	midnight := "00:00"
	_, err := f.config.Update(context.Background(), sysconfig.Patch{CurfewTime: &midnight})
	require.NoError(t, err)

	for _, outTime := range []string{"06:00", "22:30", "23:59"} {
		_, err := f.svc.Apply(context.Background(), applyRequest(r.ID, "Outing", outTime))
		assert.NoError(t, err, outTime)
	}

	_, err = f.svc.Apply(context.Background(), applyRequest(r.ID, "Outing", "05:59"))
	assert.ErrorIs(t, err, leave.ErrOutsideLeaveHours)
}

func TestApply_ReturnMustFollowDeparture(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 9, 10, 0, 0, 0, ist))
	r := f.seedResident(t, "21CS102")

	req := applyRequest(r.ID, "Emergency", "10:00")
	req.InDate = "2026-03-10"
	req.InTime = "10:00"

	_, err := f.svc.Apply(context.Background(), req)
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs.ToMap(), "in_date")
}

func TestReviewByParent_RequiresWardenApproval(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 9, 10, 0, 0, 0, ist))
	r := f.seedResident(t, "21CS103")
	l := f.seedLeave(t, r.ID, "17:00", leave.ApprovalPending, leave.ApprovalPending)

	_, err := f.svc.ReviewByParent(context.Background(), leave.ReviewRequest{LeaveID: l.ID, Status: "Approved"})
	assert.ErrorIs(t, err, leave.ErrWardenApprovalRequired)

	_, err = f.svc.ReviewByWarden(context.Background(), leave.ReviewRequest{LeaveID: l.ID, Status: "Approved"})
	require.NoError(t, err)

	resp, err := f.svc.ReviewByParent(context.Background(), leave.ReviewRequest{LeaveID: l.ID, Status: "Approved"})
	require.NoError(t, err)
	assert.Equal(t, "Approved", resp.WardenStatus)
	assert.Equal(t, "Approved", resp.ParentStatus)
}

func TestReviewByParent_GeneralLeaveSkipsWarden(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 9, 10, 0, 0, 0, ist))
	r := f.seedResident(t, "21CS104")
	l, err := f.leaves.Create(context.Background(), leave.Leave{
		ResidentID:   r.ID,
		Type:         leave.TypeGeneralLeave,
		OutDate:      time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC),
		OutTime:      "17:00",
		InDate:       time.Date(2026, 3, 12, 0, 0, 0, 0, time.UTC),
		InTime:       "18:00",
		Reason:       "semester break",
		WardenStatus: leave.ApprovalPending,
		ParentStatus: leave.ApprovalPending,
	})
	require.NoError(t, err)

	resp, err := f.svc.ReviewByParent(context.Background(), leave.ReviewRequest{LeaveID: l.ID, Status: "Rejected"})
	require.NoError(t, err)
	assert.Equal(t, "Rejected", resp.ParentStatus)
}

func TestReview_InvalidStatus(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 9, 10, 0, 0, 0, ist))

	_, err := f.svc.ReviewByWarden(context.Background(), leave.ReviewRequest{LeaveID: "x", Status: "Maybe"})
	var verrs validator.ValidationErrors
	assert.ErrorAs(t, err, &verrs)

	_, err = f.svc.ReviewByWarden(context.Background(), leave.ReviewRequest{LeaveID: "missing", Status: "Approved"})
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)
}

func TestGenerateOutpass_Preconditions(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 17, 0, 0, 0, ist))
	r := f.seedResident(t, "21CS105")

	t.Run("parent approval required", func(t *testing.T) {
		l := f.seedLeave(t, r.ID, "17:00", leave.ApprovalApproved, leave.ApprovalPending)
		_, err := f.svc.GenerateOutpass(context.Background(), leave.GenerateOutpassRequest{LeaveID: l.ID, Type: "Digital"})
		assert.ErrorIs(t, err, leave.ErrParentApprovalRequired)
	})

	t.Run("one minute early", func(t *testing.T) {
		l := f.seedLeave(t, r.ID, "17:01", leave.ApprovalApproved, leave.ApprovalApproved)
		_, err := f.svc.GenerateOutpass(context.Background(), leave.GenerateOutpassRequest{LeaveID: l.ID, Type: "Digital"})
		assert.ErrorIs(t, err, leave.ErrOutpassTooEarly)
	})

	t.Run("not the owner", func(t *testing.T) {
		l := f.seedLeave(t, r.ID, "17:00", leave.ApprovalApproved, leave.ApprovalApproved)
		other := "someone-else"
		_, err := f.svc.GenerateOutpass(context.Background(), leave.GenerateOutpassRequest{LeaveID: l.ID, ResidentID: &other, Type: "Digital"})
		assert.ErrorIs(t, err, leave.ErrLeaveNotOwned)
	})

	t.Run("invalid type", func(t *testing.T) {
		_, err := f.svc.GenerateOutpass(context.Background(), leave.GenerateOutpassRequest{LeaveID: "x", Type: "Paper"})
		var verrs validator.ValidationErrors
		assert.ErrorAs(t, err, &verrs)
	})
}

func TestGenerateOutpass_AtDepartureAndOnlyOnce(t *testing.T) {
	now := time.Date(2026, 3, 10, 17, 0, 0, 0, ist)
	f := newFixture(t, now)
	r := f.seedResident(t, "21CS106")
	l := f.seedLeave(t, r.ID, "17:00", leave.ApprovalApproved, leave.ApprovalApproved)
	owner := r.ID

	resp, err := f.svc.GenerateOutpass(context.Background(), leave.GenerateOutpassRequest{LeaveID: l.ID, ResidentID: &owner, Type: "Digital"})
	require.NoError(t, err)

	assert.Equal(t, "Digital", resp.Leave.OutpassType)
	assert.Equal(t, "Open", resp.Leave.OutpassStatus)
	require.NotNil(t, resp.Leave.OutpassGeneratedAt)
	require.Len(t, resp.Events, 2)
	assert.Equal(t, event.OutpassUpdate, resp.Events[0].Name)
	assert.Equal(t, event.CensusUpdate, resp.Events[1].Name)

	stored, err := f.residents.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, resident.StatusOut, stored.AttendanceStatus)

	_, err = f.svc.GenerateOutpass(context.Background(), leave.GenerateOutpassRequest{LeaveID: l.ID, Type: "Physical"})
	assert.ErrorIs(t, err, leave.ErrOutpassAlreadyGenerated)

	saved, err := f.leaves.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.OutpassDigital, saved.OutpassType)
	assert.Equal(t, 1.0, testutil.ToFloat64(f.metrics.OutpassesGenerated.WithLabelValues("Digital")))
}

func TestTriggerPhysicalOutpass(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 18, 0, 0, 0, ist))
	r := f.seedResident(t, "21CS107")
	l := f.seedLeave(t, r.ID, "17:00", leave.ApprovalApproved, leave.ApprovalApproved)

	resp, err := f.svc.TriggerPhysicalOutpass(context.Background(), leave.TriggerPhysicalOutpassRequest{RollNo: "21CS107"})
	require.NoError(t, err)

	assert.Nil(t, resp.PrintError)
	assert.Equal(t, "21CS107", resp.PrintData.RollNo)
	assert.Equal(t, "2026-03-10", resp.PrintData.OutDate)
	assert.Equal(t, "18:00", resp.PrintData.InTime)
	assert.Len(t, resp.PrintData.PassID, 8)
	assert.Equal(t, l.PassID(), resp.PrintData.PassID)
	require.Len(t, f.printer.received, 1)

	saved, err := f.leaves.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.OutpassPhysical, saved.OutpassType)

	_, err = f.svc.TriggerPhysicalOutpass(context.Background(), leave.TriggerPhysicalOutpassRequest{RollNo: "21CS107"})
	assert.ErrorIs(t, err, leave.ErrNoPendingLeave)
}

func TestTriggerPhysicalOutpass_PrinterFailureKeepsOutpass(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 18, 0, 0, 0, ist))
	f.printer.err = errors.New("connection refused")
	r := f.seedResident(t, "21CS108")
	l := f.seedLeave(t, r.ID, "17:00", leave.ApprovalApproved, leave.ApprovalApproved)

	resp, err := f.svc.TriggerPhysicalOutpass(context.Background(), leave.TriggerPhysicalOutpassRequest{RollNo: "21CS108"})
	require.NoError(t, err)

	require.NotNil(t, resp.PrintError)
	assert.Contains(t, *resp.PrintError, "connection refused")

	saved, err := f.leaves.GetByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, leave.OutpassPhysical, saved.OutpassType)

	stored, err := f.residents.GetByID(context.Background(), r.ID)
	require.NoError(t, err)
	assert.Equal(t, resident.StatusOut, stored.AttendanceStatus)
}

func TestTriggerPhysicalOutpass_TooEarly(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 10, 16, 0, 0, 0, ist))
	r := f.seedResident(t, "21CS109")
	f.seedLeave(t, r.ID, "17:00", leave.ApprovalApproved, leave.ApprovalApproved)

	_, err := f.svc.TriggerPhysicalOutpass(context.Background(), leave.TriggerPhysicalOutpassRequest{RollNo: "21CS109"})
	assert.ErrorIs(t, err, leave.ErrOutpassTooEarly)
	assert.Empty(t, f.printer.received)
}

func TestWithdraw(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 9, 10, 0, 0, 0, ist))
	r := f.seedResident(t, "21CS110")
	owner := r.ID
	other := "another-resident"

	pending := f.seedLeave(t, r.ID, "17:00", leave.ApprovalApproved, leave.ApprovalPending)
	approved := f.seedLeave(t, r.ID, "17:00", leave.ApprovalApproved, leave.ApprovalApproved)

	err := f.svc.Withdraw(context.Background(), leave.WithdrawRequest{LeaveID: pending.ID, ResidentID: &other})
	assert.ErrorIs(t, err, leave.ErrLeaveNotOwned)

	err = f.svc.Withdraw(context.Background(), leave.WithdrawRequest{LeaveID: approved.ID, ResidentID: &owner})
	assert.ErrorIs(t, err, leave.ErrLeaveNotWithdrawable)

	require.NoError(t, f.svc.Withdraw(context.Background(), leave.WithdrawRequest{LeaveID: pending.ID, ResidentID: &owner}))

	_, err = f.leaves.GetByID(context.Background(), pending.ID)
	assert.ErrorIs(t, err, leave.ErrLeaveNotFound)
}

func TestListAndSearch(t *testing.T) {
	f := newFixture(t, time.Date(2026, 3, 9, 10, 0, 0, 0, ist))
	a := f.seedResident(t, "21CS201")
	b := f.seedResident(t, "22ME305")

	first := f.seedLeave(t, a.ID, "17:00", leave.ApprovalPending, leave.ApprovalPending)
	second := f.seedLeave(t, a.ID, "18:00", leave.ApprovalApproved, leave.ApprovalPending)
	third := f.seedLeave(t, b.ID, "17:00", leave.ApprovalPending, leave.ApprovalPending)

	listed, err := f.svc.ListByResident(context.Background(), a.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)
	assert.Equal(t, second.ID, listed[0].ID)
	assert.Equal(t, first.ID, listed[1].ID)

	all, err := f.svc.Search(context.Background(), leave.SearchRequest{Query: "ALL"})
	require.NoError(t, err)
	ids := []string{}
	for _, l := range all {
		ids = append(ids, l.ID)
	}
	assert.ElementsMatch(t, []string{first.ID, third.ID}, ids)

	byRoll, err := f.svc.Search(context.Background(), leave.SearchRequest{Query: "me3"})
	require.NoError(t, err)
	require.Len(t, byRoll, 1)
	assert.Equal(t, third.ID, byRoll[0].ID)
	require.NotNil(t, byRoll[0].ResidentRollNo)
	assert.Equal(t, "22ME305", *byRoll[0].ResidentRollNo)

	none, err := f.svc.Search(context.Background(), leave.SearchRequest{Query: "XYZ"})
	require.NoError(t, err)
	assert.Empty(t, none)
}

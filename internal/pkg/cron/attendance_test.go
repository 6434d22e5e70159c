package cron

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analytics/internal/domain/member"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/sse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWorkspace = "ws-1"

// fakeAttendanceRepo keeps records in memory and can inject a racing writer
type fakeAttendanceRepo struct {
	mu        sync.Mutex
	records   []attendance.Record
	appendErr error
	// workspaces records the workspace of every successful Append
	workspaces []string
	// beforeAppend runs inside Append before the uniqueness check
	beforeAppend func(r attendance.Record)
}

func (f *fakeAttendanceRepo) ListByDate(ctx context.Context, workspaceID string, date string) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []attendance.Record
	for _, r := range f.records {
		if r.Date == date {
			out = append(out, r)
		}
	}
	return out, nil
}

func (f *fakeAttendanceRepo) FindByMemberAndDate(ctx context.Context, workspaceID string, memberID string, date string) (*attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.records {
		if r.MemberID == memberID && r.Date == date {
			r := r
			return &r, nil
		}
	}
	return nil, nil
}

func (f *fakeAttendanceRepo) Append(ctx context.Context, workspaceID string, record attendance.Record) (attendance.Record, error) {
	if f.beforeAppend != nil {
		f.beforeAppend(record)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.appendErr != nil {
		return attendance.Record{}, f.appendErr
	}
	for _, r := range f.records {
		if r.MemberID == record.MemberID && r.Date == record.Date {
			return attendance.Record{}, attendance.ErrDuplicateRecord
		}
	}
	f.records = append(f.records, record)
	f.workspaces = append(f.workspaces, workspaceID)
	return record, nil
}

func (f *fakeAttendanceRepo) Update(ctx context.Context, workspaceID string, id string, patch attendance.Patch) (attendance.Record, error) {
	return attendance.Record{}, attendance.ErrRecordNotFound
}

func (f *fakeAttendanceRepo) List(ctx context.Context, workspaceID string, filter attendance.AttendanceFilter) ([]attendance.Record, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]attendance.Record(nil), f.records...), nil
}

type fakeRoster struct {
	members []member.Member
	err     error
}

func (f fakeRoster) List(ctx context.Context, workspaceID string) ([]member.Member, error) {
	return f.members, f.err
}

func (f fakeRoster) GetByID(ctx context.Context, workspaceID string, id string) (member.Member, error) {
	for _, m := range f.members {
		if m.ID == id {
			return m, nil
		}
	}
	return member.Member{}, member.ErrMemberNotFound
}

var threeMembers = []member.Member{
	{ID: "m1", Name: "Asha"},
	{ID: "m2", Name: "Budi"},
	{ID: "m3", Name: "Citra"},
}

func newTestJobs(repo *fakeAttendanceRepo, roster fakeRoster, at time.Time, draws ...float64) *AttendanceJobs {
	j := NewAttendanceJobs(repo, roster, sse.NewHub(), []string{testWorkspace}, 0, true)
	j.now = func() time.Time { return at }
	i := 0
	j.random = func() float64 {
		v := draws[i%len(draws)]
		i++
		return v
	}
	return j
}

func morning(hour, minute int) time.Time {
	return time.Date(2024, 5, 6, hour, minute, 0, 0, time.Local)
}

func TestSimulateCheckIns_CreatesAutoRecords(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	j := newTestJobs(repo, fakeRoster{members: threeMembers}, morning(8, 47), 0.1, 0.9, 0.69)

	require.NoError(t, j.SimulateCheckIns(context.Background()))

	require.Len(t, repo.records, 2)
	assert.Equal(t, "m1", repo.records[0].MemberID)
	assert.Equal(t, "m3", repo.records[1].MemberID)
	for _, r := range repo.records {
		assert.Equal(t, "2024-05-06", r.Date)
		assert.Equal(t, "08:47", r.CheckIn)
		assert.Empty(t, r.CheckOut)
		assert.Equal(t, attendance.StatusPresent, r.Status)
		assert.Equal(t, attendance.MethodAuto, r.Method)
		require.NotNil(t, r.Location)
		assert.Equal(t, "Office", *r.Location)
		assert.Zero(t, r.WorkHours)
	}
}

func TestSimulateCheckIns_IsIdempotent(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	j := newTestJobs(repo, fakeRoster{members: threeMembers}, morning(9, 30), 0.0)

	require.NoError(t, j.SimulateCheckIns(context.Background()))
	first := append([]attendance.Record(nil), repo.records...)
	require.Len(t, first, 3)

	require.NoError(t, j.SimulateCheckIns(context.Background()))
	assert.Equal(t, first, repo.records)
}

func TestSimulateCheckIns_KeepsManualRecord(t *testing.T) {
	manual := attendance.NewRecord(attendance.NewRecordParams{
		MemberID: "m2", MemberName: "Budi", Date: "2024-05-06",
		Status: attendance.StatusLeave, Method: attendance.MethodManual,
	})
	repo := &fakeAttendanceRepo{records: []attendance.Record{manual}}
	j := newTestJobs(repo, fakeRoster{members: threeMembers}, morning(9, 5), 0.0)

	require.NoError(t, j.SimulateCheckIns(context.Background()))
	require.Len(t, repo.records, 3)
	assert.Equal(t, manual, repo.records[0])
}

func TestSimulateCheckIns_OutsideWindowOrDisabled(t *testing.T) {
	for _, at := range []time.Time{morning(7, 59), morning(10, 0), morning(15, 0)} {
		repo := &fakeAttendanceRepo{}
		j := newTestJobs(repo, fakeRoster{members: threeMembers}, at, 0.0)
		require.NoError(t, j.SimulateCheckIns(context.Background()))
		assert.Empty(t, repo.records, "hour %d", at.Hour())
	}

	repo := &fakeAttendanceRepo{}
	j := newTestJobs(repo, fakeRoster{members: threeMembers}, morning(8, 30), 0.0)
	require.NoError(t, j.SetEnabled(testWorkspace, false))
	assert.False(t, j.Enabled(testWorkspace))
	require.NoError(t, j.SimulateCheckIns(context.Background()))
	assert.Empty(t, repo.records)

	require.NoError(t, j.SetEnabled(testWorkspace, true))
	require.NoError(t, j.SimulateCheckIns(context.Background()))
	assert.Len(t, repo.records, 3)
}

func TestSimulateCheckIns_TogglesArePerWorkspace(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	j := NewAttendanceJobs(repo, fakeRoster{members: threeMembers[:1]}, nil, []string{"ws-a", "ws-b"}, 0, true)
	j.now = func() time.Time { return morning(8, 30) }
	j.random = func() float64 { return 0 }

	require.NoError(t, j.SetEnabled("ws-a", false))
	assert.False(t, j.Enabled("ws-a"))
	assert.True(t, j.Enabled("ws-b"))

	require.NoError(t, j.SimulateCheckIns(context.Background()))
	assert.Equal(t, []string{"ws-b"}, repo.workspaces)

	assert.ErrorIs(t, j.SetEnabled("ws-other", true), ErrWorkspaceNotSimulated)
	assert.False(t, j.Enabled("ws-other"))
	assert.False(t, j.Configured("ws-other"))
	assert.True(t, j.Configured("ws-a"))
}

func TestSimulateCheckIns_RacingWriterCountsAsMarked(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	repo.beforeAppend = func(r attendance.Record) {
		if r.MemberID != "m2" {
			return
		}
		repo.mu.Lock()
		repo.records = append(repo.records, attendance.NewRecord(attendance.NewRecordParams{
			MemberID: "m2", Date: r.Date, CheckIn: "08:59",
			Status: attendance.StatusPresent, Method: attendance.MethodManual,
		}))
		repo.mu.Unlock()
	}
	j := newTestJobs(repo, fakeRoster{members: threeMembers}, morning(9, 0), 0.0)

	require.NoError(t, j.SimulateCheckIns(context.Background()))
	require.Len(t, repo.records, 3)
	var m2 []attendance.Record
	for _, r := range repo.records {
		if r.MemberID == "m2" {
			m2 = append(m2, r)
		}
	}
	require.Len(t, m2, 1)
	assert.Equal(t, attendance.MethodManual, m2[0].Method)
}

func TestSimulateCheckIns_ReportsFailures(t *testing.T) {
	rosterErr := errors.New("registry offline")
	j := newTestJobs(&fakeAttendanceRepo{}, fakeRoster{err: rosterErr}, morning(8, 15), 0.0)
	assert.ErrorIs(t, j.SimulateCheckIns(context.Background()), rosterErr)

	writeErr := errors.New("disk full")
	repo := &fakeAttendanceRepo{appendErr: writeErr}
	j = newTestJobs(repo, fakeRoster{members: threeMembers}, morning(8, 15), 0.0)
	assert.ErrorIs(t, j.SimulateCheckIns(context.Background()), writeErr)

	// A later tick succeeds once the store recovers
	repo.appendErr = nil
	require.NoError(t, j.SimulateCheckIns(context.Background()))
	assert.Len(t, repo.records, 3)
}

func TestSimulateCheckIns_StopsOnCancel(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	ctx, cancel := context.WithCancel(context.Background())
	j := newTestJobs(repo, fakeRoster{members: threeMembers}, morning(8, 15), 0.0)
	repo.beforeAppend = func(r attendance.Record) { cancel() }

	err := j.SimulateCheckIns(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, repo.records, 1)
}

func TestSimulateCheckIns_PublishesEvents(t *testing.T) {
	repo := &fakeAttendanceRepo{}
	j := newTestJobs(repo, fakeRoster{members: threeMembers[:1]}, morning(8, 15), 0.0)
	events, unsubscribe := j.hub.Subscribe(testWorkspace)
	defer unsubscribe()

	require.NoError(t, j.SimulateCheckIns(context.Background()))

	select {
	case ev := <-events:
		assert.Equal(t, sse.EventAttendanceChanged, ev.Event)
	default:
		t.Fatal("expected an attendance.changed event")
	}
}

func TestAttendanceJobs_RegisterJobs(t *testing.T) {
	s := NewScheduler()
	j := NewAttendanceJobs(&fakeAttendanceRepo{}, fakeRoster{}, nil, nil, 0, false)
	j.RegisterJobs(s)

	require.Len(t, s.jobs, 1)
	assert.Equal(t, SimulatorJobName, s.jobs[0].Name)
	assert.Equal(t, DefaultSimulatorInterval, s.jobs[0].Interval)
}

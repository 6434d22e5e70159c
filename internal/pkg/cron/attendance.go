package cron

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analytics/internal/domain/member"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/sse"
)

const (
	// CheckInProbability is the chance an unmarked member checks in on a tick
	CheckInProbability = 0.7

	// DefaultSimulatorInterval is the tick period when none is configured
	DefaultSimulatorInterval = 60 * time.Second

	checkInWindowStart = 8
	checkInWindowEnd   = 10
	lateAfterHour      = 9

	simulatedLocation = "Office"

	SimulatorJobName = "simulate_auto_check_in"
)

// ErrWorkspaceNotSimulated is returned when toggling a workspace the simulator
// was not configured for
var ErrWorkspaceNotSimulated = errors.New("workspace is not configured for attendance simulation")

// AttendanceJobs simulates automatic check-ins for the configured workspaces.
// Each workspace is switched on and off on its own.
type AttendanceJobs struct {
	attendanceRepo attendance.AttendanceRepository
	rosterRepo     member.RosterRepository
	hub            *sse.Hub
	workspaceIDs   []string
	interval       time.Duration

	mu      sync.RWMutex
	enabled map[string]bool

	now    func() time.Time
	random func() float64
}

func NewAttendanceJobs(
	attendanceRepo attendance.AttendanceRepository,
	rosterRepo member.RosterRepository,
	hub *sse.Hub,
	workspaceIDs []string,
	interval time.Duration,
	enabled bool,
) *AttendanceJobs {
	if interval <= 0 {
		interval = DefaultSimulatorInterval
	}
	j := &AttendanceJobs{
		attendanceRepo: attendanceRepo,
		rosterRepo:     rosterRepo,
		hub:            hub,
		workspaceIDs:   slices.Clone(workspaceIDs),
		interval:       interval,
		enabled:        make(map[string]bool, len(workspaceIDs)),
		now:            time.Now,
		random:         rand.Float64,
	}
	for _, id := range workspaceIDs {
		j.enabled[id] = enabled
	}
	return j
}

func (j *AttendanceJobs) RegisterJobs(scheduler *Scheduler) {
	scheduler.AddJob(SimulatorJobName, j.interval, j.SimulateCheckIns)
}

// SetEnabled switches simulation for one workspace, effective at the next tick
func (j *AttendanceJobs) SetEnabled(workspaceID string, enabled bool) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if _, ok := j.enabled[workspaceID]; !ok {
		return ErrWorkspaceNotSimulated
	}
	j.enabled[workspaceID] = enabled
	slog.Info("Attendance simulator toggled", "workspace_id", workspaceID, "enabled", enabled)
	return nil
}

// Enabled reports whether the workspace is simulated. Unconfigured workspaces never are.
func (j *AttendanceJobs) Enabled(workspaceID string) bool {
	j.mu.RLock()
	defer j.mu.RUnlock()
	return j.enabled[workspaceID]
}

// Configured reports whether the workspace is one the simulator was set up for
func (j *AttendanceJobs) Configured(workspaceID string) bool {
	return slices.Contains(j.workspaceIDs, workspaceID)
}

func (j *AttendanceJobs) Interval() time.Duration {
	return j.interval
}

// SimulateCheckIns is one simulator tick. Members who already have a record
// for today are never touched.
func (j *AttendanceJobs) SimulateCheckIns(ctx context.Context) error {
	now := j.now()
	hour := now.Hour()
	if hour < checkInWindowStart || hour >= checkInWindowEnd {
		return nil
	}

	var errs []error
	for _, workspaceID := range j.workspaceIDs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !j.Enabled(workspaceID) {
			continue
		}
		if err := j.simulateWorkspace(ctx, workspaceID, now); err != nil {
			slog.Error("Cron: attendance simulation failed",
				"workspace_id", workspaceID,
				"error", err)
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func (j *AttendanceJobs) simulateWorkspace(ctx context.Context, workspaceID string, now time.Time) error {
	members, err := j.rosterRepo.List(ctx, workspaceID)
	if err != nil {
		return fmt.Errorf("failed to load team members: %w", err)
	}

	today := now.Format(attendance.DateLayout)
	status := attendance.StatusPresent
	if now.Hour() > lateAfterHour {
		status = attendance.StatusLate
	}

	marked := 0
	for _, m := range members {
		if err := ctx.Err(); err != nil {
			return err
		}

		existing, err := j.attendanceRepo.FindByMemberAndDate(ctx, workspaceID, m.ID, today)
		if err != nil {
			return fmt.Errorf("failed to check attendance for member %s: %w", m.ID, err)
		}
		if existing != nil {
			continue
		}

		if j.random() >= CheckInProbability {
			continue
		}

		location := simulatedLocation
		record := attendance.NewRecord(attendance.NewRecordParams{
			MemberID:   m.ID,
			MemberName: m.Name,
			Date:       today,
			CheckIn:    now.Format(attendance.ClockLayout),
			Status:     status,
			Method:     attendance.MethodAuto,
			Location:   &location,
		})

		record, err = j.attendanceRepo.Append(ctx, workspaceID, record)
		if err != nil {
			if errors.Is(err, attendance.ErrDuplicateRecord) {
				// Marked by someone else since the lookup
				continue
			}
			return fmt.Errorf("failed to record check-in for member %s: %w", m.ID, err)
		}

		marked++
		j.hub.Publish(workspaceID, sse.Event{
			Event: sse.EventAttendanceChanged,
			Data: map[string]interface{}{
				"attendance_id": record.ID,
				"member_id":     record.MemberID,
				"date":          record.Date,
				"method":        record.Method,
			},
		})
	}

	if marked > 0 {
		slog.Info("Cron: simulated check-ins",
			"workspace_id", workspaceID,
			"date", today,
			"marked", marked)
	}
	return nil
}

package blob

import (
	"context"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/storage"
)

// attendanceRepository keeps each workspace's log as one JSON array blob.
// Append and Update check and write inside one store Modify, so no
// (member, date) pair is stored twice even with several writers.
type attendanceRepository struct {
	store storage.BlobStore
}

func NewAttendanceRepository(store storage.BlobStore) attendance.AttendanceRepository {
	return &attendanceRepository{store: store}
}

func (a *attendanceRepository) load(ctx context.Context, workspaceID string) ([]attendance.Record, error) {
	return readList[attendance.Record](ctx, a.store, AttendanceKey(workspaceID))
}

// ListByDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) ListByDate(ctx context.Context, workspaceID string, date string) ([]attendance.Record, error) {
	return a.List(ctx, workspaceID, attendance.AttendanceFilter{Date: &date})
}

// FindByMemberAndDate implements attendance.AttendanceRepository.
func (a *attendanceRepository) FindByMemberAndDate(ctx context.Context, workspaceID string, memberID string, date string) (*attendance.Record, error) {
	records, err := a.load(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if i := indexOfPair(records, memberID, date, ""); i >= 0 {
		found := records[i]
		return &found, nil
	}
	return nil, nil
}

// Append implements attendance.AttendanceRepository.
func (a *attendanceRepository) Append(ctx context.Context, workspaceID string, record attendance.Record) (attendance.Record, error) {
	err := modifyList(ctx, a.store, AttendanceKey(workspaceID), func(records []attendance.Record) ([]attendance.Record, error) {
		if indexOfPair(records, record.MemberID, record.Date, "") >= 0 {
			return nil, attendance.ErrDuplicateRecord
		}
		return append(records, record), nil
	})
	if err != nil {
		return attendance.Record{}, err
	}

	return record, nil
}

// Update implements attendance.AttendanceRepository.
func (a *attendanceRepository) Update(ctx context.Context, workspaceID string, id string, patch attendance.Patch) (attendance.Record, error) {
	var updated attendance.Record
	err := modifyList(ctx, a.store, AttendanceKey(workspaceID), func(records []attendance.Record) ([]attendance.Record, error) {
		idx := -1
		for i := range records {
			if records[i].ID == id {
				idx = i
				break
			}
		}
		if idx < 0 {
			return nil, attendance.ErrRecordNotFound
		}

		updated = records[idx]
		updated.Apply(patch)

		if indexOfPair(records, updated.MemberID, updated.Date, updated.ID) >= 0 {
			return nil, attendance.ErrDuplicateRecord
		}

		records[idx] = updated
		return records, nil
	})
	if err != nil {
		return attendance.Record{}, err
	}

	return updated, nil
}

// List implements attendance.AttendanceRepository.
func (a *attendanceRepository) List(ctx context.Context, workspaceID string, filter attendance.AttendanceFilter) ([]attendance.Record, error) {
	records, err := a.load(ctx, workspaceID)
	if err != nil {
		return nil, err
	}

	result := make([]attendance.Record, 0, len(records))
	for _, r := range records {
		if filter.Matches(r) {
			result = append(result, r)
		}
	}
	return result, nil
}

// indexOfPair finds the record holding (memberID, date), ignoring skipID
func indexOfPair(records []attendance.Record, memberID, date, skipID string) int {
	for i, r := range records {
		if r.MemberID == memberID && r.Date == date && (skipID == "" || r.ID != skipID) {
			return i
		}
	}
	return -1
}

package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analytics/internal/domain/member"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testWorkspace = "ws-1"

type failingStore struct {
	getErr error
	setErr error
}

func (f failingStore) Get(ctx context.Context, key string) (string, bool, error) {
	return "", false, f.getErr
}

func (f failingStore) Set(ctx context.Context, key string, value string) error {
	return f.setErr
}

func (f failingStore) Modify(ctx context.Context, key string, fn storage.ModifyFunc) error {
	if f.getErr != nil {
		return f.getErr
	}
	if _, err := fn("", false); err != nil {
		return err
	}
	return f.setErr
}

func newRecord(memberID, date, checkIn, checkOut string, status attendance.Status) attendance.Record {
	return attendance.NewRecord(attendance.NewRecordParams{
		MemberID:   memberID,
		MemberName: "Member " + memberID,
		Date:       date,
		CheckIn:    checkIn,
		CheckOut:   checkOut,
		Status:     status,
		Method:     attendance.MethodManual,
	})
}

func TestAttendanceRepository_Append_RejectsDuplicatePair(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(storage.NewMemoryBlobStore())

	_, err := repo.Append(ctx, testWorkspace, newRecord("m1", "2024-01-01", "09:00", "", attendance.StatusPresent))
	require.NoError(t, err)

	_, err = repo.Append(ctx, testWorkspace, newRecord("m1", "2024-01-01", "10:00", "", attendance.StatusLate))
	assert.ErrorIs(t, err, attendance.ErrDuplicateRecord)

	// Same member on another day and another member on the same day are fine
	_, err = repo.Append(ctx, testWorkspace, newRecord("m1", "2024-01-02", "09:00", "", attendance.StatusPresent))
	require.NoError(t, err)
	_, err = repo.Append(ctx, testWorkspace, newRecord("m2", "2024-01-01", "09:00", "", attendance.StatusPresent))
	require.NoError(t, err)

	all, err := repo.List(ctx, testWorkspace, attendance.AttendanceFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestAttendanceRepository_Append_WorkspacesAreIsolated(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(storage.NewMemoryBlobStore())

	_, err := repo.Append(ctx, "ws-a", newRecord("m1", "2024-01-01", "09:00", "", attendance.StatusPresent))
	require.NoError(t, err)
	_, err = repo.Append(ctx, "ws-b", newRecord("m1", "2024-01-01", "09:00", "", attendance.StatusPresent))
	require.NoError(t, err)

	found, err := repo.FindByMemberAndDate(ctx, "ws-c", "m1", "2024-01-01")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestAttendanceRepository_Append_ConcurrentWritersKeepPairUnique(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(storage.NewMemoryBlobStore())

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := repo.Append(ctx, testWorkspace, newRecord("m1", "2024-01-01", "09:00", "", attendance.StatusPresent))
			if err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	records, err := repo.ListByDate(ctx, testWorkspace, "2024-01-01")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestAttendanceRepository_ListByDate_KeepsInsertionOrder(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(storage.NewMemoryBlobStore())

	for _, id := range []string{"m3", "m1", "m2"} {
		_, err := repo.Append(ctx, testWorkspace, newRecord(id, "2024-01-01", "09:00", "", attendance.StatusPresent))
		require.NoError(t, err)
	}
	_, err := repo.Append(ctx, testWorkspace, newRecord("m1", "2024-01-02", "09:00", "", attendance.StatusPresent))
	require.NoError(t, err)

	records, err := repo.ListByDate(ctx, testWorkspace, "2024-01-01")
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "m3", records[0].MemberID)
	assert.Equal(t, "m1", records[1].MemberID)
	assert.Equal(t, "m2", records[2].MemberID)
}

func TestAttendanceRepository_Update_RecomputesWorkHours(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(storage.NewMemoryBlobStore())

	created, err := repo.Append(ctx, testWorkspace, newRecord("m1", "2024-01-01", "09:00", "", attendance.StatusPresent))
	require.NoError(t, err)
	assert.Equal(t, 0.0, created.WorkHours)

	checkOut := "17:30"
	updated, err := repo.Update(ctx, testWorkspace, created.ID, attendance.Patch{CheckOut: &checkOut})
	require.NoError(t, err)
	assert.Equal(t, 8.5, updated.WorkHours)

	checkIn := "10:00"
	checkOut = "09:00"
	updated, err = repo.Update(ctx, testWorkspace, created.ID, attendance.Patch{CheckIn: &checkIn, CheckOut: &checkOut})
	require.NoError(t, err)
	assert.Equal(t, -1.0, updated.WorkHours)

	stored, err := repo.FindByMemberAndDate(ctx, testWorkspace, "m1", "2024-01-01")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, -1.0, stored.WorkHours)
	assert.Equal(t, "10:00", stored.CheckIn)
}

func TestAttendanceRepository_Update_ReopeningClearsHours(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(storage.NewMemoryBlobStore())

	rec, err := repo.Append(ctx, testWorkspace, newRecord("m1", "2024-01-01", "09:00", "17:00", attendance.StatusPresent))
	require.NoError(t, err)
	require.Equal(t, 8.0, rec.WorkHours)

	empty := ""
	updated, err := repo.Update(ctx, testWorkspace, rec.ID, attendance.Patch{CheckOut: &empty})
	require.NoError(t, err)
	assert.Zero(t, updated.WorkHours)

	stored, err := repo.FindByMemberAndDate(ctx, testWorkspace, "m1", "2024-01-01")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Zero(t, stored.WorkHours)
}

func TestAttendanceRepository_Update_UnknownID(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(storage.NewMemoryBlobStore())

	status := attendance.StatusLeave
	_, err := repo.Update(ctx, testWorkspace, "missing", attendance.Patch{Status: &status})
	assert.ErrorIs(t, err, attendance.ErrRecordNotFound)
}

func TestAttendanceRepository_Update_CannotMoveOntoTakenDay(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(storage.NewMemoryBlobStore())

	_, err := repo.Append(ctx, testWorkspace, newRecord("m1", "2024-01-01", "09:00", "", attendance.StatusPresent))
	require.NoError(t, err)
	second, err := repo.Append(ctx, testWorkspace, newRecord("m1", "2024-01-02", "09:00", "", attendance.StatusPresent))
	require.NoError(t, err)

	date := "2024-01-01"
	_, err = repo.Update(ctx, testWorkspace, second.ID, attendance.Patch{Date: &date})
	assert.ErrorIs(t, err, attendance.ErrDuplicateRecord)

	// Editing a record without moving it is not a conflict with itself
	status := attendance.StatusLate
	_, err = repo.Update(ctx, testWorkspace, second.ID, attendance.Patch{Status: &status})
	assert.NoError(t, err)
}

func TestAttendanceRepository_PersistsFullListOnEveryMutation(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryBlobStore()
	repo := NewAttendanceRepository(store)

	first, err := repo.Append(ctx, testWorkspace, newRecord("m1", "2024-01-01", "09:00", "", attendance.StatusPresent))
	require.NoError(t, err)
	_, err = repo.Append(ctx, testWorkspace, newRecord("m2", "2024-01-01", "09:00", "", attendance.StatusPresent))
	require.NoError(t, err)
	notes := "forgot badge"
	_, err = repo.Update(ctx, testWorkspace, first.ID, attendance.Patch{Notes: &notes})
	require.NoError(t, err)

	assert.Equal(t, 3, store.SetCount())

	raw, found, err := store.Get(ctx, AttendanceKey(testWorkspace))
	require.NoError(t, err)
	require.True(t, found)

	var persisted []map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &persisted))
	require.Len(t, persisted, 2)
	assert.Equal(t, "m1", persisted[0]["memberId"])
	assert.Equal(t, "forgot badge", persisted[0]["notes"])
}

func TestAttendanceRepository_MalformedBlobReadsAsEmpty(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryBlobStore()
	require.NoError(t, store.Set(ctx, AttendanceKey(testWorkspace), "{not json"))
	repo := NewAttendanceRepository(store)

	records, err := repo.ListByDate(ctx, testWorkspace, "2024-01-01")
	require.NoError(t, err)
	assert.Empty(t, records)

	found, err := repo.FindByMemberAndDate(ctx, testWorkspace, "m1", "2024-01-01")
	require.NoError(t, err)
	assert.Nil(t, found)
}

func TestAttendanceRepository_WritesRefuseMalformedLog(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryBlobStore()
	stored := `[{"id":"a1","memberId":"m1","memberName":"Asha","date":"2024-01-01","checkIn":"09:00","checkOut":"","status":"present","method":"manual","workHours":0},` +
		`{"id":"a2","memberId":"m2","memberName":"Budi","date":"2024-01-01","checkIn":"09:10","checkOut":"","status":"present","method":"manual","workHours":"0"}]`
	require.NoError(t, store.Set(ctx, AttendanceKey(testWorkspace), stored))
	repo := NewAttendanceRepository(store)

	_, err := repo.Append(ctx, testWorkspace, newRecord("m1", "2024-01-01", "10:00", "", attendance.StatusLate))
	assert.ErrorIs(t, err, attendance.ErrMalformedInput)

	status := attendance.StatusLate
	_, err = repo.Update(ctx, testWorkspace, "a1", attendance.Patch{Status: &status})
	assert.ErrorIs(t, err, attendance.ErrMalformedInput)

	raw, found, err := store.Get(ctx, AttendanceKey(testWorkspace))
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, stored, raw)
	assert.Equal(t, 1, store.SetCount())
}

func TestAttendanceRepository_StoreFailuresPropagate(t *testing.T) {
	ctx := context.Background()
	boom := errors.New("disk full")

	repo := NewAttendanceRepository(failingStore{setErr: boom})
	_, err := repo.Append(ctx, testWorkspace, newRecord("m1", "2024-01-01", "09:00", "", attendance.StatusPresent))
	assert.ErrorIs(t, err, boom)

	repo = NewAttendanceRepository(failingStore{getErr: boom})
	_, err = repo.List(ctx, testWorkspace, attendance.AttendanceFilter{})
	assert.ErrorIs(t, err, boom)
}

func TestAttendanceRepository_ListFilter(t *testing.T) {
	ctx := context.Background()
	repo := NewAttendanceRepository(storage.NewMemoryBlobStore())

	for day := 1; day <= 5; day++ {
		status := attendance.StatusPresent
		if day%2 == 0 {
			status = attendance.StatusLate
		}
		_, err := repo.Append(ctx, testWorkspace, newRecord("m1", fmt.Sprintf("2024-01-%02d", day), "09:00", "", status))
		require.NoError(t, err)
	}

	start, end, late := "2024-01-02", "2024-01-04", string(attendance.StatusLate)
	records, err := repo.List(ctx, testWorkspace, attendance.AttendanceFilter{StartDate: &start, EndDate: &end, Status: &late})
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "2024-01-02", records[0].Date)
	assert.Equal(t, "2024-01-04", records[1].Date)
}

func TestRosterRepository(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryBlobStore()
	require.NoError(t, store.Set(ctx, RosterKey(testWorkspace), `[{"id":"m1","name":"Asha","role":"Stylist"},{"id":"m2","name":"Ben","role":"Barber","department":"Cuts"}]`))
	repo := NewRosterRepository(store)

	members, err := repo.List(ctx, testWorkspace)
	require.NoError(t, err)
	require.Len(t, members, 2)
	assert.Equal(t, "Cuts", members[1].Department)

	m, err := repo.GetByID(ctx, testWorkspace, "m1")
	require.NoError(t, err)
	assert.Equal(t, "Asha", m.Name)

	_, err = repo.GetByID(ctx, testWorkspace, "nope")
	assert.ErrorIs(t, err, member.ErrMemberNotFound)

	// Missing roster reads as empty
	members, err = repo.List(ctx, "other")
	require.NoError(t, err)
	assert.Empty(t, members)
}

func TestFeedRepository(t *testing.T) {
	ctx := context.Background()
	store := storage.NewMemoryBlobStore()
	repo := NewFeedRepository(store)

	txs, err := repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)

	require.NoError(t, store.Set(ctx, TransactionsKey, `[{"date":"2024-01-01T10:15:00Z","staff":"Asha","amount":200,"items":[{"assignedPerson":"Asha","price":100,"qty":2}]}]`))
	txs, err = repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, txs, 1)
	assert.Equal(t, "2024-01-01", txs[0].Day())
	assert.Equal(t, 2, txs[0].Items[0].Quantity())

	require.NoError(t, store.Set(ctx, TransactionsKey, `"not an array"`))
	txs, err = repo.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, txs)
}

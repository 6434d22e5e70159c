package blob

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/attendance"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/storage"
)

const (
	attendanceKeyPrefix = "attendance_records:"
	rosterKeyPrefix     = "team_members:"

	// TransactionsKey holds the global purchase transaction feed
	TransactionsKey = "purchase_transactions"
)

// AttendanceKey is the blob key of a workspace's attendance log
func AttendanceKey(workspaceID string) string {
	return attendanceKeyPrefix + workspaceID
}

// RosterKey is the blob key of a workspace's team registry
func RosterKey(workspaceID string) string {
	return rosterKeyPrefix + workspaceID
}

// decodeList parses a stored JSON array. A missing or blank value is an empty
// list; anything else that does not decode is ErrMalformedInput.
func decodeList[T any](key, raw string, found bool) ([]T, error) {
	if !found || strings.TrimSpace(raw) == "" {
		return []T{}, nil
	}

	var items []T
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", attendance.ErrMalformedInput, key, err)
	}
	if items == nil {
		items = []T{}
	}
	return items, nil
}

// readList loads a JSON array for reading. An undecodable value is logged and
// read as empty; writers go through modifyList, which refuses it instead.
func readList[T any](ctx context.Context, store storage.BlobStore, key string) ([]T, error) {
	raw, found, err := store.Get(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", key, err)
	}

	items, err := decodeList[T](key, raw, found)
	if err != nil {
		slog.Warn("Ignoring unreadable stored collection", "key", key, "error", err)
		return []T{}, nil
	}
	return items, nil
}

// modifyList rewrites the JSON array under key in one atomic store step. A
// stored value that does not decode fails with ErrMalformedInput and is left
// as it is.
func modifyList[T any](ctx context.Context, store storage.BlobStore, key string, fn func(items []T) ([]T, error)) error {
	err := store.Modify(ctx, key, func(raw string, found bool) (string, error) {
		items, err := decodeList[T](key, raw, found)
		if err != nil {
			return "", err
		}
		items, err = fn(items)
		if err != nil {
			return "", err
		}
		data, err := json.Marshal(items)
		if err != nil {
			return "", fmt.Errorf("failed to encode %s: %w", key, err)
		}
		return string(data), nil
	})
	if err != nil {
		if errors.Is(err, attendance.ErrMalformedInput) ||
			errors.Is(err, attendance.ErrDuplicateRecord) ||
			errors.Is(err, attendance.ErrRecordNotFound) {
			return err
		}
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

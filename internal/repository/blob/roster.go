package blob

import (
	"context"

	"github.com/cmlabs-hris/attendance-analytics/internal/domain/member"
	"github.com/cmlabs-hris/attendance-analytics/internal/pkg/storage"
)

type rosterRepository struct {
	store storage.BlobStore
}

func NewRosterRepository(store storage.BlobStore) member.RosterRepository {
	return &rosterRepository{store: store}
}

// List implements member.RosterRepository.
func (r *rosterRepository) List(ctx context.Context, workspaceID string) ([]member.Member, error) {
	return readList[member.Member](ctx, r.store, RosterKey(workspaceID))
}

// GetByID implements member.RosterRepository.
func (r *rosterRepository) GetByID(ctx context.Context, workspaceID string, id string) (member.Member, error) {
	members, err := r.List(ctx, workspaceID)
	if err != nil {
		return member.Member{}, err
	}
	for _, m := range members {
		if m.ID == id {
			return m, nil
		}
	}
	return member.Member{}, member.ErrMemberNotFound
}

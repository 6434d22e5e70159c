package member

import "context"

// RosterRepository reads the workspace's team registry. It is read-only here;
// members are maintained by the dashboard's team screens.
type RosterRepository interface {
	// List returns the roster in registry order
	List(ctx context.Context, workspaceID string) ([]Member, error)

	// GetByID returns ErrMemberNotFound for unknown IDs
	GetByID(ctx context.Context, workspaceID string, id string) (Member, error)
}

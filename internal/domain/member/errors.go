package member

import "errors"

var (
	ErrMemberNotFound = errors.New("team member not found")
)

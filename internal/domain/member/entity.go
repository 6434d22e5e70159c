package member

// Member is a team member as kept by the dashboard's team registry.
// Identity is ID; Name is display-only.
type Member struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Role       string `json:"role"`
	Department string `json:"department,omitempty"`
}

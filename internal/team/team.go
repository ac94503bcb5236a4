package team

import "time"

type Team struct {
	ID      int64
	OrgID   int64
	Name    string
	Email   string
	Created time.Time
	Updated time.Time
}

// GetTeamsByUserQuery asks for the teams a user belongs to within an
// org. Permissions carries the caller's grants; the lookup only
// returns teams the caller's teams:read scopes allow it to see.
type GetTeamsByUserQuery struct {
	OrgID       int64
	UserID      int64
	Permissions map[int64]map[string][]string
}

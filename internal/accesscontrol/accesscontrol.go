package accesscontrol

import (
	"fmt"
	"strconv"
	"strings"
)

// Actions and scopes follow the "<resource>:<verb>" / "<resource>:id:<n>"
// convention. A scope names the set of resources an action may touch.
const (
	ActionTeamsRead = "teams:read"
	ActionUsersRead = "users:read"

	ScopeTeamsAll = "teams:*"
	ScopeUsersAll = "users:*"
)

const scopeTeamsIDPrefix = "teams:id:"

// Permissions maps an org ID to the actions granted within that org,
// each with the scopes the action applies to.
type Permissions = map[int64]map[string][]string

func ScopeTeamsID(teamID int64) string {
	return fmt.Sprintf("%s%d", scopeTeamsIDPrefix, teamID)
}

// ScopesForAction returns the scopes granted for action within orgID,
// or nil when the action is not granted at all.
func ScopesForAction(permissions Permissions, orgID int64, action string) []string {
	actions, ok := permissions[orgID]
	if !ok {
		return nil
	}
	return actions[action]
}

// HasScope reports whether the grant list contains scope, either
// literally or via the resource-level wildcard (e.g. teams:* covers
// teams:id:4).
func HasScope(granted []string, scope string) bool {
	wildcard := scope
	if i := strings.Index(scope, ":"); i >= 0 {
		wildcard = scope[:i] + ":*"
	}

	for _, g := range granted {
		if g == scope || g == wildcard {
			return true
		}
	}
	return false
}

// ParseTeamScopes splits teams:read grants into either an "all teams"
// wildcard or the explicit set of team IDs named by the scopes.
// Malformed scopes are skipped.
func ParseTeamScopes(scopes []string) (all bool, teamIDs []int64) {
	for _, s := range scopes {
		if s == ScopeTeamsAll {
			return true, nil
		}
		if !strings.HasPrefix(s, scopeTeamsIDPrefix) {
			continue
		}
		id, err := strconv.ParseInt(strings.TrimPrefix(s, scopeTeamsIDPrefix), 10, 64)
		if err != nil || id <= 0 {
			continue
		}
		teamIDs = append(teamIDs, id)
	}
	return false, teamIDs
}

// PermissionsForRole derives the baseline grants for an org role.
// Admins and Editors may read every team and user in the org; Viewers
// get no listing grants and see only what the service resolves for
// them directly.
func PermissionsForRole(orgID int64, role string) Permissions {
	actions := map[string][]string{}
	switch role {
	case "Admin", "Editor":
		actions[ActionTeamsRead] = []string{ScopeTeamsAll}
		actions[ActionUsersRead] = []string{ScopeUsersAll}
	}

	return Permissions{orgID: actions}
}

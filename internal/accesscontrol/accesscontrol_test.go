package accesscontrol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScopesForAction(t *testing.T) {
	perms := Permissions{
		2: {
			ActionTeamsRead: {ScopeTeamsID(7), ScopeTeamsID(9)},
		},
	}

	assert.Equal(t, []string{"teams:id:7", "teams:id:9"}, ScopesForAction(perms, 2, ActionTeamsRead))
	assert.Nil(t, ScopesForAction(perms, 3, ActionTeamsRead), "grants are per org")
	assert.Nil(t, ScopesForAction(perms, 2, ActionUsersRead))
}

func TestHasScope(t *testing.T) {
	assert.True(t, HasScope([]string{ScopeTeamsAll}, ScopeTeamsID(4)))
	assert.True(t, HasScope([]string{ScopeTeamsID(4)}, ScopeTeamsID(4)))
	assert.False(t, HasScope([]string{ScopeTeamsID(4)}, ScopeTeamsID(5)))
	assert.False(t, HasScope(nil, ScopeTeamsID(4)))
}

func TestParseTeamScopes(t *testing.T) {
	all, ids := ParseTeamScopes([]string{ScopeTeamsID(5), ScopeTeamsID(2)})
	assert.False(t, all)
	assert.Equal(t, []int64{5, 2}, ids)

	all, ids = ParseTeamScopes([]string{ScopeTeamsID(5), ScopeTeamsAll})
	assert.True(t, all)
	assert.Nil(t, ids)

	all, ids = ParseTeamScopes([]string{"teams:id:bogus", "dashboards:id:3"})
	assert.False(t, all)
	assert.Empty(t, ids)
}

func TestPermissionsForRole(t *testing.T) {
	perms := PermissionsForRole(1, "Admin")
	assert.Equal(t, []string{ScopeTeamsAll}, perms[1][ActionTeamsRead])

	perms = PermissionsForRole(1, "Viewer")
	assert.Empty(t, perms[1][ActionTeamsRead])
}

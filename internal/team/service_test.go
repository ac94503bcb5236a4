package team

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-service/internal/accesscontrol"
)

type fakeStore struct {
	teams []*Team

	calls         int
	lastFilterIDs []int64
}

func (f *fakeStore) GetTeamsByUser(_ context.Context, orgID, userID int64, filterIDs []int64) ([]*Team, error) {
	f.calls++
	f.lastFilterIDs = filterIDs

	if filterIDs == nil {
		return f.teams, nil
	}

	allowed := make(map[int64]bool, len(filterIDs))
	for _, id := range filterIDs {
		allowed[id] = true
	}

	var out []*Team
	for _, t := range f.teams {
		if allowed[t.ID] {
			out = append(out, t)
		}
	}
	return out, nil
}

func permissionsWith(orgID int64, scopes ...string) map[int64]map[string][]string {
	return map[int64]map[string][]string{
		orgID: {accesscontrol.ActionTeamsRead: scopes},
	}
}

func TestGetTeamsByUserWildcardScope(t *testing.T) {
	fake := &fakeStore{teams: []*Team{
		{ID: 5, OrgID: 2, Name: "backend"},
		{ID: 2, OrgID: 2, Name: "frontend"},
		{ID: 9, OrgID: 2, Name: "ops"},
	}}
	svc := &service{store: fake}

	teams, err := svc.GetTeamsByUser(context.Background(), &GetTeamsByUserQuery{
		OrgID:       2,
		UserID:      10,
		Permissions: permissionsWith(2, accesscontrol.ScopeTeamsAll),
	})
	require.NoError(t, err)

	require.Len(t, teams, 3)
	assert.Equal(t, []int64{5, 2, 9}, []int64{teams[0].ID, teams[1].ID, teams[2].ID},
		"store order must be preserved")
	assert.Nil(t, fake.lastFilterIDs, "wildcard scope must not restrict the query")
}

func TestGetTeamsByUserIDScopes(t *testing.T) {
	fake := &fakeStore{teams: []*Team{
		{ID: 5, OrgID: 2},
		{ID: 2, OrgID: 2},
		{ID: 9, OrgID: 2},
	}}
	svc := &service{store: fake}

	teams, err := svc.GetTeamsByUser(context.Background(), &GetTeamsByUserQuery{
		OrgID:       2,
		UserID:      10,
		Permissions: permissionsWith(2, accesscontrol.ScopeTeamsID(9), accesscontrol.ScopeTeamsID(5)),
	})
	require.NoError(t, err)

	require.Len(t, teams, 2)
	assert.Equal(t, []int64{9, 5}, fake.lastFilterIDs)
}

func TestGetTeamsByUserNoGrant(t *testing.T) {
	fake := &fakeStore{teams: []*Team{{ID: 5, OrgID: 2}}}
	svc := &service{store: fake}

	teams, err := svc.GetTeamsByUser(context.Background(), &GetTeamsByUserQuery{
		OrgID:  2,
		UserID: 10,
	})
	require.NoError(t, err)

	assert.Empty(t, teams)
	assert.Zero(t, fake.calls, "unauthorized lookup must not reach the store")
}

func TestGetTeamsByUserGrantForOtherOrg(t *testing.T) {
	fake := &fakeStore{teams: []*Team{{ID: 5, OrgID: 2}}}
	svc := &service{store: fake}

	teams, err := svc.GetTeamsByUser(context.Background(), &GetTeamsByUserQuery{
		OrgID:       2,
		UserID:      10,
		Permissions: permissionsWith(3, accesscontrol.ScopeTeamsAll),
	})
	require.NoError(t, err)

	assert.Empty(t, teams)
	assert.Zero(t, fake.calls)
}

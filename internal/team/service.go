package team

import (
	"context"

	"user-service/internal/accesscontrol"
	"user-service/internal/db"
)

// Service is the team lookup consumed by the user service and the API
// layer.
type Service interface {
	GetTeamsByUser(ctx context.Context, query *GetTeamsByUserQuery) ([]*Team, error)
}

type service struct {
	store store
}

func NewService(db *db.DB) Service {
	return &service{store: newSQLStore(db)}
}

// GetTeamsByUser applies the caller's teams:read scopes before hitting
// the store: no grant means no rows, the wildcard means every
// membership, and id scopes restrict the result to the named teams.
func (s *service) GetTeamsByUser(ctx context.Context, query *GetTeamsByUserQuery) ([]*Team, error) {
	scopes := accesscontrol.ScopesForAction(query.Permissions, query.OrgID, accesscontrol.ActionTeamsRead)
	if len(scopes) == 0 {
		return nil, nil
	}

	all, teamIDs := accesscontrol.ParseTeamScopes(scopes)
	if !all && len(teamIDs) == 0 {
		return nil, nil
	}

	var filterIDs []int64
	if !all {
		filterIDs = teamIDs
	}

	return s.store.GetTeamsByUser(ctx, query.OrgID, query.UserID, filterIDs)
}

package org

import (
	"context"
	"errors"

	"user-service/internal/db"
)

// Service resolves org membership for the user service.
type Service interface {
	// GetIDForNewUser picks (or creates) the org a new user is placed in.
	GetIDForNewUser(ctx context.Context, cmd GetOrgIDForNewUserCommand) (int64, error)
	GetUserOrgList(ctx context.Context, query *GetUserOrgListQuery) ([]*UserOrgDTO, error)
	InsertOrgUser(ctx context.Context, ou *OrgUser) (int64, error)
	GetByID(ctx context.Context, orgID int64) (*Org, error)
}

type service struct {
	store store

	autoAssignOrg     bool
	autoAssignOrgName string
}

func NewService(db *db.DB, autoAssignOrg bool, autoAssignOrgName string) Service {
	return &service{
		store:             newSQLStore(db),
		autoAssignOrg:     autoAssignOrg,
		autoAssignOrgName: autoAssignOrgName,
	}
}

func (s *service) GetIDForNewUser(ctx context.Context, cmd GetOrgIDForNewUserCommand) (int64, error) {
	if cmd.OrgID != 0 {
		o, err := s.store.GetByID(ctx, cmd.OrgID)
		if err != nil {
			return 0, err
		}
		return o.ID, nil
	}

	orgName := cmd.OrgName
	if orgName == "" {
		if s.autoAssignOrg {
			orgName = s.autoAssignOrgName
		} else {
			orgName = firstNonEmpty(cmd.Email, cmd.Login)
		}
	}

	o, err := s.store.GetByName(ctx, orgName)
	if err == nil {
		return o.ID, nil
	}
	if !errors.Is(err, ErrOrgNotFound) {
		return 0, err
	}

	return s.store.Insert(ctx, &Org{Name: orgName})
}

func (s *service) GetUserOrgList(ctx context.Context, query *GetUserOrgListQuery) ([]*UserOrgDTO, error) {
	return s.store.GetUserOrgList(ctx, query.UserID)
}

func (s *service) InsertOrgUser(ctx context.Context, ou *OrgUser) (int64, error) {
	if !ou.Role.IsValid() {
		ou.Role = RoleViewer
	}
	return s.store.InsertOrgUser(ctx, ou)
}

func (s *service) GetByID(ctx context.Context, orgID int64) (*Org, error) {
	return s.store.GetByID(ctx, orgID)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

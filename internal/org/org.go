package org

import (
	"errors"
	"time"
)

var (
	ErrOrgNotFound = errors.New("organization not found")
)

type RoleType string

const (
	RoleViewer RoleType = "Viewer"
	RoleEditor RoleType = "Editor"
	RoleAdmin  RoleType = "Admin"
)

func (r RoleType) IsValid() bool {
	return r == RoleViewer || r == RoleEditor || r == RoleAdmin
}

type Org struct {
	ID      int64
	Name    string
	Created time.Time
	Updated time.Time
}

// OrgUser links a user to an org with a role.
type OrgUser struct {
	ID      int64
	OrgID   int64
	UserID  int64
	Role    RoleType
	Created time.Time
	Updated time.Time
}

// UserOrgDTO is one row of a user's org membership list.
type UserOrgDTO struct {
	OrgID int64
	Name  string
	Role  RoleType
}

type GetOrgIDForNewUserCommand struct {
	Email   string
	Login   string
	OrgID   int64
	OrgName string
}

type GetUserOrgListQuery struct {
	UserID int64
}

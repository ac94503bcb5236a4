package user

import (
	"errors"
	"time"

	"user-service/internal/org"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotMemberOfOrg = errors.New("user does not belong to org")
)

type User struct {
	ID    int64
	UID   string
	Login string
	Email string
	Name  string

	// OrgID is the user's currently active org.
	OrgID int64

	PasswordHash string
	Rands        string

	IsAdmin       bool
	IsDisabled    bool
	EmailVerified bool

	LastSeenAt time.Time
	Created    time.Time
	Updated    time.Time
}

// SignedInUser is the resolved view of a user within one org context:
// identity, org role, team memberships, and permission grants.
// Permissions is keyed by org ID to support multi-org contexts, but
// only the active org's entry is populated here. Teams is likewise
// scoped to the active org.
type SignedInUser struct {
	UserID  int64
	OrgID   int64
	OrgName string
	OrgRole org.RoleType

	Login string
	Email string
	Name  string

	IsAdmin    bool
	IsDisabled bool

	// Permissions maps org ID -> action -> scopes.
	Permissions map[int64]map[string][]string

	// Teams holds the team IDs the user belongs to within OrgID, in
	// membership order.
	Teams []int64
}

func (u *SignedInUser) HasRole(role org.RoleType) bool {
	if u.IsAdmin {
		return true
	}
	switch role {
	case org.RoleViewer:
		return u.OrgRole.IsValid()
	case org.RoleEditor:
		return u.OrgRole == org.RoleEditor || u.OrgRole == org.RoleAdmin
	case org.RoleAdmin:
		return u.OrgRole == org.RoleAdmin
	}
	return false
}

type CreateUserCommand struct {
	Login    string
	Email    string
	Name     string
	Password string

	OrgID   int64
	OrgName string

	IsAdmin        bool
	EmailVerified  bool
	DefaultOrgRole string
	SkipOrgSetup   bool
}

type UpdateUserCommand struct {
	UserID int64

	Login string
	Email string
	Name  string
}

type ChangeUserPasswordCommand struct {
	UserID      int64
	NewPassword string
}

type UpdateUserLastSeenAtCommand struct {
	UserID int64
}

type SetUsingOrgCommand struct {
	UserID int64
	OrgID  int64
}

type DisableUserCommand struct {
	UserID     int64
	IsDisabled bool
}

type BatchDisableUsersCommand struct {
	UserIDs    []int64
	IsDisabled bool
}

type DeleteUserCommand struct {
	UserID int64
}

type GetUserByIDQuery struct {
	ID int64
}

type GetUserByLoginQuery struct {
	LoginOrEmail string
}

type GetUserByEmailQuery struct {
	Email string
}

type GetSignedInUserQuery struct {
	OrgID  int64
	UserID int64
}

type SearchUsersQuery struct {
	Query string
	OrgID int64
	Page  int
	Limit int
}

type UserSearchHitDTO struct {
	ID         int64
	UID        string
	Login      string
	Email      string
	Name       string
	IsAdmin    bool
	IsDisabled bool
	LastSeenAt time.Time
}

type SearchUserQueryResult struct {
	TotalCount int64
	Users      []*UserSearchHitDTO
	Page       int
	PerPage    int
}

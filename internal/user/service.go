package user

import (
	"context"
	"errors"
	"fmt"
	"time"

	"user-service/internal/accesscontrol"
	"user-service/internal/cache"
	"user-service/internal/db"
	"user-service/internal/logger"
	"user-service/internal/org"
	"user-service/internal/team"
	"user-service/internal/utils"

	"github.com/google/uuid"
)

const defaultSignedInUserCacheTTL = 5 * time.Second

// Service orchestrates user accounts: CRUD over the SQL store, org
// membership, and resolution of the signed-in user view.
type Service struct {
	store       store
	orgService  org.Service
	teamService team.Service
	cache       cache.Cache

	cacheTTL       time.Duration
	defaultOrgRole org.RoleType
}

func NewService(
	db *db.DB,
	orgService org.Service,
	teamService team.Service,
	cacheService cache.Cache,
	cacheTTL time.Duration,
	defaultOrgRole string,
) *Service {
	if cacheTTL <= 0 {
		cacheTTL = defaultSignedInUserCacheTTL
	}
	role := org.RoleType(defaultOrgRole)
	if !role.IsValid() {
		role = org.RoleViewer
	}
	return &Service{
		store:          newSQLStore(db),
		orgService:     orgService,
		teamService:    teamService,
		cache:          cacheService,
		cacheTTL:       cacheTTL,
		defaultOrgRole: role,
	}
}

// Create places the new user in an org (resolving or creating it
// first), hashes the password, and links the membership. A failed
// membership insert rolls the user row back.
func (s *Service) Create(ctx context.Context, cmd *CreateUserCommand) (*User, error) {
	orgID := cmd.OrgID
	if !cmd.SkipOrgSetup {
		var err error
		orgID, err = s.orgService.GetIDForNewUser(ctx, org.GetOrgIDForNewUserCommand{
			Email:   cmd.Email,
			Login:   cmd.Login,
			OrgID:   cmd.OrgID,
			OrgName: cmd.OrgName,
		})
		if err != nil {
			return nil, err
		}
	}

	if cmd.Email == "" {
		cmd.Email = cmd.Login
	}

	_, err := s.store.GetByLogin(ctx, cmd.Login)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !errors.Is(err, ErrUserNotFound) {
		return nil, err
	}

	now := time.Now()
	usr := &User{
		UID:           uuid.NewString(),
		Login:         cmd.Login,
		Email:         cmd.Email,
		Name:          cmd.Name,
		OrgID:         orgID,
		Rands:         utils.RandomString(10),
		IsAdmin:       cmd.IsAdmin,
		EmailVerified: cmd.EmailVerified,
		LastSeenAt:    now.AddDate(-10, 0, 0),
		Created:       now,
		Updated:       now,
	}

	if len(cmd.Password) > 0 {
		hash, err := HashPassword(cmd.Password)
		if err != nil {
			return nil, err
		}
		usr.PasswordHash = hash
	}

	userID, err := s.store.Insert(ctx, usr)
	if err != nil {
		return nil, err
	}

	if !cmd.SkipOrgSetup {
		role := s.defaultOrgRole
		if cmd.IsAdmin {
			role = org.RoleAdmin
		}
		if cmd.DefaultOrgRole != "" {
			role = org.RoleType(cmd.DefaultOrgRole)
		}

		_, err = s.orgService.InsertOrgUser(ctx, &org.OrgUser{
			OrgID:  orgID,
			UserID: userID,
			Role:   role,
		})
		if err != nil {
			if delErr := s.store.Delete(ctx, userID); delErr != nil {
				logger.Error("failed to roll back user after org link failure", map[string]any{
					"user_id": userID,
					"error":   delErr.Error(),
				})
			}
			return nil, err
		}
	}

	return usr, nil
}

func (s *Service) Delete(ctx context.Context, cmd *DeleteUserCommand) error {
	if _, err := s.store.GetByID(ctx, cmd.UserID); err != nil {
		return err
	}
	return s.store.Delete(ctx, cmd.UserID)
}

func (s *Service) GetByID(ctx context.Context, query *GetUserByIDQuery) (*User, error) {
	return s.store.GetByID(ctx, query.ID)
}

func (s *Service) GetByLogin(ctx context.Context, query *GetUserByLoginQuery) (*User, error) {
	return s.store.GetByLogin(ctx, query.LoginOrEmail)
}

func (s *Service) GetByEmail(ctx context.Context, query *GetUserByEmailQuery) (*User, error) {
	return s.store.GetByEmail(ctx, query.Email)
}

func (s *Service) Update(ctx context.Context, cmd *UpdateUserCommand) error {
	return s.store.Update(ctx, cmd)
}

// ChangePassword stores a fresh hash and rotates the user's rands so
// outstanding sessions derived from it stop validating.
func (s *Service) ChangePassword(ctx context.Context, cmd *ChangeUserPasswordCommand) error {
	hash, err := HashPassword(cmd.NewPassword)
	if err != nil {
		return err
	}
	return s.store.ChangePassword(ctx, cmd.UserID, hash, utils.RandomString(10))
}

func (s *Service) UpdateLastSeenAt(ctx context.Context, cmd *UpdateUserLastSeenAtCommand) error {
	return s.store.UpdateLastSeenAt(ctx, cmd.UserID)
}

// Authenticate verifies a login/email + password pair. Lookup and
// verification failures collapse into ErrInvalidCredentials so the
// response does not reveal whether the account exists.
func (s *Service) Authenticate(ctx context.Context, loginOrEmail, password string) (*User, error) {
	usr, err := s.store.GetByLogin(ctx, loginOrEmail)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if usr.IsDisabled {
		return nil, ErrInvalidCredentials
	}
	if err := VerifyPassword(usr.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}
	return usr, nil
}

// SetUsingOrg switches the user's active org after verifying the user
// actually belongs to it. Nothing is written when validation fails.
func (s *Service) SetUsingOrg(ctx context.Context, cmd *SetUsingOrgCommand) error {
	orgsForUser, err := s.orgService.GetUserOrgList(ctx, &org.GetUserOrgListQuery{
		UserID: cmd.UserID,
	})
	if err != nil {
		return err
	}

	valid := false
	for _, other := range orgsForUser {
		if other.OrgID == cmd.OrgID {
			valid = true
		}
	}
	if !valid {
		return ErrUserNotMemberOfOrg
	}

	return s.store.UpdateActiveOrg(ctx, cmd.UserID, cmd.OrgID)
}

// GetSignedInUserWithCache serves the signed-in user view from the
// cache when a fresh entry exists, otherwise resolves it and caches a
// snapshot copy. Failures are never cached, so the next call retries
// from scratch. Concurrent misses on the same key each resolve and
// write; the last writer wins.
func (s *Service) GetSignedInUserWithCache(ctx context.Context, query *GetSignedInUserQuery) (*SignedInUser, error) {
	cacheKey := signedInUserCacheKey(query.OrgID, query.UserID)
	if cached, found := s.cache.Get(cacheKey); found {
		cachedUser := cached.(SignedInUser)
		return &cachedUser, nil
	}

	result, err := s.GetSignedInUser(ctx, query)
	if err != nil {
		return nil, err
	}

	cacheKey = signedInUserCacheKey(result.OrgID, query.UserID)
	s.cache.Set(cacheKey, *result, s.cacheTTL)
	return result, nil
}

func signedInUserCacheKey(orgID, userID int64) string {
	return fmt.Sprintf("signed-in-user-%d-%d", userID, orgID)
}

// GetSignedInUser resolves the full signed-in user view: the store
// projection plus the user's team IDs for the resolved org. The team
// lookup is authorized by an internal-only context that grants exactly
// teams:read on every team; it is never returned to the caller.
func (s *Service) GetSignedInUser(ctx context.Context, query *GetSignedInUserQuery) (*SignedInUser, error) {
	signedInUser, err := s.store.GetSignedInUser(ctx, query)
	if err != nil {
		return nil, err
	}

	teamsQuery := &team.GetTeamsByUserQuery{
		OrgID:  signedInUser.OrgID,
		UserID: signedInUser.UserID,
		Permissions: map[int64]map[string][]string{
			signedInUser.OrgID: {
				accesscontrol.ActionTeamsRead: {accesscontrol.ScopeTeamsAll},
			},
		},
	}
	teams, err := s.teamService.GetTeamsByUser(ctx, teamsQuery)
	if err != nil {
		return nil, err
	}

	signedInUser.Teams = make([]int64, len(teams))
	for i, t := range teams {
		signedInUser.Teams[i] = t.ID
	}
	return signedInUser, nil
}

func (s *Service) Search(ctx context.Context, query *SearchUsersQuery) (*SearchUserQueryResult, error) {
	return s.store.Search(ctx, query)
}

func (s *Service) Disable(ctx context.Context, cmd *DisableUserCommand) error {
	return s.store.Disable(ctx, cmd.UserID, cmd.IsDisabled)
}

func (s *Service) BatchDisableUsers(ctx context.Context, cmd *BatchDisableUsersCommand) error {
	return s.store.BatchDisable(ctx, cmd.UserIDs, cmd.IsDisabled)
}

func (s *Service) UpdatePermissions(ctx context.Context, userID int64, isAdmin bool) error {
	return s.store.UpdatePermissions(ctx, userID, isAdmin)
}

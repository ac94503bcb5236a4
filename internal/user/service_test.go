package user

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"user-service/internal/accesscontrol"
	"user-service/internal/cache"
	"user-service/internal/org"
	"user-service/internal/team"
)

type fakeUserStore struct {
	store

	users map[int64]*User

	signedInUser    *SignedInUser
	signedInUserErr error

	signedInUserCalls int
	activeOrgCalls    int
	inserted          *User
	deletedIDs        []int64
}

func (f *fakeUserStore) GetSignedInUser(_ context.Context, _ *GetSignedInUserQuery) (*SignedInUser, error) {
	f.signedInUserCalls++
	if f.signedInUserErr != nil {
		return nil, f.signedInUserErr
	}
	cp := *f.signedInUser
	return &cp, nil
}

func (f *fakeUserStore) UpdateActiveOrg(_ context.Context, _, _ int64) error {
	f.activeOrgCalls++
	return nil
}

func (f *fakeUserStore) GetByLogin(_ context.Context, loginOrEmail string) (*User, error) {
	for _, u := range f.users {
		if u.Login == loginOrEmail || u.Email == loginOrEmail {
			return u, nil
		}
	}
	return nil, ErrUserNotFound
}

func (f *fakeUserStore) Insert(_ context.Context, usr *User) (int64, error) {
	usr.ID = 100
	f.inserted = usr
	return usr.ID, nil
}

func (f *fakeUserStore) Delete(_ context.Context, userID int64) error {
	f.deletedIDs = append(f.deletedIDs, userID)
	return nil
}

type fakeOrgService struct {
	org.Service

	orgList []*org.UserOrgDTO

	newUserOrgID     int64
	insertOrgUserErr error
	orgUsers         []*org.OrgUser
}

func (f *fakeOrgService) GetUserOrgList(_ context.Context, _ *org.GetUserOrgListQuery) ([]*org.UserOrgDTO, error) {
	return f.orgList, nil
}

func (f *fakeOrgService) GetIDForNewUser(_ context.Context, _ org.GetOrgIDForNewUserCommand) (int64, error) {
	return f.newUserOrgID, nil
}

func (f *fakeOrgService) InsertOrgUser(_ context.Context, ou *org.OrgUser) (int64, error) {
	if f.insertOrgUserErr != nil {
		return 0, f.insertOrgUserErr
	}
	f.orgUsers = append(f.orgUsers, ou)
	return 1, nil
}

type fakeTeamService struct {
	teams []*team.Team
	err   error

	calls     int
	lastQuery *team.GetTeamsByUserQuery
}

func (f *fakeTeamService) GetTeamsByUser(_ context.Context, query *team.GetTeamsByUserQuery) ([]*team.Team, error) {
	f.calls++
	f.lastQuery = query
	if f.err != nil {
		return nil, f.err
	}
	return f.teams, nil
}

func newTestService(store *fakeUserStore, orgSvc *fakeOrgService, teamSvc *fakeTeamService, c cache.Cache) *Service {
	return &Service{
		store:          store,
		orgService:     orgSvc,
		teamService:    teamSvc,
		cache:          c,
		cacheTTL:       5 * time.Second,
		defaultOrgRole: org.RoleViewer,
	}
}

func TestGetSignedInUserWithCacheMissResolvesOnce(t *testing.T) {
	store := &fakeUserStore{signedInUser: &SignedInUser{UserID: 10, OrgID: 2, Login: "alice"}}
	teams := &fakeTeamService{teams: []*team.Team{{ID: 5}, {ID: 2}, {ID: 9}}}
	c := cache.NewLocal()
	svc := newTestService(store, &fakeOrgService{}, teams, c)

	got, err := svc.GetSignedInUserWithCache(context.Background(), &GetSignedInUserQuery{OrgID: 2, UserID: 10})
	require.NoError(t, err)

	assert.Equal(t, 1, store.signedInUserCalls)
	assert.Equal(t, 1, teams.calls)
	assert.Equal(t, []int64{5, 2, 9}, got.Teams, "team order from the lookup must be preserved")

	cached, found := c.Get("signed-in-user-10-2")
	require.True(t, found, "success must write exactly this cache key")
	assert.Equal(t, *got, cached.(SignedInUser))
}

func TestGetSignedInUserWithCacheHitSkipsStores(t *testing.T) {
	store := &fakeUserStore{signedInUser: &SignedInUser{UserID: 10, OrgID: 2}}
	teams := &fakeTeamService{teams: []*team.Team{{ID: 5}}}
	c := cache.NewLocal()
	svc := newTestService(store, &fakeOrgService{}, teams, c)

	first, err := svc.GetSignedInUserWithCache(context.Background(), &GetSignedInUserQuery{OrgID: 2, UserID: 10})
	require.NoError(t, err)

	second, err := svc.GetSignedInUserWithCache(context.Background(), &GetSignedInUserQuery{OrgID: 2, UserID: 10})
	require.NoError(t, err)

	assert.Equal(t, *first, *second)
	assert.Equal(t, 1, store.signedInUserCalls, "cache hit must not touch the user store")
	assert.Equal(t, 1, teams.calls, "cache hit must not touch the team lookup")
}

func TestGetSignedInUserWithCacheExpiryReResolves(t *testing.T) {
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	c := cache.NewLocalWithClock(func() time.Time { return now })

	store := &fakeUserStore{signedInUser: &SignedInUser{UserID: 10, OrgID: 2}}
	teams := &fakeTeamService{}
	svc := newTestService(store, &fakeOrgService{}, teams, c)

	query := &GetSignedInUserQuery{OrgID: 2, UserID: 10}

	_, err := svc.GetSignedInUserWithCache(context.Background(), query)
	require.NoError(t, err)

	now = now.Add(6 * time.Second)

	_, err = svc.GetSignedInUserWithCache(context.Background(), query)
	require.NoError(t, err)
	assert.Equal(t, 2, store.signedInUserCalls, "expired entry must trigger a fresh resolution")
}

func TestGetSignedInUserWithCacheKeyedByResultOrg(t *testing.T) {
	// OrgID 0 means "the user's active org"; the store resolves it to 3
	// and the cache entry is keyed by the resolved org.
	store := &fakeUserStore{signedInUser: &SignedInUser{UserID: 10, OrgID: 3}}
	c := cache.NewLocal()
	svc := newTestService(store, &fakeOrgService{}, &fakeTeamService{}, c)

	_, err := svc.GetSignedInUserWithCache(context.Background(), &GetSignedInUserQuery{OrgID: 0, UserID: 10})
	require.NoError(t, err)

	_, found := c.Get("signed-in-user-10-3")
	assert.True(t, found)
	_, found = c.Get("signed-in-user-10-0")
	assert.False(t, found)
}

func TestGetSignedInUserWithCacheDoesNotCacheFailures(t *testing.T) {
	store := &fakeUserStore{signedInUserErr: ErrUserNotFound}
	c := cache.NewLocal()
	svc := newTestService(store, &fakeOrgService{}, &fakeTeamService{}, c)

	_, err := svc.GetSignedInUserWithCache(context.Background(), &GetSignedInUserQuery{OrgID: 2, UserID: 10})
	require.ErrorIs(t, err, ErrUserNotFound)

	_, found := c.Get("signed-in-user-10-2")
	assert.False(t, found, "failures must leave no cache entry")

	// next call retries from scratch
	_, err = svc.GetSignedInUserWithCache(context.Background(), &GetSignedInUserQuery{OrgID: 2, UserID: 10})
	require.Error(t, err)
	assert.Equal(t, 2, store.signedInUserCalls)
}

func TestGetSignedInUserTeamLookupError(t *testing.T) {
	store := &fakeUserStore{signedInUser: &SignedInUser{UserID: 10, OrgID: 2}}
	teams := &fakeTeamService{err: errors.New("connection refused")}
	svc := newTestService(store, &fakeOrgService{}, teams, cache.NewLocal())

	_, err := svc.GetSignedInUser(context.Background(), &GetSignedInUserQuery{OrgID: 2, UserID: 10})
	assert.Error(t, err, "no partial result on team lookup failure")
}

func TestGetSignedInUserScopedTeamLookupContext(t *testing.T) {
	store := &fakeUserStore{signedInUser: &SignedInUser{UserID: 10, OrgID: 2, OrgRole: org.RoleViewer}}
	teams := &fakeTeamService{}
	svc := newTestService(store, &fakeOrgService{}, teams, cache.NewLocal())

	got, err := svc.GetSignedInUser(context.Background(), &GetSignedInUserQuery{OrgID: 2, UserID: 10})
	require.NoError(t, err)

	require.NotNil(t, teams.lastQuery)
	assert.Equal(t, []string{accesscontrol.ScopeTeamsAll},
		teams.lastQuery.Permissions[2][accesscontrol.ActionTeamsRead],
		"team lookup runs under the internal read-all-teams grant")
	assert.NotContains(t, got.Permissions[int64(2)][accesscontrol.ActionTeamsRead],
		accesscontrol.ScopeTeamsAll,
		"the internal grant must not leak into the returned user")
}

func TestSetUsingOrgRejectsNonMember(t *testing.T) {
	store := &fakeUserStore{}
	orgSvc := &fakeOrgService{orgList: []*org.UserOrgDTO{
		{OrgID: 1, Role: org.RoleViewer},
		{OrgID: 3, Role: org.RoleEditor},
	}}
	svc := newTestService(store, orgSvc, &fakeTeamService{}, cache.NewLocal())

	err := svc.SetUsingOrg(context.Background(), &SetUsingOrgCommand{UserID: 10, OrgID: 7})
	require.ErrorIs(t, err, ErrUserNotMemberOfOrg)
	assert.EqualError(t, err, "user does not belong to org")
	assert.Zero(t, store.activeOrgCalls, "validation failure must not write to the store")
}

func TestSetUsingOrgMember(t *testing.T) {
	store := &fakeUserStore{}
	orgSvc := &fakeOrgService{orgList: []*org.UserOrgDTO{{OrgID: 3, Role: org.RoleEditor}}}
	svc := newTestService(store, orgSvc, &fakeTeamService{}, cache.NewLocal())

	err := svc.SetUsingOrg(context.Background(), &SetUsingOrgCommand{UserID: 10, OrgID: 3})
	require.NoError(t, err)
	assert.Equal(t, 1, store.activeOrgCalls)
}

func TestCreateRollsBackUserOnOrgLinkFailure(t *testing.T) {
	store := &fakeUserStore{}
	orgSvc := &fakeOrgService{
		newUserOrgID:     1,
		insertOrgUserErr: errors.New("constraint violation"),
	}
	svc := newTestService(store, orgSvc, &fakeTeamService{}, cache.NewLocal())

	_, err := svc.Create(context.Background(), &CreateUserCommand{
		Login:    "bob",
		Password: "secret-password",
	})
	require.Error(t, err)
	assert.Equal(t, []int64{100}, store.deletedIDs)
}

func TestCreateDefaultsEmailToLogin(t *testing.T) {
	store := &fakeUserStore{}
	orgSvc := &fakeOrgService{newUserOrgID: 1}
	svc := newTestService(store, orgSvc, &fakeTeamService{}, cache.NewLocal())

	usr, err := svc.Create(context.Background(), &CreateUserCommand{
		Login:    "bob@example.com",
		Password: "secret-password",
	})
	require.NoError(t, err)

	assert.Equal(t, "bob@example.com", usr.Email)
	assert.NotEmpty(t, usr.UID)
	assert.NotEmpty(t, usr.Rands)
	assert.NoError(t, VerifyPassword(usr.PasswordHash, "secret-password"))

	require.Len(t, orgSvc.orgUsers, 1)
	assert.Equal(t, org.RoleViewer, orgSvc.orgUsers[0].Role)
}

func TestCreateRejectsExistingLogin(t *testing.T) {
	store := &fakeUserStore{users: map[int64]*User{
		1: {ID: 1, Login: "bob"},
	}}
	svc := newTestService(store, &fakeOrgService{newUserOrgID: 1}, &fakeTeamService{}, cache.NewLocal())

	_, err := svc.Create(context.Background(), &CreateUserCommand{
		Login:    "bob",
		Password: "secret-password",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}

func TestAuthenticateHidesAccountExistence(t *testing.T) {
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)

	store := &fakeUserStore{users: map[int64]*User{
		1: {ID: 1, Login: "alice", PasswordHash: hash},
	}}
	svc := newTestService(store, &fakeOrgService{}, &fakeTeamService{}, cache.NewLocal())

	_, err = svc.Authenticate(context.Background(), "alice", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Authenticate(context.Background(), "nobody", "secret-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	usr, err := svc.Authenticate(context.Background(), "alice", "secret-password")
	require.NoError(t, err)
	assert.EqualValues(t, 1, usr.ID)
}

func TestAuthenticateRejectsDisabledUser(t *testing.T) {
	hash, err := HashPassword("secret-password")
	require.NoError(t, err)

	store := &fakeUserStore{users: map[int64]*User{
		1: {ID: 1, Login: "alice", PasswordHash: hash, IsDisabled: true},
	}}
	svc := newTestService(store, &fakeOrgService{}, &fakeTeamService{}, cache.NewLocal())

	_, err = svc.Authenticate(context.Background(), "alice", "secret-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

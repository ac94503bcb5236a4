package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"user-service/internal/accesscontrol"
	"user-service/internal/db"
	"user-service/internal/org"

	"github.com/lib/pq"
)

type store interface {
	Insert(ctx context.Context, usr *User) (int64, error)
	Delete(ctx context.Context, userID int64) error
	GetByID(ctx context.Context, userID int64) (*User, error)
	GetByLogin(ctx context.Context, loginOrEmail string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, cmd *UpdateUserCommand) error
	UpdateActiveOrg(ctx context.Context, userID, orgID int64) error
	ChangePassword(ctx context.Context, userID int64, passwordHash, rands string) error
	UpdateLastSeenAt(ctx context.Context, userID int64) error
	GetSignedInUser(ctx context.Context, query *GetSignedInUserQuery) (*SignedInUser, error)
	Search(ctx context.Context, query *SearchUsersQuery) (*SearchUserQueryResult, error)
	Disable(ctx context.Context, userID int64, isDisabled bool) error
	BatchDisable(ctx context.Context, userIDs []int64, isDisabled bool) error
	UpdatePermissions(ctx context.Context, userID int64, isAdmin bool) error
}

type sqlStore struct {
	db *db.DB
}

func newSQLStore(db *db.DB) *sqlStore {
	return &sqlStore{db: db}
}

const userColumns = `
	id, uid, login, email, name, org_id, password_hash, rands,
	is_admin, is_disabled, email_verified, last_seen_at, created_at, updated_at
`

func scanUser(row *sql.Row) (*User, error) {
	var u User
	err := row.Scan(
		&u.ID, &u.UID, &u.Login, &u.Email, &u.Name, &u.OrgID,
		&u.PasswordHash, &u.Rands, &u.IsAdmin, &u.IsDisabled,
		&u.EmailVerified, &u.LastSeenAt, &u.Created, &u.Updated,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user: scan user: %w", err)
	}
	return &u, nil
}

func (s *sqlStore) Insert(ctx context.Context, usr *User) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO users (
			uid, login, email, name, org_id, password_hash, rands,
			is_admin, is_disabled, email_verified,
			last_seen_at, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id
	`,
		usr.UID, usr.Login, usr.Email, usr.Name, usr.OrgID,
		usr.PasswordHash, usr.Rands, usr.IsAdmin, usr.IsDisabled,
		usr.EmailVerified, usr.LastSeenAt, usr.Created, usr.Updated,
	).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("user: insert: %w", err)
	}

	usr.ID = id
	return id, nil
}

func (s *sqlStore) Delete(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM users WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("user: delete: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (s *sqlStore) GetByID(ctx context.Context, userID int64) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE id = $1
	`, userID))
}

func (s *sqlStore) GetByLogin(ctx context.Context, loginOrEmail string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(login) = LOWER($1) OR LOWER(email) = LOWER($1)
	`, loginOrEmail))
}

func (s *sqlStore) GetByEmail(ctx context.Context, email string) (*User, error) {
	return scanUser(s.db.QueryRowContext(ctx, `
		SELECT `+userColumns+`
		FROM users
		WHERE LOWER(email) = LOWER($1)
	`, email))
}

func (s *sqlStore) Update(ctx context.Context, cmd *UpdateUserCommand) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET login = COALESCE(NULLIF($2, ''), login),
		    email = COALESCE(NULLIF($3, ''), email),
		    name = COALESCE(NULLIF($4, ''), name),
		    updated_at = $5
		WHERE id = $1
	`, cmd.UserID, cmd.Login, cmd.Email, cmd.Name, time.Now())
	if err != nil {
		return fmt.Errorf("user: update: %w", err)
	}
	return requireAffected(res)
}

func (s *sqlStore) UpdateActiveOrg(ctx context.Context, userID, orgID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET org_id = $2, updated_at = $3
		WHERE id = $1
	`, userID, orgID, time.Now())
	if err != nil {
		return fmt.Errorf("user: update active org: %w", err)
	}
	return requireAffected(res)
}

func (s *sqlStore) ChangePassword(ctx context.Context, userID int64, passwordHash, rands string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET password_hash = $2, rands = $3, updated_at = $4
		WHERE id = $1
	`, userID, passwordHash, rands, time.Now())
	if err != nil {
		return fmt.Errorf("user: change password: %w", err)
	}
	return requireAffected(res)
}

func (s *sqlStore) UpdateLastSeenAt(ctx context.Context, userID int64) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET last_seen_at = $2
		WHERE id = $1
	`, userID, time.Now())
	if err != nil {
		return fmt.Errorf("user: update last seen: %w", err)
	}
	return requireAffected(res)
}

// GetSignedInUser loads the user/org projection in one query. The org
// context comes from query.OrgID when set, otherwise from the user's
// active org. Missing user/org pairings surface as ErrUserNotFound.
func (s *sqlStore) GetSignedInUser(ctx context.Context, query *GetSignedInUserQuery) (*SignedInUser, error) {
	var (
		sgn  SignedInUser
		role string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT u.id, u.login, u.email, u.name, u.is_admin, u.is_disabled,
		       o.id, o.name, ou.role
		FROM users u
		JOIN org_users ou
		  ON ou.user_id = u.id
		 AND ou.org_id = CASE WHEN $2 > 0 THEN $2 ELSE u.org_id END
		JOIN orgs o ON o.id = ou.org_id
		WHERE u.id = $1
	`, query.UserID, query.OrgID).Scan(
		&sgn.UserID, &sgn.Login, &sgn.Email, &sgn.Name,
		&sgn.IsAdmin, &sgn.IsDisabled,
		&sgn.OrgID, &sgn.OrgName, &role,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("user: get signed-in user: %w", err)
	}

	sgn.OrgRole = org.RoleType(role)
	sgn.Permissions = accesscontrol.PermissionsForRole(sgn.OrgID, role)
	return &sgn, nil
}

func (s *sqlStore) Search(ctx context.Context, query *SearchUsersQuery) (*SearchUserQueryResult, error) {
	limit := query.Limit
	if limit <= 0 {
		limit = 50
	}
	page := query.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit
	pattern := "%" + query.Query + "%"

	result := SearchUserQueryResult{
		Page:    page,
		PerPage: limit,
	}

	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*)
		FROM users u
		JOIN org_users ou ON ou.user_id = u.id AND ou.org_id = $1
		WHERE ($2 = '' OR u.login ILIKE $3 OR u.email ILIKE $3 OR u.name ILIKE $3)
	`, query.OrgID, query.Query, pattern).Scan(&result.TotalCount)
	if err != nil {
		return nil, fmt.Errorf("user: count search: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT u.id, u.uid, u.login, u.email, u.name,
		       u.is_admin, u.is_disabled, u.last_seen_at
		FROM users u
		JOIN org_users ou ON ou.user_id = u.id AND ou.org_id = $1
		WHERE ($2 = '' OR u.login ILIKE $3 OR u.email ILIKE $3 OR u.name ILIKE $3)
		ORDER BY u.login
		LIMIT $4 OFFSET $5
	`, query.OrgID, query.Query, pattern, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("user: search: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var hit UserSearchHitDTO
		if err := rows.Scan(
			&hit.ID, &hit.UID, &hit.Login, &hit.Email, &hit.Name,
			&hit.IsAdmin, &hit.IsDisabled, &hit.LastSeenAt,
		); err != nil {
			return nil, fmt.Errorf("user: scan search row: %w", err)
		}
		result.Users = append(result.Users, &hit)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &result, nil
}

func (s *sqlStore) Disable(ctx context.Context, userID int64, isDisabled bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET is_disabled = $2, updated_at = $3
		WHERE id = $1
	`, userID, isDisabled, time.Now())
	if err != nil {
		return fmt.Errorf("user: disable: %w", err)
	}
	return requireAffected(res)
}

func (s *sqlStore) BatchDisable(ctx context.Context, userIDs []int64, isDisabled bool) error {
	if len(userIDs) == 0 {
		return nil
	}

	_, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET is_disabled = $2, updated_at = $3
		WHERE id = ANY($1)
	`, pq.Array(userIDs), isDisabled, time.Now())
	if err != nil {
		return fmt.Errorf("user: batch disable: %w", err)
	}
	return nil
}

func (s *sqlStore) UpdatePermissions(ctx context.Context, userID int64, isAdmin bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE users
		SET is_admin = $2, updated_at = $3
		WHERE id = $1
	`, userID, isAdmin, time.Now())
	if err != nil {
		return fmt.Errorf("user: update permissions: %w", err)
	}
	return requireAffected(res)
}

func requireAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrUserNotFound
	}
	return nil
}

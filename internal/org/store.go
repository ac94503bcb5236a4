package org

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"user-service/internal/db"
)

type store interface {
	GetByID(ctx context.Context, orgID int64) (*Org, error)
	GetByName(ctx context.Context, name string) (*Org, error)
	Insert(ctx context.Context, o *Org) (int64, error)
	InsertOrgUser(ctx context.Context, ou *OrgUser) (int64, error)
	GetUserOrgList(ctx context.Context, userID int64) ([]*UserOrgDTO, error)
}

type sqlStore struct {
	db *db.DB
}

func newSQLStore(db *db.DB) *sqlStore {
	return &sqlStore{db: db}
}

func (s *sqlStore) GetByID(ctx context.Context, orgID int64) (*Org, error) {
	var o Org
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM orgs
		WHERE id = $1
	`, orgID).Scan(&o.ID, &o.Name, &o.Created, &o.Updated)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrgNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("org: get by id: %w", err)
	}

	return &o, nil
}

func (s *sqlStore) GetByName(ctx context.Context, name string) (*Org, error) {
	var o Org
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, created_at, updated_at
		FROM orgs
		WHERE name = $1
	`, name).Scan(&o.ID, &o.Name, &o.Created, &o.Updated)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrgNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("org: get by name: %w", err)
	}

	return &o, nil
}

func (s *sqlStore) Insert(ctx context.Context, o *Org) (int64, error) {
	now := time.Now()

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO orgs (name, created_at, updated_at)
		VALUES ($1, $2, $3)
		RETURNING id
	`, o.Name, now, now).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("org: insert: %w", err)
	}

	o.ID = id
	return id, nil
}

func (s *sqlStore) InsertOrgUser(ctx context.Context, ou *OrgUser) (int64, error) {
	now := time.Now()

	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO org_users (org_id, user_id, role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`, ou.OrgID, ou.UserID, ou.Role, now, now).Scan(&id)

	if err != nil {
		return 0, fmt.Errorf("org: insert org user: %w", err)
	}

	ou.ID = id
	return id, nil
}

func (s *sqlStore) GetUserOrgList(ctx context.Context, userID int64) ([]*UserOrgDTO, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.name, ou.role
		FROM org_users ou
		JOIN orgs o ON o.id = ou.org_id
		WHERE ou.user_id = $1
		ORDER BY o.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("org: list for user: %w", err)
	}
	defer rows.Close()

	var result []*UserOrgDTO
	for rows.Next() {
		var dto UserOrgDTO
		if err := rows.Scan(&dto.OrgID, &dto.Name, &dto.Role); err != nil {
			return nil, fmt.Errorf("org: scan org list row: %w", err)
		}
		result = append(result, &dto)
	}

	return result, rows.Err()
}

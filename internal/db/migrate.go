package db

import (
	"context"
	"database/sql"
)

const schemaMigration = `
CREATE TABLE IF NOT EXISTS orgs (
    id bigserial PRIMARY KEY,
    name text NOT NULL,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS orgs_name_unique
ON orgs (name);

CREATE TABLE IF NOT EXISTS users (
    id bigserial PRIMARY KEY,
    uid text NOT NULL,
    login text NOT NULL,
    email text NOT NULL,
    name text NOT NULL DEFAULT '',
    org_id bigint NOT NULL DEFAULT 0,
    password_hash text NOT NULL DEFAULT '',
    rands text NOT NULL DEFAULT '',
    is_admin boolean NOT NULL DEFAULT false,
    is_disabled boolean NOT NULL DEFAULT false,
    email_verified boolean NOT NULL DEFAULT false,
    last_seen_at timestamptz NOT NULL DEFAULT NOW() - interval '10 years',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW()
);

CREATE UNIQUE INDEX IF NOT EXISTS users_uid_unique
ON users (uid);

CREATE UNIQUE INDEX IF NOT EXISTS users_login_lower_unique
ON users (LOWER(login));

CREATE UNIQUE INDEX IF NOT EXISTS users_email_lower_unique
ON users (LOWER(email));

CREATE TABLE IF NOT EXISTS org_users (
    id bigserial PRIMARY KEY,
    org_id bigint NOT NULL REFERENCES orgs(id) ON DELETE CASCADE,
    user_id bigint NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    role text NOT NULL DEFAULT 'Viewer',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT org_users_org_user_unique
        UNIQUE (org_id, user_id)
);

CREATE INDEX IF NOT EXISTS org_users_user_id_idx
ON org_users (user_id);

CREATE TABLE IF NOT EXISTS teams (
    id bigserial PRIMARY KEY,
    org_id bigint NOT NULL REFERENCES orgs(id) ON DELETE CASCADE,
    name text NOT NULL,
    email text NOT NULL DEFAULT '',
    created_at timestamptz NOT NULL DEFAULT NOW(),
    updated_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT teams_org_name_unique
        UNIQUE (org_id, name)
);

CREATE TABLE IF NOT EXISTS team_members (
    id bigserial PRIMARY KEY,
    team_id bigint NOT NULL REFERENCES teams(id) ON DELETE CASCADE,
    user_id bigint NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    created_at timestamptz NOT NULL DEFAULT NOW(),
    CONSTRAINT team_members_team_user_unique
        UNIQUE (team_id, user_id)
);

CREATE INDEX IF NOT EXISTS team_members_user_id_idx
ON team_members (user_id);
`

func RunMigration(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, schemaMigration)
	return err
}

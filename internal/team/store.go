package team

import (
	"context"
	"fmt"

	"user-service/internal/db"

	"github.com/lib/pq"
)

type store interface {
	// GetTeamsByUser returns the user's teams in membership order.
	// A nil filterIDs means no restriction beyond membership.
	GetTeamsByUser(ctx context.Context, orgID, userID int64, filterIDs []int64) ([]*Team, error)
}

type sqlStore struct {
	db *db.DB
}

func newSQLStore(db *db.DB) *sqlStore {
	return &sqlStore{db: db}
}

func (s *sqlStore) GetTeamsByUser(ctx context.Context, orgID, userID int64, filterIDs []int64) ([]*Team, error) {
	query := `
		SELECT t.id, t.org_id, t.name, t.email, t.created_at, t.updated_at
		FROM team_members tm
		JOIN teams t ON t.id = tm.team_id
		WHERE tm.user_id = $1
		  AND t.org_id = $2
	`
	args := []any{userID, orgID}

	if filterIDs != nil {
		query += ` AND t.id = ANY($3)`
		args = append(args, pq.Array(filterIDs))
	}

	// membership order, matching the order teams were joined
	query += ` ORDER BY tm.id`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("team: get teams by user: %w", err)
	}
	defer rows.Close()

	var teams []*Team
	for rows.Next() {
		var t Team
		if err := rows.Scan(&t.ID, &t.OrgID, &t.Name, &t.Email, &t.Created, &t.Updated); err != nil {
			return nil, fmt.Errorf("team: scan team row: %w", err)
		}
		teams = append(teams, &t)
	}

	return teams, rows.Err()
}

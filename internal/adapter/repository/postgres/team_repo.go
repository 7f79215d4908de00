package postgres

import (
	"context"

	"github.com/iho/fintrack/internal/infrastructure/postgres/generated"
	"github.com/iho/fintrack/internal/usecase"
)

// TeamRepository answers membership questions from the teams and team_user tables.
type TeamRepository struct {
	db generated.DBTX
}

// NewTeamRepository creates a new team repository
func NewTeamRepository(db generated.DBTX) *TeamRepository {
	return &TeamRepository{db: db}
}

// IsMemberOrOwner reports whether the user owns or belongs to the team.
// An unknown team yields false.
func (r *TeamRepository) IsMemberOrOwner(ctx context.Context, userID, teamID string) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM teams WHERE id = $1 AND owner_id = $2
			UNION ALL
			SELECT 1 FROM team_user WHERE team_id = $1 AND user_id = $2
		)
	`

	var ok bool
	if err := r.db.QueryRow(ctx, query, teamID, userID).Scan(&ok); err != nil {
		return false, err
	}

	return ok, nil
}

// ListAccessibleTeamIDs returns every team the user owns or belongs to.
func (r *TeamRepository) ListAccessibleTeamIDs(ctx context.Context, userID string) ([]string, error) {
	query := `
		SELECT id FROM teams WHERE owner_id = $1
		UNION
		SELECT team_id FROM team_user WHERE user_id = $1
		ORDER BY 1
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	return ids, rows.Err()
}

var _ usecase.TeamRepository = (*TeamRepository)(nil)

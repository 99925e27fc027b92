package repository

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/domain"
)

// TeamRepository manages persistence for teams and their membership.
type TeamRepository interface {
	Create(ctx context.Context, team *domain.Team) error
	Update(ctx context.Context, team *domain.Team) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*domain.Team, error)
	ListAccessible(ctx context.Context, identityID string) ([]domain.Team, error)
	AddMember(ctx context.Context, teamID, identityID string) error
}

type teamRepository struct {
	db DB
}

// NewTeamRepository constructs repository.
func NewTeamRepository(db DB) TeamRepository {
	return &teamRepository{db: db}
}

const teamSelect = `
        SELECT t.id, t.creator_id, t.name, t.description, t.created_at, t.updated_at,
               COALESCE(array_agg(tm.identity_id) FILTER (WHERE tm.identity_id IS NOT NULL), '{}')
        FROM teams t
        LEFT JOIN team_members tm ON tm.team_id = t.id`

// Create inserts the team and registers its creator as a member in one transaction.
func (r *teamRepository) Create(ctx context.Context, team *domain.Team) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		return createTeam(ctx, tx, team)
	})
}

func createTeam(ctx context.Context, tx pgx.Tx, team *domain.Team) error {
	const query = `
        INSERT INTO teams (creator_id, name, description)
        VALUES ($1,$2,$3)
        RETURNING id, created_at, updated_at`
	if err := tx.QueryRow(ctx, query,
		team.CreatorID,
		team.Name,
		team.Description,
	).Scan(&team.ID, &team.CreatedAt, &team.UpdatedAt); err != nil {
		return err
	}
	if _, err := tx.Exec(ctx, `INSERT INTO team_members (team_id, identity_id) VALUES ($1,$2)`, team.ID, team.CreatorID); err != nil {
		return err
	}
	team.MemberIDs = []string{team.CreatorID}
	return nil
}

func (r *teamRepository) Update(ctx context.Context, team *domain.Team) error {
	const query = `
        UPDATE teams SET name=$1, description=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING updated_at`
	return r.db.QueryRow(ctx, query, team.Name, team.Description, team.ID).Scan(&team.UpdatedAt)
}

func (r *teamRepository) Delete(ctx context.Context, id string) error {
	return expectOne(r.db.Exec(ctx, `DELETE FROM teams WHERE id=$1`, id))
}

func (r *teamRepository) GetByID(ctx context.Context, id string) (*domain.Team, error) {
	return scanTeam(r.db.QueryRow(ctx, teamSelect+` WHERE t.id=$1 GROUP BY t.id`, id))
}

func (r *teamRepository) ListAccessible(ctx context.Context, identityID string) ([]domain.Team, error) {
	const filter = `
        WHERE t.creator_id=$1
           OR EXISTS (SELECT 1 FROM team_members m WHERE m.team_id = t.id AND m.identity_id=$1)
        GROUP BY t.id
        ORDER BY t.created_at`
	rows, err := r.db.Query(ctx, teamSelect+filter, identityID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Team
	for rows.Next() {
		team, err := scanTeam(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *team)
	}
	return result, rows.Err()
}

func (r *teamRepository) AddMember(ctx context.Context, teamID, identityID string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO team_members (team_id, identity_id) VALUES ($1,$2) ON CONFLICT DO NOTHING`,
		teamID, identityID)
	return err
}

func scanTeam(row pgx.Row) (*domain.Team, error) {
	var team domain.Team
	if err := row.Scan(
		&team.ID,
		&team.CreatorID,
		&team.Name,
		&team.Description,
		&team.CreatedAt,
		&team.UpdatedAt,
		&team.MemberIDs,
	); err != nil {
		return nil, err
	}
	return &team, nil
}

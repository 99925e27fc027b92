package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/access"
	"github.com/spec-kit/crm-service/internal/domain"
)

// MemberRepository covers the multi-table writes of member management.
type MemberRepository interface {
	CreateInTeam(ctx context.Context, member *domain.Identity, teamID string) error
	ExecuteRemoval(ctx context.Context, plan access.RemovalPlan) error
}

type memberRepository struct {
	db DB
}

// NewMemberRepository constructs repository.
func NewMemberRepository(db DB) MemberRepository {
	return &memberRepository{db: db}
}

// CreateInTeam inserts member and registers it on teamID atomically.
func (r *memberRepository) CreateInTeam(ctx context.Context, member *domain.Identity, teamID string) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		if err := insertIdentity(ctx, tx, member); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `INSERT INTO team_members (team_id, identity_id) VALUES ($1,$2)`, teamID, member.ID)
		return err
	})
}

// ExecuteRemoval applies plan in a single transaction. Nothing is kept if any step fails.
func (r *memberRepository) ExecuteRemoval(ctx context.Context, plan access.RemovalPlan) error {
	return inTx(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM teams WHERE id = ANY($1)`, plan.DeleteTeamIDs); err != nil {
			return fmt.Errorf("delete owned teams: %w", err)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM lists WHERE id = ANY($1)`, plan.DeleteListIDs); err != nil {
			return fmt.Errorf("delete owned lists: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM team_members WHERE identity_id=$1 AND team_id = ANY($2)`,
			plan.IdentityID, plan.UnlinkTeamIDs); err != nil {
			return fmt.Errorf("unlink teams: %w", err)
		}
		if _, err := tx.Exec(ctx,
			`DELETE FROM list_members WHERE identity_id=$1 AND list_id = ANY($2)`,
			plan.IdentityID, plan.UnlinkListIDs); err != nil {
			return fmt.Errorf("unlink lists: %w", err)
		}
		if err := expectOne(tx.Exec(ctx, `DELETE FROM identities WHERE id=$1`, plan.IdentityID)); err != nil {
			return fmt.Errorf("delete identity: %w", err)
		}
		return nil
	})
}

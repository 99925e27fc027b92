package service

import (
	"context"

	"github.com/spec-kit/crm-service/internal/access"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util/errorutil"
)

// TeamService exposes team CRUD guarded by the access policy.
type TeamService struct {
	teams  repository.TeamRepository
	policy access.Policy
}

// NewTeamService builds the service.
func NewTeamService(teams repository.TeamRepository) *TeamService {
	return &TeamService{teams: teams}
}

// ListTeams returns the teams caller created or belongs to.
func (s *TeamService) ListTeams(ctx context.Context, caller *domain.Identity) ([]domain.Team, error) {
	teams, err := s.teams.ListAccessible(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return teams, nil
}

// CreateTeam creates a team with caller as creator and first member.
func (s *TeamService) CreateTeam(ctx context.Context, caller *domain.Identity, name, description string) (*domain.Team, error) {
	team := &domain.Team{CreatorID: caller.ID, Name: name, Description: description}
	if err := s.teams.Create(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// UpdateTeam renames or re-describes an accessible team.
func (s *TeamService) UpdateTeam(ctx context.Context, caller *domain.Identity, id string, name, description *string) (*domain.Team, error) {
	team, err := s.accessibleTeam(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	if name != nil {
		team.Name = *name
	}
	if description != nil {
		team.Description = *description
	}
	if err := s.teams.Update(ctx, team); err != nil {
		return nil, apperrors.MapError(err)
	}
	return team, nil
}

// DeleteTeam deletes a team the caller created, once no one else is registered on it.
func (s *TeamService) DeleteTeam(ctx context.Context, caller *domain.Identity, id string) error {
	team, err := s.accessibleTeam(ctx, caller, id)
	if err != nil {
		return err
	}
	if !s.policy.IsCreator(caller.ID, access.Team{Team: team}) {
		return access.InvalidID(access.KindTeam)
	}
	for _, memberID := range team.MemberIDs {
		if memberID != team.CreatorID {
			return apperrors.NewBadRequest("team still has members")
		}
	}
	if err := s.teams.Delete(ctx, team.ID); err != nil {
		return notFoundAs(err, access.InvalidID(access.KindTeam))
	}
	return nil
}

func (s *TeamService) accessibleTeam(ctx context.Context, caller *domain.Identity, id string) (*domain.Team, error) {
	team, err := s.teams.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, access.InvalidID(access.KindTeam))
	}
	if err := s.policy.Authorize(caller.ID, access.Team{Team: team}); err != nil {
		return nil, err
	}
	return team, nil
}

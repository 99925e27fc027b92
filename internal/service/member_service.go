package service

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/access"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/events"
	"github.com/spec-kit/crm-service/internal/observability"
	"github.com/spec-kit/crm-service/internal/repository"
	"github.com/spec-kit/crm-service/internal/session"
	apperrors "github.com/spec-kit/crm-service/pkg/util/errorutil"
)

// CreateMemberInput describes a subordinate identity created by a manager.
type CreateMemberInput struct {
	TeamID       string
	Name         string
	Username     string
	Email        string
	Phone        domain.Phone
	Password     string
	Capabilities domain.Capabilities
	MemberRole   domain.MemberRole
}

// UpdateMemberInput is a partial update; nil fields are left unchanged.
type UpdateMemberInput struct {
	Name          *string
	Password      *string
	CrmAccess     *bool
	ModifyMember  *bool
	SkipCall      *bool
	AllListAccess *bool
	MemberRole    *domain.MemberRole
}

// MemberService manages identities created by managers.
type MemberService struct {
	identities repository.IdentityRepository
	teams      repository.TeamRepository
	lists      repository.ListRepository
	members    repository.MemberRepository
	sessions   session.Store
	policy     access.Policy
	logger     *zap.Logger
	events     publisher
	bcryptCost int
}

// MemberDependencies encapsulates collaborators for the member service.
type MemberDependencies struct {
	Identities repository.IdentityRepository
	Teams      repository.TeamRepository
	Lists      repository.ListRepository
	Members    repository.MemberRepository
	Sessions   session.Store
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
}

// NewMemberService builds the service.
func NewMemberService(bcryptCost int, deps MemberDependencies) *MemberService {
	return &MemberService{
		identities: deps.Identities,
		teams:      deps.Teams,
		lists:      deps.Lists,
		members:    deps.Members,
		sessions:   deps.Sessions,
		logger:     deps.Logger,
		events:     publisher{dispatcher: deps.Dispatcher, logger: deps.Logger},
		bcryptCost: bcryptCost,
	}
}

// CreateMember creates an agent on one of the manager's accessible teams.
func (s *MemberService) CreateMember(ctx context.Context, manager *domain.Identity, in CreateMemberInput) (_ *domain.Identity, err error) {
	ctx, span := observability.StartSpan(ctx, "member.create")
	defer func() { observability.EndSpan(span, err) }()

	team, err := s.teams.GetByID(ctx, in.TeamID)
	if err != nil {
		return nil, notFoundAs(err, access.InvalidID(access.KindTeam))
	}
	if err := s.policy.Authorize(manager.ID, access.Team{Team: team}); err != nil {
		return nil, err
	}

	switch in.MemberRole {
	case domain.MemberRoleAgent:
	case domain.MemberRoleManager:
		return nil, apperrors.NewBadRequest("managers cannot be created as members")
	default:
		return nil, apperrors.NewBadRequest("invalid member role")
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	creatorID := manager.ID
	member := &domain.Identity{
		CreatorID:    &creatorID,
		Name:         in.Name,
		Username:     in.Username,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hash,
		Status:       domain.IdentityStatusActive,
		Roles:        []domain.Role{domain.RoleUser},
		Capabilities: in.Capabilities.AgentCeiling(),
		MemberRole:   domain.MemberRoleAgent,
	}
	if err := s.members.CreateInTeam(ctx, member, team.ID); err != nil {
		return nil, mapWriteError(err)
	}

	s.events.publish(ctx, events.New(events.EventMemberCreated, member.ID, manager.ID, events.MemberCreatedPayload{
		TeamID:     team.ID,
		MemberRole: string(member.MemberRole),
	}))
	return member, nil
}

// UpdateMember applies a partial update to a member the manager created.
// Agents cannot raise their own capability ceiling: switching to agent clears the capped
// flags, and while a member stays an agent those flags in the update are ignored.
func (s *MemberService) UpdateMember(ctx context.Context, manager *domain.Identity, memberID string, in UpdateMemberInput) (*domain.Identity, error) {
	member, err := s.ownedMember(ctx, manager, memberID)
	if err != nil {
		return nil, err
	}

	if in.Name != nil {
		member.Name = *in.Name
	}
	if in.Password != nil {
		hash, err := auth.HashPassword(*in.Password, s.bcryptCost)
		if err != nil {
			return nil, apperrors.NewInternalError(err)
		}
		member.PasswordHash = hash
	}
	if in.SkipCall != nil {
		member.Capabilities.SkipCall = *in.SkipCall
	}

	switch {
	case in.MemberRole != nil && !in.MemberRole.Valid():
		return nil, apperrors.NewBadRequest("invalid member role")
	case in.MemberRole != nil && *in.MemberRole == domain.MemberRoleAgent:
		member.MemberRole = domain.MemberRoleAgent
		member.Capabilities = member.Capabilities.AgentCeiling()
	case in.MemberRole == nil && member.MemberRole == domain.MemberRoleAgent:
	default:
		if in.MemberRole != nil {
			member.MemberRole = *in.MemberRole
		}
		if in.CrmAccess != nil {
			member.Capabilities.CrmAccess = *in.CrmAccess
		}
		if in.ModifyMember != nil {
			member.Capabilities.ModifyMember = *in.ModifyMember
		}
		if in.AllListAccess != nil {
			member.Capabilities.AllListAccess = *in.AllListAccess
		}
	}

	if err := s.identities.Update(ctx, member); err != nil {
		return nil, mapWriteError(err)
	}
	return member, nil
}

// DeleteMember removes a member the manager created. Teams and lists the member belongs to
// are deleted when the member or the manager created them, and unlinked otherwise. The
// identity goes in the same transaction. The member's session is revoked after commit.
func (s *MemberService) DeleteMember(ctx context.Context, manager *domain.Identity, memberID string) (err error) {
	ctx, span := observability.StartSpan(ctx, "member.delete")
	defer func() { observability.EndSpan(span, err) }()

	member, err := s.ownedMember(ctx, manager, memberID)
	if err != nil {
		return err
	}

	teams, err := s.teams.ListAccessible(ctx, member.ID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	lists, err := s.lists.ListAccessible(ctx, member.ID)
	if err != nil {
		return apperrors.NewInternalError(err)
	}

	plan := s.policy.PlanRemoval(member, manager.ID, teams, lists)
	if err := s.members.ExecuteRemoval(ctx, plan); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return access.InvalidID(access.KindMember)
		}
		return apperrors.NewInternalError(err)
	}

	if err := s.sessions.Delete(ctx, session.RefreshKey(member.ID)); err != nil {
		s.logger.Error("session revocation failed after member removal", zap.String("member_id", member.ID), zap.Error(err))
		return apperrors.NewDomainError(apperrors.CodeInternal, "member removed but session revocation failed", http.StatusInternalServerError, nil).WithCause(err)
	}

	s.events.publish(ctx, events.New(events.EventMemberDeleted, member.ID, manager.ID, events.MemberDeletedPayload{
		DeletedTeams:  len(plan.DeleteTeamIDs),
		DeletedLists:  len(plan.DeleteListIDs),
		UnlinkedTeams: len(plan.UnlinkTeamIDs),
		UnlinkedLists: len(plan.UnlinkListIDs),
	}))
	return nil
}

// ListMembers returns the members the manager created.
func (s *MemberService) ListMembers(ctx context.Context, manager *domain.Identity) ([]domain.Identity, error) {
	members, err := s.identities.ListByCreator(ctx, manager.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return members, nil
}

func (s *MemberService) ownedMember(ctx context.Context, manager *domain.Identity, memberID string) (*domain.Identity, error) {
	member, err := s.identities.GetByID(ctx, memberID)
	if err != nil {
		return nil, notFoundAs(err, access.InvalidID(access.KindMember))
	}
	if !s.policy.CanManageMember(manager.ID, member) {
		return nil, access.InvalidID(access.KindMember)
	}
	return member, nil
}

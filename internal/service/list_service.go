package service

import (
	"context"

	"github.com/spec-kit/crm-service/internal/access"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util/errorutil"
)

// ListService exposes contact-list CRUD guarded by the access policy.
type ListService struct {
	lists  repository.ListRepository
	policy access.Policy
}

// NewListService builds the service.
func NewListService(lists repository.ListRepository) *ListService {
	return &ListService{lists: lists}
}

func (s *ListService) ListLists(ctx context.Context, caller *domain.Identity) ([]domain.List, error) {
	lists, err := s.lists.ListAccessible(ctx, caller.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return lists, nil
}

func (s *ListService) CreateList(ctx context.Context, caller *domain.Identity, name string) (*domain.List, error) {
	list := &domain.List{CreatorID: caller.ID, Name: name}
	if err := s.lists.Create(ctx, list); err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

func (s *ListService) UpdateList(ctx context.Context, caller *domain.Identity, id, name string) (*domain.List, error) {
	list, err := accessibleList(ctx, s.lists, s.policy, caller, id)
	if err != nil {
		return nil, err
	}
	list.Name = name
	if err := s.lists.Update(ctx, list); err != nil {
		return nil, apperrors.MapError(err)
	}
	return list, nil
}

// DeleteList deletes a list the caller created together with its contacts.
func (s *ListService) DeleteList(ctx context.Context, caller *domain.Identity, id string) error {
	list, err := accessibleList(ctx, s.lists, s.policy, caller, id)
	if err != nil {
		return err
	}
	if !s.policy.IsCreator(caller.ID, access.List{List: list}) {
		return access.InvalidID(access.KindList)
	}
	if err := s.lists.Delete(ctx, list.ID); err != nil {
		return notFoundAs(err, access.InvalidID(access.KindList))
	}
	return nil
}

func accessibleList(ctx context.Context, lists repository.ListRepository, policy access.Policy, caller *domain.Identity, id string) (*domain.List, error) {
	list, err := lists.GetByID(ctx, id)
	if err != nil {
		return nil, notFoundAs(err, access.InvalidID(access.KindList))
	}
	if err := policy.Authorize(caller.ID, access.List{List: list}); err != nil {
		return nil, err
	}
	return list, nil
}

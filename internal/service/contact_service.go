package service

import (
	"context"

	"github.com/spec-kit/crm-service/internal/access"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/repository"
	apperrors "github.com/spec-kit/crm-service/pkg/util/errorutil"
)

// ContactInput is the full set of fields for a new contact.
type ContactInput struct {
	Primary     domain.Phone
	Secondary   *domain.Phone
	Name        string
	Email       string
	Company     string
	Extra       string
	Remarks     string
	Note        string
	Disposition domain.Disposition
}

// ContactPatch is a partial update. The primary phone is fixed once created.
type ContactPatch struct {
	Secondary   *domain.Phone
	Name        *string
	Email       *string
	Company     *string
	Extra       *string
	Remarks     *string
	Note        *string
	Disposition *domain.Disposition
}

// ContactService manages contacts; access is decided by the owning list.
type ContactService struct {
	lists    repository.ListRepository
	contacts repository.ContactRepository
	policy   access.Policy
}

// NewContactService builds the service.
func NewContactService(lists repository.ListRepository, contacts repository.ContactRepository) *ContactService {
	return &ContactService{lists: lists, contacts: contacts}
}

func (s *ContactService) ListContacts(ctx context.Context, caller *domain.Identity, listID string) ([]domain.Contact, error) {
	list, err := accessibleList(ctx, s.lists, s.policy, caller, listID)
	if err != nil {
		return nil, err
	}
	contacts, err := s.contacts.ListByList(ctx, list.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return contacts, nil
}

func (s *ContactService) CreateContact(ctx context.Context, caller *domain.Identity, listID string, in ContactInput) (*domain.Contact, error) {
	list, err := accessibleList(ctx, s.lists, s.policy, caller, listID)
	if err != nil {
		return nil, err
	}
	if in.Disposition == "" {
		in.Disposition = domain.DispositionNew
	}
	if !in.Disposition.Valid() {
		return nil, apperrors.NewBadRequest("invalid disposition")
	}

	contact := &domain.Contact{
		ListID:      list.ID,
		Primary:     in.Primary,
		Secondary:   in.Secondary,
		Name:        in.Name,
		Email:       in.Email,
		Company:     in.Company,
		Extra:       in.Extra,
		Remarks:     in.Remarks,
		Note:        in.Note,
		Disposition: in.Disposition,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, apperrors.MapError(err)
	}
	return contact, nil
}

func (s *ContactService) UpdateContact(ctx context.Context, caller *domain.Identity, listID, contactID string, patch ContactPatch) (*domain.Contact, error) {
	contact, err := s.accessibleContact(ctx, caller, listID, contactID)
	if err != nil {
		return nil, err
	}
	if patch.Disposition != nil && !patch.Disposition.Valid() {
		return nil, apperrors.NewBadRequest("invalid disposition")
	}

	if patch.Secondary != nil {
		contact.Secondary = patch.Secondary
	}
	setString(&contact.Name, patch.Name)
	setString(&contact.Email, patch.Email)
	setString(&contact.Company, patch.Company)
	setString(&contact.Extra, patch.Extra)
	setString(&contact.Remarks, patch.Remarks)
	setString(&contact.Note, patch.Note)
	if patch.Disposition != nil {
		contact.Disposition = *patch.Disposition
	}

	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, apperrors.MapError(err)
	}
	return contact, nil
}

func (s *ContactService) DeleteContact(ctx context.Context, caller *domain.Identity, listID, contactID string) error {
	contact, err := s.accessibleContact(ctx, caller, listID, contactID)
	if err != nil {
		return err
	}
	if err := s.contacts.Delete(ctx, contact.ID); err != nil {
		return notFoundAs(err, apperrors.NewNotFound("contact"))
	}
	return nil
}

func (s *ContactService) accessibleContact(ctx context.Context, caller *domain.Identity, listID, contactID string) (*domain.Contact, error) {
	list, err := accessibleList(ctx, s.lists, s.policy, caller, listID)
	if err != nil {
		return nil, err
	}
	contact, err := s.contacts.GetByID(ctx, contactID)
	if err != nil {
		return nil, notFoundAs(err, apperrors.NewNotFound("contact"))
	}
	if !s.policy.CanAccessContact(caller.ID, list, contact) {
		return nil, apperrors.NewNotFound("contact")
	}
	return contact, nil
}

func setString(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

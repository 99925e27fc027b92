package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/service"
)

// ContactAPI is the contact service surface used by ContactHandler.
type ContactAPI interface {
	ListContacts(ctx context.Context, caller *domain.Identity, listID string) ([]domain.Contact, error)
	CreateContact(ctx context.Context, caller *domain.Identity, listID string, in service.ContactInput) (*domain.Contact, error)
	UpdateContact(ctx context.Context, caller *domain.Identity, listID, contactID string, patch service.ContactPatch) (*domain.Contact, error)
	DeleteContact(ctx context.Context, caller *domain.Identity, listID, contactID string) error
}

// ContactHandler exposes contacts nested under their list.
type ContactHandler struct {
	contacts ContactAPI
}

func NewContactHandler(contacts ContactAPI) *ContactHandler {
	return &ContactHandler{contacts: contacts}
}

func (h *ContactHandler) FindAll(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	contacts, err := h.contacts.ListContacts(c.UserContext(), identity, c.Params("listId"))
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewContactResponses(contacts))
}

func (h *ContactHandler) Create(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.CreateContactRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	in := service.ContactInput{
		Primary:   domain.Phone{CountryCode: req.PrimaryCountryCode, Number: req.PrimaryContactNumber},
		Secondary: req.Secondary(),
		Name:      req.Name,
		Email:     req.Email,
		Company:   req.Company,
		Extra:     req.Extra,
		Remarks:   req.Remarks,
		Note:      req.Note,
	}
	if req.Disposition != nil {
		in.Disposition = *req.Disposition
	}
	contact, err := h.contacts.CreateContact(c.UserContext(), identity, c.Params("listId"), in)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.NewContactResponse(contact))
}

func (h *ContactHandler) Update(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.UpdateContactRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	contact, err := h.contacts.UpdateContact(c.UserContext(), identity, c.Params("listId"), c.Params("contactId"), service.ContactPatch{
		Secondary:   req.Secondary(),
		Name:        req.Name,
		Email:       req.Email,
		Company:     req.Company,
		Extra:       req.Extra,
		Remarks:     req.Remarks,
		Note:        req.Note,
		Disposition: req.Disposition,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewContactResponse(contact))
}

func (h *ContactHandler) Delete(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.contacts.DeleteContact(c.UserContext(), identity, c.Params("listId"), c.Params("contactId")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, nil)
}

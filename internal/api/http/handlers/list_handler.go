package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/domain"
)

// ListAPI is the list service surface used by ListHandler.
type ListAPI interface {
	ListLists(ctx context.Context, caller *domain.Identity) ([]domain.List, error)
	CreateList(ctx context.Context, caller *domain.Identity, name string) (*domain.List, error)
	UpdateList(ctx context.Context, caller *domain.Identity, id, name string) (*domain.List, error)
	DeleteList(ctx context.Context, caller *domain.Identity, id string) error
}

type ListHandler struct {
	lists ListAPI
}

func NewListHandler(lists ListAPI) *ListHandler {
	return &ListHandler{lists: lists}
}

func (h *ListHandler) FindAll(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	lists, err := h.lists.ListLists(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewListResponses(lists))
}

func (h *ListHandler) Create(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.ListNameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	list, err := h.lists.CreateList(c.UserContext(), identity, req.Name)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.NewListResponse(list))
}

func (h *ListHandler) Update(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.ListNameRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	list, err := h.lists.UpdateList(c.UserContext(), identity, c.Params("id"), req.Name)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewListResponse(list))
}

func (h *ListHandler) Delete(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.lists.DeleteList(c.UserContext(), identity, c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, nil)
}

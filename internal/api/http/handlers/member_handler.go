package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/service"
)

// MemberAPI is the member service surface used by MemberHandler.
type MemberAPI interface {
	CreateMember(ctx context.Context, manager *domain.Identity, in service.CreateMemberInput) (*domain.Identity, error)
	UpdateMember(ctx context.Context, manager *domain.Identity, memberID string, in service.UpdateMemberInput) (*domain.Identity, error)
	DeleteMember(ctx context.Context, manager *domain.Identity, memberID string) error
	ListMembers(ctx context.Context, manager *domain.Identity) ([]domain.Identity, error)
}

// MemberHandler exposes member management for managers.
type MemberHandler struct {
	members MemberAPI
}

func NewMemberHandler(members MemberAPI) *MemberHandler {
	return &MemberHandler{members: members}
}

// Me handles GET /member/me.
func (h *MemberHandler) Me(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewIdentityResponse(identity))
}

// FindAll handles GET /member/findAll.
func (h *MemberHandler) FindAll(c *fiber.Ctx) error {
	manager, err := caller(c)
	if err != nil {
		return err
	}
	members, err := h.members.ListMembers(c.UserContext(), manager)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewIdentityResponses(members))
}

// Create handles POST /member/create.
func (h *MemberHandler) Create(c *fiber.Ctx) error {
	manager, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.CreateMemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	member, err := h.members.CreateMember(c.UserContext(), manager, service.CreateMemberInput{
		TeamID:   req.TeamID,
		Name:     req.Name,
		Username: req.Username,
		Email:    req.Email,
		Phone:    domain.Phone{CountryCode: req.CountryCode, Number: req.PhoneNumber},
		Password: req.Password,
		Capabilities: domain.Capabilities{
			CrmAccess:     req.CrmAccess,
			ModifyMember:  req.ModifyMember,
			SkipCall:      req.SkipCall,
			AllListAccess: req.AllListAccess,
		},
		MemberRole: req.MemberRole,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.NewIdentityResponse(member))
}

// Update handles PATCH /member/update/:memberId.
func (h *MemberHandler) Update(c *fiber.Ctx) error {
	manager, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.UpdateMemberRequest
	if err := bind(c, &req); err != nil {
		return err
	}

	member, err := h.members.UpdateMember(c.UserContext(), manager, c.Params("memberId"), service.UpdateMemberInput{
		Name:          req.Name,
		Password:      req.Password,
		CrmAccess:     req.CrmAccess,
		ModifyMember:  req.ModifyMember,
		SkipCall:      req.SkipCall,
		AllListAccess: req.AllListAccess,
		MemberRole:    req.MemberRole,
	})
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewIdentityResponse(member))
}

// Delete handles DELETE /member/delete/:memberId.
func (h *MemberHandler) Delete(c *fiber.Ctx) error {
	manager, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.members.DeleteMember(c.UserContext(), manager, c.Params("memberId")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, nil)
}

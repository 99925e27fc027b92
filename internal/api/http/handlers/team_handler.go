package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/api/dto"
	"github.com/spec-kit/crm-service/internal/domain"
)

// TeamAPI is the team service surface used by TeamHandler.
type TeamAPI interface {
	ListTeams(ctx context.Context, caller *domain.Identity) ([]domain.Team, error)
	CreateTeam(ctx context.Context, caller *domain.Identity, name, description string) (*domain.Team, error)
	UpdateTeam(ctx context.Context, caller *domain.Identity, id string, name, description *string) (*domain.Team, error)
	DeleteTeam(ctx context.Context, caller *domain.Identity, id string) error
}

type TeamHandler struct {
	teams TeamAPI
}

func NewTeamHandler(teams TeamAPI) *TeamHandler {
	return &TeamHandler{teams: teams}
}

func (h *TeamHandler) FindAll(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	teams, err := h.teams.ListTeams(c.UserContext(), identity)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewTeamResponses(teams))
}

func (h *TeamHandler) Create(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.CreateTeamRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	team, err := h.teams.CreateTeam(c.UserContext(), identity, req.Name, req.Description)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusCreated, dto.NewTeamResponse(team))
}

func (h *TeamHandler) Update(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	var req dto.UpdateTeamRequest
	if err := bind(c, &req); err != nil {
		return err
	}
	team, err := h.teams.UpdateTeam(c.UserContext(), identity, c.Params("id"), req.Name, req.Description)
	if err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, dto.NewTeamResponse(team))
}

func (h *TeamHandler) Delete(c *fiber.Ctx) error {
	identity, err := caller(c)
	if err != nil {
		return err
	}
	if err := h.teams.DeleteTeam(c.UserContext(), identity, c.Params("id")); err != nil {
		return err
	}
	return respond(c, fiber.StatusOK, nil)
}

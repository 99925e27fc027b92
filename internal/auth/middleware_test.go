package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/crm-service/internal/domain"
	apperrors "github.com/spec-kit/crm-service/pkg/util/errorutil"
)

type stubLookup map[string]*domain.Identity

func (s stubLookup) GetByID(_ context.Context, id string) (*domain.Identity, error) {
	if identity, ok := s[id]; ok {
		return identity, nil
	}
	return nil, pgx.ErrNoRows
}

func newGateApp(gate *Gate, guards ...fiber.Handler) *fiber.App {
	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			de := apperrors.ToDomainError(err)
			return c.Status(de.HTTPStatus).JSON(fiber.Map{"message": de.Message})
		},
	})
	handlers := append([]fiber.Handler{gate.Authenticate}, guards...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return errors.New("identity missing")
		}
		return c.SendString(identity.ID)
	})
	app.Get("/protected", handlers...)
	return app
}

func doRequest(t *testing.T, app *fiber.App, header string) (int, string) {
	t.Helper()
	req := httptest.NewRequest("GET", "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	defer resp.Body.Close()

	if resp.StatusCode == fiber.StatusOK {
		buf := make([]byte, 64)
		n, _ := resp.Body.Read(buf)
		return resp.StatusCode, string(buf[:n])
	}
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body.Message
}

func TestGate(t *testing.T) {
	clock := &testClock{t: time.Now()}
	issuer := newTestIssuer(clock)
	identities := stubLookup{
		"active":    {ID: "active", Status: domain.IdentityStatusActive, Capabilities: domain.DefaultCapabilities(), MemberRole: domain.MemberRoleManager},
		"suspended": {ID: "suspended", Status: domain.IdentityStatusSuspended},
	}
	app := newGateApp(NewGate(issuer, identities))

	valid, _, err := issuer.IssueAccess("active")
	require.NoError(t, err)
	ghost, _, err := issuer.IssueAccess("ghost")
	require.NoError(t, err)
	suspended, _, err := issuer.IssueAccess("suspended")
	require.NoError(t, err)
	refresh, _, err := issuer.Issue("active", issuer.refresh.Secret, time.Hour)
	require.NoError(t, err)

	cases := []struct {
		name    string
		header  string
		status  int
		message string
	}{
		{"missing header", "", 401, "missing authorization header"},
		{"wrong scheme", "Basic abc", 401, "invalid authorization header"},
		{"garbage token", "Bearer abc", 401, "invalid token"},
		{"refresh token as access", "Bearer " + refresh, 401, "invalid token"},
		{"unknown identity", "Bearer " + ghost, 401, "identity not found"},
		{"suspended identity", "Bearer " + suspended, 401, "account suspended"},
		{"valid", "Bearer " + valid, 200, "active"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			status, message := doRequest(t, app, tc.header)
			require.Equal(t, tc.status, status)
			require.Equal(t, tc.message, message)
		})
	}
}

func TestGateExpiredToken(t *testing.T) {
	clock := &testClock{t: time.Now()}
	issuer := newTestIssuer(clock)
	app := newGateApp(NewGate(issuer, stubLookup{"a": {ID: "a"}}))

	token, _, err := issuer.IssueAccess("a")
	require.NoError(t, err)
	clock.Advance(16 * time.Minute)

	status, message := doRequest(t, app, "Bearer "+token)
	require.Equal(t, 401, status)
	require.Equal(t, "access token expired", message)
}

func TestGuards(t *testing.T) {
	clock := &testClock{t: time.Now()}
	issuer := newTestIssuer(clock)
	identities := stubLookup{
		"manager": {ID: "manager", Capabilities: domain.DefaultCapabilities(), MemberRole: domain.MemberRoleManager},
		"agent":   {ID: "agent", Capabilities: domain.Capabilities{CrmAccess: true}, MemberRole: domain.MemberRoleAgent},
		"no-crm":  {ID: "no-crm", MemberRole: domain.MemberRoleManager},
		"admin":   {ID: "admin", Capabilities: domain.Capabilities{CrmAccess: true}, MemberRole: domain.MemberRoleAgent, Roles: []domain.Role{domain.RoleAdmin}},
	}
	app := newGateApp(NewGate(issuer, identities), RequireCrmAccess(), RequireManager())

	for id, want := range map[string]int{"manager": 200, "agent": 401, "no-crm": 401, "admin": 200} {
		token, _, err := issuer.IssueAccess(id)
		require.NoError(t, err)
		status, _ := doRequest(t, app, "Bearer "+token)
		require.Equal(t, want, status, id)
	}
}

func TestCheckPredicates(t *testing.T) {
	require.False(t, CheckCrmAccess(nil))
	require.False(t, CheckManager(nil))
	require.True(t, CheckManager(&domain.Identity{Roles: []domain.Role{domain.RoleSuperAdmin}, MemberRole: domain.MemberRoleAgent}))
	require.False(t, CheckManager(&domain.Identity{MemberRole: domain.MemberRoleAgent}))
}

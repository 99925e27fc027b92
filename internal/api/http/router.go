package http

import (
	"slices"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"

	"github.com/spec-kit/crm-service/internal/api/http/handlers"
	"github.com/spec-kit/crm-service/internal/auth"
	"github.com/spec-kit/crm-service/internal/observability"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health   *handlers.HealthHandler
	Auth     *handlers.AuthHandler
	Members  *handlers.MemberHandler
	Teams    *handlers.TeamHandler
	Lists    *handlers.ListHandler
	Contacts *handlers.ContactHandler
	Gate     *auth.Gate
	Metrics  *observability.Metrics
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	if cfg.Metrics != nil {
		app.Get("/metrics", adaptor.HTTPHandler(cfg.Metrics.Handler()))
	}

	api := app.Group("/api/v1")
	api.Get("/healthCheck", cfg.Health.Check)

	authGroup := api.Group("/auth")
	authGroup.Post("/signup", cfg.Auth.Signup)
	authGroup.Post("/signin", cfg.Auth.Signin)
	authGroup.Post("/sendOTPToSignin", cfg.Auth.SendOTP)
	authGroup.Post("/verifyOtpAndSignin", cfg.Auth.VerifyOTP)
	authGroup.Post("/refreshToken", cfg.Auth.Refresh)
	authGroup.Delete("/signout", cfg.Auth.Signout)

	crm := []fiber.Handler{cfg.Gate.Authenticate, auth.RequireCrmAccess()}
	managed := with(crm, auth.RequireManager())

	members := api.Group("/member")
	members.Get("/username/isAvailable/:username", cfg.Auth.UsernameAvailable)
	members.Get("/me", cfg.Gate.Authenticate, cfg.Members.Me)
	members.Get("/findAll", with(managed, cfg.Members.FindAll)...)
	members.Post("/create", with(managed, cfg.Members.Create)...)
	members.Patch("/update/:memberId", with(managed, cfg.Members.Update)...)
	members.Delete("/delete/:memberId", with(managed, cfg.Members.Delete)...)

	teams := api.Group("/team", crm...)
	teams.Get("/findAll", cfg.Teams.FindAll)
	teams.Post("/create", cfg.Teams.Create)
	teams.Patch("/update/:id", cfg.Teams.Update)
	teams.Delete("/delete/:id", cfg.Teams.Delete)

	lists := api.Group("/list", crm...)
	lists.Get("/findAll", cfg.Lists.FindAll)
	lists.Post("/create", cfg.Lists.Create)
	lists.Patch("/update/:id", cfg.Lists.Update)
	lists.Delete("/delete/:id", cfg.Lists.Delete)

	contacts := api.Group("/contact", crm...)
	contacts.Get("/findAll/:listId", cfg.Contacts.FindAll)
	contacts.Post("/create/:listId", cfg.Contacts.Create)
	contacts.Patch("/update/:listId/:contactId", cfg.Contacts.Update)
	contacts.Delete("/delete/:listId/:contactId", cfg.Contacts.Delete)
}

// with returns a new chain ending in h; chain itself is never written to.
func with(chain []fiber.Handler, h fiber.Handler) []fiber.Handler {
	return append(slices.Clip(chain), h)
}

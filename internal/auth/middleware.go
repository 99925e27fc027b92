package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/crm-service/internal/domain"
	apperrors "github.com/spec-kit/crm-service/pkg/util/errorutil"
)

const identityKey = "auth_identity"

// IdentityLookup resolves the identity named by a verified token.
type IdentityLookup interface {
	GetByID(ctx context.Context, id string) (*domain.Identity, error)
}

// Gate validates bearer access tokens and loads the caller identity.
type Gate struct {
	tokens     *TokenIssuer
	identities IdentityLookup
}

// NewGate constructs the authentication middleware.
func NewGate(tokens *TokenIssuer, identities IdentityLookup) *Gate {
	return &Gate{tokens: tokens, identities: identities}
}

// Authenticate enforces authentication for protected routes.
func (g *Gate) Authenticate(c *fiber.Ctx) error {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := g.tokens.VerifyAccess(strings.TrimSpace(parts[1]))
	if err != nil {
		if errors.Is(err, ErrTokenExpired) {
			return apperrors.NewUnauthorized("access token expired")
		}
		return apperrors.NewUnauthorized("invalid token")
	}

	identity, err := g.identities.GetByID(c.UserContext(), claims.IdentityID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("identity not found")
		}
		return apperrors.MapError(err)
	}
	if identity.IsSuspended() {
		return apperrors.NewUnauthorized("account suspended")
	}

	c.Locals(identityKey, identity)
	return c.Next()
}

// IdentityFromContext retrieves the authenticated identity.
func IdentityFromContext(c *fiber.Ctx) (*domain.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*domain.Identity)
	return identity, ok && identity != nil
}

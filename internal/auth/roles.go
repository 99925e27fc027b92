package auth

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/crm-service/internal/domain"
	apperrors "github.com/spec-kit/crm-service/pkg/util/errorutil"
)

// CheckCrmAccess reports whether identity may use CRM resources.
func CheckCrmAccess(identity *domain.Identity) bool {
	return identity != nil && identity.Capabilities.CrmAccess
}

// CheckManager reports whether identity may manage members.
func CheckManager(identity *domain.Identity) bool {
	if identity == nil {
		return false
	}
	return identity.IsElevated() || identity.MemberRole == domain.MemberRoleManager
}

// RequireCrmAccess rejects callers without the CRM capability.
func RequireCrmAccess() fiber.Handler {
	return guard(CheckCrmAccess, "crm access required")
}

// RequireManager rejects callers who are neither managers nor admins.
func RequireManager() fiber.Handler {
	return guard(CheckManager, "manager role required")
}

func guard(check func(*domain.Identity) bool, message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("unauthorized")
		}
		if !check(identity) {
			return apperrors.NewUnauthorized(message)
		}
		return c.Next()
	}
}

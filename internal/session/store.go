// Package session holds short-lived server-side state: refresh tokens and OTP codes.
package session

import (
	"context"
	"time"

	"github.com/spec-kit/crm-service/internal/domain"
)

// Store is a TTL key-value store. Get reports absence through found rather than an error.
type Store interface {
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Get(ctx context.Context, key string) (value string, found bool, err error)
	Delete(ctx context.Context, key string) error
	Ping(ctx context.Context) error
}

const (
	otpPrefix     = "otp:"
	refreshPrefix = "session:"
)

// OTPKey namespaces the pending OTP for a phone.
func OTPKey(phone domain.Phone) string {
	return otpPrefix + phone.String()
}

// RefreshKey namespaces the active refresh token for an identity.
func RefreshKey(identityID string) string {
	return refreshPrefix + identityID
}

// Package otp implements phone one-time-code signin.
package otp

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"errors"
	"fmt"
	"math/big"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/domain"
	"github.com/spec-kit/crm-service/internal/notification"
	"github.com/spec-kit/crm-service/internal/observability"
	"github.com/spec-kit/crm-service/internal/session"
	apperrors "github.com/spec-kit/crm-service/pkg/util/errorutil"
)

// DefaultTTL is how long a requested code stays valid.
const DefaultTTL = 180 * time.Second

const messageTemplate = "Dear Customer, you have requested for CRM OTP %s. This OTP will expire in 3 mins."

// ErrInvalidOTP is returned for absent, expired or mismatched codes.
var ErrInvalidOTP = apperrors.NewDomainError(apperrors.CodeNotFound, "invalid OTP", http.StatusNotFound, []string{"invalid OTP"})

// IdentityStore is what the flow needs from identity persistence.
type IdentityStore interface {
	GetByPhone(ctx context.Context, phone domain.Phone) (*domain.Identity, error)
	MarkPhoneVerified(ctx context.Context, id string) error
}

// Flow issues and redeems codes. Codes live in the session store under the phone key.
type Flow struct {
	identities IdentityStore
	store      session.Store
	sender     notification.SMSSender
	ttl        time.Duration
	logger     *zap.Logger
	metrics    *observability.Metrics
	generate   func() (string, error)
}

// NewFlow wires the flow. A non-positive ttl falls back to DefaultTTL.
func NewFlow(identities IdentityStore, store session.Store, sender notification.SMSSender, ttl time.Duration, logger *zap.Logger, metrics *observability.Metrics) *Flow {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Flow{
		identities: identities,
		store:      store,
		sender:     sender,
		ttl:        ttl,
		logger:     logger,
		metrics:    metrics,
		generate:   GenerateCode,
	}
}

// GenerateCode returns a uniformly random code in [100000, 999999].
func GenerateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Request stores a fresh code for phone and texts it. The code is stored before sending,
// so a delivery failure leaves a code that can still be redeemed within its TTL.
func (f *Flow) Request(ctx context.Context, phone domain.Phone) (string, error) {
	if _, err := f.identities.GetByPhone(ctx, phone); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", apperrors.NewNotFound("identity")
		}
		return "", apperrors.MapError(err)
	}

	code, err := f.generate()
	if err != nil {
		return "", apperrors.NewInternalError(err)
	}
	if err := f.store.Set(ctx, session.OTPKey(phone), code, f.ttl); err != nil {
		return "", apperrors.NewInternalError(err)
	}

	err = f.sender.Send(ctx, phone, fmt.Sprintf(messageTemplate, code))
	f.metrics.RecordOTPDelivery(err)
	if err != nil {
		f.logger.Warn("otp delivery failed", zap.String("destination", phone.String()), zap.Error(err))
		return "", apperrors.NewDeliveryFailed("failed to deliver OTP", err)
	}
	return "OTP sent to " + phone.String(), nil
}

// Verify redeems code for phone. A matched code is deleted before anything else happens.
func (f *Flow) Verify(ctx context.Context, phone domain.Phone, code string) (*domain.Identity, error) {
	key := session.OTPKey(phone)
	stored, found, err := f.store.Get(ctx, key)
	if err != nil {
		return nil, apperrors.NewInternalError(err)
	}
	if !found || subtle.ConstantTimeCompare([]byte(stored), []byte(code)) != 1 {
		return nil, ErrInvalidOTP
	}
	if err := f.store.Delete(ctx, key); err != nil {
		return nil, apperrors.NewInternalError(err)
	}

	identity, err := f.identities.GetByPhone(ctx, phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("identity")
		}
		return nil, apperrors.MapError(err)
	}
	if !identity.IsPhoneNumberVerified {
		if err := f.identities.MarkPhoneVerified(ctx, identity.ID); err != nil {
			return nil, apperrors.MapError(err)
		}
		identity.IsPhoneNumberVerified = true
	}
	return identity, nil
}

package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/crm-service/internal/events"
	apperrors "github.com/spec-kit/crm-service/pkg/util/errorutil"
)

var uniqueFields = map[string]string{
	"identities_username_key": "username",
	"identities_email_key":    "email",
	"identities_phone_key":    "phone number",
}

// mapWriteError turns unique violations into Conflict naming the clashing field.
func mapWriteError(err error) error {
	if constraint, ok := apperrors.UniqueViolation(err); ok {
		field, known := uniqueFields[constraint]
		if !known {
			field = "value"
		}
		return apperrors.NewConflict(field + " already exists")
	}
	return apperrors.MapError(err)
}

// notFoundAs maps a missing row to replacement and anything else through MapError.
func notFoundAs(err, replacement error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return replacement
	}
	return apperrors.MapError(err)
}

// publisher emits audit events. Handler failures are logged and never fail the caller.
type publisher struct {
	dispatcher events.Dispatcher
	logger     *zap.Logger
}

func (p publisher) publish(ctx context.Context, event events.Event) {
	if p.dispatcher == nil {
		return
	}
	if err := p.dispatcher.Publish(ctx, event); err != nil {
		p.logger.Warn("event handler failed", zap.String("event_type", string(event.Type)), zap.Error(err))
	}
}

package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
)

func TestToDomainErrorPassesThroughDomainErrors(t *testing.T) {
	original := NewConflict("username already taken")
	wrapped := fmt.Errorf("signup: %w", original)

	got := ToDomainError(wrapped)
	require.Equal(t, CodeConflict, got.Code)
	require.Equal(t, http.StatusConflict, got.HTTPStatus)
}

func TestToDomainErrorMapsNoRowsToNotFound(t *testing.T) {
	got := ToDomainError(fmt.Errorf("query: %w", pgx.ErrNoRows))
	require.Equal(t, CodeNotFound, got.Code)
	require.Equal(t, http.StatusNotFound, got.HTTPStatus)
}

func TestToDomainErrorHidesUnknownErrors(t *testing.T) {
	cause := errors.New("connection reset")
	got := ToDomainError(cause)
	require.Equal(t, CodeInternal, got.Code)
	require.Equal(t, "internal server error", got.Message)
	require.ErrorIs(t, got, cause)
}

func TestCodeOf(t *testing.T) {
	require.Equal(t, CodeUnauthorized, CodeOf(NewUnauthorized("invalid token")))
	require.Equal(t, CodeInternal, CodeOf(errors.New("boom")))
	require.True(t, IsCode(NewBadRequest("invalid team id"), CodeBadRequest))
	require.False(t, IsCode(nil, CodeBadRequest))
}

func TestWithCauseKeepsOriginalIntact(t *testing.T) {
	base := NewDomainError(CodeNotFound, "invalid OTP", http.StatusNotFound, nil)
	cause := errors.New("mismatch")
	derived := base.WithCause(cause)

	require.ErrorIs(t, derived, cause)
	require.Nil(t, base.Err)
}

func TestUniqueViolation(t *testing.T) {
	err := fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505", ConstraintName: "identities_username_key"})
	name, ok := UniqueViolation(err)
	require.True(t, ok)
	require.Equal(t, "identities_username_key", name)

	_, ok = UniqueViolation(&pgconn.PgError{Code: "23503"})
	require.False(t, ok)
}

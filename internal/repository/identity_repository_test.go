package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/crm-service/internal/domain"
)

func TestUsernameExists(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("SELECT EXISTS (SELECT 1 FROM identities WHERE username=$1)")).
		WithArgs("asha").WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	exists, err := NewIdentityRepository(mock).UsernameExists(context.Background(), "asha")
	require.NoError(t, err)
	require.True(t, exists)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkPhoneVerifiedMissingIdentity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(regexp.QuoteMeta("UPDATE identities SET is_phone_number_verified=TRUE")).
		WithArgs("ghost").WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err = NewIdentityRepository(mock).MarkPhoneVerified(context.Background(), "ghost")
	require.ErrorIs(t, err, pgx.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDPassesThroughNoRows(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectQuery(regexp.QuoteMeta("FROM identities WHERE id=$1")).
		WithArgs("ghost").WillReturnError(pgx.ErrNoRows)

	_, err = NewIdentityRepository(mock).GetByID(context.Background(), "ghost")
	require.ErrorIs(t, err, pgx.ErrNoRows)
	require.NoError(t, mock.ExpectationsWereMet())
}

func identityInsertArgs() []any {
	args := make([]any, 16)
	for i := range args {
		args[i] = pgxmock.AnyArg()
	}
	return args
}

func TestCreateWithTeamCommitsBoth(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO identities")).
		WithArgs(identityInsertArgs()...).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("identity-1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teams")).
		WithArgs("identity-1", "Acme Sales", "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("team-1", now, now))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO team_members")).
		WithArgs("team-1", "identity-1").WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	identity := &domain.Identity{Username: "asha"}
	team := &domain.Team{Name: "Acme Sales"}
	require.NoError(t, NewIdentityRepository(mock).CreateWithTeam(context.Background(), identity, team))
	require.Equal(t, "identity-1", team.CreatorID)
	require.Equal(t, []string{"identity-1"}, team.MemberIDs)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateWithTeamRollsBackIdentity(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	now := time.Now()
	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO identities")).
		WithArgs(identityInsertArgs()...).
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow("identity-1", now, now))
	mock.ExpectQuery(regexp.QuoteMeta("INSERT INTO teams")).
		WithArgs("identity-1", "Acme Sales", "").WillReturnError(boom)
	mock.ExpectRollback()

	err = NewIdentityRepository(mock).CreateWithTeam(context.Background(), &domain.Identity{Username: "asha"}, &domain.Team{Name: "Acme Sales"})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

package postgres

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/99minutos/product-api/internal/core/domain"
)

func TestCredentialRepository_FindByUsername(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	created := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta(queryFindIdentity)).
		WithArgs("alice").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_digest", "role", "created_at"}).
			AddRow("id-1", "alice", []byte("digest"), "USER", created))

	repo := NewCredentialRepository(db)
	got, err := repo.FindByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "id-1", got.ID)
	assert.Equal(t, domain.RoleUser, got.Role)
	assert.Equal(t, []byte("digest"), got.PasswordDigest)
	assert.True(t, got.CreatedAt.Equal(created))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_FindByUsername_NotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(queryFindIdentity)).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "username", "password_digest", "role", "created_at"}))

	_, err = NewCredentialRepository(db).FindByUsername(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrIdentityNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCredentialRepository_Save(t *testing.T) {
	identity := &domain.Identity{
		ID:             "id-1",
		Username:       "alice",
		PasswordDigest: []byte("digest"),
		Role:           domain.RoleAdmin,
		CreatedAt:      time.Now().UTC(),
	}

	tests := []struct {
		name    string
		execErr error
		wantErr error
	}{
		{name: "inserted"},
		{name: "duplicate", execErr: &pgconn.PgError{Code: "23505", ConstraintName: "identities_username_key"}, wantErr: domain.ErrUsernameTaken},
		{name: "other failure", execErr: errors.New("connection reset")},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			exp := mock.ExpectExec(regexp.QuoteMeta(queryInsertIdentity)).
				WithArgs(identity.ID, identity.Username, identity.PasswordDigest, "ADMIN", identity.CreatedAt)
			if tc.execErr != nil {
				exp.WillReturnError(tc.execErr)
			} else {
				exp.WillReturnResult(sqlmock.NewResult(0, 1))
			}

			got, err := NewCredentialRepository(db).Save(context.Background(), identity)
			switch {
			case tc.execErr == nil:
				require.NoError(t, err)
				assert.Equal(t, identity, got)
			case tc.wantErr != nil:
				assert.ErrorIs(t, err, tc.wantErr)
			default:
				assert.Error(t, err)
				assert.NotErrorIs(t, err, domain.ErrUsernameTaken)
			}
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestEnsureSchema(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectExec("CREATE TABLE IF NOT EXISTS identities").WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, EnsureSchema(context.Background(), db))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_EmptyDSN(t *testing.T) {
	_, err := Connect(context.Background(), Config{})
	assert.Error(t, err)
}

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskflow/internal/domain/entity"
	"taskflow/internal/domain/repository"
)

func newUserRepoMock(t *testing.T) (*UserRepository, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewUserRepository(mock), mock
}

func TestUserCreateReturnsGeneratedFields(t *testing.T) {
	repo, mock := newUserRepoMock(t)
	now := time.Now().UTC()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("a@b.co", "hash", "Alice", "", "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).
			AddRow("uid-1", now, now))

	u := &entity.User{Email: "a@b.co", Password: "hash", Name: "Alice"}
	require.NoError(t, repo.Create(context.Background(), u))

	assert.Equal(t, "uid-1", u.ID)
	assert.Equal(t, now, u.CreatedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserCreateDuplicateEmail(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("a@b.co", "hash", "Alice", "", "").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "users_email_key"})

	err := repo.Create(context.Background(), &entity.User{Email: "a@b.co", Password: "hash", Name: "Alice"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByEmail(t *testing.T) {
	repo, mock := newUserRepoMock(t)
	now := time.Now().UTC()

	cols := []string{"id", "email", "password_hash", "name", "bio", "avatar_url", "created_at", "updated_at"}
	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("a@b.co").
		WillReturnRows(pgxmock.NewRows(cols).
			AddRow("uid-1", "a@b.co", "hash", "Alice", "bio", "", now, now))

	u, err := repo.GetByEmail(context.Background(), "a@b.co")
	require.NoError(t, err)
	assert.Equal(t, "uid-1", u.ID)
	assert.Equal(t, "Alice", u.Name)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserGetByIDNotFound(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectQuery("SELECT (.+) FROM users").
		WithArgs("missing").
		WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByID(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdate(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec("UPDATE users").
		WithArgs("Alice", "new bio", "https://cdn.example/a.png", pgxmock.AnyArg(), "uid-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	u := &entity.User{ID: "uid-1", Name: "Alice", Bio: "new bio", AvatarURL: "https://cdn.example/a.png"}
	require.NoError(t, repo.Update(context.Background(), u))
	assert.False(t, u.UpdatedAt.IsZero())
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUserUpdateMissingRow(t *testing.T) {
	repo, mock := newUserRepoMock(t)

	mock.ExpectExec("UPDATE users").
		WithArgs("Alice", "", "", pgxmock.AnyArg(), "gone").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.Update(context.Background(), &entity.User{ID: "gone", Name: "Alice"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

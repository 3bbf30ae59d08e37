package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTokenMock(t *testing.T) (*TokenRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewTokenRepo(db), mock
}

func TestValidateRefreshReturnsOwner(t *testing.T) {
	repo, mock := newTokenMock(t)

	mock.ExpectQuery("SELECT user_id FROM refresh_tokens").
		WithArgs("somehash").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(5))

	uid, err := repo.ValidateRefresh(context.Background(), "somehash")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), uid)
}

func TestValidateRefreshUnknownHash(t *testing.T) {
	repo, mock := newTokenMock(t)

	mock.ExpectQuery("SELECT user_id FROM refresh_tokens").
		WithArgs("unknown").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	_, err := repo.ValidateRefresh(context.Background(), "unknown")
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestStoreRefresh(t *testing.T) {
	repo, mock := newTokenMock(t)

	exp := time.Now().Add(7 * 24 * time.Hour)
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WithArgs(uint64(5), "somehash", exp.UTC()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	err := repo.StoreRefresh(context.Background(), 5, "somehash", exp)
	assert.NoError(t, err)
}

func TestRevokeByHash(t *testing.T) {
	repo, mock := newTokenMock(t)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP").
		WithArgs("somehash").
		WillReturnResult(sqlmock.NewResult(0, 1))

	assert.NoError(t, repo.RevokeByHash(context.Background(), "somehash"))
}

func TestRevokeAllForUser(t *testing.T) {
	repo, mock := newTokenMock(t)

	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP").
		WithArgs(uint64(5)).
		WillReturnResult(sqlmock.NewResult(0, 3))

	assert.NoError(t, repo.RevokeAllForUser(context.Background(), 5))
}

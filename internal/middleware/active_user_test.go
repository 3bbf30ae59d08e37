package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gainz-api/internal/repository"
)

func runActiveUser(t *testing.T, mock sqlmock.Sqlmock, users *repository.UserRepo, uid any) (*httptest.ResponseRecorder, *repository.User) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != nil {
		c.Set("user_id", uid)
	}

	var seen *repository.User
	h := ActiveUser(users)(func(c echo.Context) error {
		seen, _ = c.Get("current_user").(*repository.User)
		return c.NoContent(http.StatusOK)
	})
	require.NoError(t, h(c))
	require.NoError(t, mock.ExpectationsWereMet())
	return rec, seen
}

func userRow(id uint64, active bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "username", "hashed_password", "full_name", "is_active", "created_at"}).
		AddRow(id, "ana@example.com", "ana", "$2a$04$hash", nil, active, time.Now())
}

func TestActiveUserResolvesAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(uint64(3)).
		WillReturnRows(userRow(3, true))

	rec, seen := runActiveUser(t, mock, repository.NewUserRepo(db), uint64(3))
	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, seen)
	assert.Equal(t, uint64(3), seen.ID)
	assert.Equal(t, "ana", seen.Username)
}

func TestActiveUserRejectsInactiveAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(uint64(3)).
		WillReturnRows(userRow(3, false))

	rec, seen := runActiveUser(t, mock, repository.NewUserRepo(db), uint64(3))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestActiveUserRejectsUnknownAccount(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(uint64(99)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "hashed_password", "full_name", "is_active", "created_at"}))

	rec, seen := runActiveUser(t, mock, repository.NewUserRepo(db), uint64(99))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

func TestActiveUserRequiresSubject(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	rec, seen := runActiveUser(t, mock, repository.NewUserRepo(db), nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Nil(t, seen)
}

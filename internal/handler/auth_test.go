package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/gainz-api/internal/config"
	"github.com/iliyamo/gainz-api/internal/repository"
	"github.com/iliyamo/gainz-api/internal/utils"
)

func newAuthHandler(t *testing.T) (*AuthHandler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock := mockDB(t)
	cfg := config.Config{
		JWTSecret:      "auth-test-secret",
		AccessTTLMin:   15,
		RefreshTTLDays: 7,
		BcryptCost:     bcrypt.MinCost,
	}
	return NewAuthHandler(cfg, repository.NewUserRepo(db), repository.NewTokenRepo(db)), mock
}

func userMockRow(id uint64, username, passwordHash string, active bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "username", "hashed_password", "full_name", "is_active", "created_at"}).
		AddRow(id, username+"@example.com", username, passwordHash, nil, active, time.Now())
}

func TestRegisterMissingFields(t *testing.T) {
	h, _ := newAuthHandler(t)
	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/register", `{"email":"ana@example.com"}`)

	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnError(errors.New("Error 1062 (23000): Duplicate entry 'ana@example.com' for key 'users.email'"))

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/register",
		`{"email":"ana@example.com","username":"ana","password":"pw123456"}`)
	require.NoError(t, h.Register(c))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "email already registered")
}

func TestRegisterIssuesTokens(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(4, 1))
	mock.ExpectQuery("SELECT .+ FROM users WHERE id=").
		WithArgs(uint64(4)).
		WillReturnRows(userMockRow(4, "ana", "$2a$04$hash", true))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/register",
		`{"email":"ana@example.com","username":"ana","password":"pw123456"}`)
	require.NoError(t, h.Register(c))
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		User    map[string]any `json:"user"`
		Access  tokenPart      `json:"access"`
		Refresh tokenPart      `json:"refresh"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "ana", resp.User["username"])
	assert.NotEmpty(t, resp.Access.Token)
	assert.Len(t, resp.Refresh.Token, 96)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLoginUnknownUser(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery("SELECT .+ FROM users WHERE username=").
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows([]string{"id", "email", "username", "hashed_password", "full_name", "is_active", "created_at"}))

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/login",
		`{"username":"ghost","password":"whatever"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid credentials")
}

func TestLoginWrongPassword(t *testing.T) {
	h, mock := newAuthHandler(t)

	hash, err := utils.HashPassword("correct-pw", bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT .+ FROM users WHERE username=").
		WithArgs("ana").
		WillReturnRows(userMockRow(4, "ana", hash, true))

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/login",
		`{"username":"ana","password":"wrong-pw"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginInactiveUser(t *testing.T) {
	h, mock := newAuthHandler(t)

	hash, err := utils.HashPassword("correct-pw", bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT .+ FROM users WHERE username=").
		WithArgs("ana").
		WillReturnRows(userMockRow(4, "ana", hash, false))

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/login",
		`{"username":"ana","password":"correct-pw"}`)
	require.NoError(t, h.Login(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "inactive user")
}

func TestLoginSuccess(t *testing.T) {
	h, mock := newAuthHandler(t)

	hash, err := utils.HashPassword("correct-pw", bcrypt.MinCost)
	require.NoError(t, err)
	mock.ExpectQuery("SELECT .+ FROM users WHERE username=").
		WithArgs("ana").
		WillReturnRows(userMockRow(4, "ana", hash, true))
	mock.ExpectExec("INSERT INTO refresh_tokens").
		WillReturnResult(sqlmock.NewResult(1, 1))

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/login",
		`{"username":"ana","password":"correct-pw"}`)
	require.NoError(t, h.Login(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRefreshUnknownToken(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery("SELECT user_id FROM refresh_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}))

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/refresh",
		`{"refresh_token":"deadbeef"}`)
	require.NoError(t, h.Refresh(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLogoutRevokesToken(t *testing.T) {
	h, mock := newAuthHandler(t)

	mock.ExpectQuery("SELECT user_id FROM refresh_tokens").
		WillReturnRows(sqlmock.NewRows([]string{"user_id"}).AddRow(4))
	mock.ExpectExec("UPDATE refresh_tokens SET revoked_at=UTC_TIMESTAMP").
		WillReturnResult(sqlmock.NewResult(0, 1))

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/logout",
		`{"refresh_token":"deadbeef"}`)
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLogoutMissingBody(t *testing.T) {
	h, _ := newAuthHandler(t)

	c, rec := newTestContext(t, http.MethodPost, "/api/v1/auth/logout", `{}`)
	require.NoError(t, h.Logout(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

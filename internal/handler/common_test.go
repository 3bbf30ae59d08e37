package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/gainz-api/internal/repository"
)

// newTestContext builds an echo context around an optional JSON body and
// returns it together with the response recorder.
func newTestContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

// testUser is the account the ActiveUser middleware would have resolved.
func testUser() *repository.User {
	return &repository.User{
		ID:        4,
		Email:     "ana@example.com",
		Username:  "ana",
		IsActive:  true,
		CreatedAt: time.Now(),
	}
}

func mockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var exerciseMockCols = []string{
	"id", "nombre", "grupo_muscular", "descripcion", "instrucciones",
	"nivel_dificultad", "equipo_necesario", "imagen_url", "musculos_secundarios",
	"is_active", "created_at",
}

func exerciseMockRow(id uint64, nombre, grupo string) *sqlmock.Rows {
	return sqlmock.NewRows(exerciseMockCols).
		AddRow(id, nombre, grupo, nil, nil, "intermedio", nil, nil, nil, true, time.Now())
}

var routineMockCols = []string{
	"id", "nombre", "descripcion", "categoria", "duracion_estimada",
	"nivel_dificultad", "is_public", "is_template", "owner_id", "created_at", "updated_at",
	"u_id", "u_email", "u_username", "u_full_name", "u_is_active", "u_created_at",
}

func routineMockRow(id, ownerID uint64, nombre string, public bool) *sqlmock.Rows {
	return sqlmock.NewRows(routineMockCols).
		AddRow(id, nombre, nil, "fuerza", 45, "intermedio", public, false, ownerID, time.Now(), nil,
			ownerID, "ana@example.com", "ana", nil, true, time.Now())
}

var serieMockCols = []string{
	"id", "rutina_id", "ejercicio_id", "orden", "series",
	"repeticiones_min", "repeticiones_max", "peso", "tiempo_descanso", "notas",
	"e_id", "e_nombre", "e_grupo_muscular", "e_descripcion", "e_instrucciones",
	"e_nivel_dificultad", "e_equipo_necesario", "e_imagen_url", "e_musculos_secundarios",
	"e_is_active", "e_created_at",
}

func serieMockRow(id, rutinaID, ejercicioID uint64, orden int) *sqlmock.Rows {
	return sqlmock.NewRows(serieMockCols).
		AddRow(id, rutinaID, ejercicioID, orden, 4, 8, 12, 60.0, 90, nil,
			ejercicioID, "Press banca", "pectorales", nil, nil, "intermedio", nil, nil, nil, true, time.Now())
}

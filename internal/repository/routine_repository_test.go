package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var routineTestCols = []string{
	"id", "nombre", "descripcion", "categoria", "duracion_estimada",
	"nivel_dificultad", "is_public", "is_template", "owner_id", "created_at", "updated_at",
	"u_id", "u_email", "u_username", "u_full_name", "u_is_active", "u_created_at",
}

var serieTestCols = []string{
	"id", "rutina_id", "ejercicio_id", "orden", "series",
	"repeticiones_min", "repeticiones_max", "peso", "tiempo_descanso", "notas",
	"e_id", "e_nombre", "e_grupo_muscular", "e_descripcion", "e_instrucciones",
	"e_nivel_dificultad", "e_equipo_necesario", "e_imagen_url", "e_musculos_secundarios",
	"e_is_active", "e_created_at",
}

func routineRow(id, ownerID uint64, nombre string, public bool) *sqlmock.Rows {
	return sqlmock.NewRows(routineTestCols).
		AddRow(id, nombre, nil, "fuerza", 45, "intermedio", public, false, ownerID, time.Now(), nil,
			ownerID, "ana@example.com", "ana", nil, true, time.Now())
}

func serieRow(id, rutinaID, ejercicioID uint64, orden int) *sqlmock.Rows {
	return sqlmock.NewRows(serieTestCols).
		AddRow(id, rutinaID, ejercicioID, orden, 4, 8, 12, 60.0, 90, nil,
			ejercicioID, "Press banca", "pectorales", nil, nil, "intermedio", nil, nil, nil, true, time.Now())
}

func newRoutineMock(t *testing.T) (*RoutineRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRoutineRepo(db), mock
}

// visibilityClause matches the shared owner-or-public predicate.
var visibilityClause = regexp.QuoteMeta("(r.owner_id = ? OR r.is_public = 1)")

func TestGetVisibleHidesForeignPrivateRoutine(t *testing.T) {
	repo, mock := newRoutineMock(t)

	mock.ExpectQuery(visibilityClause).
		WithArgs(uint64(10), uint64(4)).
		WillReturnRows(sqlmock.NewRows(routineTestCols))

	_, err := repo.GetVisible(context.Background(), 10, 4)
	assert.ErrorIs(t, err, ErrRoutineNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetVisibleLoadsSeriesInOrder(t *testing.T) {
	repo, mock := newRoutineMock(t)

	mock.ExpectQuery(visibilityClause).
		WithArgs(uint64(10), uint64(4)).
		WillReturnRows(routineRow(10, 9, "Full Body", true))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.rutina_id IN (?)")).
		WithArgs(uint64(10)).
		WillReturnRows(serieRow(1, 10, 8, 1))

	rt, err := repo.GetVisible(context.Background(), 10, 4)
	require.NoError(t, err)
	assert.Equal(t, "Full Body", rt.Nombre)
	assert.Equal(t, uint64(9), rt.OwnerID)
	require.NotNil(t, rt.Owner)
	assert.Equal(t, "ana", rt.Owner.Username)
	require.Len(t, rt.Series, 1)
	assert.Equal(t, "Press banca", rt.Series[0].Ejercicio.Nombre)
}

func TestListVisibleAppliesFiltersAfterPredicate(t *testing.T) {
	repo, mock := newRoutineMock(t)

	mock.ExpectQuery(visibilityClause + " AND r.categoria = ").
		WithArgs(uint64(4), "fuerza", 20, 0).
		WillReturnRows(sqlmock.NewRows(routineTestCols))

	list, err := repo.ListVisible(context.Background(), 4, RoutineFilter{Categoria: "fuerza", Limit: 20})
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateInsertsRoutineAndSeries(t *testing.T) {
	repo, mock := newRoutineMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rutinas").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT 1 FROM exercises WHERE id = ").
		WithArgs(uint64(8)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("INSERT INTO series_ejercicios").
		WillReturnResult(sqlmock.NewResult(21, 1))
	mock.ExpectCommit()

	rt := &Routine{Nombre: "Full Body", Categoria: "fuerza", NivelDificultad: "intermedio", OwnerID: 4}
	s := &Serie{EjercicioID: 8, Orden: 1, Series: 4}
	id, err := repo.Create(context.Background(), rt, []*Serie{s})
	require.NoError(t, err)
	assert.Equal(t, uint64(7), id)
	assert.Equal(t, uint64(21), s.ID)
	assert.Equal(t, uint64(7), s.RutinaID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateRollsBackOnUnknownExercise(t *testing.T) {
	repo, mock := newRoutineMock(t)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO rutinas").
		WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT 1 FROM exercises WHERE id = ").
		WithArgs(uint64(999)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectRollback()

	rt := &Routine{Nombre: "Full Body", Categoria: "fuerza", NivelDificultad: "intermedio", OwnerID: 4}
	_, err := repo.Create(context.Background(), rt, []*Serie{{EjercicioID: 999, Orden: 1, Series: 4}})
	assert.ErrorIs(t, err, ErrExerciseNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateScopedToOwner(t *testing.T) {
	repo, mock := newRoutineMock(t)

	mock.ExpectQuery("SELECT 1 FROM rutinas WHERE id = . AND owner_id = ").
		WithArgs(uint64(10), uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))

	nombre := "Otro nombre"
	err := repo.Update(context.Background(), 10, 4, RoutinePatch{Nombre: &nombre})
	assert.ErrorIs(t, err, ErrRoutineNotFound)
}

func TestUpdateTouchesUpdatedAt(t *testing.T) {
	repo, mock := newRoutineMock(t)

	mock.ExpectQuery("SELECT 1 FROM rutinas WHERE id = . AND owner_id = ").
		WithArgs(uint64(10), uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec(regexp.QuoteMeta("UPDATE rutinas SET updated_at = CURRENT_TIMESTAMP, is_public=? WHERE id=? AND owner_id=?")).
		WithArgs(true, uint64(10), uint64(4)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	public := true
	err := repo.Update(context.Background(), 10, 4, RoutinePatch{IsPublic: &public})
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteRemovesSeriesFirst(t *testing.T) {
	repo, mock := newRoutineMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM rutinas WHERE id = . AND owner_id = ").
		WithArgs(uint64(10), uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))
	mock.ExpectExec("DELETE FROM series_ejercicios WHERE rutina_id=").
		WithArgs(uint64(10)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DELETE FROM rutinas WHERE id=").
		WithArgs(uint64(10)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, repo.Delete(context.Background(), 10, 4))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteForeignRoutine(t *testing.T) {
	repo, mock := newRoutineMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT 1 FROM rutinas WHERE id = . AND owner_id = ").
		WithArgs(uint64(10), uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}))
	mock.ExpectRollback()

	err := repo.Delete(context.Background(), 10, 4)
	assert.ErrorIs(t, err, ErrRoutineNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDuplicateCopiesAndResetsFlags(t *testing.T) {
	repo, mock := newRoutineMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT nombre, descripcion, categoria, duracion_estimada, nivel_dificultad").
		WithArgs(uint64(10), uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"nombre", "descripcion", "categoria", "duracion_estimada", "nivel_dificultad"}).
			AddRow("Full Body", nil, "fuerza", 45, "intermedio"))
	mock.ExpectExec(regexp.QuoteMeta("VALUES (?,?,?,?,?,0,0,?)")).
		WithArgs("Full Body (Copia)", nil, "fuerza", 45, "intermedio", uint64(4)).
		WillReturnResult(sqlmock.NewResult(30, 1))
	mock.ExpectExec("INSERT INTO series_ejercicios").
		WithArgs(int64(30), uint64(10)).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	id, err := repo.Duplicate(context.Background(), 10, 4)
	require.NoError(t, err)
	assert.Equal(t, uint64(30), id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDuplicateInvisibleSource(t *testing.T) {
	repo, mock := newRoutineMock(t)

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT nombre, descripcion, categoria, duracion_estimada, nivel_dificultad").
		WithArgs(uint64(10), uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"nombre", "descripcion", "categoria", "duracion_estimada", "nivel_dificultad"}))
	mock.ExpectRollback()

	_, err := repo.Duplicate(context.Background(), 10, 4)
	assert.ErrorIs(t, err, ErrRoutineNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// Routine data access. Visibility and ownership are evaluated inside the
// SQL predicates: a private routine owned by someone else is filtered out
// by the WHERE clause, so callers cannot distinguish "not mine" from
// "does not exist". Write paths append `AND owner_id = ?` and report a
// zero-row match as ErrRoutineNotFound for the same reason.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Routine mirrors the 'rutinas' table. Owner carries a summary of the
// owning user (never the password hash) and Series the ordered set list,
// both populated by the read paths.
type Routine struct {
	ID               uint64
	Nombre           string
	Descripcion      sql.NullString
	Categoria        string
	DuracionEstimada sql.NullInt32
	NivelDificultad  string
	IsPublic         bool
	IsTemplate       bool
	OwnerID          uint64
	CreatedAt        time.Time
	UpdatedAt        sql.NullTime
	Owner            *User
	Series           []*Serie
}

// Serie mirrors the 'series_ejercicios' table: one exercise prescription at
// a position within a routine. Ejercicio is populated on read paths.
type Serie struct {
	ID              uint64
	RutinaID        uint64
	EjercicioID     uint64
	Orden           int32
	Series          int32
	RepeticionesMin sql.NullInt32
	RepeticionesMax sql.NullInt32
	Peso            sql.NullFloat64
	TiempoDescanso  sql.NullInt32
	Notas           sql.NullString
	Ejercicio       *Exercise
}

// RoutineFilter defines filters & pagination for routine listings. Filters
// apply after the ownership-or-public predicate.
type RoutineFilter struct {
	Categoria       string
	NivelDificultad string
	IsPublic        *bool
	Search          string
	Skip            int
	Limit           int
}

// RoutinePatch lists the mutable routine fields. Ownership and the template
// flag are not patchable.
type RoutinePatch struct {
	Nombre           *string
	Descripcion      *string
	Categoria        *string
	DuracionEstimada *int
	NivelDificultad  *string
	IsPublic         *bool
}

type RoutineRepo struct{ DB *sql.DB }

func NewRoutineRepo(db *sql.DB) *RoutineRepo { return &RoutineRepo{DB: db} }

// dbtx is satisfied by *sql.DB and *sql.Tx so series loading and exercise
// checks can run inside or outside a transaction.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

const routineSelect = `SELECT r.id, r.nombre, r.descripcion, r.categoria, r.duracion_estimada,
       r.nivel_dificultad, r.is_public, r.is_template, r.owner_id, r.created_at, r.updated_at,
       u.id, u.email, u.username, u.full_name, u.is_active, u.created_at
FROM rutinas r
JOIN users u ON u.id = r.owner_id`

func scanRoutine(row interface{ Scan(...any) error }) (*Routine, error) {
	rt := &Routine{Owner: &User{}}
	err := row.Scan(&rt.ID, &rt.Nombre, &rt.Descripcion, &rt.Categoria, &rt.DuracionEstimada,
		&rt.NivelDificultad, &rt.IsPublic, &rt.IsTemplate, &rt.OwnerID, &rt.CreatedAt, &rt.UpdatedAt,
		&rt.Owner.ID, &rt.Owner.Email, &rt.Owner.Username, &rt.Owner.FullName,
		&rt.Owner.IsActive, &rt.Owner.CreatedAt)
	if err != nil {
		return nil, err
	}
	rt.Series = []*Serie{}
	return rt, nil
}

// GetVisible fetches one routine visible to the user: either owned by them
// or public. Anything else is ErrRoutineNotFound.
func (r *RoutineRepo) GetVisible(ctx context.Context, id, userID uint64) (*Routine, error) {
	rt, err := scanRoutine(r.DB.QueryRowContext(ctx,
		routineSelect+" WHERE r.id = ? AND (r.owner_id = ? OR r.is_public = 1)", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRoutineNotFound
	}
	if err != nil {
		return nil, err
	}
	if err := r.loadSeries(ctx, r.DB, []*Routine{rt}); err != nil {
		return nil, err
	}
	return rt, nil
}

// ListVisible returns the union of the user's routines and public routines,
// with optional filters applied after that predicate and pagination last.
func (r *RoutineRepo) ListVisible(ctx context.Context, userID uint64, f RoutineFilter) ([]*Routine, error) {
	where := []string{"(r.owner_id = ? OR r.is_public = 1)"}
	args := []any{userID}
	where, args = appendRoutineFilters(where, args, f)

	q := routineSelect + " WHERE " + strings.Join(where, " AND ") +
		" ORDER BY r.id LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Skip)
	return r.list(ctx, q, args...)
}

// ListByOwner returns every routine owned by the user, unpaginated.
func (r *RoutineRepo) ListByOwner(ctx context.Context, userID uint64) ([]*Routine, error) {
	return r.list(ctx, routineSelect+" WHERE r.owner_id = ? ORDER BY r.id", userID)
}

// ListTemplates returns template routines with optional category and
// difficulty filters. Templates are predefined starting points and are not
// subject to the ownership predicate.
func (r *RoutineRepo) ListTemplates(ctx context.Context, f RoutineFilter) ([]*Routine, error) {
	where := []string{"r.is_template = 1"}
	args := []any{}
	where, args = appendRoutineFilters(where, args, f)

	q := routineSelect + " WHERE " + strings.Join(where, " AND ") +
		" ORDER BY r.id LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Skip)
	return r.list(ctx, q, args...)
}

func appendRoutineFilters(where []string, args []any, f RoutineFilter) ([]string, []any) {
	if f.Categoria != "" {
		where = append(where, "r.categoria = ?")
		args = append(args, f.Categoria)
	}
	if f.NivelDificultad != "" {
		where = append(where, "r.nivel_dificultad = ?")
		args = append(args, f.NivelDificultad)
	}
	if f.IsPublic != nil {
		where = append(where, "r.is_public = ?")
		args = append(args, *f.IsPublic)
	}
	if f.Search != "" {
		term := "%" + strings.ToLower(f.Search) + "%"
		where = append(where, "(LOWER(r.nombre) LIKE ? OR LOWER(r.descripcion) LIKE ?)")
		args = append(args, term, term)
	}
	return where, args
}

func (r *RoutineRepo) list(ctx context.Context, q string, args ...any) ([]*Routine, error) {
	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Routine{}
	for rows.Next() {
		rt, err := scanRoutine(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rt)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if err := r.loadSeries(ctx, r.DB, out); err != nil {
		return nil, err
	}
	return out, nil
}

// loadSeries populates Series (with nested exercises) for the given
// routines in a single query, ordered by orden then id within each routine.
func (r *RoutineRepo) loadSeries(ctx context.Context, q dbtx, routines []*Routine) error {
	if len(routines) == 0 {
		return nil
	}
	byID := make(map[uint64]*Routine, len(routines))
	ph := make([]string, 0, len(routines))
	args := make([]any, 0, len(routines))
	for _, rt := range routines {
		byID[rt.ID] = rt
		ph = append(ph, "?")
		args = append(args, rt.ID)
	}
	query := `SELECT s.id, s.rutina_id, s.ejercicio_id, s.orden, s.series,
	       s.repeticiones_min, s.repeticiones_max, s.peso, s.tiempo_descanso, s.notas,
	       e.id, e.nombre, e.grupo_muscular, e.descripcion, e.instrucciones,
	       e.nivel_dificultad, e.equipo_necesario, e.imagen_url, e.musculos_secundarios,
	       e.is_active, e.created_at
	FROM series_ejercicios s
	JOIN exercises e ON e.id = s.ejercicio_id
	WHERE s.rutina_id IN (` + strings.Join(ph, ",") + `)
	ORDER BY s.rutina_id, s.orden, s.id`

	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		s := &Serie{Ejercicio: &Exercise{}}
		e := s.Ejercicio
		if err := rows.Scan(&s.ID, &s.RutinaID, &s.EjercicioID, &s.Orden, &s.Series,
			&s.RepeticionesMin, &s.RepeticionesMax, &s.Peso, &s.TiempoDescanso, &s.Notas,
			&e.ID, &e.Nombre, &e.GrupoMuscular, &e.Descripcion, &e.Instrucciones,
			&e.NivelDificultad, &e.EquipoNecesario, &e.ImagenURL, &e.MusculosSecundarios,
			&e.IsActive, &e.CreatedAt); err != nil {
			return err
		}
		if rt, ok := byID[s.RutinaID]; ok {
			rt.Series = append(rt.Series, s)
		}
	}
	return rows.Err()
}

// Create inserts a routine together with its series list in one
// transaction. Every referenced exercise is verified before any series row
// is written; a missing reference rolls the whole insert back, so a failed
// creation leaves no routine behind. Returns the new routine id.
func (r *RoutineRepo) Create(ctx context.Context, rt *Routine, series []*Serie) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		`INSERT INTO rutinas (nombre, descripcion, categoria, duracion_estimada, nivel_dificultad, is_public, owner_id)
		 VALUES (?,?,?,?,?,?,?)`,
		rt.Nombre, rt.Descripcion, rt.Categoria, rt.DuracionEstimada, rt.NivelDificultad,
		rt.IsPublic, rt.OwnerID)
	if err != nil {
		return 0, err
	}
	var id int64
	id, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for _, s := range series {
		if err = insertSerie(ctx, tx, uint64(id), s); err != nil {
			return 0, err
		}
	}
	return uint64(id), nil
}

// insertSerie verifies the referenced exercise and writes one series row.
func insertSerie(ctx context.Context, q dbtx, rutinaID uint64, s *Serie) error {
	var one int
	err := q.QueryRowContext(ctx, "SELECT 1 FROM exercises WHERE id = ?", s.EjercicioID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: id %d", ErrExerciseNotFound, s.EjercicioID)
	}
	if err != nil {
		return err
	}
	res, err := q.ExecContext(ctx,
		`INSERT INTO series_ejercicios (rutina_id, ejercicio_id, orden, series, repeticiones_min, repeticiones_max, peso, tiempo_descanso, notas)
		 VALUES (?,?,?,?,?,?,?,?,?)`,
		rutinaID, s.EjercicioID, s.Orden, s.Series, s.RepeticionesMin, s.RepeticionesMax,
		s.Peso, s.TiempoDescanso, s.Notas)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	s.RutinaID = rutinaID
	return nil
}

// Update applies the patch to a routine owned by the user. A routine that
// is missing or owned by someone else yields ErrRoutineNotFound.
func (r *RoutineRepo) Update(ctx context.Context, id, ownerID uint64, p RoutinePatch) error {
	if err := r.ownedBy(ctx, r.DB, id, ownerID); err != nil {
		return err
	}
	set := []string{"updated_at = CURRENT_TIMESTAMP"}
	args := []any{}
	if p.Nombre != nil {
		set = append(set, "nombre=?")
		args = append(args, strings.TrimSpace(*p.Nombre))
	}
	if p.Descripcion != nil {
		set = append(set, "descripcion=?")
		args = append(args, nullable(*p.Descripcion))
	}
	if p.Categoria != nil {
		set = append(set, "categoria=?")
		args = append(args, *p.Categoria)
	}
	if p.DuracionEstimada != nil {
		set = append(set, "duracion_estimada=?")
		args = append(args, *p.DuracionEstimada)
	}
	if p.NivelDificultad != nil {
		set = append(set, "nivel_dificultad=?")
		args = append(args, *p.NivelDificultad)
	}
	if p.IsPublic != nil {
		set = append(set, "is_public=?")
		args = append(args, *p.IsPublic)
	}
	args = append(args, id, ownerID)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE rutinas SET "+strings.Join(set, ", ")+" WHERE id=? AND owner_id=?", args...)
	return err
}

// Delete removes a routine owned by the user together with all of its
// series rows, inside one transaction.
func (r *RoutineRepo) Delete(ctx context.Context, id, ownerID uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	if err = r.ownedBy(ctx, tx, id, ownerID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM series_ejercicios WHERE rutina_id=?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM rutinas WHERE id=?", id); err != nil {
		return err
	}
	return nil
}

// Duplicate clones a routine the user can see into a new private,
// non-template routine owned by the user. Series rows are copied with all
// prescription fields in original position order. Returns the new id.
func (r *RoutineRepo) Duplicate(ctx context.Context, id, userID uint64) (uint64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()

	var (
		nombre, categoria, nivel string
		descripcion              sql.NullString
		duracion                 sql.NullInt32
	)
	err = tx.QueryRowContext(ctx,
		`SELECT nombre, descripcion, categoria, duracion_estimada, nivel_dificultad
		 FROM rutinas WHERE id = ? AND (owner_id = ? OR is_public = 1)`,
		id, userID).Scan(&nombre, &descripcion, &categoria, &duracion, &nivel)
	if errors.Is(err, sql.ErrNoRows) {
		err = ErrRoutineNotFound
		return 0, err
	}
	if err != nil {
		return 0, err
	}

	var res sql.Result
	res, err = tx.ExecContext(ctx,
		`INSERT INTO rutinas (nombre, descripcion, categoria, duracion_estimada, nivel_dificultad, is_public, is_template, owner_id)
		 VALUES (?,?,?,?,?,0,0,?)`,
		nombre+" (Copia)", descripcion, categoria, duracion, nivel, userID)
	if err != nil {
		return 0, err
	}
	var newID int64
	newID, err = res.LastInsertId()
	if err != nil {
		return 0, err
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO series_ejercicios (rutina_id, ejercicio_id, orden, series, repeticiones_min, repeticiones_max, peso, tiempo_descanso, notas)
		 SELECT ?, ejercicio_id, orden, series, repeticiones_min, repeticiones_max, peso, tiempo_descanso, notas
		 FROM series_ejercicios WHERE rutina_id = ? ORDER BY orden, id`,
		newID, id)
	if err != nil {
		return 0, err
	}
	return uint64(newID), nil
}

// ownedBy verifies the routine exists and belongs to the user.
func (r *RoutineRepo) ownedBy(ctx context.Context, q dbtx, id, ownerID uint64) error {
	var one int
	err := q.QueryRowContext(ctx,
		"SELECT 1 FROM rutinas WHERE id = ? AND owner_id = ?", id, ownerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRoutineNotFound
	}
	return err
}

// Exercise catalog data access. Catalog entries are shared across users:
// read paths only expose active rows, while the administrative update path
// may load inactive ones. Filtering is compiled into the SQL WHERE clause
// so pagination applies after every filter.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// Exercise mirrors the 'exercises' table.
type Exercise struct {
	ID                  uint64
	Nombre              string
	GrupoMuscular       string
	Descripcion         sql.NullString
	Instrucciones       sql.NullString
	NivelDificultad     string
	EquipoNecesario     sql.NullString
	ImagenURL           sql.NullString
	MusculosSecundarios sql.NullString
	IsActive            bool
	CreatedAt           time.Time
}

// ExerciseFilter defines filters & pagination for catalog listing.
type ExerciseFilter struct {
	GrupoMuscular   string
	NivelDificultad string
	Search          string
	Skip            int
	Limit           int
}

// ExercisePatch lists the mutable catalog fields. Nil pointers leave the
// column untouched. The muscle group and active flag are not patchable
// through the public surface.
type ExercisePatch struct {
	Nombre              *string
	Descripcion         *string
	Instrucciones       *string
	NivelDificultad     *string
	EquipoNecesario     *string
	MusculosSecundarios *string
}

type ExerciseRepo struct{ DB *sql.DB }

func NewExerciseRepo(db *sql.DB) *ExerciseRepo { return &ExerciseRepo{DB: db} }

const exerciseCols = "id, nombre, grupo_muscular, descripcion, instrucciones, nivel_dificultad, equipo_necesario, imagen_url, musculos_secundarios, is_active, created_at"

func scanExercise(row interface{ Scan(...any) error }, e *Exercise) error {
	return row.Scan(&e.ID, &e.Nombre, &e.GrupoMuscular, &e.Descripcion, &e.Instrucciones,
		&e.NivelDificultad, &e.EquipoNecesario, &e.ImagenURL, &e.MusculosSecundarios,
		&e.IsActive, &e.CreatedAt)
}

// List returns active catalog exercises matching the filter, ordered by id.
func (r *ExerciseRepo) List(ctx context.Context, f ExerciseFilter) ([]*Exercise, error) {
	where := []string{"is_active = 1"}
	args := []any{}

	if f.GrupoMuscular != "" {
		where = append(where, "grupo_muscular = ?")
		args = append(args, f.GrupoMuscular)
	}
	if f.NivelDificultad != "" {
		where = append(where, "nivel_dificultad = ?")
		args = append(args, f.NivelDificultad)
	}
	if f.Search != "" {
		term := "%" + strings.ToLower(f.Search) + "%"
		where = append(where, "(LOWER(nombre) LIKE ? OR LOWER(descripcion) LIKE ? OR LOWER(equipo_necesario) LIKE ?)")
		args = append(args, term, term, term)
	}

	q := "SELECT " + exerciseCols + " FROM exercises WHERE " +
		strings.Join(where, " AND ") + " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, f.Limit, f.Skip)

	rows, err := r.DB.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*Exercise{}
	for rows.Next() {
		e := new(Exercise)
		if err := scanExercise(rows, e); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetActiveByID fetches an active exercise. Inactive entries are invisible
// on this path and produce ErrExerciseNotFound.
func (r *ExerciseRepo) GetActiveByID(ctx context.Context, id uint64) (*Exercise, error) {
	var e Exercise
	err := scanExercise(r.DB.QueryRowContext(ctx,
		"SELECT "+exerciseCols+" FROM exercises WHERE id = ? AND is_active = 1", id), &e)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// GetByID fetches an exercise regardless of its active flag. Used by the
// administrative update path.
func (r *ExerciseRepo) GetByID(ctx context.Context, id uint64) (*Exercise, error) {
	var e Exercise
	err := scanExercise(r.DB.QueryRowContext(ctx,
		"SELECT "+exerciseCols+" FROM exercises WHERE id = ?", id), &e)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExerciseNotFound
	}
	if err != nil {
		return nil, err
	}
	return &e, nil
}

// Exists reports whether an exercise row with the given id is present. It
// does not filter on the active flag: routine sets may keep referencing an
// exercise that was later deactivated.
func (r *ExerciseRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx, "SELECT 1 FROM exercises WHERE id = ?", id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// ListByGroup returns active exercises of one muscle group, paginated.
func (r *ExerciseRepo) ListByGroup(ctx context.Context, grupo string, skip, limit int) ([]*Exercise, error) {
	return r.List(ctx, ExerciseFilter{GrupoMuscular: grupo, Skip: skip, Limit: limit})
}

// Create inserts a catalog exercise. On success the ID and CreatedAt fields
// are populated from the stored row.
func (r *ExerciseRepo) Create(ctx context.Context, e *Exercise) error {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO exercises (nombre, grupo_muscular, descripcion, instrucciones, nivel_dificultad, equipo_necesario, musculos_secundarios)
		 VALUES (?,?,?,?,?,?,?)`,
		e.Nombre, e.GrupoMuscular, e.Descripcion, e.Instrucciones, e.NivelDificultad,
		e.EquipoNecesario, e.MusculosSecundarios)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	e.ID = uint64(id)
	return scanExercise(r.DB.QueryRowContext(ctx,
		"SELECT "+exerciseCols+" FROM exercises WHERE id = ?", e.ID), e)
}

// Update applies the patch to an exercise by explicit field assignment.
// The row is loaded first so a missing id yields ErrExerciseNotFound even
// when the patch would not change any column.
func (r *ExerciseRepo) Update(ctx context.Context, id uint64, p ExercisePatch) (*Exercise, error) {
	if _, err := r.GetByID(ctx, id); err != nil {
		return nil, err
	}
	set := []string{}
	args := []any{}
	if p.Nombre != nil {
		set = append(set, "nombre=?")
		args = append(args, strings.TrimSpace(*p.Nombre))
	}
	if p.Descripcion != nil {
		set = append(set, "descripcion=?")
		args = append(args, nullable(*p.Descripcion))
	}
	if p.Instrucciones != nil {
		set = append(set, "instrucciones=?")
		args = append(args, nullable(*p.Instrucciones))
	}
	if p.NivelDificultad != nil {
		set = append(set, "nivel_dificultad=?")
		args = append(args, *p.NivelDificultad)
	}
	if p.EquipoNecesario != nil {
		set = append(set, "equipo_necesario=?")
		args = append(args, nullable(*p.EquipoNecesario))
	}
	if p.MusculosSecundarios != nil {
		set = append(set, "musculos_secundarios=?")
		args = append(args, nullable(*p.MusculosSecundarios))
	}
	if len(set) > 0 {
		args = append(args, id)
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE exercises SET "+strings.Join(set, ", ")+" WHERE id=?", args...); err != nil {
			return nil, err
		}
	}
	return r.GetByID(ctx, id)
}

// nullable maps an empty string to SQL NULL.
func nullable(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

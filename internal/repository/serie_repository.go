// Series mutations within a routine. Ownership of the parent routine is
// enforced either by a direct predicate (add) or a JOIN to rutinas
// (update/delete), so a set inside someone else's routine reads as absent.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

// SeriePatch lists the mutable fields of a series row. The referenced
// exercise is fixed at creation; replacing it means delete + add.
type SeriePatch struct {
	Orden           *int
	Series          *int
	RepeticionesMin *int
	RepeticionesMax *int
	Peso            *float64
	TiempoDescanso  *int
	Notas           *string
}

type SerieRepo struct{ DB *sql.DB }

func NewSerieRepo(db *sql.DB) *SerieRepo { return &SerieRepo{DB: db} }

const serieSelect = `SELECT s.id, s.rutina_id, s.ejercicio_id, s.orden, s.series,
       s.repeticiones_min, s.repeticiones_max, s.peso, s.tiempo_descanso, s.notas,
       e.id, e.nombre, e.grupo_muscular, e.descripcion, e.instrucciones,
       e.nivel_dificultad, e.equipo_necesario, e.imagen_url, e.musculos_secundarios,
       e.is_active, e.created_at
FROM series_ejercicios s
JOIN exercises e ON e.id = s.ejercicio_id`

func scanSerie(row interface{ Scan(...any) error }) (*Serie, error) {
	s := &Serie{Ejercicio: &Exercise{}}
	e := s.Ejercicio
	err := row.Scan(&s.ID, &s.RutinaID, &s.EjercicioID, &s.Orden, &s.Series,
		&s.RepeticionesMin, &s.RepeticionesMax, &s.Peso, &s.TiempoDescanso, &s.Notas,
		&e.ID, &e.Nombre, &e.GrupoMuscular, &e.Descripcion, &e.Instrucciones,
		&e.NivelDificultad, &e.EquipoNecesario, &e.ImagenURL, &e.MusculosSecundarios,
		&e.IsActive, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Get fetches one series row (with its exercise) by id.
func (r *SerieRepo) Get(ctx context.Context, id uint64) (*Serie, error) {
	s, err := scanSerie(r.DB.QueryRowContext(ctx, serieSelect+" WHERE s.id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSerieNotFound
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

// Add appends one series row to a routine owned by the user. A routine that
// is missing or not owned yields ErrRoutineNotFound; a nonexistent exercise
// yields ErrExerciseNotFound (the caller answers 400 for that one).
func (r *SerieRepo) Add(ctx context.Context, rutinaID, ownerID uint64, s *Serie) error {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM rutinas WHERE id = ? AND owner_id = ?", rutinaID, ownerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRoutineNotFound
	}
	if err != nil {
		return err
	}
	return insertSerie(ctx, r.DB, rutinaID, s)
}

// Update applies the patch to a series row of a routine owned by the user
// and returns the updated row.
func (r *SerieRepo) Update(ctx context.Context, rutinaID, serieID, ownerID uint64, p SeriePatch) (*Serie, error) {
	if err := r.owned(ctx, rutinaID, serieID, ownerID); err != nil {
		return nil, err
	}
	set := []string{}
	args := []any{}
	if p.Orden != nil {
		set = append(set, "orden=?")
		args = append(args, *p.Orden)
	}
	if p.Series != nil {
		set = append(set, "series=?")
		args = append(args, *p.Series)
	}
	if p.RepeticionesMin != nil {
		set = append(set, "repeticiones_min=?")
		args = append(args, *p.RepeticionesMin)
	}
	if p.RepeticionesMax != nil {
		set = append(set, "repeticiones_max=?")
		args = append(args, *p.RepeticionesMax)
	}
	if p.Peso != nil {
		set = append(set, "peso=?")
		args = append(args, *p.Peso)
	}
	if p.TiempoDescanso != nil {
		set = append(set, "tiempo_descanso=?")
		args = append(args, *p.TiempoDescanso)
	}
	if p.Notas != nil {
		set = append(set, "notas=?")
		args = append(args, nullable(*p.Notas))
	}
	if len(set) > 0 {
		args = append(args, serieID)
		if _, err := r.DB.ExecContext(ctx,
			"UPDATE series_ejercicios SET "+strings.Join(set, ", ")+" WHERE id=?", args...); err != nil {
			return nil, err
		}
	}
	return r.Get(ctx, serieID)
}

// Delete removes a series row of a routine owned by the user.
func (r *SerieRepo) Delete(ctx context.Context, rutinaID, serieID, ownerID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		`DELETE s FROM series_ejercicios s
		 JOIN rutinas r ON r.id = s.rutina_id
		 WHERE s.id = ? AND s.rutina_id = ? AND r.owner_id = ?`,
		serieID, rutinaID, ownerID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrSerieNotFound
	}
	return nil
}

// owned verifies the series row belongs to the routine and the routine to
// the user.
func (r *SerieRepo) owned(ctx context.Context, rutinaID, serieID, ownerID uint64) error {
	var one int
	err := r.DB.QueryRowContext(ctx,
		`SELECT 1 FROM series_ejercicios s
		 JOIN rutinas r ON r.id = s.rutina_id
		 WHERE s.id = ? AND s.rutina_id = ? AND r.owner_id = ?`,
		serieID, rutinaID, ownerID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrSerieNotFound
	}
	return err
}

// Favorite markings are stored in an explicit join table instead of being
// traversed as a relationship collection. Membership is checked with a
// point query before every write and the composite primary key settles
// any write that slips past the pre-check.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
)

type FavoriteRepo struct{ DB *sql.DB }

func NewFavoriteRepo(db *sql.DB) *FavoriteRepo { return &FavoriteRepo{DB: db} }

// ListByUser returns the user's favorite exercises, active entries only,
// ordered by exercise id.
func (r *FavoriteRepo) ListByUser(ctx context.Context, userID uint64) ([]*Exercise, error) {
	q := `SELECT e.id, e.nombre, e.grupo_muscular, e.descripcion, e.instrucciones,
	             e.nivel_dificultad, e.equipo_necesario, e.imagen_url, e.musculos_secundarios,
	             e.is_active, e.created_at
	      FROM user_favorite_exercises f
	      JOIN exercises e ON e.id = f.exercise_id
	      WHERE f.user_id = ? AND e.is_active = 1
	      ORDER BY e.id`
	rows, err := r.DB.QueryContext(ctx, q, userID)
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

// Add marks an exercise as a favorite of the user. Adding a membership that
// already exists returns ErrAlreadyFavorite.
func (r *FavoriteRepo) Add(ctx context.Context, userID, exerciseID uint64) error {
	member, err := r.isMember(ctx, userID, exerciseID)
	if err != nil {
		return err
	}
	if member {
		return ErrAlreadyFavorite
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO user_favorite_exercises (user_id, exercise_id) VALUES (?,?)",
		userID, exerciseID)
	if err != nil {
		// two requests can race past the pre-check; the PK reports the loser
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrAlreadyFavorite
		}
		return err
	}
	return nil
}

// Remove deletes a favorite membership. Removing an absent membership
// returns ErrNotFavorite.
func (r *FavoriteRepo) Remove(ctx context.Context, userID, exerciseID uint64) error {
	res, err := r.DB.ExecContext(ctx,
		"DELETE FROM user_favorite_exercises WHERE user_id=? AND exercise_id=?",
		userID, exerciseID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFavorite
	}
	return nil
}

func (r *FavoriteRepo) isMember(ctx context.Context, userID, exerciseID uint64) (bool, error) {
	var one int
	err := r.DB.QueryRowContext(ctx,
		"SELECT 1 FROM user_favorite_exercises WHERE user_id=? AND exercise_id=?",
		userID, exerciseID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

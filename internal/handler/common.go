package handler // handler implements the HTTP endpoints of the API

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gainz-api/internal/repository"
)

// currentUser returns the account resolved by the ActiveUser middleware.
func currentUser(c echo.Context) (*repository.User, error) {
	u, ok := c.Get("current_user").(*repository.User)
	if !ok || u == nil {
		return nil, errors.New("no authenticated user in context")
	}
	return u, nil
}

// reqCtx derives a context with the standard per-request DB timeout.
func reqCtx(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), 5*time.Second)
}

// pagination reads skip/limit query params, clamping limit to maxLimit.
// Invalid values fall back to the defaults.
func pagination(c echo.Context, defLimit, maxLimit int) (skip, limit int) {
	skip, limit = 0, defLimit
	if v := c.QueryParam("skip"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			skip = n
		}
	}
	if v := c.QueryParam("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 {
			limit = n
		}
	}
	if limit > maxLimit {
		limit = maxLimit
	}
	return skip, limit
}

// ----- response shapes -----

type userResponse struct {
	ID        uint64    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	FullName  *string   `json:"full_name"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

func newUserResponse(u *repository.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		FullName:  strPtr(u.FullName),
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}

type exerciseResponse struct {
	ID                  uint64    `json:"id"`
	Nombre              string    `json:"nombre"`
	GrupoMuscular       string    `json:"grupo_muscular"`
	Descripcion         *string   `json:"descripcion"`
	Instrucciones       *string   `json:"instrucciones"`
	NivelDificultad     string    `json:"nivel_dificultad"`
	EquipoNecesario     *string   `json:"equipo_necesario"`
	ImagenURL           *string   `json:"imagen_url"`
	MusculosSecundarios *string   `json:"musculos_secundarios"`
	IsActive            bool      `json:"is_active"`
	CreatedAt           time.Time `json:"created_at"`
}

func newExerciseResponse(e *repository.Exercise) exerciseResponse {
	return exerciseResponse{
		ID:                  e.ID,
		Nombre:              e.Nombre,
		GrupoMuscular:       e.GrupoMuscular,
		Descripcion:         strPtr(e.Descripcion),
		Instrucciones:       strPtr(e.Instrucciones),
		NivelDificultad:     e.NivelDificultad,
		EquipoNecesario:     strPtr(e.EquipoNecesario),
		ImagenURL:           strPtr(e.ImagenURL),
		MusculosSecundarios: strPtr(e.MusculosSecundarios),
		IsActive:            e.IsActive,
		CreatedAt:           e.CreatedAt,
	}
}

func newExerciseList(list []*repository.Exercise) []exerciseResponse {
	out := make([]exerciseResponse, 0, len(list))
	for _, e := range list {
		out = append(out, newExerciseResponse(e))
	}
	return out
}

type serieResponse struct {
	ID              uint64           `json:"id"`
	RutinaID        uint64           `json:"rutina_id"`
	EjercicioID     uint64           `json:"ejercicio_id"`
	Orden           int32            `json:"orden"`
	Series          int32            `json:"series"`
	RepeticionesMin *int32           `json:"repeticiones_min"`
	RepeticionesMax *int32           `json:"repeticiones_max"`
	Peso            *float64         `json:"peso"`
	TiempoDescanso  *int32           `json:"tiempo_descanso"`
	Notas           *string          `json:"notas"`
	Ejercicio       exerciseResponse `json:"ejercicio"`
}

func newSerieResponse(s *repository.Serie) serieResponse {
	return serieResponse{
		ID:              s.ID,
		RutinaID:        s.RutinaID,
		EjercicioID:     s.EjercicioID,
		Orden:           s.Orden,
		Series:          s.Series,
		RepeticionesMin: intPtr(s.RepeticionesMin),
		RepeticionesMax: intPtr(s.RepeticionesMax),
		Peso:            floatPtr(s.Peso),
		TiempoDescanso:  intPtr(s.TiempoDescanso),
		Notas:           strPtr(s.Notas),
		Ejercicio:       newExerciseResponse(s.Ejercicio),
	}
}

type routineResponse struct {
	ID               uint64          `json:"id"`
	Nombre           string          `json:"nombre"`
	Descripcion      *string         `json:"descripcion"`
	Categoria        string          `json:"categoria"`
	DuracionEstimada *int32          `json:"duracion_estimada"`
	NivelDificultad  string          `json:"nivel_dificultad"`
	IsPublic         bool            `json:"is_public"`
	IsTemplate       bool            `json:"is_template"`
	OwnerID          uint64          `json:"owner_id"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        *time.Time      `json:"updated_at"`
	Series           []serieResponse `json:"series"`
	Owner            userResponse    `json:"owner"`
}

func newRoutineResponse(rt *repository.Routine) routineResponse {
	series := make([]serieResponse, 0, len(rt.Series))
	for _, s := range rt.Series {
		series = append(series, newSerieResponse(s))
	}
	return routineResponse{
		ID:               rt.ID,
		Nombre:           rt.Nombre,
		Descripcion:      strPtr(rt.Descripcion),
		Categoria:        rt.Categoria,
		DuracionEstimada: intPtr(rt.DuracionEstimada),
		NivelDificultad:  rt.NivelDificultad,
		IsPublic:         rt.IsPublic,
		IsTemplate:       rt.IsTemplate,
		OwnerID:          rt.OwnerID,
		CreatedAt:        rt.CreatedAt,
		UpdatedAt:        timePtr(rt.UpdatedAt),
		Series:           series,
		Owner:            newUserResponse(rt.Owner),
	}
}

func newRoutineList(list []*repository.Routine) []routineResponse {
	out := make([]routineResponse, 0, len(list))
	for _, rt := range list {
		out = append(out, newRoutineResponse(rt))
	}
	return out
}

// nullableStr maps an empty or blank string to SQL NULL.
func nullableStr(s string) sql.NullString {
	s = strings.TrimSpace(s)
	return sql.NullString{String: s, Valid: s != ""}
}

// ----- sql.Null* to pointer helpers (NULL -> JSON null) -----

func strPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

func intPtr(ni sql.NullInt32) *int32 {
	if !ni.Valid {
		return nil
	}
	return &ni.Int32
}

func floatPtr(nf sql.NullFloat64) *float64 {
	if !nf.Valid {
		return nil
	}
	return &nf.Float64
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	return &nt.Time
}

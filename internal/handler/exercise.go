package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gainz-api/internal/repository"
)

// ExerciseHandler serves the shared exercise catalog and the per-user
// favorite markings.
type ExerciseHandler struct {
	Exercises *repository.ExerciseRepo
	Favorites *repository.FavoriteRepo
}

func NewExerciseHandler(e *repository.ExerciseRepo, f *repository.FavoriteRepo) *ExerciseHandler {
	return &ExerciseHandler{Exercises: e, Favorites: f}
}

// List handles GET /exercises/ with optional muscle-group, difficulty and
// free-text filters. Only active catalog entries are returned.
func (h *ExerciseHandler) List(c echo.Context) error {
	f := repository.ExerciseFilter{
		GrupoMuscular:   strings.TrimSpace(c.QueryParam("grupo_muscular")),
		NivelDificultad: strings.TrimSpace(c.QueryParam("nivel_dificultad")),
		Search:          strings.TrimSpace(c.QueryParam("search")),
	}
	if f.GrupoMuscular != "" && !repository.ValidGrupoMuscular(f.GrupoMuscular) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid grupo_muscular"})
	}
	if f.NivelDificultad != "" && !repository.ValidNivelDificultad(f.NivelDificultad) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid nivel_dificultad"})
	}
	f.Skip, f.Limit = pagination(c, 100, 100)

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Exercises.List(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, newExerciseList(list))
}

// MuscleGroups handles GET /exercises/grupos-musculares.
func (h *ExerciseHandler) MuscleGroups(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"grupos_musculares": repository.GruposMusculares})
}

// ByGroup handles GET /exercises/grupo/:grupo_muscular.
func (h *ExerciseHandler) ByGroup(c echo.Context) error {
	grupo := strings.TrimSpace(c.Param("grupo_muscular"))
	if !repository.ValidGrupoMuscular(grupo) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid grupo_muscular"})
	}
	skip, limit := pagination(c, 50, 100)

	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Exercises.ListByGroup(ctx, grupo, skip, limit)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, newExerciseList(list))
}

// Get handles GET /exercises/:id. Inactive entries read as absent.
func (h *ExerciseHandler) Get(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Exercises.GetActiveByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrExerciseNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Exercise not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, newExerciseResponse(e))
}

type exerciseCreateReq struct {
	Nombre              string  `json:"nombre"`
	GrupoMuscular       string  `json:"grupo_muscular"`
	Descripcion         *string `json:"descripcion"`
	Instrucciones       *string `json:"instrucciones"`
	NivelDificultad     string  `json:"nivel_dificultad"`
	EquipoNecesario     *string `json:"equipo_necesario"`
	MusculosSecundarios *string `json:"musculos_secundarios"`
}

// Create handles POST /exercises/. Any authenticated active user may write
// to the shared catalog; there is no elevated-role gate on this surface.
func (h *ExerciseHandler) Create(c echo.Context) error {
	var req exerciseCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Nombre = strings.TrimSpace(req.Nombre)
	if req.Nombre == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre required"})
	}
	if !repository.ValidGrupoMuscular(req.GrupoMuscular) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid grupo_muscular"})
	}
	if req.NivelDificultad == "" {
		req.NivelDificultad = "intermedio"
	}
	if !repository.ValidNivelDificultad(req.NivelDificultad) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid nivel_dificultad"})
	}

	e := &repository.Exercise{
		Nombre:          req.Nombre,
		GrupoMuscular:   req.GrupoMuscular,
		NivelDificultad: req.NivelDificultad,
	}
	if req.Descripcion != nil {
		e.Descripcion = nullableStr(*req.Descripcion)
	}
	if req.Instrucciones != nil {
		e.Instrucciones = nullableStr(*req.Instrucciones)
	}
	if req.EquipoNecesario != nil {
		e.EquipoNecesario = nullableStr(*req.EquipoNecesario)
	}
	if req.MusculosSecundarios != nil {
		e.MusculosSecundarios = nullableStr(*req.MusculosSecundarios)
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Exercises.Create(ctx, e); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	return c.JSON(http.StatusCreated, newExerciseResponse(e))
}

type exercisePatchReq struct {
	Nombre              *string `json:"nombre"`
	Descripcion         *string `json:"descripcion"`
	Instrucciones       *string `json:"instrucciones"`
	NivelDificultad     *string `json:"nivel_dificultad"`
	EquipoNecesario     *string `json:"equipo_necesario"`
	MusculosSecundarios *string `json:"musculos_secundarios"`
}

// Update handles PUT /exercises/:id. This is the one read-modify path that
// can touch inactive catalog entries.
func (h *ExerciseHandler) Update(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req exercisePatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Nombre != nil && strings.TrimSpace(*req.Nombre) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre must not be empty"})
	}
	if req.NivelDificultad != nil && !repository.ValidNivelDificultad(*req.NivelDificultad) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid nivel_dificultad"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	e, err := h.Exercises.Update(ctx, id, repository.ExercisePatch{
		Nombre:              req.Nombre,
		Descripcion:         req.Descripcion,
		Instrucciones:       req.Instrucciones,
		NivelDificultad:     req.NivelDificultad,
		EquipoNecesario:     req.EquipoNecesario,
		MusculosSecundarios: req.MusculosSecundarios,
	})
	if err != nil {
		if errors.Is(err, repository.ErrExerciseNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Exercise not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, newExerciseResponse(e))
}

// ListFavorites handles GET /exercises/favoritos.
func (h *ExerciseHandler) ListFavorites(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Favorites.ListByUser(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, newExerciseList(list))
}

// AddFavorite handles POST /exercises/favoritos/:id. Adding an exercise
// that is already marked is a conflict, not a no-op.
func (h *ExerciseHandler) AddFavorite(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	exists, err := h.Exercises.Exists(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Exercise not found"})
	}
	if err := h.Favorites.Add(ctx, u.ID, id); err != nil {
		if errors.Is(err, repository.ErrAlreadyFavorite) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Exercise already in favorites"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Exercise added to favorites"})
}

// RemoveFavorite handles DELETE /exercises/favoritos/:id. Removing an
// exercise that is not marked is likewise a conflict.
func (h *ExerciseHandler) RemoveFavorite(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	exists, err := h.Exercises.Exists(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !exists {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "Exercise not found"})
	}
	if err := h.Favorites.Remove(ctx, u.ID, id); err != nil {
		if errors.Is(err, repository.ErrNotFavorite) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "Exercise not in favorites"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Exercise removed from favorites"})
}

package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gainz-api/internal/repository"
)

// RoutineHandler serves routine CRUD, duplication and the listing
// variants. Visibility rules live in the repository predicates; this layer
// only validates input and maps sentinels to status codes.
type RoutineHandler struct {
	Routines *repository.RoutineRepo
	Series   *repository.SerieRepo
}

func NewRoutineHandler(r *repository.RoutineRepo, s *repository.SerieRepo) *RoutineHandler {
	return &RoutineHandler{Routines: r, Series: s}
}

// routineFilter builds the shared listing filter from query params.
// Returns false after writing a 400 when a filter value is invalid.
func routineFilter(c echo.Context) (repository.RoutineFilter, bool) {
	f := repository.RoutineFilter{
		Categoria:       strings.TrimSpace(c.QueryParam("categoria")),
		NivelDificultad: strings.TrimSpace(c.QueryParam("nivel_dificultad")),
		Search:          strings.TrimSpace(c.QueryParam("search")),
	}
	if f.Categoria != "" && !repository.ValidCategoriaRutina(f.Categoria) {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid categoria"})
		return f, false
	}
	if f.NivelDificultad != "" && !repository.ValidNivelDificultad(f.NivelDificultad) {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid nivel_dificultad"})
		return f, false
	}
	if v := c.QueryParam("is_public"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid is_public"})
			return f, false
		}
		f.IsPublic = &b
	}
	f.Skip, f.Limit = pagination(c, 20, 50)
	return f, true
}

// List handles GET /routines/: the requester's own routines plus all
// public ones, filtered, then paginated.
func (h *RoutineHandler) List(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	f, ok := routineFilter(c)
	if !ok {
		return nil
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Routines.ListVisible(ctx, u.ID, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, newRoutineList(list))
}

// MyRoutines handles GET /routines/mis-rutinas.
func (h *RoutineHandler) MyRoutines(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Routines.ListByOwner(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, newRoutineList(list))
}

// Categories handles GET /routines/categorias.
func (h *RoutineHandler) Categories(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"categorias": repository.CategoriasRutina})
}

// Templates handles GET /routines/plantillas. Templates are predefined
// public starting points, so no ownership predicate applies.
func (h *RoutineHandler) Templates(c echo.Context) error {
	f, ok := routineFilter(c)
	if !ok {
		return nil
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	list, err := h.Routines.ListTemplates(ctx, f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, newRoutineList(list))
}

type serieCreateReq struct {
	EjercicioID     uint64   `json:"ejercicio_id"`
	Orden           int32    `json:"orden"`
	Series          int32    `json:"series"`
	RepeticionesMin *int32   `json:"repeticiones_min"`
	RepeticionesMax *int32   `json:"repeticiones_max"`
	Peso            *float64 `json:"peso"`
	TiempoDescanso  *int32   `json:"tiempo_descanso"`
	Notas           *string  `json:"notas"`
}

func (r serieCreateReq) toSerie() *repository.Serie {
	s := &repository.Serie{
		EjercicioID: r.EjercicioID,
		Orden:       r.Orden,
		Series:      r.Series,
	}
	if r.RepeticionesMin != nil {
		s.RepeticionesMin = sql.NullInt32{Int32: *r.RepeticionesMin, Valid: true}
	}
	if r.RepeticionesMax != nil {
		s.RepeticionesMax = sql.NullInt32{Int32: *r.RepeticionesMax, Valid: true}
	}
	if r.Peso != nil {
		s.Peso = sql.NullFloat64{Float64: *r.Peso, Valid: true}
	}
	if r.TiempoDescanso != nil {
		s.TiempoDescanso = sql.NullInt32{Int32: *r.TiempoDescanso, Valid: true}
	}
	if r.Notas != nil {
		s.Notas = nullableStr(*r.Notas)
	}
	return s
}

type routineCreateReq struct {
	Nombre           string           `json:"nombre"`
	Descripcion      *string          `json:"descripcion"`
	Categoria        string           `json:"categoria"`
	DuracionEstimada *int32           `json:"duracion_estimada"`
	NivelDificultad  string           `json:"nivel_dificultad"`
	IsPublic         bool             `json:"is_public"`
	Series           []serieCreateReq `json:"series"`
}

// Create handles POST /routines/. The routine and its series list are
// written in one transaction; a series referencing a nonexistent exercise
// aborts the whole creation with a 400.
func (h *RoutineHandler) Create(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req routineCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Nombre = strings.TrimSpace(req.Nombre)
	if req.Nombre == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre required"})
	}
	if !repository.ValidCategoriaRutina(req.Categoria) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid categoria"})
	}
	if req.NivelDificultad == "" {
		req.NivelDificultad = "intermedio"
	}
	if !repository.ValidNivelDificultad(req.NivelDificultad) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid nivel_dificultad"})
	}
	for _, s := range req.Series {
		if s.EjercicioID == 0 || s.Series <= 0 {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "series entries need ejercicio_id and a positive series count"})
		}
	}

	rt := &repository.Routine{
		Nombre:          req.Nombre,
		Categoria:       req.Categoria,
		NivelDificultad: req.NivelDificultad,
		IsPublic:        req.IsPublic,
		OwnerID:         u.ID,
	}
	if req.Descripcion != nil {
		rt.Descripcion = nullableStr(*req.Descripcion)
	}
	if req.DuracionEstimada != nil {
		rt.DuracionEstimada = sql.NullInt32{Int32: *req.DuracionEstimada, Valid: true}
	}
	series := make([]*repository.Serie, 0, len(req.Series))
	for _, sr := range req.Series {
		series = append(series, sr.toSerie())
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	id, err := h.Routines.Create(ctx, rt, series)
	if err != nil {
		if errors.Is(err, repository.ErrExerciseNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	created, err := h.Routines.GetVisible(ctx, id, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load routine failed"})
	}
	return c.JSON(http.StatusCreated, newRoutineResponse(created))
}

// Get handles GET /routines/:id under the visibility predicate. Private
// routines of other users answer 404, never 403.
func (h *RoutineHandler) Get(c echo.Context) error {
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

	rt, err := h.Routines.GetVisible(ctx, id, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrRoutineNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Routine not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	return c.JSON(http.StatusOK, newRoutineResponse(rt))
}

type routinePatchReq struct {
	Nombre           *string `json:"nombre"`
	Descripcion      *string `json:"descripcion"`
	Categoria        *string `json:"categoria"`
	DuracionEstimada *int    `json:"duracion_estimada"`
	NivelDificultad  *string `json:"nivel_dificultad"`
	IsPublic         *bool   `json:"is_public"`
}

// Update handles PUT /routines/:id, owner only.
func (h *RoutineHandler) Update(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req routinePatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Nombre != nil && strings.TrimSpace(*req.Nombre) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "nombre must not be empty"})
	}
	if req.Categoria != nil && !repository.ValidCategoriaRutina(*req.Categoria) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid categoria"})
	}
	if req.NivelDificultad != nil && !repository.ValidNivelDificultad(*req.NivelDificultad) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid nivel_dificultad"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	patch := repository.RoutinePatch{
		Nombre:           req.Nombre,
		Descripcion:      req.Descripcion,
		Categoria:        req.Categoria,
		DuracionEstimada: req.DuracionEstimada,
		NivelDificultad:  req.NivelDificultad,
		IsPublic:         req.IsPublic,
	}
	if err := h.Routines.Update(ctx, id, u.ID, patch); err != nil {
		if errors.Is(err, repository.ErrRoutineNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Routine not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	fresh, err := h.Routines.GetVisible(ctx, id, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load routine failed"})
	}
	return c.JSON(http.StatusOK, newRoutineResponse(fresh))
}

// Delete handles DELETE /routines/:id, owner only. All series rows go with
// the routine.
func (h *RoutineHandler) Delete(c echo.Context) error {
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

	if err := h.Routines.Delete(ctx, id, u.ID); err != nil {
		if errors.Is(err, repository.ErrRoutineNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Routine not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Routine deleted successfully"})
}

// Duplicate handles POST /routines/:id/duplicar: clone a visible routine
// into a private, non-template copy owned by the requester.
func (h *RoutineHandler) Duplicate(c echo.Context) error {
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

	newID, err := h.Routines.Duplicate(ctx, id, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrRoutineNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Routine not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "duplicate failed"})
	}
	copyRt, err := h.Routines.GetVisible(ctx, newID, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load routine failed"})
	}
	return c.JSON(http.StatusCreated, newRoutineResponse(copyRt))
}

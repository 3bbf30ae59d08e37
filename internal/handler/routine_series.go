package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gainz-api/internal/repository"
)

// AddSerie handles POST /routines/:id/series. The parent routine must be
// owned by the requester; a nonexistent exercise reference is a 400 and
// leaves the routine's set list untouched.
func (h *RoutineHandler) AddSerie(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rutinaID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req serieCreateReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.EjercicioID == 0 || req.Series <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "ejercicio_id and a positive series count required"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	s := req.toSerie()
	if err := h.Series.Add(ctx, rutinaID, u.ID, s); err != nil {
		if errors.Is(err, repository.ErrRoutineNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Routine not found"})
		}
		if errors.Is(err, repository.ErrExerciseNotFound) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "Exercise not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create failed"})
	}
	created, err := h.Series.Get(ctx, s.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load series failed"})
	}
	return c.JSON(http.StatusCreated, newSerieResponse(created))
}

type seriePatchReq struct {
	Orden           *int     `json:"orden"`
	Series          *int     `json:"series"`
	RepeticionesMin *int     `json:"repeticiones_min"`
	RepeticionesMax *int     `json:"repeticiones_max"`
	Peso            *float64 `json:"peso"`
	TiempoDescanso  *int     `json:"tiempo_descanso"`
	Notas           *string  `json:"notas"`
}

// UpdateSerie handles PUT /routines/:id/series/:serie_id, owner only.
func (h *RoutineHandler) UpdateSerie(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rutinaID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	serieID, err := strconv.ParseUint(c.Param("serie_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid serie_id"})
	}
	var req seriePatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Series != nil && *req.Series <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "series must be positive"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	patch := repository.SeriePatch{
		Orden:           req.Orden,
		Series:          req.Series,
		RepeticionesMin: req.RepeticionesMin,
		RepeticionesMax: req.RepeticionesMax,
		Peso:            req.Peso,
		TiempoDescanso:  req.TiempoDescanso,
		Notas:           req.Notas,
	}
	s, err := h.Series.Update(ctx, rutinaID, serieID, u.ID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrSerieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Exercise series not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, newSerieResponse(s))
}

// DeleteSerie handles DELETE /routines/:id/series/:serie_id, owner only.
func (h *RoutineHandler) DeleteSerie(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	rutinaID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	serieID, err := strconv.ParseUint(c.Param("serie_id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid serie_id"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Series.Delete(ctx, rutinaID, serieID, u.ID); err != nil {
		if errors.Is(err, repository.ErrSerieNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "Exercise series not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Exercise removed from routine"})
}

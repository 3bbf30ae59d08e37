package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Health reports service liveness.
func Health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// Package router wires HTTP routes to their handlers. Protected groups
// run the JWT middleware followed by the active-user check; every
// resource endpoint under /api/v1 except the auth surface requires a
// valid bearer token.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gainz-api/internal/handler"
	"github.com/iliyamo/gainz-api/internal/middleware"
	"github.com/iliyamo/gainz-api/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication: the
// health check and the read-only image tree mirrored from disk.
func RegisterRoutes(e *echo.Echo, imagesDir string) {
	e.GET("/health", handler.Health)
	e.Static("/images", imagesDir)
}

// RegisterAuth registers the authentication endpoints under /api/v1/auth.
// None of them require an existing session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler) {
	g := e.Group("/api/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
}

// RegisterUsers registers the profile endpoints. All act on the
// authenticated account.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, users *repository.UserRepo, jwtSecret string) {
	g := e.Group("/api/v1/users")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.ActiveUser(users))
	g.GET("/profile", h.Profile)
	g.PUT("/profile", h.UpdateProfile)
	g.DELETE("/profile", h.DeleteAccount)
}

// RegisterExercises registers the catalog and favorites endpoints. Static
// segments (grupos-musculares, favoritos, grupo) are declared before the
// :id parameter route; echo resolves static paths first either way.
func RegisterExercises(e *echo.Echo, h *handler.ExerciseHandler, users *repository.UserRepo, jwtSecret string) {
	g := e.Group("/api/v1/exercises")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.ActiveUser(users))
	g.GET("/", h.List)
	g.GET("/grupos-musculares", h.MuscleGroups)
	g.GET("/grupo/:grupo_muscular", h.ByGroup)
	g.GET("/favoritos", h.ListFavorites)
	g.POST("/favoritos/:id", h.AddFavorite)
	g.DELETE("/favoritos/:id", h.RemoveFavorite)
	g.GET("/:id", h.Get)
	g.POST("/", h.Create)
	g.PUT("/:id", h.Update)
}

// RegisterRoutines registers routine CRUD, duplication and series
// endpoints.
func RegisterRoutines(e *echo.Echo, h *handler.RoutineHandler, users *repository.UserRepo, jwtSecret string) {
	g := e.Group("/api/v1/routines")
	g.Use(middleware.JWTAuth(jwtSecret))
	g.Use(middleware.ActiveUser(users))
	g.GET("/", h.List)
	g.GET("/mis-rutinas", h.MyRoutines)
	g.GET("/categorias", h.Categories)
	g.GET("/plantillas", h.Templates)
	g.POST("/", h.Create)
	g.GET("/:id", h.Get)
	g.PUT("/:id", h.Update)
	g.DELETE("/:id", h.Delete)
	g.POST("/:id/duplicar", h.Duplicate)
	g.POST("/:id/series", h.AddSerie)
	g.PUT("/:id/series/:serie_id", h.UpdateSerie)
	g.DELETE("/:id/series/:serie_id", h.DeleteSerie)
}

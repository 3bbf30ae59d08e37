package main // Entry point package

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/gainz-api/internal/config"
	"github.com/iliyamo/gainz-api/internal/database"
	"github.com/iliyamo/gainz-api/internal/handler"
	"github.com/iliyamo/gainz-api/internal/repository"
	"github.com/iliyamo/gainz-api/internal/router"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.Migrate(ctx, db); err != nil {
		cancel()
		log.Fatalf("migrate: %v", err)
	}
	cancel()

	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	exercises := repository.NewExerciseRepo(db)
	favorites := repository.NewFavoriteRepo(db)
	routines := repository.NewRoutineRepo(db)
	series := repository.NewSerieRepo(db)

	auth := handler.NewAuthHandler(cfg, users, tokens)
	userH := handler.NewUserHandler(users)
	exerciseH := handler.NewExerciseHandler(exercises, favorites)
	routineH := handler.NewRoutineHandler(routines, series)

	e := echo.New()
	e.HideBanner = true
	if cfg.Debug {
		e.Use(echomw.Logger())
	}
	e.Use(echomw.Recover())

	router.RegisterRoutes(e, cfg.ImagesDir)
	router.RegisterAuth(e, auth)
	router.RegisterUsers(e, userH, users, cfg.JWTSecret)
	router.RegisterExercises(e, exerciseH, users, cfg.JWTSecret)
	router.RegisterRoutines(e, routineH, users, cfg.JWTSecret)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env)

	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}

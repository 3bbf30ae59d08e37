package database

import (
	"context"
	"database/sql"
)

// migrations holds the schema DDL executed at startup.  Every statement is
// idempotent (CREATE TABLE IF NOT EXISTS) so re-running on an existing
// database is a no-op.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		email VARCHAR(255) NOT NULL,
		username VARCHAR(64) NOT NULL,
		hashed_password VARCHAR(255) NOT NULL,
		full_name VARCHAR(255) NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_users_email (email),
		UNIQUE KEY uq_users_username (username)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS exercises (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		nombre VARCHAR(255) NOT NULL,
		grupo_muscular VARCHAR(32) NOT NULL,
		descripcion TEXT NULL,
		instrucciones TEXT NULL,
		nivel_dificultad VARCHAR(32) NOT NULL DEFAULT 'intermedio',
		equipo_necesario VARCHAR(255) NULL,
		imagen_url VARCHAR(255) NULL,
		musculos_secundarios VARCHAR(255) NULL,
		is_active TINYINT(1) NOT NULL DEFAULT 1,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		KEY idx_exercises_grupo (grupo_muscular),
		KEY idx_exercises_nombre (nombre)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS rutinas (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		nombre VARCHAR(255) NOT NULL,
		descripcion TEXT NULL,
		categoria VARCHAR(32) NOT NULL,
		duracion_estimada INT NULL,
		nivel_dificultad VARCHAR(32) NOT NULL DEFAULT 'intermedio',
		is_public TINYINT(1) NOT NULL DEFAULT 0,
		is_template TINYINT(1) NOT NULL DEFAULT 0,
		owner_id BIGINT UNSIGNED NOT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP NULL DEFAULT NULL,
		PRIMARY KEY (id),
		KEY idx_rutinas_owner (owner_id),
		KEY idx_rutinas_nombre (nombre),
		CONSTRAINT fk_rutinas_owner FOREIGN KEY (owner_id) REFERENCES users (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS series_ejercicios (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		rutina_id BIGINT UNSIGNED NOT NULL,
		ejercicio_id BIGINT UNSIGNED NOT NULL,
		orden INT NOT NULL,
		series INT NOT NULL,
		repeticiones_min INT NULL,
		repeticiones_max INT NULL,
		peso DOUBLE NULL,
		tiempo_descanso INT NULL,
		notas TEXT NULL,
		PRIMARY KEY (id),
		KEY idx_series_rutina (rutina_id),
		CONSTRAINT fk_series_rutina FOREIGN KEY (rutina_id) REFERENCES rutinas (id),
		CONSTRAINT fk_series_ejercicio FOREIGN KEY (ejercicio_id) REFERENCES exercises (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS user_favorite_exercises (
		user_id BIGINT UNSIGNED NOT NULL,
		exercise_id BIGINT UNSIGNED NOT NULL,
		PRIMARY KEY (user_id, exercise_id),
		CONSTRAINT fk_fav_user FOREIGN KEY (user_id) REFERENCES users (id),
		CONSTRAINT fk_fav_exercise FOREIGN KEY (exercise_id) REFERENCES exercises (id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

	`CREATE TABLE IF NOT EXISTS refresh_tokens (
		id BIGINT UNSIGNED NOT NULL AUTO_INCREMENT,
		user_id BIGINT UNSIGNED NOT NULL,
		token_hash CHAR(64) NOT NULL,
		expires_at DATETIME NOT NULL,
		revoked_at DATETIME NULL DEFAULT NULL,
		created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (id),
		UNIQUE KEY uq_refresh_hash (token_hash),
		KEY idx_refresh_user (user_id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
}

// Migrate applies the schema statements in order.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

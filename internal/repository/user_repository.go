package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/gainz-api/internal/utils"
)

// User mirrors the 'users' table.
type User struct {
	ID             uint64
	Email          string
	Username       string
	HashedPassword string
	FullName       sql.NullString
	IsActive       bool
	CreatedAt      time.Time
}

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

// ProfilePatch lists the mutable profile fields. Nil pointers leave the
// column untouched.
type ProfilePatch struct {
	Email    *string
	Username *string
	FullName *string
}

const userCols = "id,email,username,hashed_password,full_name,is_active,created_at"

// Create inserts a user and returns its ID. Duplicate email/username rows
// are reported via the sentinel errors so handlers can answer 409.
func (r *UserRepo) Create(ctx context.Context, email, username, password string, fullName *string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	username = strings.TrimSpace(username)
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	var fn sql.NullString
	if fullName != nil && strings.TrimSpace(*fullName) != "" {
		fn = sql.NullString{String: strings.TrimSpace(*fullName), Valid: true}
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (email, username, hashed_password, full_name) VALUES (?,?,?,?)",
		email, username, hash, fn)
	if err != nil {
		return 0, dupUserErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (User, error) {
	username = strings.TrimSpace(username)
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE username=? LIMIT 1",
		username).Scan(&u.ID, &u.Email, &u.Username, &u.HashedPassword, &u.FullName, &u.IsActive, &u.CreatedAt)
	return u, err
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (User, error) {
	var u User
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE id=? LIMIT 1",
		id).Scan(&u.ID, &u.Email, &u.Username, &u.HashedPassword, &u.FullName, &u.IsActive, &u.CreatedAt)
	return u, err
}

// UpdateProfile applies the patch to the given user. Uniqueness of email and
// username is pre-checked against other rows; the unique keys remain the
// final arbiter when two updates race, so a duplicate-key error from the
// driver maps to the same sentinels.
func (r *UserRepo) UpdateProfile(ctx context.Context, id uint64, p ProfilePatch) error {
	set := []string{}
	args := []any{}
	if p.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*p.Email))
		taken, err := r.taken(ctx, "email", email, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrEmailExists
		}
		set = append(set, "email=?")
		args = append(args, email)
	}
	if p.Username != nil {
		username := strings.TrimSpace(*p.Username)
		taken, err := r.taken(ctx, "username", username, id)
		if err != nil {
			return err
		}
		if taken {
			return ErrUsernameExists
		}
		set = append(set, "username=?")
		args = append(args, username)
	}
	if p.FullName != nil {
		fn := sql.NullString{String: strings.TrimSpace(*p.FullName), Valid: strings.TrimSpace(*p.FullName) != ""}
		set = append(set, "full_name=?")
		args = append(args, fn)
	}
	if len(set) == 0 {
		return nil
	}
	args = append(args, id)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	if err != nil {
		return dupUserErr(err)
	}
	return nil
}

// taken reports whether another user already holds the given column value.
func (r *UserRepo) taken(ctx context.Context, col, val string, selfID uint64) (bool, error) {
	var id uint64
	err := r.DB.QueryRowContext(ctx,
		"SELECT id FROM users WHERE "+col+"=? AND id<>? LIMIT 1", val, selfID).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Delete removes the user together with everything it owns: routine sets,
// routines, favorite markings and refresh tokens. The deletion runs in a
// single transaction to keep the schema free of orphans.
func (r *UserRepo) Delete(ctx context.Context, id uint64) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			_ = tx.Commit()
		}
	}()
	var exists uint64
	if err = tx.QueryRowContext(ctx, "SELECT id FROM users WHERE id=?", id).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			err = ErrUserNotFound
		}
		return err
	}
	if _, err = tx.ExecContext(ctx,
		`DELETE s FROM series_ejercicios s
		 JOIN rutinas r ON r.id = s.rutina_id
		 WHERE r.owner_id = ?`, id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM rutinas WHERE owner_id=?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM user_favorite_exercises WHERE user_id=?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM refresh_tokens WHERE user_id=?", id); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM users WHERE id=?", id); err != nil {
		return err
	}
	return nil
}

// dupUserErr translates MySQL duplicate-key errors (1062) on the users table
// into the matching sentinel based on which unique key was hit.
func dupUserErr(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "1062") {
		return err
	}
	if strings.Contains(msg, "email") {
		return ErrEmailExists
	}
	return ErrUsernameExists
}

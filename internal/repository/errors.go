// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// inspecting driver error strings. Not-found sentinels deliberately
// cover both "row is absent" and "row is not visible to the caller":
// ownership is enforced inside the SQL predicates, so a private routine
// owned by someone else produces the same error as a missing one.
package repository

import "errors"

// ErrUserNotFound is returned when a user row cannot be located.
var ErrUserNotFound = errors.New("user not found")

// ErrEmailExists is returned when a registration or profile update
// collides with an existing email address.
var ErrEmailExists = errors.New("email already registered")

// ErrUsernameExists is returned when a registration or profile update
// collides with an existing username.
var ErrUsernameExists = errors.New("username already taken")

// ErrExerciseNotFound is returned when a catalog exercise is absent, or
// inactive on a read path that only exposes active entries.
var ErrExerciseNotFound = errors.New("exercise not found")

// ErrRoutineNotFound is returned when a routine is absent or not visible
// to the requesting user. Handlers translate this into HTTP 404.
var ErrRoutineNotFound = errors.New("routine not found")

// ErrSerieNotFound is returned when a routine set is absent or belongs
// to a routine the requesting user does not own.
var ErrSerieNotFound = errors.New("exercise series not found")

// ErrAlreadyFavorite is returned when adding an exercise that is already
// in the user's favorites. Handlers translate this into HTTP 409.
var ErrAlreadyFavorite = errors.New("exercise already in favorites")

// ErrNotFavorite is returned when removing an exercise that is not in
// the user's favorites. Handlers translate this into HTTP 409.
var ErrNotFavorite = errors.New("exercise not in favorites")

package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/gainz-api/internal/repository"
)

// UserHandler serves the /users/profile endpoints. All of them act on the
// requester's own account; there is no cross-user surface.
type UserHandler struct {
	Users *repository.UserRepo
}

func NewUserHandler(u *repository.UserRepo) *UserHandler { return &UserHandler{Users: u} }

type profilePatchReq struct {
	Email    *string `json:"email"`
	Username *string `json:"username"`
	FullName *string `json:"full_name"`
}

// Profile returns the current user.
func (h *UserHandler) Profile(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	return c.JSON(http.StatusOK, newUserResponse(u))
}

// UpdateProfile applies an explicit patch to the current user's profile.
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req profilePatchReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	if req.Email != nil && strings.TrimSpace(*req.Email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "email must not be empty"})
	}
	if req.Username != nil && strings.TrimSpace(*req.Username) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must not be empty"})
	}

	ctx, cancel := reqCtx(c)
	defer cancel()

	patch := repository.ProfilePatch{Email: req.Email, Username: req.Username, FullName: req.FullName}
	if err := h.Users.UpdateProfile(ctx, u.ID, patch); err != nil {
		if errors.Is(err, repository.ErrEmailExists) || errors.Is(err, repository.ErrUsernameExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	fresh, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "load user failed"})
	}
	return c.JSON(http.StatusOK, newUserResponse(&fresh))
}

// DeleteAccount removes the current user's account and everything it owns.
func (h *UserHandler) DeleteAccount(c echo.Context) error {
	u, err := currentUser(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := reqCtx(c)
	defer cancel()

	if err := h.Users.Delete(ctx, u.ID); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{"message": "Account deleted successfully"})
}

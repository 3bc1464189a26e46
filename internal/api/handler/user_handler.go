package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/closetshop/closet-api/internal/core/ports"
)

// UserHandler handles HTTP requests for accounts and sessions.
type UserHandler struct {
	service ports.UserService
}

func NewUserHandler(service ports.UserService) *UserHandler {
	return &UserHandler{service: service}
}

// Register handles POST /users.
//
// @Summary      Create an account
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "Account details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      409   {object}  errorResponse
// @Router       /users [post]
func (h *UserHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.Register(c.Request().Context(), toRegisterInput(req))
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{
		User:        toUserResponse(user),
		AccessToken: user.AccessToken,
	})
}

// Get handles GET /users/:userId.
//
// @Summary      Get a profile with owned products and order history
// @Tags         users
// @Produce      json
// @Security     AccessToken
// @Param        userId  path      string  true  "User ID"
// @Success      200     {object}  profileResponse
// @Failure      401     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Router       /users/{userId} [get]
func (h *UserHandler) Get(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	profile, err := h.service.Profile(c.Request().Context(), actor, c.Param("userId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toProfileResponse(profile))
}

// Update handles PUT /users/:userId. Every editable field is overwritten.
//
// @Summary      Replace a profile
// @Tags         users
// @Accept       json
// @Produce      json
// @Security     AccessToken
// @Param        userId  path      string             true  "User ID"
// @Param        body    body      updateUserRequest  true  "Complete profile"
// @Success      201     {object}  userResponse
// @Failure      400     {object}  errorResponse
// @Failure      403     {object}  errorResponse
// @Failure      404     {object}  errorResponse
// @Failure      409     {object}  errorResponse
// @Router       /users/{userId} [put]
func (h *UserHandler) Update(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	var req updateUserRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.service.Update(c.Request().Context(), actor, c.Param("userId"), toUpdateUserInput(req))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, toUserResponse(user))
}

// Delete handles DELETE /users/:userId. Listed products and orders are kept.
//
// @Summary      Delete an account
// @Tags         users
// @Security     AccessToken
// @Param        userId  path  string  true  "User ID"
// @Success      204
// @Failure      403  {object}  errorResponse
// @Failure      404  {object}  errorResponse
// @Router       /users/{userId} [delete]
func (h *UserHandler) Delete(c echo.Context) error {
	actor, err := ctxUser(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), actor, c.Param("userId")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateSession handles POST /sessions.
//
// @Summary      Log in
// @Description  Returns the populated profile and its access token. Unknown
// @Description  email and wrong password both answer 404, not 400: a failed
// @Description  credential check is reported with the not_found error kind
// @Description  like every other missing record.
// @Tags         sessions
// @Accept       json
// @Produce      json
// @Param        body  body      sessionRequest  true  "Credentials"
// @Success      200   {object}  profileResponse
// @Failure      400   {object}  errorResponse
// @Failure      404   {object}  errorResponse
// @Router       /sessions [post]
func (h *UserHandler) CreateSession(c echo.Context) error {
	var req sessionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	profile, err := h.service.Login(c.Request().Context(), req.Email, req.Password)
	if err != nil {
		return err
	}

	resp := toProfileResponse(profile)
	resp.AccessToken = profile.User.AccessToken
	return c.JSON(http.StatusOK, resp)
}

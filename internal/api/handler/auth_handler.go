package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/pawtrail/dogwalk-service/internal/api/middleware"
	"github.com/pawtrail/dogwalk-service/internal/core/ports"
)

type AuthHandler struct {
	authService ports.AuthService
	codec       *middleware.SessionCodec
	now         func() time.Time
}

func NewAuthHandler(authService ports.AuthService, codec *middleware.SessionCodec) *AuthHandler {
	return &AuthHandler{authService: authService, codec: codec, now: time.Now}
}

// Register creates a new user account.
//
// @Summary      Register a new user
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      registerRequest  true  "User registration details"
// @Success      201   {object}  registerResponse
// @Failure      400   {object}  errorResponse
// @Failure      422   {object}  errorResponse
// @Router       /api/users/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	user, err := h.authService.Register(c.Request().Context(), ports.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		Role:     req.Role,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusCreated, registerResponse{Message: "User registered", UserID: user.ID})
}

// Login authenticates a user and sets the session cookie.
//
// @Summary      Login
// @Tags         users
// @Accept       json
// @Produce      json
// @Param        body  body      loginRequest  true  "Login credentials"
// @Success      200   {object}  sessionUserResponse
// @Failure      400   {object}  errorResponse
// @Failure      401   {object}  errorResponse
// @Router       /api/users/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}

	res, err := h.authService.Authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return err
	}

	cookie, err := h.codec.Cookie(res.SessionID, h.now())
	if err != nil {
		return err
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, sessionUserResponse{
		UserID:   res.User.ID,
		Username: res.User.Username,
		Role:     res.User.Role,
	})
}

// Logout destroys the session and clears the cookie.
//
// @Summary      Logout
// @Tags         users
// @Produce      json
// @Success      200  {object}  messageResponse
// @Failure      401  {object}  errorResponse
// @Failure      500  {object}  errorResponse
// @Router       /api/users/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	sid, _ := c.Get(middleware.KeySessionID).(string)
	if err := h.authService.Logout(c.Request().Context(), sid); err != nil {
		return err
	}

	c.SetCookie(h.codec.Expired())
	return c.JSON(http.StatusOK, messageResponse{Message: "Logout successful"})
}

// Me returns the session user.
//
// @Summary      Current session user
// @Tags         users
// @Produce      json
// @Success      200  {object}  sessionUserResponse
// @Failure      401  {object}  errorResponse
// @Router       /api/users/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	actor, err := currentActor(c)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionUserResponse{
		UserID:   actor.UserID,
		Username: actor.Username,
		Role:     actor.Role,
	})
}

// ListUsers returns every account without credentials.
//
// @Summary      List users
// @Tags         users
// @Produce      json
// @Success      200  {array}   userResponse
// @Failure      503  {object}  errorResponse
// @Router       /api/users [get]
func (h *AuthHandler) ListUsers(c echo.Context) error {
	users, err := h.authService.ListUsers(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, toUserResponses(users))
}

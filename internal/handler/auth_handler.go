package handler

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"sphere/internal/apiclient"
	"sphere/internal/auth"
	"sphere/internal/errors"
	"sphere/internal/model"
	"sphere/internal/redirect"
)

// SessionForgetter drops per-session state kept outside the session store.
type SessionForgetter interface {
	Forget(sessionID string)
}

// AuthHandler handles sign-in, sign-out and the public entry screens.
type AuthHandler struct {
	policy redirect.Policy
	guards SessionForgetter
	logger *zap.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(policy redirect.Policy, guards SessionForgetter, logger *zap.Logger) *AuthHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthHandler{policy: policy, guards: guards, logger: logger}
}

// SigninRequest represents a sign-in form submission. ReturnTo is the
// browser location (pathname plus fragment) the visitor started from.
type SigninRequest struct {
	Email    string `json:"email" form:"email" validate:"required,email"`
	Password string `json:"password" form:"password" validate:"required"`
	ReturnTo string `json:"return_to" form:"return_to"`
}

// SigninResponse represents a successful sign-in.
type SigninResponse struct {
	User     *model.User `json:"user"`
	Redirect string      `json:"redirect"`
}

// LandingResponse describes the public landing screen.
type LandingResponse struct {
	SigninURL     string `json:"signin_url"`
	Authenticated bool   `json:"authenticated"`
}

// SigninPageResponse describes the sign-in screen. User is the last cached
// profile, shown as a hint only.
type SigninPageResponse struct {
	Authenticated bool        `json:"authenticated"`
	User          *model.User `json:"user,omitempty"`
}

// Landing godoc
// @Summary Landing screen
// @Tags portal
// @Produce json
// @Success 200 {object} LandingResponse
// @Router / [get]
func (h *AuthHandler) Landing(c echo.Context) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, LandingResponse{
		SigninURL:     h.policy.SigninLocation(),
		Authenticated: scope.Gateway.IsAuthenticated(c.Request().Context()),
	})
}

// SigninPage godoc
// @Summary Sign-in screen
// @Tags auth
// @Produce json
// @Success 200 {object} SigninPageResponse
// @Router /signin [get]
func (h *AuthHandler) SigninPage(c echo.Context) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return fail(err)
	}
	ctx := c.Request().Context()
	resp := SigninPageResponse{Authenticated: scope.Gateway.IsAuthenticated(ctx)}
	if user, ok := scope.Gateway.CachedUser(ctx); ok {
		resp.User = user
	}
	return c.JSON(http.StatusOK, resp)
}

// Signin godoc
// @Summary Sign in
// @Tags auth
// @Accept json,x-www-form-urlencoded
// @Produce json
// @Param request body SigninRequest true "Credentials"
// @Success 200 {object} SigninResponse
// @Success 303
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 429 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /signin [post]
func (h *AuthHandler) Signin(c echo.Context) error {
	var req SigninRequest
	if err := c.Bind(&req); err != nil {
		return badRequest("invalid request body")
	}

	if err := c.Validate(&req); err != nil {
		return badRequest(err.Error())
	}

	scope, err := ScopeFrom(c)
	if err != nil {
		return fail(err)
	}

	res, err := scope.Gateway.Login(c.Request().Context(), auth.Credentials{Email: req.Email, Password: req.Password})
	if err != nil {
		if st := apiclient.StatusOf(err); st == 0 || apiclient.IsUnavailable(err) {
			return fail(err)
		}
		return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
			Error: err.Error(),
			Code:  "LOGIN_FAILED",
		})
	}

	target := ReturnTarget(h.policy, req.ReturnTo)
	if wantsHTML(c) {
		return c.Redirect(http.StatusSeeOther, target)
	}
	return c.JSON(http.StatusOK, SigninResponse{User: res.User, Redirect: target})
}

// Logout godoc
// @Summary Sign out
// @Description Always clears the portal session, even when the backend cannot be reached.
// @Tags auth
// @Produce json
// @Success 200 {object} map[string]string
// @Success 303
// @Router /logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return fail(err)
	}

	scope.Gateway.Logout(c.Request().Context())
	h.guards.Forget(scope.SessionID)

	target := h.policy.SigninLocation()
	if wantsHTML(c) {
		return c.Redirect(http.StatusSeeOther, target)
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":  "logged out successfully",
		"redirect": target,
	})
}

// Me godoc
// @Summary Current user profile
// @Tags auth
// @Produce json
// @Success 200 {object} model.User
// @Failure 302
// @Failure 502 {object} errors.ErrorResponse
// @Router /me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	scope, err := ScopeFrom(c)
	if err != nil {
		return fail(err)
	}
	user, err := scope.Gateway.CurrentUser(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}

// ReturnTarget picks where a visitor goes after signing in. raw is the
// browser location the sign-in started from; its fragment route wins over
// the pathname. Off-site, empty and sign-in targets fall back to the main menu.
func ReturnTarget(p redirect.Policy, raw string) string {
	loc := redirect.Location{Pathname: raw}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		loc = redirect.Location{Pathname: raw[:i], Hash: raw[i:]}
	}
	target := redirect.ResolveEffectivePath(loc)

	switch {
	case !strings.HasPrefix(target, "/"),
		strings.HasPrefix(target, "//"),
		strings.ContainsRune(target, '\\'),
		strings.IndexFunc(target, isControlOrSpace) >= 0,
		target == "/",
		target == p.SigninPath:
		return p.MainMenuPath
	}
	if u, err := url.Parse(target); err != nil || u.Scheme != "" || u.Host != "" {
		return p.MainMenuPath
	}
	return target
}

// isControlOrSpace matches the bytes browsers strip or split on while
// parsing a URL.
func isControlOrSpace(r rune) bool {
	return r <= 0x20 || r == 0x7f
}

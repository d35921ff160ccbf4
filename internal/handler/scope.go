package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"sphere/internal/apiclient"
	"sphere/internal/auth"
	"sphere/internal/errors"
	"sphere/internal/model"
	"sphere/internal/redirect"
	"sphere/internal/session"
)

const (
	scopeKey = "portal_scope"
	userKey  = "portal_user"
)

// Scope is everything a request needs to talk to the backend on behalf of
// one browser session. The router builds a fresh Scope for every request.
type Scope struct {
	SessionID string
	Session   *session.Store
	Nav       *redirect.Recorder
	API       *apiclient.Client
	Gateway   *auth.Gateway
}

// SetScope attaches s to the request.
func SetScope(c echo.Context, s *Scope) {
	c.Set(scopeKey, s)
}

// ScopeFrom returns the request scope or an error when the session
// middleware did not run.
func ScopeFrom(c echo.Context) (*Scope, error) {
	s, ok := c.Get(scopeKey).(*Scope)
	if !ok || s == nil {
		return nil, errors.ErrSessionRequired
	}
	return s, nil
}

// SetUser records the verified user of the request.
func SetUser(c echo.Context, u *model.User) {
	c.Set(userKey, u)
}

// UserFrom returns the user verified by the access guard, if any.
func UserFrom(c echo.Context) *model.User {
	u, _ := c.Get(userKey).(*model.User)
	return u
}

// fail converts a service error into the portal's error response.
func fail(err error) *echo.HTTPError {
	httpErr := errors.MapErrorToHTTP(err)
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

func badRequest(msg string) *echo.HTTPError {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: msg,
		Code:  "INVALID_REQUEST",
	})
}

// wantsHTML reports whether the request came from a plain HTML form, which
// should be answered with a redirect rather than JSON.
func wantsHTML(c echo.Context) bool {
	return strings.HasPrefix(c.Request().Header.Get(echo.HeaderContentType), echo.MIMEApplicationForm)
}

func paramID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid id")
	}
	return uint(id), nil
}

package router

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sphere/internal/guard"
	"sphere/internal/handler"
	"sphere/internal/model"
)

// VerifyingResponse is sent to a page request whose access check was
// overtaken by a newer navigation of the same session.
type VerifyingResponse struct {
	State string `json:"state"`
}

// RequireRole guards a page navigation. Visitors without a valid session are
// redirected to sign-in, under-privileged ones to the main menu. When a newer
// navigation of the same session starts first, this one answers 202.
// RoleUnknown only requires a valid session.
func RequireRole(guards *guard.Registry, required model.RoleSlug) echo.MiddlewareFunc {
	return guardWith(func(c echo.Context, scope *handler.Scope) guard.Decision {
		return guards.Navigate(c.Request().Context(), scope.SessionID, scope.Gateway, scope.Nav, required)
	})
}

// RequireSession admits any visitor with a valid session to a page.
func RequireSession(guards *guard.Registry) echo.MiddlewareFunc {
	return RequireRole(guards, model.RoleUnknown)
}

// AllowRole guards a data request. Concurrent data requests of one session
// are checked independently and never superseded.
func AllowRole(guards *guard.Registry, required model.RoleSlug) echo.MiddlewareFunc {
	return guardWith(func(c echo.Context, scope *handler.Scope) guard.Decision {
		return guards.Authorize(c.Request().Context(), scope.Gateway, scope.Nav, required)
	})
}

func guardWith(check func(echo.Context, *handler.Scope) guard.Decision) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			scope, err := handler.ScopeFrom(c)
			if err != nil {
				return echo.NewHTTPError(http.StatusInternalServerError, "session unavailable")
			}

			d := check(c, scope)
			if !d.Current {
				return c.JSON(http.StatusAccepted, VerifyingResponse{State: guard.PhaseVerifying.String()})
			}

			switch d.State.Phase {
			case guard.PhaseAuthorized:
				handler.SetUser(c, d.State.User)
				return next(c)
			default:
				return c.Redirect(http.StatusFound, scope.Nav.Location())
			}
		}
	}
}

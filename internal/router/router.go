package router

import (
	"math"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	echoSwagger "github.com/swaggo/echo-swagger"
	"golang.org/x/time/rate"

	"sphere/internal/config"
	"sphere/internal/errors"
	"sphere/internal/handler"
	"sphere/internal/logging"
	"sphere/internal/metrics"
	"sphere/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	portal *Portal,
	authHandler *handler.AuthHandler,
	menuHandler *handler.MenuHandler,
	userHandler *handler.UserHandler,
	departmentHandler *handler.DepartmentHandler,
	auditLogHandler *handler.AuditLogHandler,
) {
	e.Use(logging.RequestLogger(portal.Logger))
	e.Use(middleware.Recover())

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(metrics.Registry, promhttp.HandlerOpts{})))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	web := e.Group("", sessionCookie(portal.Signer), establishSession(cfg, portal))

	// Public routes
	web.GET("/", authHandler.Landing)
	web.GET("/signin", authHandler.SigninPage)
	web.POST("/signin", authHandler.Signin, loginRateLimiter(cfg.LoginRateLimit))
	web.POST("/logout", authHandler.Logout)

	// Pages share one guard per session; data calls are checked on their own
	session := RequireSession(portal.Guards)
	web.GET("/main-menu", menuHandler.MainMenu, session)
	web.GET("/projects/:id/launch", menuHandler.LaunchProject, session)
	web.GET("/me", authHandler.Me, AllowRole(portal.Guards, model.RoleUnknown))

	// Administrators
	web.GET("/user-manage", userHandler.ManagePage, RequireRole(portal.Guards, model.RoleAdmin))
	web.GET("/logs", auditLogHandler.LogsPage, RequireRole(portal.Guards, model.RoleAdmin))

	admin := AllowRole(portal.Guards, model.RoleAdmin)
	web.GET("/api/users", userHandler.ListUsers, admin)
	web.GET("/api/users/roles/available", userHandler.AvailableRoles, admin)
	web.GET("/api/users/:id", userHandler.GetUser, admin)
	web.POST("/api/users", userHandler.CreateUser, admin)
	web.PUT("/api/users/:id", userHandler.UpdateUser, admin)
	web.DELETE("/api/users/:id", userHandler.DeleteUser, admin)

	web.GET("/api/audit-logs", auditLogHandler.ListLogs, admin)
	web.GET("/api/audit-logs/filters/actions", auditLogHandler.AvailableActions, admin)
	web.GET("/api/audit-logs/filters/entity-types", auditLogHandler.AvailableEntityTypes, admin)
	web.GET("/api/audit-logs/:id", auditLogHandler.GetLog, admin)

	// Department lookups feed the user form, so reading them only needs admin
	web.GET("/api/departments", departmentHandler.ListDepartments, admin)
	web.GET("/api/departments/:id", departmentHandler.GetDepartment, admin)

	// Super administrators
	web.GET("/department-manage", departmentHandler.ListDepartments, RequireRole(portal.Guards, model.RoleSuperAdmin))
	superadmin := AllowRole(portal.Guards, model.RoleSuperAdmin)
	web.POST("/api/departments", departmentHandler.CreateDepartment, superadmin)
	web.PUT("/api/departments/:id", departmentHandler.UpdateDepartment, superadmin)
	web.DELETE("/api/departments/:id", departmentHandler.DeleteDepartment, superadmin)
}

// loginRateLimiter limits sign-in attempts per client IP to perMinute,
// with a burst of the same size.
func loginRateLimiter(perMinute float64) echo.MiddlewareFunc {
	return middleware.RateLimiterWithConfig(middleware.RateLimiterConfig{
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(middleware.RateLimiterMemoryStoreConfig{
			Rate:      rate.Limit(perMinute / 60),
			Burst:     int(math.Max(1, math.Ceil(perMinute))),
			ExpiresIn: 3 * time.Minute,
		}),
		IdentifierExtractor: func(c echo.Context) (string, error) {
			return c.RealIP(), nil
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusForbidden, errors.ErrorResponse{
				Error: "cannot identify client",
				Code:  "FORBIDDEN",
			})
		},
		DenyHandler: func(c echo.Context, identifier string, err error) error {
			return echo.NewHTTPError(http.StatusTooManyRequests, errors.ErrorResponse{
				Error: "too many sign-in attempts, try again later",
				Code:  "RATE_LIMITED",
			})
		},
	})
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}

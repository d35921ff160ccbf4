package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sphere/internal/service"
)

// MenuHandler serves the main menu and project launches.
type MenuHandler struct {
	newService func(service.API) service.DashboardService
}

// NewMenuHandler creates a menu handler. newService binds the dashboard
// service to the request's backend client.
func NewMenuHandler(newService func(service.API) service.DashboardService) *MenuHandler {
	return &MenuHandler{newService: newService}
}

func (h *MenuHandler) service(c echo.Context) (service.DashboardService, error) {
	scope, err := ScopeFrom(c)
	if err != nil {
		return nil, fail(err)
	}
	return h.newService(scope.API), nil
}

// MainMenu godoc
// @Summary Main menu
// @Description Current user and the projects they may launch.
// @Tags portal
// @Produce json
// @Success 200 {object} model.Dashboard
// @Success 202 {object} map[string]string
// @Failure 302
// @Failure 502 {object} errors.ErrorResponse
// @Router /main-menu [get]
func (h *MenuHandler) MainMenu(c echo.Context) error {
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	dash, err := svc.Dashboard(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, dash)
}

// LaunchProject godoc
// @Summary Launch a project
// @Description Redirects to the line-of-business application of the project.
// @Tags portal
// @Param id path string true "Project ID"
// @Success 302
// @Failure 403 {object} errors.ErrorResponse
// @Failure 502 {object} errors.ErrorResponse
// @Router /projects/{id}/launch [get]
func (h *MenuHandler) LaunchProject(c echo.Context) error {
	id := c.Param("id")
	if id == "" {
		return badRequest("invalid project id")
	}
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	target, err := svc.ProjectURL(c.Request().Context(), id)
	if err != nil {
		if err == service.ErrEmptyProjectURL {
			return echo.NewHTTPError(http.StatusNotFound, "project has no launch url")
		}
		return fail(err)
	}
	return c.Redirect(http.StatusFound, target)
}

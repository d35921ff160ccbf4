package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sphere/internal/model"
	"sphere/internal/service"
)

// AuditLogHandler serves the audit trail.
type AuditLogHandler struct {
	newService func(service.API) service.AuditLogService
}

// NewAuditLogHandler creates an audit log handler.
func NewAuditLogHandler(newService func(service.API) service.AuditLogService) *AuditLogHandler {
	return &AuditLogHandler{newService: newService}
}

// LogsView is the payload of the audit log screen: one page of entries and
// the values its filter drop-downs offer.
type LogsView struct {
	model.AuditLogPage
	Actions     []string `json:"actions"`
	EntityTypes []string `json:"entity_types"`
}

func (h *AuditLogHandler) service(c echo.Context) (service.AuditLogService, error) {
	scope, err := ScopeFrom(c)
	if err != nil {
		return nil, fail(err)
	}
	return h.newService(scope.API), nil
}

func bindFilters(c echo.Context) (model.AuditLogFilters, error) {
	var filters model.AuditLogFilters
	if err := (&echo.DefaultBinder{}).BindQueryParams(c, &filters); err != nil {
		return filters, badRequest("invalid filters")
	}
	return filters, nil
}

// LogsPage godoc
// @Summary Audit log screen
// @Tags audit-logs
// @Produce json
// @Param search query string false "Free text"
// @Param action query string false "Action"
// @Param entity_type query string false "Entity type"
// @Param date_from query string false "From date (YYYY-MM-DD)"
// @Param date_to query string false "To date (YYYY-MM-DD)"
// @Param per_page query int false "Page size"
// @Param page query int false "Page"
// @Success 200 {object} LogsView
// @Router /logs [get]
func (h *AuditLogHandler) LogsPage(c echo.Context) error {
	filters, err := bindFilters(c)
	if err != nil {
		return err
	}
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()

	page, err := svc.List(ctx, filters)
	if err != nil {
		return fail(err)
	}
	actions, err := svc.AvailableActions(ctx)
	if err != nil {
		return fail(err)
	}
	types, err := svc.AvailableEntityTypes(ctx)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, LogsView{AuditLogPage: *page, Actions: actions, EntityTypes: types})
}

// ListLogs godoc
// @Summary List audit logs
// @Tags audit-logs
// @Produce json
// @Param action query string false "Action"
// @Param page query int false "Page"
// @Success 200 {object} model.AuditLogPage
// @Router /api/audit-logs [get]
func (h *AuditLogHandler) ListLogs(c echo.Context) error {
	filters, err := bindFilters(c)
	if err != nil {
		return err
	}
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	page, err := svc.List(c.Request().Context(), filters)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, page)
}

// GetLog godoc
// @Summary Get audit log entry
// @Tags audit-logs
// @Produce json
// @Param id path int true "Audit log ID"
// @Success 200 {object} model.AuditLog
// @Router /api/audit-logs/{id} [get]
func (h *AuditLogHandler) GetLog(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	entry, err := svc.Get(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, entry)
}

// AvailableActions godoc
// @Summary Audit actions usable as filter
// @Tags audit-logs
// @Produce json
// @Success 200 {array} string
// @Router /api/audit-logs/filters/actions [get]
func (h *AuditLogHandler) AvailableActions(c echo.Context) error {
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	actions, err := svc.AvailableActions(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, actions)
}

// AvailableEntityTypes godoc
// @Summary Audit entity types usable as filter
// @Tags audit-logs
// @Produce json
// @Success 200 {array} string
// @Router /api/audit-logs/filters/entity-types [get]
func (h *AuditLogHandler) AvailableEntityTypes(c echo.Context) error {
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	types, err := svc.AvailableEntityTypes(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, types)
}

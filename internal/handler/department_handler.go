package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sphere/internal/model"
	"sphere/internal/service"
)

// DepartmentHandler bundles the department administration handlers.
type DepartmentHandler struct {
	newService func(service.API) service.DepartmentService
}

// NewDepartmentHandler creates a department handler.
func NewDepartmentHandler(newService func(service.API) service.DepartmentService) *DepartmentHandler {
	return &DepartmentHandler{newService: newService}
}

func (h *DepartmentHandler) service(c echo.Context) (service.DepartmentService, error) {
	scope, err := ScopeFrom(c)
	if err != nil {
		return nil, fail(err)
	}
	return h.newService(scope.API), nil
}

// ListDepartments godoc
// @Summary List departments
// @Description Also serves the department management screen.
// @Tags departments
// @Produce json
// @Success 200 {array} model.Department
// @Router /api/departments [get]
// @Router /department-manage [get]
func (h *DepartmentHandler) ListDepartments(c echo.Context) error {
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	depts, err := svc.List(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, depts)
}

// GetDepartment godoc
// @Summary Get department by id
// @Tags departments
// @Produce json
// @Param id path int true "Department ID"
// @Success 200 {object} model.Department
// @Router /api/departments/{id} [get]
func (h *DepartmentHandler) GetDepartment(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	dept, err := svc.Get(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, dept)
}

// CreateDepartment godoc
// @Summary Create department
// @Tags departments
// @Accept json
// @Produce json
// @Param department body model.CreateDepartmentInput true "Department payload"
// @Success 201 {object} model.Department
// @Router /api/departments [post]
func (h *DepartmentHandler) CreateDepartment(c echo.Context) error {
	var input model.CreateDepartmentInput
	if err := c.Bind(&input); err != nil {
		return badRequest("invalid request body")
	}
	if err := c.Validate(&input); err != nil {
		return badRequest(err.Error())
	}
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	dept, err := svc.Create(c.Request().Context(), input)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, dept)
}

// UpdateDepartment godoc
// @Summary Update department
// @Tags departments
// @Accept json
// @Produce json
// @Param id path int true "Department ID"
// @Param department body model.UpdateDepartmentInput true "Fields to change"
// @Success 200 {object} model.Department
// @Router /api/departments/{id} [put]
func (h *DepartmentHandler) UpdateDepartment(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var input model.UpdateDepartmentInput
	if err := c.Bind(&input); err != nil {
		return badRequest("invalid request body")
	}
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	dept, err := svc.Update(c.Request().Context(), id, input)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, dept)
}

// DeleteDepartment godoc
// @Summary Delete department
// @Tags departments
// @Param id path int true "Department ID"
// @Success 204
// @Router /api/departments/{id} [delete]
func (h *DepartmentHandler) DeleteDepartment(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	if err := svc.Delete(c.Request().Context(), id); err != nil {
		return fail(err)
	}
	return c.NoContent(http.StatusNoContent)
}

package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"sphere/internal/model"
	"sphere/internal/service"
)

// UserHandler bundles the user administration handlers.
type UserHandler struct {
	newService func(service.API) service.UserService
}

// NewUserHandler creates a handler layer. newService binds the user service
// to the request's backend client.
func NewUserHandler(newService func(service.API) service.UserService) *UserHandler {
	return &UserHandler{newService: newService}
}

// UserManageView is the payload of the user management screen.
type UserManageView struct {
	Users []model.User `json:"users"`
	Roles []model.Role `json:"roles"`
}

func (h *UserHandler) service(c echo.Context) (service.UserService, error) {
	scope, err := ScopeFrom(c)
	if err != nil {
		return nil, fail(err)
	}
	return h.newService(scope.API), nil
}

// ManagePage godoc
// @Summary User management screen
// @Tags users
// @Produce json
// @Success 200 {object} UserManageView
// @Failure 302
// @Router /user-manage [get]
func (h *UserHandler) ManagePage(c echo.Context) error {
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	users, err := svc.List(ctx)
	if err != nil {
		return fail(err)
	}
	roles, err := svc.AvailableRoles(ctx, requesterRole(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, UserManageView{Users: users, Roles: roles})
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Success 200 {array} model.User
// @Router /api/users [get]
func (h *UserHandler) ListUsers(c echo.Context) error {
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	users, err := svc.List(c.Request().Context())
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, users)
}

// GetUser godoc
// @Summary Get user by id
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /api/users/{id} [get]
func (h *UserHandler) GetUser(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	user, err := svc.Get(c.Request().Context(), id)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, user)
}

// CreateUser godoc
// @Summary Create user
// @Tags users
// @Accept json
// @Produce json
// @Param user body model.CreateUserInput true "User payload"
// @Success 201 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 422 {object} errors.ErrorResponse
// @Router /api/users [post]
func (h *UserHandler) CreateUser(c echo.Context) error {
	var input model.CreateUserInput
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
	created, err := svc.Create(c.Request().Context(), input)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusCreated, created)
}

// UpdateUser godoc
// @Summary Update user
// @Tags users
// @Accept json
// @Produce json
// @Param id path int true "User ID"
// @Param user body model.UpdateUserInput true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/users/{id} [put]
func (h *UserHandler) UpdateUser(c echo.Context) error {
	id, err := paramID(c)
	if err != nil {
		return err
	}
	var input model.UpdateUserInput
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
	updated, err := svc.Update(c.Request().Context(), id, input)
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, updated)
}

// DeleteUser godoc
// @Summary Delete user
// @Tags users
// @Param id path int true "User ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Router /api/users/{id} [delete]
func (h *UserHandler) DeleteUser(c echo.Context) error {
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

// AvailableRoles godoc
// @Summary Roles an administrator may assign
// @Tags users
// @Produce json
// @Success 200 {array} model.Role
// @Router /api/users/roles/available [get]
func (h *UserHandler) AvailableRoles(c echo.Context) error {
	svc, err := h.service(c)
	if err != nil {
		return err
	}
	roles, err := svc.AvailableRoles(c.Request().Context(), requesterRole(c))
	if err != nil {
		return fail(err)
	}
	return c.JSON(http.StatusOK, roles)
}

// requesterRole is the verified role of the visitor, or RoleUnknown.
func requesterRole(c echo.Context) model.RoleSlug {
	if u := UserFrom(c); u != nil {
		return u.RoleSlug()
	}
	return model.RoleUnknown
}

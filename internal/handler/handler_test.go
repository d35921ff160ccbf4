package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sphere/internal/apiclient"
	"sphere/internal/errors"
	"sphere/internal/model"
	"sphere/internal/redirect"
	"sphere/internal/service"
)

type testValidator struct{ v *validator.Validate }

func (tv testValidator) Validate(i interface{}) error { return tv.v.Struct(i) }

// MockUserService is a mock implementation of service.UserService.
type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id uint) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Create(ctx context.Context, input model.CreateUserInput) (*model.User, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Update(ctx context.Context, id uint, input model.UpdateUserInput) (*model.User, error) {
	args := m.Called(ctx, id, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) Delete(ctx context.Context, id uint) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockUserService) AvailableRoles(ctx context.Context, requester model.RoleSlug) ([]model.Role, error) {
	args := m.Called(ctx, requester)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Role), args.Error(1)
}

func newContext(method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	e.Validator = testValidator{v: validator.New()}
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	SetScope(c, &Scope{SessionID: "sid", Nav: redirect.NewRecorder("")})
	return c, rec
}

func userHandlerWith(svc service.UserService) *UserHandler {
	return NewUserHandler(func(service.API) service.UserService { return svc })
}

func TestReturnTarget(t *testing.T) {
	p := redirect.DefaultPolicy()
	tests := []struct {
		raw  string
		want string
	}{
		{"", "/main-menu"},
		{"/logs", "/logs"},
		{"/signin#/user-manage", "/user-manage"},
		{"/signin#logs", "/logs"},
		{"/signin#/signin", "/main-menu"},
		{"/signin", "/main-menu"},
		{"/", "/main-menu"},
		{"/#", "/main-menu"},
		{"https://evil.example/x", "/main-menu"},
		{"//evil.example/x", "/main-menu"},
		{"/signin#//evil.example", "/main-menu"},
		{"/a\\b", "/main-menu"},
		{"/\t/evil.example", "/main-menu"},
		{"#/\t/evil.example", "/main-menu"},
		{"/signin#/\n/evil.example", "/main-menu"},
		{"/ /evil.example", "/main-menu"},
		{"/\x7f/evil.example", "/main-menu"},
		{"/\x00logs", "/main-menu"},
		{"/logs?page=2", "/logs?page=2"},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			assert.Equal(t, tt.want, ReturnTarget(p, tt.raw))
		})
	}
}

func TestUserHandler_GetUser(t *testing.T) {
	tests := []struct {
		name        string
		id          string
		setupMock   func(*MockUserService)
		wantCode    int
		wantErrCode string
	}{
		{
			name: "found",
			id:   "3",
			setupMock: func(m *MockUserService) {
				m.On("Get", mock.Anything, uint(3)).Return(&model.User{ID: 3, Name: "Ayu"}, nil)
			},
			wantCode: http.StatusOK,
		},
		{
			name:        "invalid id",
			id:          "abc",
			setupMock:   func(*MockUserService) {},
			wantCode:    http.StatusBadRequest,
			wantErrCode: "INVALID_REQUEST",
		},
		{
			name: "backend not found",
			id:   "9",
			setupMock: func(m *MockUserService) {
				m.On("Get", mock.Anything, uint(9)).Return(nil, &apiclient.APIError{StatusCode: http.StatusNotFound, Message: "User not found"})
			},
			wantCode:    http.StatusNotFound,
			wantErrCode: "NOT_FOUND",
		},
		{
			name: "backend down",
			id:   "9",
			setupMock: func(m *MockUserService) {
				m.On("Get", mock.Anything, uint(9)).Return(nil, &apiclient.TransportError{Method: "GET", Path: "/users/9", Err: context.DeadlineExceeded})
			},
			wantCode:    http.StatusBadGateway,
			wantErrCode: "BACKEND_UNAVAILABLE",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(MockUserService)
			tt.setupMock(svc)
			c, rec := newContext(http.MethodGet, "/api/users/"+tt.id, "")
			c.SetParamNames("id")
			c.SetParamValues(tt.id)

			err := userHandlerWith(svc).GetUser(c)

			if tt.wantCode == http.StatusOK {
				require.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			var he *echo.HTTPError
			require.ErrorAs(t, err, &he)
			assert.Equal(t, tt.wantCode, he.Code)
			resp, ok := he.Message.(errors.ErrorResponse)
			require.True(t, ok)
			assert.Equal(t, tt.wantErrCode, resp.Code)
		})
	}
}

func TestUserHandler_CreateUserValidates(t *testing.T) {
	svc := new(MockUserService)
	c, _ := newContext(http.MethodPost, "/api/users", `{"email":"bad","username":"x"}`)

	err := userHandlerWith(svc).CreateUser(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusBadRequest, he.Code)
	svc.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestUserHandler_ManagePage(t *testing.T) {
	svc := new(MockUserService)
	svc.On("List", mock.Anything).Return([]model.User{{ID: 1}}, nil)
	svc.On("AvailableRoles", mock.Anything, model.RoleSuperAdmin).Return([]model.Role{{Slug: model.RoleAdmin}}, nil)
	c, rec := newContext(http.MethodGet, "/user-manage", "")
	SetUser(c, &model.User{ID: 1, Role: model.Role{Slug: model.RoleSuperAdmin}})

	require.NoError(t, userHandlerWith(svc).ManagePage(c))

	var view UserManageView
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
	assert.Len(t, view.Users, 1)
	assert.Equal(t, model.RoleAdmin, view.Roles[0].Slug)
}

func TestUserHandler_DeleteUser(t *testing.T) {
	svc := new(MockUserService)
	svc.On("Delete", mock.Anything, uint(4)).Return(nil)
	c, rec := newContext(http.MethodDelete, "/api/users/4", "")
	c.SetParamNames("id")
	c.SetParamValues("4")

	require.NoError(t, userHandlerWith(svc).DeleteUser(c))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestHandlersRequireScope(t *testing.T) {
	e := echo.New()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/main-menu", nil), httptest.NewRecorder())

	err := NewMenuHandler(func(service.API) service.DashboardService { return nil }).MainMenu(c)

	var he *echo.HTTPError
	require.ErrorAs(t, err, &he)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestUserFrom(t *testing.T) {
	c, _ := newContext(http.MethodGet, "/", "")
	assert.Nil(t, UserFrom(c))

	SetUser(c, &model.User{ID: 2})
	assert.Equal(t, uint(2), UserFrom(c).ID)
}

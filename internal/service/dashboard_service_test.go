package service

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sphere/internal/apiclient"
	"sphere/internal/model"
)

func TestDashboardService_Dashboard(t *testing.T) {
	api := new(MockAPI)
	api.On("Get", mock.Anything, "/dashboard", url.Values(nil)).Return(success(), model.Dashboard{
		User: model.User{ID: 1, Name: "Rina"},
		Projects: []model.Project{
			{ID: "fg-store", Name: "FG Store", URL: "http://fg.local"},
			{ID: "inventory", Name: "Inventory", URL: "http://inv.local"},
		},
	}, nil)

	dash, err := NewDashboardService(api, nil).Dashboard(context.Background())

	require.NoError(t, err)
	assert.Equal(t, "Rina", dash.User.Name)
	assert.Len(t, dash.Projects, 2)
}

func TestDashboardService_ProjectURL(t *testing.T) {
	launchAt := map[string]string{"fg-store": "http://127.0.0.1:8001"}
	tests := []struct {
		name      string
		projectID string
		path      string
		data      any
		err       error
		wantURL   string
		wantErr   error
		wantMsg   string
	}{
		{
			name:      "resolves url",
			projectID: "fg-store",
			path:      "/dashboard/project/fg-store/url",
			data:      model.ProjectURL{URL: "http://fg.local/sso?token=x", ProjectID: "fg-store"},
			wantURL:   "http://fg.local/sso?token=x",
		},
		{
			name:      "escapes project id",
			projectID: "a/b",
			path:      "/dashboard/project/a%2Fb/url",
			data:      model.ProjectURL{URL: "http://x"},
			wantURL:   "http://x",
		},
		{
			name:      "empty url",
			projectID: "inventory",
			path:      "/dashboard/project/inventory/url",
			data:      model.ProjectURL{ProjectID: "inventory"},
			wantErr:   ErrEmptyProjectURL,
		},
		{
			name:      "falls back to configured address",
			projectID: "fg-store",
			path:      "/dashboard/project/fg-store/url",
			data:      model.ProjectURL{ProjectID: "fg-store"},
			wantURL:   "http://127.0.0.1:8001",
		},
		{
			name:      "backend refuses",
			projectID: "hr",
			path:      "/dashboard/project/hr/url",
			err:       &apiclient.APIError{StatusCode: http.StatusForbidden, Message: "You do not have access to this project"},
			wantMsg:   "You do not have access to this project",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := new(MockAPI)
			api.On("Get", mock.Anything, tt.path, url.Values(nil)).Return(success(), tt.data, tt.err)

			got, err := NewDashboardService(api, launchAt).ProjectURL(context.Background(), tt.projectID)

			switch {
			case tt.wantErr != nil:
				assert.ErrorIs(t, err, tt.wantErr)
			case tt.wantMsg != "":
				assert.EqualError(t, err, tt.wantMsg)
			default:
				require.NoError(t, err)
				assert.Equal(t, tt.wantURL, got)
			}
			api.AssertExpectations(t)
		})
	}
}

func TestDepartmentService(t *testing.T) {
	active := true
	create := model.CreateDepartmentInput{Name: "Finance", Code: "FIN", IsActive: &active}
	code := "FNC"
	update := model.UpdateDepartmentInput{Code: &code}

	api := new(MockAPI)
	api.On("Get", mock.Anything, "/departments", url.Values(nil)).
		Return(success(), []model.Department{{ID: 1, Name: "Finance", Code: "FIN"}}, nil)
	api.On("Get", mock.Anything, "/departments/1", url.Values(nil)).
		Return(nil, nil, &apiclient.APIError{StatusCode: http.StatusNotFound})
	api.On("Post", mock.Anything, "/departments", create).
		Return(&apiclient.Envelope{Success: false, Message: "The code has already been taken."}, nil, nil)
	api.On("Put", mock.Anything, "/departments/1", update).
		Return(success(), model.Department{ID: 1, Name: "Finance", Code: "FNC"}, nil)
	api.On("Delete", mock.Anything, "/departments/1").Return(success(), nil, nil)
	svc := NewDepartmentService(api)

	depts, err := svc.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "FIN", depts[0].Code)

	_, err = svc.Get(context.Background(), 1)
	assert.EqualError(t, err, "Failed to fetch department")

	_, err = svc.Create(context.Background(), create)
	assert.EqualError(t, err, "The code has already been taken.")

	updated, err := svc.Update(context.Background(), 1, update)
	require.NoError(t, err)
	assert.Equal(t, "FNC", updated.Code)

	assert.NoError(t, svc.Delete(context.Background(), 1))
	api.AssertExpectations(t)
}

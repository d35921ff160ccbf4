package service

import (
	"context"
	"errors"
	"net/url"

	"sphere/internal/model"
)

// ErrEmptyProjectURL is returned when the backend has no launch address for a project.
var ErrEmptyProjectURL = errors.New("project has no launch url")

// DashboardService loads the main menu.
type DashboardService interface {
	Dashboard(ctx context.Context) (*model.Dashboard, error)
	ProjectURL(ctx context.Context, projectID string) (string, error)
}

type dashboardService struct {
	api      API
	launchAt map[string]string
}

// NewDashboardService builds a DashboardService over api. launchAt maps
// project ids to the configured application address, used when the backend
// knows the project but has no launch address for it.
func NewDashboardService(api API, launchAt map[string]string) DashboardService {
	return &dashboardService{api: api, launchAt: launchAt}
}

func (s *dashboardService) Dashboard(ctx context.Context) (*model.Dashboard, error) {
	var dash model.Dashboard
	if _, err := fetch(ctx, s.api, "/dashboard", nil, &dash, "Failed to load dashboard"); err != nil {
		return nil, err
	}
	return &dash, nil
}

// ProjectURL resolves the address the visitor is sent to when launching a project.
func (s *dashboardService) ProjectURL(ctx context.Context, projectID string) (string, error) {
	var target model.ProjectURL
	path := "/dashboard/project/" + url.PathEscape(projectID) + "/url"
	if _, err := fetch(ctx, s.api, path, nil, &target, "Failed to get project URL"); err != nil {
		return "", err
	}
	if target.URL == "" {
		if fallback := s.launchAt[projectID]; fallback != "" {
			return fallback, nil
		}
		return "", ErrEmptyProjectURL
	}
	return target.URL, nil
}

package service

import (
	"context"
	"fmt"

	"sphere/internal/model"
)

// DepartmentService exposes department administration against the backend.
type DepartmentService interface {
	List(ctx context.Context) ([]model.Department, error)
	Get(ctx context.Context, id uint) (*model.Department, error)
	Create(ctx context.Context, input model.CreateDepartmentInput) (*model.Department, error)
	Update(ctx context.Context, id uint, input model.UpdateDepartmentInput) (*model.Department, error)
	Delete(ctx context.Context, id uint) error
}

type departmentService struct {
	api API
}

// NewDepartmentService builds a DepartmentService over api.
func NewDepartmentService(api API) DepartmentService {
	return &departmentService{api: api}
}

func (s *departmentService) List(ctx context.Context) ([]model.Department, error) {
	var depts []model.Department
	if _, err := fetch(ctx, s.api, "/departments", nil, &depts, "Failed to fetch departments"); err != nil {
		return nil, err
	}
	return depts, nil
}

func (s *departmentService) Get(ctx context.Context, id uint) (*model.Department, error) {
	var dept model.Department
	if _, err := fetch(ctx, s.api, fmt.Sprintf("/departments/%d", id), nil, &dept, "Failed to fetch department"); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (s *departmentService) Create(ctx context.Context, input model.CreateDepartmentInput) (*model.Department, error) {
	var dept model.Department
	env, err := s.api.Post(ctx, "/departments", input, &dept)
	if err := check(env, err, "Failed to create department"); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (s *departmentService) Update(ctx context.Context, id uint, input model.UpdateDepartmentInput) (*model.Department, error) {
	var dept model.Department
	env, err := s.api.Put(ctx, fmt.Sprintf("/departments/%d", id), input, &dept)
	if err := check(env, err, "Failed to update department"); err != nil {
		return nil, err
	}
	return &dept, nil
}

func (s *departmentService) Delete(ctx context.Context, id uint) error {
	env, err := s.api.Delete(ctx, fmt.Sprintf("/departments/%d", id), nil)
	return check(env, err, "Failed to delete department")
}

package service

import (
	"context"
	"fmt"

	"sphere/internal/cache"
	"sphere/internal/model"
)

// rolesCacheKeyPrefix is followed by the requester's role slug: the backend
// offers different roles to administrators and super administrators.
const rolesCacheKeyPrefix = "portal:catalog:roles:"

// UserService exposes user administration against the backend.
type UserService interface {
	List(ctx context.Context) ([]model.User, error)
	Get(ctx context.Context, id uint) (*model.User, error)
	Create(ctx context.Context, input model.CreateUserInput) (*model.User, error)
	Update(ctx context.Context, id uint, input model.UpdateUserInput) (*model.User, error)
	Delete(ctx context.Context, id uint) error
	AvailableRoles(ctx context.Context, requester model.RoleSlug) ([]model.Role, error)
}

type userService struct {
	api   API
	cache *cache.Client
}

// NewUserService builds a UserService over api. cache may be nil.
func NewUserService(api API, cache *cache.Client) UserService {
	return &userService{api: api, cache: cache}
}

func (s *userService) List(ctx context.Context) ([]model.User, error) {
	var users []model.User
	if _, err := fetch(ctx, s.api, "/users", nil, &users, "Failed to fetch users"); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *userService) Get(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if _, err := fetch(ctx, s.api, fmt.Sprintf("/users/%d", id), nil, &user, "Failed to fetch user"); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) Create(ctx context.Context, input model.CreateUserInput) (*model.User, error) {
	var user model.User
	env, err := s.api.Post(ctx, "/users", input, &user)
	if err := check(env, err, "Failed to create user"); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) Update(ctx context.Context, id uint, input model.UpdateUserInput) (*model.User, error) {
	var user model.User
	env, err := s.api.Put(ctx, fmt.Sprintf("/users/%d", id), input, &user)
	if err := check(env, err, "Failed to update user"); err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	env, err := s.api.Delete(ctx, fmt.Sprintf("/users/%d", id), nil)
	return check(env, err, "Failed to delete user")
}

// AvailableRoles lists the roles requester may assign. Answers are cached
// per requester role; an unknown role is never cached.
func (s *userService) AvailableRoles(ctx context.Context, requester model.RoleSlug) ([]model.Role, error) {
	load := func() ([]model.Role, error) {
		var roles []model.Role
		if _, err := fetch(ctx, s.api, "/users/roles/available", nil, &roles, "Failed to fetch roles"); err != nil {
			return nil, err
		}
		return roles, nil
	}
	if !requester.Known() {
		return load()
	}
	return cachedCatalog(ctx, s.cache, rolesCacheKeyPrefix+string(requester), load)
}

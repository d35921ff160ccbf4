package model

// User is the profile returned by the backend for an authenticated account.
// The portal treats it as read-only data.
type User struct {
	ID              uint           `json:"id" yaml:"id"`
	Email           string         `json:"email" yaml:"email"`
	Username        string         `json:"username,omitempty" yaml:"username,omitempty"`
	Name            string         `json:"name" yaml:"name"`
	NIK             string         `json:"nik,omitempty" yaml:"nik,omitempty"`
	PhoneNumber     string         `json:"phone_number,omitempty" yaml:"phone_number,omitempty"`
	Avatar          string         `json:"avatar,omitempty" yaml:"avatar,omitempty"`
	Role            Role           `json:"role" yaml:"role"`
	Department      *DepartmentRef `json:"department,omitempty" yaml:"department,omitempty"`
	CreatedBy       *UserRef       `json:"created_by,omitempty" yaml:"created_by,omitempty"`
	IsActive        bool           `json:"is_active" yaml:"is_active"`
	EmailVerifiedAt string         `json:"email_verified_at,omitempty" yaml:"email_verified_at,omitempty"`
	LastLoginAt     string         `json:"last_login_at,omitempty" yaml:"last_login_at,omitempty"`
	CreatedAt       string         `json:"created_at,omitempty" yaml:"created_at,omitempty"`
	UpdatedAt       string         `json:"updated_at,omitempty" yaml:"updated_at,omitempty"`
}

// RoleSlug is shorthand for u.Role.Slug, safe on a nil user.
func (u *User) RoleSlug() RoleSlug {
	if u == nil {
		return RoleUnknown
	}
	return u.Role.Slug
}

// UserRef is the short user form embedded in other resources.
type UserRef struct {
	ID    uint   `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Email string `json:"email,omitempty" yaml:"email,omitempty"`
}

// DepartmentRef is the short department form embedded in a user.
type DepartmentRef struct {
	ID   uint   `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Code string `json:"code" yaml:"code"`
}

// CreateUserInput is the payload for creating a user.
type CreateUserInput struct {
	Email        string `json:"email" validate:"required,email"`
	Username     string `json:"username" validate:"required"`
	Password     string `json:"password" validate:"required,min=8"`
	Name         string `json:"name" validate:"required"`
	NIK          string `json:"nik,omitempty"`
	PhoneNumber  string `json:"phone_number,omitempty"`
	RoleID       uint   `json:"role_id" validate:"required"`
	DepartmentID *uint  `json:"department_id,omitempty"`
	IsActive     *bool  `json:"is_active,omitempty"`
}

// UpdateUserInput is the partial payload for updating a user.
type UpdateUserInput struct {
	Email       *string `json:"email,omitempty" validate:"omitempty,email"`
	Username    *string `json:"username,omitempty"`
	Password    *string `json:"password,omitempty" validate:"omitempty,min=8"`
	Name        *string `json:"name,omitempty"`
	NIK         *string `json:"nik,omitempty"`
	PhoneNumber *string `json:"phone_number,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

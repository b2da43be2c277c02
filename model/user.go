package model

import (
	"fmt"
	"time"
)

// Role is a closed enumeration; anything else is rejected at assignment.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleSeller   Role = "seller"
)

// ParseRole validates a raw role value at the point of assignment.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleCustomer, RoleSeller:
		return Role(s), nil
	default:
		return "", fmt.Errorf("invalid role: %q", s)
	}
}

// User is the acting identity for a request. A nil *User is an anonymous
// principal.
type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	Email        string     `json:"email"`
	FirstName    string     `json:"first_name,omitempty"`
	LastName     string     `json:"last_name,omitempty"`
	Role         Role       `json:"role"`
	IsActive     bool       `json:"is_active"`
	IsStaff      bool       `json:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser"`
	PasswordHash string     `json:"-"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
	LastLogin    *time.Time `json:"last_login,omitempty"`
}

func (u *User) IsCustomer() bool {
	return u != nil && u.Role == RoleCustomer
}

func (u *User) IsSeller() bool {
	return u != nil && u.Role == RoleSeller
}

// IsAdmin reports whether the user carries staff or superuser privileges.
func (u *User) IsAdmin() bool {
	return u != nil && (u.IsStaff || u.IsSuperuser)
}

// IsAuthenticated reports whether the principal is a real, active account.
func (u *User) IsAuthenticated() bool {
	return u != nil && u.IsActive
}

func (u *User) FullName() string {
	if u.FirstName == "" && u.LastName == "" {
		return u.Username
	}
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

type UserSearchCriteria struct {
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
	Role     Role   `json:"role,omitempty"`
	IsActive *bool  `json:"is_active,omitempty"`
	Limit    int    `json:"limit,omitempty"`
	Offset   int    `json:"offset,omitempty"`
}

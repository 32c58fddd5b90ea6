package domain

import (
	"time"

	"github.com/google/uuid"
)

// Employee is a user's membership within one business.
type Employee struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description"`
	Role        *string   `json:"role"`
	Avatar      *string   `json:"avatar"`
	BusinessID  uuid.UUID `json:"business_id"`
	UserID      uuid.UUID `json:"user_id"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// EmployeeProfile is the employee part of business registration and invite
// acceptance. BusinessID and UserID are always assigned by the server.
type EmployeeProfile struct {
	Name        string  `json:"name"`
	Description *string `json:"description,omitempty"`
	Role        *string `json:"role,omitempty"`
}

func (p EmployeeProfile) validate(v *ValidationErrors, prefix string) {
	v.requireText(prefixed(prefix, "name"), p.Name, 255)
	v.optionalText(prefixed(prefix, "description"), p.Description, 255)
	v.optionalText(prefixed(prefix, "role"), p.Role, 100)
}

// NewEmployee builds the employee row for the given user and business.
func (p EmployeeProfile) NewEmployee(userID, businessID uuid.UUID) *Employee {
	return &Employee{
		Name:        p.Name,
		Description: p.Description,
		Role:        p.Role,
		BusinessID:  businessID,
		UserID:      userID,
		IsActive:    true,
	}
}

// EmployeeUpdate is a partial update of an employee's own profile. The
// business and user of an employee never change.
type EmployeeUpdate struct {
	Name        *string `json:"name,omitempty"`
	Description *string `json:"description,omitempty"`
	Role        *string `json:"role,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

func (u EmployeeUpdate) Validate() error {
	var v ValidationErrors
	if u.Name != nil {
		v.requireText("name", *u.Name, 255)
	}
	v.optionalText("description", u.Description, 255)
	v.optionalText("role", u.Role, 100)
	return v.Err()
}

// Apply copies the set fields of u onto e.
func (e *Employee) Apply(u EmployeeUpdate) {
	if u.Name != nil {
		e.Name = *u.Name
	}
	if u.Description != nil {
		e.Description = u.Description
	}
	if u.Role != nil {
		e.Role = u.Role
	}
	if u.IsActive != nil {
		e.IsActive = *u.IsActive
	}
}

type Employees struct {
	Data  []Employee `json:"data"`
	Count int        `json:"count"`
}

// Page bounds list queries.
type Page struct {
	Skip  int
	Limit int
}

const MaxPageLimit = 100

// Normalize clamps the page to sane bounds.
func (p Page) Normalize() Page {
	if p.Skip < 0 {
		p.Skip = 0
	}
	if p.Limit <= 0 || p.Limit > MaxPageLimit {
		p.Limit = MaxPageLimit
	}
	return p
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

// BusinessProfile holds the optional descriptive fields shared by the
// business read, create and update shapes.
type BusinessProfile struct {
	OrganizationalType *string `json:"organizational_type,omitempty"`
	NationalID         *string `json:"national_id,omitempty"`
	NationalIDType     *string `json:"national_id_type,omitempty"`
	Country            *string `json:"country,omitempty"`
	City               *string `json:"city,omitempty"`
	Address            *string `json:"address,omitempty"`
	Phone              *string `json:"phone,omitempty"`
	Email              *string `json:"email,omitempty"`
	Website            *string `json:"website,omitempty"`
	BankAccount        *string `json:"bank_account,omitempty"`
	Logo               *string `json:"logo,omitempty"`
}

func (p BusinessProfile) validate(v *ValidationErrors) {
	v.optionalText("organizational_type", p.OrganizationalType, 255)
	v.optionalText("national_id", p.NationalID, 255)
	v.optionalText("national_id_type", p.NationalIDType, 255)
	v.optionalText("country", p.Country, 255)
	v.optionalText("city", p.City, 255)
	v.optionalText("address", p.Address, 255)
	v.optionalText("phone", p.Phone, 255)
	v.optionalText("website", p.Website, 255)
	v.optionalText("bank_account", p.BankAccount, 255)
	v.optionalText("logo", p.Logo, 255)
	if p.Email != nil && *p.Email != "" && !ValidEmail(*p.Email) {
		v.add("email", "value is not a valid email address")
	}
}

// merge overwrites the fields that are set in other.
func (p *BusinessProfile) merge(other BusinessProfile) {
	set := func(dst **string, src *string) {
		if src != nil {
			*dst = src
		}
	}
	set(&p.OrganizationalType, other.OrganizationalType)
	set(&p.NationalID, other.NationalID)
	set(&p.NationalIDType, other.NationalIDType)
	set(&p.Country, other.Country)
	set(&p.City, other.City)
	set(&p.Address, other.Address)
	set(&p.Phone, other.Phone)
	set(&p.Email, other.Email)
	set(&p.Website, other.Website)
	set(&p.BankAccount, other.BankAccount)
	set(&p.Logo, other.Logo)
}

// Business is a tenant. Every employee belongs to exactly one business.
type Business struct {
	ID   uuid.UUID `json:"id"`
	Name string    `json:"name"`
	BusinessProfile
	IsActive           bool       `json:"is_active"`
	BusinessIndustryID *uuid.UUID `json:"business_industry_id"`
	AccountCreatorID   uuid.UUID  `json:"-"`
	CreatedAt          time.Time  `json:"created_at"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// BusinessCreate registers a business together with the caller's first
// employee record.
type BusinessCreate struct {
	Name string `json:"name"`
	BusinessProfile
	IsActive           *bool           `json:"is_active,omitempty"`
	BusinessIndustryID *uuid.UUID      `json:"business_industry_id"`
	EmployeeIn         EmployeeProfile `json:"employee_in"`
}

func (c BusinessCreate) Validate() error {
	var v ValidationErrors
	v.requireText("name", c.Name, 255)
	c.BusinessProfile.validate(&v)
	c.EmployeeIn.validate(&v, "employee_in")
	return v.Err()
}

// NewBusiness builds the business row described by c.
func (c BusinessCreate) NewBusiness(creatorID uuid.UUID) *Business {
	active := true
	if c.IsActive != nil {
		active = *c.IsActive
	}
	return &Business{
		Name:               c.Name,
		BusinessProfile:    c.BusinessProfile,
		IsActive:           active,
		BusinessIndustryID: c.BusinessIndustryID,
		AccountCreatorID:   creatorID,
	}
}

// BusinessUpdate is a partial update; nil fields are left untouched.
type BusinessUpdate struct {
	Name *string `json:"name,omitempty"`
	BusinessProfile
	IsActive *bool `json:"is_active,omitempty"`
}

func (u BusinessUpdate) Validate() error {
	var v ValidationErrors
	if u.Name != nil {
		v.requireText("name", *u.Name, 255)
	}
	u.BusinessProfile.validate(&v)
	return v.Err()
}

// Apply copies the set fields of u onto b.
func (b *Business) Apply(u BusinessUpdate) {
	if u.Name != nil {
		b.Name = *u.Name
	}
	b.BusinessProfile.merge(u.BusinessProfile)
	if u.IsActive != nil {
		b.IsActive = *u.IsActive
	}
}

package domain

import (
	"context"

	"github.com/google/uuid"
)

type UserStore interface {
	Create(ctx context.Context, u *User) error
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
}

type BusinessStore interface {
	// CreateWithEmployee inserts the business and its first employee in one
	// transaction and fills in the generated ids on both.
	CreateWithEmployee(ctx context.Context, b *Business, e *Employee) error
	GetByID(ctx context.Context, id uuid.UUID) (*Business, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Business, error)
	Update(ctx context.Context, b *Business) error
}

type EmployeeStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Employee, error)
	GetByUserID(ctx context.Context, userID uuid.UUID) (*Employee, error)
	GetByUserAndBusiness(ctx context.Context, userID, businessID uuid.UUID) (*Employee, error)
	ListByBusiness(ctx context.Context, businessID uuid.UUID, page Page) ([]Employee, int, error)
	UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) (*Employee, error)
	Update(ctx context.Context, e *Employee) error
}

type IndustryStore interface {
	Create(ctx context.Context, i *BusinessIndustry) error
	GetByID(ctx context.Context, id uuid.UUID) (*BusinessIndustry, error)
	List(ctx context.Context, page Page) ([]BusinessIndustry, int, error)
}

type InviteStore interface {
	Create(ctx context.Context, inv *Invite) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*Invite, error)
	// Accept marks the invite accepted and inserts the user and employee in
	// one transaction. It fails if the invite was already used or has expired.
	Accept(ctx context.Context, inviteID uuid.UUID, u *User, e *Employee) error
}

// InviteMailer delivers invite tokens to their recipients.
type InviteMailer interface {
	SendInvite(ctx context.Context, inv *Invite, token string) error
}

package domain

import (
	"time"

	"github.com/google/uuid"
)

type InviteStatus string

const (
	InvitePending  InviteStatus = "pending"
	InviteAccepted InviteStatus = "accepted"
	InviteExpired  InviteStatus = "expired"
)

// Invite is a single-use, email-targeted registration grant for one business.
// Only the hash of the token is stored.
type Invite struct {
	ID         uuid.UUID  `json:"id"`
	Email      string     `json:"email"`
	BusinessID uuid.UUID  `json:"business_id"`
	InvitedBy  uuid.UUID  `json:"invited_by"`
	TokenHash  string     `json:"-"`
	ExpiresAt  time.Time  `json:"expires_at"`
	AcceptedAt *time.Time `json:"accepted_at"`
	CreatedAt  time.Time  `json:"created_at"`
}

func (i *Invite) Status(now time.Time) InviteStatus {
	switch {
	case i.AcceptedAt != nil:
		return InviteAccepted
	case !now.Before(i.ExpiresAt):
		return InviteExpired
	default:
		return InvitePending
	}
}

// InviteRequest asks the server to invite email into business BusinessID.
type InviteRequest struct {
	Email      string    `json:"email"`
	BusinessID uuid.UUID `json:"business_id"`
}

func (r InviteRequest) Validate() error {
	var v ValidationErrors
	v.email("email", r.Email)
	if r.BusinessID == uuid.Nil {
		v.add("business_id", "field required")
	}
	return v.Err()
}

// InviteIssued is returned once an invite has been created and dispatched.
type InviteIssued struct {
	Message    string    `json:"message"`
	Email      string    `json:"email"`
	BusinessID uuid.UUID `json:"business_id"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// InviteAcceptance registers a new user and employee from an invite token.
type InviteAcceptance struct {
	Token       string          `json:"token"`
	NewUser     UserCreate      `json:"new_user"`
	NewEmployee EmployeeProfile `json:"new_employee"`
}

func (a InviteAcceptance) Validate() error {
	var v ValidationErrors
	if a.Token == "" {
		v.add("token", "field required")
	}
	a.NewUser.validate(&v, "new_user")
	a.NewEmployee.validate(&v, "new_employee")
	return v.Err()
}

// Message is the generic acknowledgement body.
type Message struct {
	Message string `json:"message"`
}

package onboarding

import (
	"github.com/google/uuid"
	"github.com/trackflow-app/trackflow/internal/domain"
)

// BusinessRegistrationRequest is the input of business registration: the
// business fields plus the registering user's employee profile under
// "employee_in".
type BusinessRegistrationRequest = domain.BusinessCreate

// InviteAcceptanceRequest is the input of registration by invitation.
type InviteAcceptanceRequest = domain.InviteAcceptance

// InviteRequest targets an email address. A zero BusinessID means the
// current session's business.
type InviteRequest struct {
	Email      string
	BusinessID uuid.UUID
}

// SettingsUpdate is a partial update of the current business.
type SettingsUpdate = domain.BusinessUpdate

// ProfileUpdate is a partial update of the current employee's profile.
type ProfileUpdate = domain.EmployeeUpdate

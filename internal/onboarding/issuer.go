package onboarding

import (
	"context"

	"github.com/google/uuid"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/session"
	"go.uber.org/zap"
)

// Issuer sends email invitations into a business. Repeated invites to the
// same address are not deduplicated here; the server decides.
type Issuer struct {
	api     API
	session *session.Store
	logger  *zap.Logger
}

func NewIssuer(api API, store *session.Store, logger *zap.Logger) *Issuer {
	return &Issuer{api: api, session: store, logger: logger}
}

// Invite sends an invitation to req.Email. Without an explicit business id
// the session's business is used; with neither it fails with an Auth error
// before any request.
func (i *Issuer) Invite(ctx context.Context, req InviteRequest) (*domain.InviteIssued, error) {
	businessID := req.BusinessID
	if businessID == uuid.Nil {
		businessID = i.session.Snapshot().BusinessID
	}
	if businessID == uuid.Nil {
		return nil, classify(session.ErrNoSession)
	}

	email := domain.NormalizeEmail(req.Email)
	if err := (domain.InviteRequest{Email: email, BusinessID: businessID}).Validate(); err != nil {
		return nil, classify(err)
	}

	issued, err := i.api.InviteEmployee(ctx, email, businessID)
	if err != nil {
		return nil, classify(err)
	}

	i.logger.Info("invitation sent",
		zap.String("business_id", businessID.String()),
		zap.Time("expires_at", issued.ExpiresAt))
	return issued, nil
}

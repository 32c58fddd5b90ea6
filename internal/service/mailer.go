package service

import (
	"context"
	"net/url"

	"github.com/trackflow-app/trackflow/internal/domain"
	"go.uber.org/zap"
)

// LogMailer "delivers" invites by logging the acceptance link. It stands in
// for a real mail transport in development.
type LogMailer struct {
	acceptURL string
	logger    *zap.Logger
}

func NewLogMailer(acceptURL string, logger *zap.Logger) *LogMailer {
	return &LogMailer{acceptURL: acceptURL, logger: logger}
}

func (m *LogMailer) SendInvite(ctx context.Context, inv *domain.Invite, token string) error {
	link := m.acceptURL + "?token=" + url.QueryEscape(token)
	m.logger.Info("invite email",
		zap.String("to", inv.Email),
		zap.String("business_id", inv.BusinessID.String()),
		zap.Time("expires_at", inv.ExpiresAt),
		zap.String("link", link))
	return nil
}

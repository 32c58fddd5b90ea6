package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/trackflow-app/trackflow/internal/auth"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/store"
	"go.uber.org/zap"
)

type InviteService struct {
	invites   domain.InviteStore
	employees domain.EmployeeStore
	users     domain.UserStore
	mailer    domain.InviteMailer
	ttl       time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewInviteService(is domain.InviteStore, es domain.EmployeeStore, us domain.UserStore, mailer domain.InviteMailer, ttl time.Duration, logger *zap.Logger) *InviteService {
	return &InviteService{
		invites:   is,
		employees: es,
		users:     us,
		mailer:    mailer,
		ttl:       ttl,
		now:       time.Now,
		logger:    logger,
	}
}

// Issue creates an invite for req.Email into req.BusinessID. The caller must
// be an employee of that business. Repeated invites to the same address are
// allowed; each gets its own token.
func (s *InviteService) Issue(ctx context.Context, user *domain.User, req domain.InviteRequest) (*domain.InviteIssued, error) {
	req.Email = domain.NormalizeEmail(req.Email)
	if err := req.Validate(); err != nil {
		return nil, err
	}

	inviter, err := s.employees.GetByUserAndBusiness(ctx, user.ID, req.BusinessID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrForbidden
		}
		return nil, err
	}

	token, err := auth.NewInviteToken()
	if err != nil {
		return nil, err
	}

	inv := &domain.Invite{
		Email:      req.Email,
		BusinessID: req.BusinessID,
		InvitedBy:  inviter.ID,
		TokenHash:  auth.HashToken(token),
		ExpiresAt:  s.now().Add(s.ttl).UTC(),
	}
	if err := s.invites.Create(ctx, inv); err != nil {
		return nil, fmt.Errorf("create invite: %w", err)
	}

	if err := s.mailer.SendInvite(ctx, inv, token); err != nil {
		return nil, fmt.Errorf("send invite: %w", err)
	}

	s.logger.Info("invite issued",
		zap.String("invite_id", inv.ID.String()),
		zap.String("business_id", inv.BusinessID.String()),
		zap.String("invited_by", inviter.ID.String()))

	return &domain.InviteIssued{
		Message:    "Invitation sent",
		Email:      inv.Email,
		BusinessID: inv.BusinessID,
		ExpiresAt:  inv.ExpiresAt,
	}, nil
}

// Accept redeems an invite token, creating the user and their employee record
// under the invite's business.
func (s *InviteService) Accept(ctx context.Context, in domain.InviteAcceptance) (*domain.Employee, error) {
	in.NewUser.Email = domain.NormalizeEmail(in.NewUser.Email)
	if err := in.Validate(); err != nil {
		return nil, err
	}

	inv, err := s.invites.GetByTokenHash(ctx, auth.HashToken(in.Token))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrInviteInvalid
		}
		return nil, err
	}

	switch inv.Status(s.now()) {
	case domain.InviteAccepted:
		return nil, ErrInviteInvalid
	case domain.InviteExpired:
		return nil, ErrInviteExpired
	}

	if inv.Email != in.NewUser.Email {
		return nil, domain.ValidationErrors{{Field: "new_user.email", Message: "email does not match the invitation"}}
	}

	if _, err := s.users.GetByEmail(ctx, in.NewUser.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}

	hash, err := auth.HashPassword(in.NewUser.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &domain.User{
		Email:        in.NewUser.Email,
		FullName:     in.NewUser.FullName,
		PasswordHash: hash,
		IsActive:     true,
	}
	e := in.NewEmployee.NewEmployee(uuid.Nil, inv.BusinessID)

	if err := s.invites.Accept(ctx, inv.ID, u, e); err != nil {
		switch {
		case errors.Is(err, store.ErrGone):
			return nil, ErrInviteInvalid
		case errors.Is(err, store.ErrConflict):
			return nil, ErrEmailTaken
		}
		return nil, err
	}

	s.logger.Info("invite accepted",
		zap.String("invite_id", inv.ID.String()),
		zap.String("business_id", e.BusinessID.String()),
		zap.String("employee_id", e.ID.String()))
	return e, nil
}

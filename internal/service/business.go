package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/store"
	"go.uber.org/zap"
)

type BusinessService struct {
	businesses domain.BusinessStore
	employees  domain.EmployeeStore
	industries domain.IndustryStore
	logger     *zap.Logger
}

func NewBusinessService(bs domain.BusinessStore, es domain.EmployeeStore, is domain.IndustryStore, logger *zap.Logger) *BusinessService {
	return &BusinessService{
		businesses: bs,
		employees:  es,
		industries: is,
		logger:     logger,
	}
}

// Register creates a business and the caller's employee record in one step.
// A user may belong to at most one business.
func (s *BusinessService) Register(ctx context.Context, user *domain.User, in domain.BusinessCreate) (*domain.Business, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := s.businesses.GetByUserID(ctx, user.ID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, ErrAlreadyRegistered
	}

	if in.BusinessIndustryID != nil {
		if _, err := s.industries.GetByID(ctx, *in.BusinessIndustryID); err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return nil, domain.ValidationErrors{{Field: "business_industry_id", Message: ErrIndustryNotFound.Error()}}
			}
			return nil, err
		}
	}

	b := in.NewBusiness(user.ID)
	e := in.EmployeeIn.NewEmployee(user.ID, uuid.Nil)
	if err := s.businesses.CreateWithEmployee(ctx, b, e); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, ErrAlreadyRegistered
		}
		return nil, err
	}

	s.logger.Info("business registered",
		zap.String("business_id", b.ID.String()),
		zap.String("employee_id", e.ID.String()),
		zap.String("user_id", user.ID.String()))
	return b, nil
}

// Mine returns the business the user is employed by.
func (s *BusinessService) Mine(ctx context.Context, user *domain.User) (*domain.Business, error) {
	b, err := s.businesses.GetByUserID(ctx, user.ID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return b, nil
}

func (s *BusinessService) Update(ctx context.Context, user *domain.User, id uuid.UUID, in domain.BusinessUpdate) (*domain.Business, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	b, err := s.businesses.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}

	if err := requireMembership(ctx, s.employees, user, id); err != nil {
		return nil, err
	}

	b.Apply(in)
	if err := s.businesses.Update(ctx, b); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, ErrBusinessNotFound
		}
		return nil, err
	}
	return b, nil
}

// requireMembership fails with ErrForbidden unless user is an employee of the
// business or a superuser.
func requireMembership(ctx context.Context, employees domain.EmployeeStore, user *domain.User, businessID uuid.UUID) error {
	if user.IsSuperuser {
		return nil
	}
	if _, err := employees.GetByUserAndBusiness(ctx, user.ID, businessID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return ErrForbidden
		}
		return err
	}
	return nil
}

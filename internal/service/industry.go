package service

import (
	"context"
	"errors"

	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/store"
)

type IndustryService struct {
	store domain.IndustryStore
}

func NewIndustryService(s domain.IndustryStore) *IndustryService {
	return &IndustryService{store: s}
}

func (s *IndustryService) List(ctx context.Context, page domain.Page) (*domain.BusinessIndustries, error) {
	industries, count, err := s.store.List(ctx, page.Normalize())
	if err != nil {
		return nil, err
	}
	return &domain.BusinessIndustries{Data: industries, Count: count}, nil
}

func (s *IndustryService) Create(ctx context.Context, user *domain.User, in domain.BusinessIndustryCreate) (*domain.BusinessIndustry, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	i := &domain.BusinessIndustry{
		Title:       in.Title,
		Description: in.Description,
		MarketValue: in.MarketValue,
		Image:       in.Image,
		CreatorID:   user.ID,
	}
	if err := s.store.Create(ctx, i); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, domain.ValidationErrors{{Field: "title", Message: "business industry already exists"}}
		}
		return nil, err
	}
	return i, nil
}

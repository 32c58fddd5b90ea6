package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trackflow-app/trackflow/internal/domain"
)

type IndustryStore struct {
	db *pgxpool.Pool
}

func NewIndustryStore(db *pgxpool.Pool) *IndustryStore {
	return &IndustryStore{db: db}
}

const industryColumns = `id, title, description, market_value, image, creator_id, created_at, updated_at`

func (s *IndustryStore) Create(ctx context.Context, i *domain.BusinessIndustry) error {
	err := s.db.QueryRow(ctx,
		`INSERT INTO business_industries (title, description, market_value, image, creator_id)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, created_at, updated_at`,
		i.Title, i.Description, i.MarketValue, i.Image, i.CreatorID,
	).Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *IndustryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.BusinessIndustry, error) {
	i := &domain.BusinessIndustry{}
	err := s.db.QueryRow(ctx,
		`SELECT `+industryColumns+` FROM business_industries WHERE id = $1`, id,
	).Scan(&i.ID, &i.Title, &i.Description, &i.MarketValue, &i.Image, &i.CreatorID, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return i, nil
}

func (s *IndustryStore) List(ctx context.Context, page domain.Page) ([]domain.BusinessIndustry, int, error) {
	var count int
	if err := s.db.QueryRow(ctx, `SELECT COUNT(*) FROM business_industries`).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+industryColumns+` FROM business_industries
		 ORDER BY title
		 OFFSET $1 LIMIT $2`,
		page.Skip, page.Limit,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	industries := []domain.BusinessIndustry{}
	for rows.Next() {
		var i domain.BusinessIndustry
		if err := rows.Scan(&i.ID, &i.Title, &i.Description, &i.MarketValue, &i.Image, &i.CreatorID, &i.CreatedAt, &i.UpdatedAt); err != nil {
			return nil, 0, err
		}
		industries = append(industries, i)
	}
	return industries, count, rows.Err()
}

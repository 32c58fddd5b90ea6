package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trackflow-app/trackflow/internal/domain"
)

type BusinessStore struct {
	db *pgxpool.Pool
}

func NewBusinessStore(db *pgxpool.Pool) *BusinessStore {
	return &BusinessStore{db: db}
}

const businessColumns = `b.id, b.name, b.organizational_type, b.national_id, b.national_id_type,
	b.country, b.city, b.address, b.phone, b.email, b.website, b.bank_account, b.logo,
	b.is_active, b.business_industry_id, b.account_creator_id, b.created_at, b.updated_at`

func (s *BusinessStore) CreateWithEmployee(ctx context.Context, b *domain.Business, e *domain.Employee) error {
	err := pgx.BeginFunc(ctx, s.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO businesses (name, organizational_type, national_id, national_id_type,
			   country, city, address, phone, email, website, bank_account, logo,
			   is_active, business_industry_id, account_creator_id)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			 RETURNING id, created_at, updated_at`,
			b.Name, b.OrganizationalType, b.NationalID, b.NationalIDType,
			b.Country, b.City, b.Address, b.Phone, b.Email, b.Website, b.BankAccount, b.Logo,
			b.IsActive, b.BusinessIndustryID, b.AccountCreatorID,
		).Scan(&b.ID, &b.CreatedAt, &b.UpdatedAt)
		if err != nil {
			return err
		}

		e.BusinessID = b.ID
		return insertEmployee(ctx, tx, e)
	})
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

func (s *BusinessStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Business, error) {
	return scanBusiness(s.db.QueryRow(ctx,
		`SELECT `+businessColumns+` FROM businesses b WHERE b.id = $1`, id))
}

// GetByUserID returns the business the user is employed by.
func (s *BusinessStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Business, error) {
	return scanBusiness(s.db.QueryRow(ctx,
		`SELECT `+businessColumns+`
		 FROM businesses b JOIN employees e ON e.business_id = b.id
		 WHERE e.user_id = $1
		 ORDER BY e.created_at
		 LIMIT 1`, userID))
}

func (s *BusinessStore) Update(ctx context.Context, b *domain.Business) error {
	err := s.db.QueryRow(ctx,
		`UPDATE businesses SET name = $2, organizational_type = $3, national_id = $4,
		   national_id_type = $5, country = $6, city = $7, address = $8, phone = $9,
		   email = $10, website = $11, bank_account = $12, logo = $13, is_active = $14,
		   updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		b.ID, b.Name, b.OrganizationalType, b.NationalID, b.NationalIDType, b.Country, b.City,
		b.Address, b.Phone, b.Email, b.Website, b.BankAccount, b.Logo, b.IsActive,
	).Scan(&b.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrNotFound
		}
		return err
	}
	return nil
}

func scanBusiness(row pgx.Row) (*domain.Business, error) {
	b := &domain.Business{}
	err := row.Scan(
		&b.ID, &b.Name, &b.OrganizationalType, &b.NationalID, &b.NationalIDType,
		&b.Country, &b.City, &b.Address, &b.Phone, &b.Email, &b.Website, &b.BankAccount, &b.Logo,
		&b.IsActive, &b.BusinessIndustryID, &b.AccountCreatorID, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return b, nil
}

package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trackflow-app/trackflow/internal/domain"
)

type EmployeeStore struct {
	db *pgxpool.Pool
}

func NewEmployeeStore(db *pgxpool.Pool) *EmployeeStore {
	return &EmployeeStore{db: db}
}

const employeeColumns = `id, name, description, role, avatar, business_id, user_id, is_active, created_at, updated_at`

func insertEmployee(ctx context.Context, q querier, e *domain.Employee) error {
	return q.QueryRow(ctx,
		`INSERT INTO employees (name, description, role, business_id, user_id, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING id, created_at, updated_at`,
		e.Name, e.Description, e.Role, e.BusinessID, e.UserID, e.IsActive,
	).Scan(&e.ID, &e.CreatedAt, &e.UpdatedAt)
}

func (s *EmployeeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	return scanEmployee(s.db.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE id = $1`, id))
}

// GetByUserID returns the user's employee record. A user has at most one.
func (s *EmployeeStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Employee, error) {
	return scanEmployee(s.db.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE user_id = $1`,
		userID))
}

func (s *EmployeeStore) GetByUserAndBusiness(ctx context.Context, userID, businessID uuid.UUID) (*domain.Employee, error) {
	return scanEmployee(s.db.QueryRow(ctx,
		`SELECT `+employeeColumns+` FROM employees WHERE user_id = $1 AND business_id = $2`,
		userID, businessID))
}

func (s *EmployeeStore) ListByBusiness(ctx context.Context, businessID uuid.UUID, page domain.Page) ([]domain.Employee, int, error) {
	var count int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM employees WHERE business_id = $1`, businessID,
	).Scan(&count); err != nil {
		return nil, 0, err
	}

	rows, err := s.db.Query(ctx,
		`SELECT `+employeeColumns+` FROM employees
		 WHERE business_id = $1
		 ORDER BY created_at
		 OFFSET $2 LIMIT $3`,
		businessID, page.Skip, page.Limit,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	employees := []domain.Employee{}
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, 0, err
		}
		employees = append(employees, *e)
	}
	return employees, count, rows.Err()
}

func (s *EmployeeStore) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) (*domain.Employee, error) {
	return scanEmployee(s.db.QueryRow(ctx,
		`UPDATE employees SET avatar = $2, updated_at = NOW()
		 WHERE id = $1
		 RETURNING `+employeeColumns,
		id, avatar))
}

// Update writes the profile fields of e. business_id and user_id are never
// updated.
func (s *EmployeeStore) Update(ctx context.Context, e *domain.Employee) error {
	err := s.db.QueryRow(ctx,
		`UPDATE employees SET name = $2, description = $3, role = $4, is_active = $5, updated_at = NOW()
		 WHERE id = $1
		 RETURNING updated_at`,
		e.ID, e.Name, e.Description, e.Role, e.IsActive,
	).Scan(&e.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func scanEmployee(row pgx.Row) (*domain.Employee, error) {
	e := &domain.Employee{}
	err := row.Scan(
		&e.ID, &e.Name, &e.Description, &e.Role, &e.Avatar, &e.BusinessID, &e.UserID,
		&e.IsActive, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return e, nil
}

package service

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/store"
)

// memStores is an in-memory implementation of the user, business, employee
// and industry stores for service tests.
type memStores struct {
	users      map[uuid.UUID]*domain.User
	businesses map[uuid.UUID]*domain.Business
	employees  map[uuid.UUID]*domain.Employee
	industries map[uuid.UUID]*domain.BusinessIndustry
}

func newMemStores() *memStores {
	return &memStores{
		users:      make(map[uuid.UUID]*domain.User),
		businesses: make(map[uuid.UUID]*domain.Business),
		employees:  make(map[uuid.UUID]*domain.Employee),
		industries: make(map[uuid.UUID]*domain.BusinessIndustry),
	}
}

type memUserStore struct{ *memStores }
type memBusinessStore struct{ *memStores }
type memEmployeeStore struct{ *memStores }
type memIndustryStore struct{ *memStores }

func (m memUserStore) Create(ctx context.Context, u *domain.User) error {
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return store.ErrConflict
		}
	}
	u.ID = uuid.New()
	u.CreatedAt = time.Now()
	m.users[u.ID] = u
	return nil
}

func (m memUserStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (m memUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

// CreateWithEmployee enforces one employee per user, like the employees
// table does.
func (m memBusinessStore) CreateWithEmployee(ctx context.Context, b *domain.Business, e *domain.Employee) error {
	for _, existing := range m.employees {
		if existing.UserID == e.UserID {
			return store.ErrConflict
		}
	}
	b.ID = uuid.New()
	m.businesses[b.ID] = b
	e.ID = uuid.New()
	e.BusinessID = b.ID
	e.CreatedAt = time.Now()
	m.employees[e.ID] = e
	return nil
}

func (m memBusinessStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Business, error) {
	b, ok := m.businesses[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return b, nil
}

func (m memBusinessStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Business, error) {
	for _, e := range m.employees {
		if e.UserID == userID {
			return m.GetByID(ctx, e.BusinessID)
		}
	}
	return nil, store.ErrNotFound
}

func (m memBusinessStore) Update(ctx context.Context, b *domain.Business) error {
	if _, ok := m.businesses[b.ID]; !ok {
		return store.ErrNotFound
	}
	m.businesses[b.ID] = b
	return nil
}

func (m memEmployeeStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	copied := *e
	return &copied, nil
}

func (m memEmployeeStore) Update(ctx context.Context, e *domain.Employee) error {
	if _, ok := m.employees[e.ID]; !ok {
		return store.ErrNotFound
	}
	e.UpdatedAt = time.Now()
	updated := *e
	m.employees[e.ID] = &updated
	return nil
}

func (m memEmployeeStore) GetByUserID(ctx context.Context, userID uuid.UUID) (*domain.Employee, error) {
	for _, e := range m.employees {
		if e.UserID == userID {
			return e, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m memEmployeeStore) GetByUserAndBusiness(ctx context.Context, userID, businessID uuid.UUID) (*domain.Employee, error) {
	for _, e := range m.employees {
		if e.UserID == userID && e.BusinessID == businessID {
			return e, nil
		}
	}
	return nil, store.ErrNotFound
}

func (m memEmployeeStore) ListByBusiness(ctx context.Context, businessID uuid.UUID, page domain.Page) ([]domain.Employee, int, error) {
	var all []domain.Employee
	for _, e := range m.employees {
		if e.BusinessID == businessID {
			all = append(all, *e)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	count := len(all)
	if page.Skip >= len(all) {
		return []domain.Employee{}, count, nil
	}
	all = all[page.Skip:]
	if len(all) > page.Limit {
		all = all[:page.Limit]
	}
	return all, count, nil
}

func (m memEmployeeStore) UpdateAvatar(ctx context.Context, id uuid.UUID, avatar string) (*domain.Employee, error) {
	e, ok := m.employees[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	updated := *e
	updated.Avatar = &avatar
	m.employees[id] = &updated
	return &updated, nil
}

func (m memIndustryStore) Create(ctx context.Context, i *domain.BusinessIndustry) error {
	for _, existing := range m.industries {
		if existing.Title == i.Title {
			return store.ErrConflict
		}
	}
	i.ID = uuid.New()
	m.industries[i.ID] = i
	return nil
}

func (m memIndustryStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.BusinessIndustry, error) {
	i, ok := m.industries[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return i, nil
}

func (m memIndustryStore) List(ctx context.Context, page domain.Page) ([]domain.BusinessIndustry, int, error) {
	out := []domain.BusinessIndustry{}
	for _, i := range m.industries {
		out = append(out, *i)
	}
	return out, len(out), nil
}

// addEmployee registers userID as an employee of businessID.
func (m *memStores) addEmployee(userID, businessID uuid.UUID) *domain.Employee {
	e := &domain.Employee{ID: uuid.New(), Name: "Staff", UserID: userID, BusinessID: businessID, IsActive: true, CreatedAt: time.Now()}
	m.employees[e.ID] = e
	return e
}

package onboarding

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/trackflow-app/trackflow/internal/domain"
)

// MockAPI mocks the API interface.
type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) Signup(ctx context.Context, in domain.UserCreate) (*domain.User, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockAPI) Login(ctx context.Context, email, password string) (*domain.AccessToken, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.AccessToken), args.Error(1)
}

func (m *MockAPI) CreateBusiness(ctx context.Context, in domain.BusinessCreate) (*domain.Business, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *MockAPI) ReadMyBusiness(ctx context.Context) (*domain.Business, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *MockAPI) UpdateBusiness(ctx context.Context, id uuid.UUID, in domain.BusinessUpdate) (*domain.Business, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Business), args.Error(1)
}

func (m *MockAPI) ReadEmployeeMe(ctx context.Context) (*domain.Employee, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockAPI) InviteEmployee(ctx context.Context, email string, businessID uuid.UUID) (*domain.InviteIssued, error) {
	args := m.Called(ctx, email, businessID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.InviteIssued), args.Error(1)
}

func (m *MockAPI) RegisterByInvitation(ctx context.Context, in domain.InviteAcceptance) (*domain.Employee, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockAPI) UpdateAvatar(ctx context.Context, filename string, image io.Reader) (*domain.Employee, error) {
	args := m.Called(ctx, filename, image)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockAPI) UpdateEmployee(ctx context.Context, id uuid.UUID, in domain.EmployeeUpdate) (*domain.Employee, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employee), args.Error(1)
}

func (m *MockAPI) ListBusinessEmployees(ctx context.Context, businessID uuid.UUID, page domain.Page) (*domain.Employees, error) {
	args := m.Called(ctx, businessID, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Employees), args.Error(1)
}

func (m *MockAPI) ListBusinessIndustries(ctx context.Context, page domain.Page) (*domain.BusinessIndustries, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessIndustries), args.Error(1)
}

func (m *MockAPI) CreateBusinessIndustry(ctx context.Context, in domain.BusinessIndustryCreate) (*domain.BusinessIndustry, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BusinessIndustry), args.Error(1)
}

package onboarding

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/trackflow-app/trackflow/internal/client"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/session"
	"go.uber.org/zap"
)

type fixture struct {
	api     *MockAPI
	backend *session.MemoryBackend
	store   *session.Store
	orch    *Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	backend := session.NewMemoryBackend()
	store, err := session.Open(backend, zap.NewNop())
	require.NoError(t, err)
	api := new(MockAPI)
	return &fixture{
		api:     api,
		backend: backend,
		store:   store,
		orch:    NewOrchestrator(api, store, zap.NewNop()),
	}
}

func signedIn(t *testing.T, f *fixture) {
	t.Helper()
	require.NoError(t, f.store.SetAccessToken("tok"))
}

var retailIndustryID = uuid.MustParse("6f1c2a0e-4b7d-4c1e-9a55-3e2f1b0c9d11")

func acmeRequest() BusinessRegistrationRequest {
	industry := retailIndustryID
	return BusinessRegistrationRequest{
		Name:               "Acme",
		BusinessIndustryID: &industry,
		EmployeeIn:         domain.EmployeeProfile{Name: "CEO"},
	}
}

func TestRegisterBusiness_Acme(t *testing.T) {
	f := newFixture(t)
	signedIn(t, f)
	ctx := context.Background()

	business := &domain.Business{ID: uuid.New(), Name: "Acme"}
	employee := &domain.Employee{ID: uuid.New(), Name: "CEO", BusinessID: business.ID}

	f.api.On("CreateBusiness", ctx, mock.MatchedBy(func(in domain.BusinessCreate) bool {
		return in.Name == "Acme" && in.EmployeeIn.Name == "CEO" && in.EmployeeIn.Role == nil &&
			in.BusinessIndustryID != nil && *in.BusinessIndustryID == retailIndustryID
	})).Return(business, nil).Once()
	f.api.On("ReadEmployeeMe", ctx).Return(employee, nil).Once()

	res, err := f.orch.RegisterBusiness(ctx, acmeRequest())
	require.NoError(t, err)

	assert.Equal(t, business.ID, res.Business.ID)
	assert.Equal(t, employee.ID, res.Employee.ID)
	assert.True(t, f.store.IsEmployee())
	snap := f.store.Snapshot()
	assert.Equal(t, employee.ID, snap.EmployeeID)
	assert.Equal(t, business.ID, snap.BusinessID)
	assert.Equal(t, snap, res.Session)

	// The who-am-I result is primed, so reading it makes no further request.
	me, err := f.orch.CurrentEmployee(ctx)
	require.NoError(t, err)
	assert.Equal(t, employee.ID, me.ID)
	f.api.AssertExpectations(t)
}

func TestRegisterBusiness_LocalValidation(t *testing.T) {
	f := newFixture(t)
	signedIn(t, f)

	req := acmeRequest()
	req.Name = ""
	req.EmployeeIn.Name = ""

	_, err := f.orch.RegisterBusiness(context.Background(), req)
	require.True(t, IsKind(err, KindValidation))

	var oe *Error
	require.True(t, errors.As(err, &oe))
	assert.Contains(t, oe.Fields, "name")
	assert.Contains(t, oe.Fields, "employee_in.name")
	f.api.AssertNotCalled(t, "CreateBusiness", mock.Anything, mock.Anything)
}

func TestRegisterBusiness_ServerValidationMapsField(t *testing.T) {
	f := newFixture(t)
	signedIn(t, f)
	before := f.store.Snapshot()
	saves := f.backend.Saves()

	apiErr := &client.APIError{
		Status:  http.StatusUnprocessableEntity,
		Message: "name already used",
		Fields:  map[string]string{"name": "name already used"},
	}
	f.api.On("CreateBusiness", mock.Anything, mock.Anything).Return(nil, apiErr)

	_, err := f.orch.RegisterBusiness(context.Background(), acmeRequest())

	var oe *Error
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, KindValidation, oe.Kind)
	assert.Equal(t, "name already used", oe.Fields["name"])
	assert.Equal(t, before, f.store.Snapshot())
	assert.Equal(t, saves, f.backend.Saves())
	f.api.AssertNotCalled(t, "ReadEmployeeMe", mock.Anything)
}

func TestRegisterBusiness_RequiresToken(t *testing.T) {
	f := newFixture(t)
	_, err := f.orch.RegisterBusiness(context.Background(), acmeRequest())
	assert.True(t, IsKind(err, KindAuth))
	f.api.AssertNotCalled(t, "CreateBusiness", mock.Anything, mock.Anything)
}

func TestRegisterBusiness_EmployeeFetchFails(t *testing.T) {
	f := newFixture(t)
	signedIn(t, f)

	business := &domain.Business{ID: uuid.New(), Name: "Acme"}
	f.api.On("CreateBusiness", mock.Anything, mock.Anything).Return(business, nil)
	f.api.On("ReadEmployeeMe", mock.Anything).Return(nil, &client.APIError{Status: http.StatusBadGateway, Message: "bad gateway"})

	_, err := f.orch.RegisterBusiness(context.Background(), acmeRequest())
	assert.True(t, IsKind(err, KindServer))
	assert.False(t, f.store.IsEmployee())
	assert.False(t, f.store.IsBusiness())
}

func TestRegisterBusiness_MismatchedEmployee(t *testing.T) {
	f := newFixture(t)
	signedIn(t, f)

	business := &domain.Business{ID: uuid.New(), Name: "Acme"}
	stray := &domain.Employee{ID: uuid.New(), BusinessID: uuid.New()}
	f.api.On("CreateBusiness", mock.Anything, mock.Anything).Return(business, nil)
	f.api.On("ReadEmployeeMe", mock.Anything).Return(stray, nil)

	_, err := f.orch.RegisterBusiness(context.Background(), acmeRequest())
	assert.True(t, IsKind(err, KindServer))
	assert.False(t, f.store.IsEmployee())
}

func TestRegisterBusiness_PersistFailure(t *testing.T) {
	f := newFixture(t)
	signedIn(t, f)

	business := &domain.Business{ID: uuid.New()}
	f.api.On("CreateBusiness", mock.Anything, mock.Anything).Return(business, nil)
	f.api.On("ReadEmployeeMe", mock.Anything).Return(&domain.Employee{ID: uuid.New(), BusinessID: business.ID}, nil)
	f.backend.FailSaves(errors.New("read-only file system"))

	_, err := f.orch.RegisterBusiness(context.Background(), acmeRequest())
	assert.True(t, IsKind(err, KindServer))
	assert.False(t, f.store.IsEmployee())
}

func TestRegisterBusiness_SingleInFlight(t *testing.T) {
	f := newFixture(t)
	signedIn(t, f)

	business := &domain.Business{ID: uuid.New(), Name: "Acme"}
	employee := &domain.Employee{ID: uuid.New(), BusinessID: business.ID}

	started := make(chan struct{})
	release := make(chan struct{})
	f.api.On("CreateBusiness", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) {
			close(started)
			<-release
		}).
		Return(business, nil)
	f.api.On("ReadEmployeeMe", mock.Anything).Return(employee, nil)

	var attempt Attempt[*Result]
	submit := func(ctx context.Context) (*Result, error) {
		return f.orch.RegisterBusiness(ctx, acmeRequest())
	}

	done := make(chan error, 1)
	go func() {
		_, err := attempt.Submit(context.Background(), submit)
		done <- err
	}()

	<-started
	assert.Equal(t, StateSubmitting, attempt.State())
	_, err := attempt.Submit(context.Background(), submit)
	assert.ErrorIs(t, err, ErrInFlight)

	close(release)
	require.NoError(t, <-done)

	assert.Equal(t, StateSucceeded, attempt.State())
	f.api.AssertNumberOfCalls(t, "CreateBusiness", 1)

	_, err = attempt.Submit(context.Background(), submit)
	assert.ErrorIs(t, err, ErrCompleted)
	f.api.AssertNumberOfCalls(t, "CreateBusiness", 1)
}

func TestRegisterBusiness_Abandoned(t *testing.T) {
	f := newFixture(t)
	signedIn(t, f)

	business := &domain.Business{ID: uuid.New()}
	f.api.On("CreateBusiness", mock.Anything, mock.Anything).
		Run(func(mock.Arguments) { f.orch.Abandon() }).
		Return(business, nil)
	f.api.On("ReadEmployeeMe", mock.Anything).Return(&domain.Employee{ID: uuid.New(), BusinessID: business.ID}, nil)

	_, err := f.orch.RegisterBusiness(context.Background(), acmeRequest())
	assert.True(t, IsAbandoned(err))
	assert.False(t, f.store.IsEmployee())
}

func acceptance(token string) InviteAcceptanceRequest {
	return InviteAcceptanceRequest{
		Token:       token,
		NewUser:     domain.UserCreate{Email: "New@Acme.io", Password: "s3cret-pass"},
		NewEmployee: domain.EmployeeProfile{Name: "Sales"},
	}
}

func TestAcceptInvite(t *testing.T) {
	f := newFixture(t)
	businessID := uuid.New()
	created := &domain.Employee{ID: uuid.New(), Name: "Sales", BusinessID: businessID}

	f.api.On("RegisterByInvitation", mock.Anything, mock.MatchedBy(func(in domain.InviteAcceptance) bool {
		return in.Token == "inv_ok" && in.NewUser.Email == "new@acme.io"
	})).Return(created, nil)
	f.api.On("Login", mock.Anything, "new@acme.io", "s3cret-pass").Return(&domain.AccessToken{AccessToken: "fresh", TokenType: "bearer"}, nil)
	f.api.On("ReadEmployeeMe", mock.Anything).Return(created, nil)

	res, err := f.orch.AcceptInvite(context.Background(), acceptance("inv_ok"))
	require.NoError(t, err)

	assert.Equal(t, created.ID, res.Employee.ID)
	assert.Equal(t, session.Session{BusinessID: businessID, EmployeeID: created.ID, AccessToken: "fresh"}, f.store.Snapshot())
	f.api.AssertExpectations(t)
}

func TestAcceptInvite_ExpiredTokenThenRetry(t *testing.T) {
	f := newFixture(t)
	signedIn(t, f)
	before := f.store.Snapshot()

	expired := &client.APIError{Status: http.StatusUnauthorized, Message: "invitation has expired"}
	f.api.On("RegisterByInvitation", mock.Anything, mock.MatchedBy(func(in domain.InviteAcceptance) bool {
		return in.Token == "inv_old"
	})).Return(nil, expired)

	var attempt Attempt[*Result]
	_, err := attempt.Submit(context.Background(), func(ctx context.Context) (*Result, error) {
		return f.orch.AcceptInvite(ctx, acceptance("inv_old"))
	})

	assert.True(t, IsKind(err, KindAuth))
	assert.Equal(t, before, f.store.Snapshot(), "an expired invite must not touch the session")
	assert.Equal(t, StateFailed, attempt.State())
	assert.ErrorIs(t, attempt.Err(), expired)
	f.api.AssertNotCalled(t, "Login", mock.Anything, mock.Anything, mock.Anything)

	attempt.Dismiss()
	assert.Equal(t, StateIdle, attempt.State())
	assert.Error(t, attempt.Err(), "the error is kept after dismissing")

	created := &domain.Employee{ID: uuid.New(), BusinessID: uuid.New()}
	f.api.On("RegisterByInvitation", mock.Anything, mock.MatchedBy(func(in domain.InviteAcceptance) bool {
		return in.Token == "inv_new"
	})).Return(created, nil)
	f.api.On("Login", mock.Anything, "new@acme.io", "s3cret-pass").Return(&domain.AccessToken{AccessToken: "fresh"}, nil)
	f.api.On("ReadEmployeeMe", mock.Anything).Return(created, nil)

	res, err := attempt.Submit(context.Background(), func(ctx context.Context) (*Result, error) {
		return f.orch.AcceptInvite(ctx, acceptance("inv_new"))
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, res.Employee.ID)
	assert.Equal(t, StateSucceeded, attempt.State())
	assert.NoError(t, attempt.Err())
}

func TestAcceptInvite_LoginFailsLeavesSession(t *testing.T) {
	f := newFixture(t)
	created := &domain.Employee{ID: uuid.New(), BusinessID: uuid.New()}
	f.api.On("RegisterByInvitation", mock.Anything, mock.Anything).Return(created, nil)
	f.api.On("Login", mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("dial tcp: connection refused"))

	_, err := f.orch.AcceptInvite(context.Background(), acceptance("inv_ok"))
	assert.True(t, IsKind(err, KindNetwork))
	assert.Equal(t, session.Session{}, f.store.Snapshot())
}

func TestAcceptInvite_Validation(t *testing.T) {
	f := newFixture(t)
	req := acceptance("")
	req.NewUser.Password = "short"

	_, err := f.orch.AcceptInvite(context.Background(), req)
	var oe *Error
	require.True(t, errors.As(err, &oe))
	assert.Contains(t, oe.Fields, "token")
	assert.Contains(t, oe.Fields, "new_user.password")
	f.api.AssertNotCalled(t, "RegisterByInvitation", mock.Anything, mock.Anything)
}

func TestResolve(t *testing.T) {
	employee := &domain.Employee{ID: uuid.New(), BusinessID: uuid.New()}

	t.Run("success stores the employee", func(t *testing.T) {
		f := newFixture(t)
		signedIn(t, f)
		f.api.On("ReadEmployeeMe", mock.Anything).Return(employee, nil)

		res, err := f.orch.Resolve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, employee.ID, res.Session.EmployeeID)
		assert.Equal(t, employee.BusinessID, res.Session.BusinessID)
	})

	t.Run("rejected token clears the session", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Establish("stale", employee))
		f.api.On("ReadEmployeeMe", mock.Anything).Return(nil, &client.APIError{Status: http.StatusUnauthorized})

		_, err := f.orch.Resolve(context.Background())
		assert.True(t, IsKind(err, KindAuth))
		assert.Equal(t, session.Session{}, f.store.Snapshot())
	})

	t.Run("no employee keeps the token", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Establish("tok", employee))
		f.api.On("ReadEmployeeMe", mock.Anything).Return(nil, &client.APIError{Status: http.StatusNotFound})

		res, err := f.orch.Resolve(context.Background())
		require.NoError(t, err)
		assert.Nil(t, res.Employee)
		assert.Equal(t, session.Session{AccessToken: "tok"}, f.store.Snapshot())
	})

	t.Run("network failure keeps local state", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Establish("tok", employee))
		before := f.store.Snapshot()
		f.api.On("ReadEmployeeMe", mock.Anything).Return(nil, context.DeadlineExceeded)

		_, err := f.orch.Resolve(context.Background())
		assert.True(t, IsKind(err, KindNetwork))
		assert.Equal(t, before, f.store.Snapshot())
	})

	t.Run("no token", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.SetEmployee(employee))

		_, err := f.orch.Resolve(context.Background())
		assert.True(t, IsKind(err, KindAuth))
		assert.False(t, f.store.IsEmployee())
		f.api.AssertNotCalled(t, "ReadEmployeeMe", mock.Anything)
	})
}

func TestLogin(t *testing.T) {
	t.Run("employee", func(t *testing.T) {
		f := newFixture(t)
		employee := &domain.Employee{ID: uuid.New(), BusinessID: uuid.New()}
		f.api.On("Login", mock.Anything, "jane@acme.io", "pw-123456").Return(&domain.AccessToken{AccessToken: "jwt"}, nil)
		f.api.On("ReadEmployeeMe", mock.Anything).Return(employee, nil)

		res, err := f.orch.Login(context.Background(), "Jane@Acme.io", "pw-123456")
		require.NoError(t, err)
		assert.Equal(t, session.Session{BusinessID: employee.BusinessID, EmployeeID: employee.ID, AccessToken: "jwt"}, res.Session)
	})

	t.Run("no business yet", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.SetBusiness(&domain.Business{ID: uuid.New()}))
		f.api.On("Login", mock.Anything, "jane@acme.io", "pw-123456").Return(&domain.AccessToken{AccessToken: "jwt"}, nil)
		f.api.On("ReadEmployeeMe", mock.Anything).Return(nil, &client.APIError{Status: http.StatusNotFound})

		saves := f.backend.Saves()
		res, err := f.orch.Login(context.Background(), "jane@acme.io", "pw-123456")
		require.NoError(t, err)
		assert.Equal(t, session.Session{AccessToken: "jwt"}, res.Session)
		assert.Equal(t, saves+1, f.backend.Saves())
	})

	t.Run("no business yet and the save fails", func(t *testing.T) {
		f := newFixture(t)
		employee := &domain.Employee{ID: uuid.New(), BusinessID: uuid.New()}
		require.NoError(t, f.store.Establish("old", employee))
		before := f.store.Snapshot()
		f.backend.FailSaves(errors.New("disk full"))
		f.api.On("Login", mock.Anything, "jane@acme.io", "pw-123456").Return(&domain.AccessToken{AccessToken: "jwt"}, nil)
		f.api.On("ReadEmployeeMe", mock.Anything).Return(nil, &client.APIError{Status: http.StatusNotFound})

		_, err := f.orch.Login(context.Background(), "jane@acme.io", "pw-123456")
		assert.True(t, IsKind(err, KindServer))
		assert.Equal(t, before, f.store.Snapshot())
	})

	t.Run("bad credentials", func(t *testing.T) {
		f := newFixture(t)
		f.api.On("Login", mock.Anything, mock.Anything, mock.Anything).
			Return(nil, &client.APIError{Status: http.StatusBadRequest, Message: "incorrect email or password"})

		_, err := f.orch.Login(context.Background(), "jane@acme.io", "nope-nope")
		var oe *Error
		require.True(t, errors.As(err, &oe))
		assert.Equal(t, KindValidation, oe.Kind)
		assert.Equal(t, "incorrect email or password", oe.Message)
		assert.Empty(t, oe.Fields)
	})
}

func TestLogout(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.Establish("tok", &domain.Employee{ID: uuid.New(), BusinessID: uuid.New()}))

	require.NoError(t, f.orch.Logout())
	assert.Equal(t, session.Session{}, f.store.Snapshot())
}

func TestCurrentEmployee_NoSessionMakesNoRequest(t *testing.T) {
	f := newFixture(t)
	signedIn(t, f)

	_, err := f.orch.CurrentEmployee(context.Background())
	assert.True(t, IsKind(err, KindAuth))
	f.api.AssertNotCalled(t, "ReadEmployeeMe", mock.Anything)
}

func TestUpdateBusiness(t *testing.T) {
	f := newFixture(t)
	employee := &domain.Employee{ID: uuid.New(), BusinessID: uuid.New()}
	require.NoError(t, f.store.Establish("tok", employee))

	name := "Acme Corp"
	old := &domain.Business{ID: employee.BusinessID, Name: "Acme"}
	updated := &domain.Business{ID: employee.BusinessID, Name: name}
	f.store.PrimeBusiness(old)

	f.api.On("UpdateBusiness", mock.Anything, employee.BusinessID, mock.Anything).Return(updated, nil)

	b, err := f.orch.UpdateBusiness(context.Background(), SettingsUpdate{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, name, b.Name)

	current, err := f.orch.CurrentBusiness(context.Background())
	require.NoError(t, err)
	assert.Equal(t, name, current.Name)
	f.api.AssertNotCalled(t, "ReadMyBusiness", mock.Anything)
}

func TestUpdateBusiness_NoBusiness(t *testing.T) {
	f := newFixture(t)
	name := "Acme"
	_, err := f.orch.UpdateBusiness(context.Background(), SettingsUpdate{Name: &name})
	assert.True(t, IsKind(err, KindAuth))
}

func TestUploadAvatar(t *testing.T) {
	f := newFixture(t)
	employee := &domain.Employee{ID: uuid.New(), BusinessID: uuid.New()}
	require.NoError(t, f.store.Establish("tok", employee))

	avatar := "a.png"
	withAvatar := *employee
	withAvatar.Avatar = &avatar
	image := strings.NewReader("png")
	f.api.On("UpdateAvatar", mock.Anything, "me.png", image).Return(&withAvatar, nil)

	e, err := f.orch.UploadAvatar(context.Background(), "me.png", image)
	require.NoError(t, err)
	assert.Equal(t, &avatar, e.Avatar)

	me, err := f.orch.CurrentEmployee(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "a.png", *me.Avatar)
}

func TestUpdateEmployee(t *testing.T) {
	f := newFixture(t)
	employee := &domain.Employee{ID: uuid.New(), Name: "CEO", BusinessID: uuid.New()}
	require.NoError(t, f.store.Establish("tok", employee))
	f.store.PrimeEmployee(employee)

	role := "Founder"
	updated := *employee
	updated.Role = &role
	f.api.On("UpdateEmployee", mock.Anything, employee.ID, ProfileUpdate{Role: &role}).Return(&updated, nil).Once()

	e, err := f.orch.UpdateEmployee(context.Background(), ProfileUpdate{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, &role, e.Role)

	me, err := f.orch.CurrentEmployee(context.Background())
	require.NoError(t, err)
	require.NotNil(t, me.Role)
	assert.Equal(t, "Founder", *me.Role)
	f.api.AssertNotCalled(t, "ReadEmployeeMe", mock.Anything)
	f.api.AssertExpectations(t)
}

func TestUpdateEmployee_Rejected(t *testing.T) {
	t.Run("no employee", func(t *testing.T) {
		f := newFixture(t)
		name := "Jane"
		_, err := f.orch.UpdateEmployee(context.Background(), ProfileUpdate{Name: &name})
		assert.True(t, IsKind(err, KindAuth))
	})

	t.Run("role too long", func(t *testing.T) {
		f := newFixture(t)
		require.NoError(t, f.store.Establish("tok", &domain.Employee{ID: uuid.New(), BusinessID: uuid.New()}))
		role := strings.Repeat("r", 101)

		_, err := f.orch.UpdateEmployee(context.Background(), ProfileUpdate{Role: &role})
		var oe *Error
		require.True(t, errors.As(err, &oe))
		assert.Equal(t, KindValidation, oe.Kind)
		assert.Contains(t, oe.Fields, "role")
		f.api.AssertNotCalled(t, "UpdateEmployee", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestListEmployees(t *testing.T) {
	f := newFixture(t)
	employee := &domain.Employee{ID: uuid.New(), BusinessID: uuid.New()}
	require.NoError(t, f.store.Establish("tok", employee))
	page := domain.Page{Limit: 10}

	f.api.On("ListBusinessEmployees", mock.Anything, employee.BusinessID, page).
		Return(&domain.Employees{Data: []domain.Employee{*employee}, Count: 1}, nil).Once()
	list, err := f.orch.ListEmployees(context.Background(), page)
	require.NoError(t, err)
	assert.Equal(t, 1, list.Count)

	f.api.On("ListBusinessEmployees", mock.Anything, employee.BusinessID, page).
		Return(nil, &client.APIError{Status: http.StatusForbidden, Message: "not enough permissions"}).Once()
	_, err = f.orch.ListEmployees(context.Background(), page)
	assert.True(t, IsKind(err, KindAuth))
}

func TestCreateIndustry_ServerValidation(t *testing.T) {
	f := newFixture(t)
	apiErr := &client.APIError{
		Status:  http.StatusUnprocessableEntity,
		Message: "title already exists",
		Fields:  map[string]string{"title": "title already exists"},
	}
	f.api.On("CreateBusinessIndustry", mock.Anything, domain.BusinessIndustryCreate{Title: "Retail"}).Return(nil, apiErr)

	_, err := f.orch.CreateIndustry(context.Background(), domain.BusinessIndustryCreate{Title: "Retail"})

	var oe *Error
	require.True(t, errors.As(err, &oe))
	assert.Equal(t, KindValidation, oe.Kind)
	assert.Equal(t, map[string]string{"title": "title already exists"}, oe.Fields)
}

func TestListIndustries_Network(t *testing.T) {
	f := newFixture(t)
	f.api.On("ListBusinessIndustries", mock.Anything, domain.Page{}).Return(nil, context.DeadlineExceeded)

	_, err := f.orch.ListIndustries(context.Background(), domain.Page{})
	assert.True(t, IsKind(err, KindNetwork))
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind Kind
	}{
		{"unprocessable", &client.APIError{Status: 422}, KindValidation},
		{"conflict", &client.APIError{Status: 409}, KindValidation},
		{"not found", &client.APIError{Status: 404}, KindValidation},
		{"unauthorized", &client.APIError{Status: 401}, KindAuth},
		{"forbidden", &client.APIError{Status: 403}, KindAuth},
		{"server", &client.APIError{Status: 500}, KindServer},
		{"undecodable", client.ErrUnexpectedResponse, KindServer},
		{"timeout", context.DeadlineExceeded, KindNetwork},
		{"transport", errors.New("connection reset by peer"), KindNetwork},
		{"no session", session.ErrNoSession, KindAuth},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(classify(tt.err)))
		})
	}
	assert.Nil(t, classify(nil))
}

func TestAttempt_FailedUntilDismissed(t *testing.T) {
	var attempt Attempt[int]
	boom := errors.New("boom")

	_, err := attempt.Submit(context.Background(), func(ctx context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, attempt.State())
	_, ok := attempt.Result()
	assert.False(t, ok)

	attempt.Dismiss()
	assert.Equal(t, StateIdle, attempt.State())
	assert.ErrorIs(t, attempt.Err(), boom)

	attempt.Dismiss()
	assert.Equal(t, StateIdle, attempt.State(), "dismissing twice is harmless")

	_, err = attempt.Submit(context.Background(), func(ctx context.Context) (int, error) {
		return 0, boom
	})
	require.ErrorIs(t, err, boom)
	assert.Equal(t, StateFailed, attempt.State())

	v, err := attempt.Submit(context.Background(), func(ctx context.Context) (int, error) {
		return 7, nil
	})
	require.NoError(t, err, "a failed attempt can be resubmitted without dismissing")
	assert.Equal(t, 7, v)
	assert.Equal(t, StateSucceeded, attempt.State())
	assert.NoError(t, attempt.Err())

	attempt.Dismiss()
	assert.Equal(t, StateSucceeded, attempt.State())
}

func TestAttempt_ConcurrentSubmit(t *testing.T) {
	var attempt Attempt[int]
	gate := make(chan struct{})
	calls := 0

	go func() {
		_, _ = attempt.Submit(context.Background(), func(ctx context.Context) (int, error) {
			calls++
			<-gate
			return 1, nil
		})
	}()

	require.Eventually(t, func() bool { return attempt.State() == StateSubmitting }, time.Second, time.Millisecond)
	_, err := attempt.Submit(context.Background(), func(ctx context.Context) (int, error) {
		t.Fatal("must not run while another submission is in flight")
		return 0, nil
	})
	assert.ErrorIs(t, err, ErrInFlight)

	close(gate)
	require.Eventually(t, func() bool { return attempt.State() == StateSucceeded }, time.Second, time.Millisecond)
	v, ok := attempt.Result()
	assert.True(t, ok)
	assert.Equal(t, 1, v)
	assert.Equal(t, 1, calls)
}

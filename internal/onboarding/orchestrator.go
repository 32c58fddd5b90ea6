// Package onboarding drives the multi-step tenant flows: registering a
// business with its first employee, accepting an invitation, and issuing
// invitations. Flows return explicit results and commit to the session only
// when every step has succeeded.
package onboarding

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/google/uuid"
	"github.com/trackflow-app/trackflow/internal/client"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/session"
	"go.uber.org/zap"
)

// API is the subset of the HTTP client the flows use.
type API interface {
	Signup(ctx context.Context, in domain.UserCreate) (*domain.User, error)
	Login(ctx context.Context, email, password string) (*domain.AccessToken, error)
	CreateBusiness(ctx context.Context, in domain.BusinessCreate) (*domain.Business, error)
	ReadMyBusiness(ctx context.Context) (*domain.Business, error)
	UpdateBusiness(ctx context.Context, id uuid.UUID, in domain.BusinessUpdate) (*domain.Business, error)
	ReadEmployeeMe(ctx context.Context) (*domain.Employee, error)
	InviteEmployee(ctx context.Context, email string, businessID uuid.UUID) (*domain.InviteIssued, error)
	RegisterByInvitation(ctx context.Context, in domain.InviteAcceptance) (*domain.Employee, error)
	UpdateAvatar(ctx context.Context, filename string, image io.Reader) (*domain.Employee, error)
	UpdateEmployee(ctx context.Context, id uuid.UUID, in domain.EmployeeUpdate) (*domain.Employee, error)
	ListBusinessEmployees(ctx context.Context, businessID uuid.UUID, page domain.Page) (*domain.Employees, error)
	ListBusinessIndustries(ctx context.Context, page domain.Page) (*domain.BusinessIndustries, error)
	CreateBusinessIndustry(ctx context.Context, in domain.BusinessIndustryCreate) (*domain.BusinessIndustry, error)
}

var _ API = (*client.Client)(nil)

// Result is what a successful flow established.
type Result struct {
	Business *domain.Business
	Employee *domain.Employee
	Session  session.Session
}

type Orchestrator struct {
	api     API
	session *session.Store
	logger  *zap.Logger

	mu         sync.Mutex
	generation uint64
}

func NewOrchestrator(api API, store *session.Store, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{api: api, session: store, logger: logger}
}

// Abandon marks every in-flight flow as stale: their responses are dropped
// instead of being written to the session.
func (o *Orchestrator) Abandon() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.generation++
}

func (o *Orchestrator) begin() uint64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.generation
}

// commit runs write only if no Abandon happened since gen was taken.
func (o *Orchestrator) commit(gen uint64, write func() error) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.generation != gen {
		return ErrAbandoned
	}
	if err := write(); err != nil {
		return persistError(err)
	}
	return nil
}

// RegisterBusiness creates a business with the caller as its first
// employee, then stores that employee as the session identity.
func (o *Orchestrator) RegisterBusiness(ctx context.Context, req BusinessRegistrationRequest) (*Result, error) {
	gen := o.begin()

	if err := req.Validate(); err != nil {
		return nil, classify(err)
	}
	if o.session.AccessToken() == "" {
		return nil, authError("sign in before registering a business", nil)
	}

	b, err := o.api.CreateBusiness(ctx, req)
	if err != nil {
		return nil, classify(err)
	}

	e, err := o.api.ReadEmployeeMe(ctx)
	if err != nil {
		o.logger.Warn("business created but employee lookup failed",
			zap.String("business_id", b.ID.String()), zap.Error(err))
		return nil, classify(err)
	}
	if e.BusinessID != b.ID {
		return nil, &Error{Kind: KindServer, Message: "server returned an employee of a different business"}
	}

	if err := o.commit(gen, func() error { return o.session.SetEmployee(e) }); err != nil {
		return nil, err
	}
	o.session.PrimeEmployee(e)
	o.session.PrimeBusiness(b)

	o.logger.Info("business registered",
		zap.String("business_id", b.ID.String()),
		zap.String("employee_id", e.ID.String()))
	return &Result{Business: b, Employee: e, Session: o.session.Snapshot()}, nil
}

// AcceptInvite registers a new user and employee from an invite token, logs
// in as that user and stores the new identity. An invalid or expired token
// is an Auth error and leaves the session unchanged.
func (o *Orchestrator) AcceptInvite(ctx context.Context, req InviteAcceptanceRequest) (*Result, error) {
	gen := o.begin()

	req.NewUser.Email = domain.NormalizeEmail(req.NewUser.Email)
	if err := req.Validate(); err != nil {
		return nil, classify(err)
	}

	created, err := o.api.RegisterByInvitation(ctx, req)
	if err != nil {
		return nil, classify(err)
	}

	tok, err := o.api.Login(ctx, req.NewUser.Email, req.NewUser.Password)
	if err != nil {
		return nil, classify(err)
	}

	e, err := o.api.ReadEmployeeMe(client.ContextWithToken(ctx, tok.AccessToken))
	if err != nil {
		return nil, classify(err)
	}
	if e.BusinessID != created.BusinessID {
		return nil, &Error{Kind: KindServer, Message: "server returned an employee of a different business"}
	}

	if err := o.commit(gen, func() error { return o.session.Establish(tok.AccessToken, e) }); err != nil {
		return nil, err
	}
	o.session.PrimeEmployee(e)

	o.logger.Info("invitation accepted",
		zap.String("business_id", e.BusinessID.String()),
		zap.String("employee_id", e.ID.String()))
	return &Result{Employee: e, Session: o.session.Snapshot()}, nil
}

// Resolve re-derives the session from the server's "who am I" answer, as on
// application load. A rejected token clears the session; a user without an
// employee record keeps the token but loses the ids; network and server
// failures leave the session as it was.
func (o *Orchestrator) Resolve(ctx context.Context) (*Result, error) {
	gen := o.begin()

	if o.session.AccessToken() == "" {
		if o.session.IsBusiness() {
			if err := o.commit(gen, o.session.UnsetEmployee); err != nil {
				return nil, err
			}
		}
		return nil, authError("not signed in", nil)
	}

	e, err := o.api.ReadEmployeeMe(ctx)
	switch {
	case err == nil:
	case client.IsUnauthorized(err):
		if cerr := o.commit(gen, o.session.Clear); cerr != nil {
			return nil, cerr
		}
		return nil, classify(err)
	case client.IsNotFound(err):
		if cerr := o.commit(gen, o.session.UnsetEmployee); cerr != nil {
			return nil, cerr
		}
		return &Result{Session: o.session.Snapshot()}, nil
	default:
		return nil, classify(err)
	}

	if err := o.commit(gen, func() error { return o.session.SetEmployee(e) }); err != nil {
		return nil, err
	}
	o.session.PrimeEmployee(e)
	return &Result{Employee: e, Session: o.session.Snapshot()}, nil
}

// Signup creates a user account. It does not sign in.
func (o *Orchestrator) Signup(ctx context.Context, in domain.UserCreate) (*domain.User, error) {
	in.Email = domain.NormalizeEmail(in.Email)
	if err := in.Validate(); err != nil {
		return nil, classify(err)
	}
	u, err := o.api.Signup(ctx, in)
	if err != nil {
		return nil, classify(err)
	}
	return u, nil
}

// Login signs in and resolves the user's employee. A user with no business
// yet gets a session holding only the token.
func (o *Orchestrator) Login(ctx context.Context, email, password string) (*Result, error) {
	gen := o.begin()

	var verrs domain.ValidationErrors
	if email == "" {
		verrs = append(verrs, domain.FieldError{Field: "username", Message: "field required"})
	}
	if password == "" {
		verrs = append(verrs, domain.FieldError{Field: "password", Message: "field required"})
	}
	if len(verrs) > 0 {
		return nil, validationError(verrs)
	}

	tok, err := o.api.Login(ctx, domain.NormalizeEmail(email), password)
	if err != nil {
		return nil, classify(err)
	}

	e, err := o.api.ReadEmployeeMe(client.ContextWithToken(ctx, tok.AccessToken))
	if err != nil {
		if !client.IsNotFound(err) {
			return nil, classify(err)
		}
		if err := o.commit(gen, func() error { return o.session.Reset(tok.AccessToken) }); err != nil {
			return nil, err
		}
		return &Result{Session: o.session.Snapshot()}, nil
	}

	if err := o.commit(gen, func() error { return o.session.Establish(tok.AccessToken, e) }); err != nil {
		return nil, err
	}
	o.session.PrimeEmployee(e)
	return &Result{Employee: e, Session: o.session.Snapshot()}, nil
}

// Logout drops in-flight flows and destroys the session.
func (o *Orchestrator) Logout() error {
	o.Abandon()
	if err := o.session.Clear(); err != nil {
		return persistError(err)
	}
	return nil
}

// CurrentEmployee is the cached "who am I" query. It makes no request when
// the session has no employee.
func (o *Orchestrator) CurrentEmployee(ctx context.Context) (*domain.Employee, error) {
	e, err := o.session.CurrentEmployee(ctx, o.api.ReadEmployeeMe)
	if err != nil {
		return nil, classify(err)
	}
	return e, nil
}

func (o *Orchestrator) CurrentBusiness(ctx context.Context) (*domain.Business, error) {
	b, err := o.session.CurrentBusiness(ctx, o.api.ReadMyBusiness)
	if err != nil {
		return nil, classify(err)
	}
	return b, nil
}

// UpdateBusiness applies a settings change to the session's business.
func (o *Orchestrator) UpdateBusiness(ctx context.Context, upd SettingsUpdate) (*domain.Business, error) {
	if err := upd.Validate(); err != nil {
		return nil, classify(err)
	}
	businessID := o.session.Snapshot().BusinessID
	if businessID == uuid.Nil {
		return nil, classify(session.ErrNoSession)
	}

	b, err := o.api.UpdateBusiness(ctx, businessID, upd)
	if err != nil {
		return nil, classify(err)
	}
	o.session.Invalidate(session.CurrentBusinessKey)
	o.session.PrimeBusiness(b)
	return b, nil
}

// UploadAvatar replaces the current employee's avatar.
func (o *Orchestrator) UploadAvatar(ctx context.Context, filename string, image io.Reader) (*domain.Employee, error) {
	if !o.session.IsEmployee() {
		return nil, classify(session.ErrNoSession)
	}
	e, err := o.api.UpdateAvatar(ctx, filename, image)
	if err != nil {
		return nil, classify(err)
	}
	o.session.Invalidate(session.CurrentEmployeeKey)
	o.session.PrimeEmployee(e)
	return e, nil
}

// UpdateEmployee edits the current employee's own profile.
func (o *Orchestrator) UpdateEmployee(ctx context.Context, upd ProfileUpdate) (*domain.Employee, error) {
	if err := upd.Validate(); err != nil {
		return nil, classify(err)
	}
	employeeID := o.session.Snapshot().EmployeeID
	if employeeID == uuid.Nil {
		return nil, classify(session.ErrNoSession)
	}

	e, err := o.api.UpdateEmployee(ctx, employeeID, upd)
	if err != nil {
		return nil, classify(err)
	}
	o.session.Invalidate(session.CurrentEmployeeKey)
	o.session.PrimeEmployee(e)
	return e, nil
}

// ListEmployees lists the employees of the session's business.
func (o *Orchestrator) ListEmployees(ctx context.Context, page domain.Page) (*domain.Employees, error) {
	businessID := o.session.Snapshot().BusinessID
	if businessID == uuid.Nil {
		return nil, classify(session.ErrNoSession)
	}
	list, err := o.api.ListBusinessEmployees(ctx, businessID, page)
	if err != nil {
		return nil, classify(err)
	}
	return list, nil
}

func (o *Orchestrator) ListIndustries(ctx context.Context, page domain.Page) (*domain.BusinessIndustries, error) {
	list, err := o.api.ListBusinessIndustries(ctx, page)
	if err != nil {
		return nil, classify(err)
	}
	return list, nil
}

// CreateIndustry adds a business industry lookup entry.
func (o *Orchestrator) CreateIndustry(ctx context.Context, in domain.BusinessIndustryCreate) (*domain.BusinessIndustry, error) {
	if err := in.Validate(); err != nil {
		return nil, classify(err)
	}
	industry, err := o.api.CreateBusinessIndustry(ctx, in)
	if err != nil {
		return nil, classify(err)
	}
	return industry, nil
}

// IsAbandoned reports whether err means the flow was dropped by Abandon.
func IsAbandoned(err error) bool {
	return errors.Is(err, ErrAbandoned)
}

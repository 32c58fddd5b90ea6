// Package session keeps the client-side identity of the current user: which
// business and employee they act as, and the access token. It is the only
// writer of the durable session document.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/trackflow-app/trackflow/internal/domain"
	"go.uber.org/zap"
)

// Keys of the durable session document.
const (
	KeyBusinessID  = "business_id"
	KeyEmployeeID  = "employee_id"
	KeyAccessToken = "access_token"
)

var (
	// ErrNoSession is returned by tenant-scoped queries when no employee or
	// business is stored. No request is made.
	ErrNoSession       = errors.New("no active session")
	ErrInvalidEmployee = errors.New("employee has no id")
	ErrMissingBusiness = errors.New("employee has no business id")
	ErrInvalidBusiness = errors.New("business has no id")
)

// Session is a point-in-time copy of the stored identity. Zero ids mean absent.
type Session struct {
	BusinessID  uuid.UUID
	EmployeeID  uuid.UUID
	AccessToken string
}

func (s Session) HasEmployee() bool { return s.EmployeeID != uuid.Nil }
func (s Session) HasBusiness() bool { return s.BusinessID != uuid.Nil }

// Store is safe for concurrent use. Every mutation saves the complete
// document before it becomes visible, so readers see either the old or the
// new session.
type Store struct {
	backend Backend
	logger  *zap.Logger

	mu     sync.RWMutex
	values map[string]string

	cache *queryCache
}

// Open loads the session from backend. Unparseable ids are discarded, and an
// employee id without a business id is dropped.
func Open(backend Backend, logger *zap.Logger) (*Store, error) {
	values, err := backend.Load()
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}

	s := &Store{backend: backend, logger: logger, values: map[string]string{}, cache: newQueryCache()}
	for _, key := range []string{KeyBusinessID, KeyEmployeeID} {
		if v, ok := values[key]; ok {
			if _, err := uuid.Parse(v); err == nil {
				s.values[key] = v
			} else {
				logger.Warn("discarding malformed session value", zap.String("key", key))
			}
		}
	}
	if _, ok := s.values[KeyBusinessID]; !ok {
		delete(s.values, KeyEmployeeID)
	}
	if tok := values[KeyAccessToken]; tok != "" {
		s.values[KeyAccessToken] = tok
	}
	return s, nil
}

func (s *Store) Snapshot() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Session {
	sess := Session{AccessToken: s.values[KeyAccessToken]}
	sess.BusinessID, _ = uuid.Parse(s.values[KeyBusinessID])
	sess.EmployeeID, _ = uuid.Parse(s.values[KeyEmployeeID])
	return sess
}

// IsEmployee reports whether an employee id is stored.
func (s *Store) IsEmployee() bool {
	return s.Snapshot().HasEmployee()
}

// IsBusiness reports whether a business id is stored.
func (s *Store) IsBusiness() bool {
	return s.Snapshot().HasBusiness()
}

func (s *Store) AccessToken() string {
	return s.Snapshot().AccessToken
}

func (s *Store) SetAccessToken(token string) error {
	return s.mutate(func(v map[string]string) {
		if token == "" {
			delete(v, KeyAccessToken)
			return
		}
		v[KeyAccessToken] = token
	})
}

// SetEmployee stores the employee and its business in a single write.
func (s *Store) SetEmployee(e *domain.Employee) error {
	if err := checkEmployee(e); err != nil {
		return err
	}
	return s.mutate(func(v map[string]string) {
		v[KeyEmployeeID] = e.ID.String()
		v[KeyBusinessID] = e.BusinessID.String()
	})
}

// UnsetEmployee forgets the employee and its business. The access token is kept.
func (s *Store) UnsetEmployee() error {
	return s.mutate(func(v map[string]string) {
		delete(v, KeyEmployeeID)
		delete(v, KeyBusinessID)
	})
}

// SetBusiness stores b as the current business. A stored employee of a
// different business is dropped.
func (s *Store) SetBusiness(b *domain.Business) error {
	if b == nil || b.ID == uuid.Nil {
		return ErrInvalidBusiness
	}
	return s.mutate(func(v map[string]string) {
		if v[KeyBusinessID] != b.ID.String() {
			delete(v, KeyEmployeeID)
		}
		v[KeyBusinessID] = b.ID.String()
	})
}

// UnsetBusiness clears the business and, with it, the employee.
func (s *Store) UnsetBusiness() error {
	return s.mutate(func(v map[string]string) {
		delete(v, KeyBusinessID)
		delete(v, KeyEmployeeID)
	})
}

// Establish replaces the whole session with a freshly authenticated
// employee and its token.
func (s *Store) Establish(token string, e *domain.Employee) error {
	if err := checkEmployee(e); err != nil {
		return err
	}
	return s.mutate(func(v map[string]string) {
		for k := range v {
			delete(v, k)
		}
		v[KeyAccessToken] = token
		v[KeyEmployeeID] = e.ID.String()
		v[KeyBusinessID] = e.BusinessID.String()
	})
}

// Reset replaces the whole session with a token and no identity, for a
// user who has signed in but belongs to no business yet.
func (s *Store) Reset(token string) error {
	return s.mutate(func(v map[string]string) {
		for k := range v {
			delete(v, k)
		}
		v[KeyAccessToken] = token
	})
}

// Clear destroys the session, including the access token.
func (s *Store) Clear() error {
	return s.mutate(func(v map[string]string) {
		for k := range v {
			delete(v, k)
		}
	})
}

func checkEmployee(e *domain.Employee) error {
	if e == nil || e.ID == uuid.Nil {
		return ErrInvalidEmployee
	}
	if e.BusinessID == uuid.Nil {
		return ErrMissingBusiness
	}
	return nil
}

// mutate applies fn to a copy of the document, persists the copy and only
// then makes it current. Identity changes drop all cached queries.
func (s *Store) mutate(fn func(v map[string]string)) error {
	_, err := s.mutateIf(nil, fn)
	return err
}

// mutateIf is mutate guarded by cond, which sees the session under the
// write lock. It reports whether fn was applied.
func (s *Store) mutateIf(cond func(Session) bool, fn func(v map[string]string)) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	before := s.snapshotLocked()
	if cond != nil && !cond(before) {
		return false, nil
	}

	next := copyValues(s.values)
	fn(next)

	if err := s.backend.Save(next); err != nil {
		return false, fmt.Errorf("persist session: %w", err)
	}

	s.values = next
	if after := s.snapshotLocked(); after != before {
		s.cache.reset()
		s.logger.Debug("session changed",
			zap.String("business_id", idString(after.BusinessID)),
			zap.String("employee_id", idString(after.EmployeeID)),
			zap.Bool("authenticated", after.AccessToken != ""))
	}
	return true, nil
}

func idString(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}

// EmployeeFetcher performs the "who am I" request.
type EmployeeFetcher func(ctx context.Context) (*domain.Employee, error)

// BusinessFetcher reads the current business from the server.
type BusinessFetcher func(ctx context.Context) (*domain.Business, error)

// CurrentEmployee returns the cached current employee, fetching it on a miss.
// Without a stored employee it returns ErrNoSession and does not call fetch.
// When the server answers with a different employee or business than the
// stored pair, the session is rewritten to match the server.
func (s *Store) CurrentEmployee(ctx context.Context, fetch EmployeeFetcher) (*domain.Employee, error) {
	if !s.IsEmployee() {
		return nil, ErrNoSession
	}
	v, err := s.cache.get(ctx, CurrentEmployeeKey, func(ctx context.Context) (any, error) {
		started := s.Snapshot()
		e, err := fetch(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.reconcileEmployee(started, e); err != nil {
			return nil, err
		}
		return e, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Employee), nil
}

// reconcileEmployee stores e as the identity when it disagrees with the
// session the fetch started from. A session changed meanwhile, by a logout
// or another flow, is left alone.
func (s *Store) reconcileEmployee(started Session, e *domain.Employee) error {
	if e != nil && e.ID == started.EmployeeID && e.BusinessID == started.BusinessID {
		return nil
	}
	if err := checkEmployee(e); err != nil {
		return err
	}
	applied, err := s.mutateIf(
		func(cur Session) bool { return cur == started },
		func(v map[string]string) {
			v[KeyEmployeeID] = e.ID.String()
			v[KeyBusinessID] = e.BusinessID.String()
		})
	if err != nil {
		return err
	}
	if applied {
		s.PrimeEmployee(e)
		s.logger.Warn("session employee replaced by server answer",
			zap.String("stored_employee_id", idString(started.EmployeeID)),
			zap.String("employee_id", e.ID.String()),
			zap.String("business_id", e.BusinessID.String()))
	}
	return nil
}

// CurrentBusiness is CurrentEmployee for the current business.
func (s *Store) CurrentBusiness(ctx context.Context, fetch BusinessFetcher) (*domain.Business, error) {
	if !s.IsBusiness() {
		return nil, ErrNoSession
	}
	v, err := s.cache.get(ctx, CurrentBusinessKey, func(ctx context.Context) (any, error) {
		return fetch(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.(*domain.Business), nil
}

// PrimeEmployee caches e as the current employee if it is the stored one.
func (s *Store) PrimeEmployee(e *domain.Employee) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e != nil && s.snapshotLocked().EmployeeID == e.ID {
		s.cache.put(CurrentEmployeeKey, e)
	}
}

// PrimeBusiness caches b as the current business if it is the stored one.
func (s *Store) PrimeBusiness(b *domain.Business) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if b != nil && s.snapshotLocked().BusinessID == b.ID {
		s.cache.put(CurrentBusinessKey, b)
	}
}

// Invalidate drops one cached query so the next read refetches it.
func (s *Store) Invalidate(key string) {
	s.cache.invalidate(key)
}

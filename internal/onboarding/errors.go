package onboarding

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/trackflow-app/trackflow/internal/client"
	"github.com/trackflow-app/trackflow/internal/domain"
	"github.com/trackflow-app/trackflow/internal/session"
)

// Kind classifies a failed operation for the caller.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindAuth
	KindNetwork
	KindServer
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindAuth:
		return "auth"
	case KindNetwork:
		return "network"
	case KindServer:
		return "server"
	default:
		return "unknown"
	}
}

var (
	// ErrAbandoned is returned when Abandon was called while a flow was in
	// flight. The flow's result was not committed to the session.
	ErrAbandoned = errors.New("onboarding: flow abandoned")
	// ErrInFlight is returned when an attempt is submitted while its previous
	// submission has not finished.
	ErrInFlight = errors.New("onboarding: submission already in flight")
	// ErrCompleted is returned when a succeeded attempt is submitted again.
	ErrCompleted = errors.New("onboarding: attempt already succeeded")
)

// Error is the only error type returned by orchestrator flows besides the
// sentinels above. Fields maps request field paths (e.g. "employee_in.name")
// to messages and is set for validation failures.
type Error struct {
	Kind    Kind
	Message string
	Fields  map[string]string
	Err     error
}

func (e *Error) Error() string {
	if e.Message == "" && e.Err != nil {
		return fmt.Sprintf("%s error: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf returns the kind of err, or 0 if err is not an *Error.
func KindOf(err error) Kind {
	var oe *Error
	if errors.As(err, &oe) {
		return oe.Kind
	}
	return 0
}

// IsKind reports whether err is an *Error of kind k.
func IsKind(err error, k Kind) bool {
	return KindOf(err) == k
}

func authError(msg string, err error) *Error {
	return &Error{Kind: KindAuth, Message: msg, Err: err}
}

// persistError reports a failure to write the local session.
func persistError(err error) *Error {
	return &Error{Kind: KindServer, Message: "could not save the session locally", Err: err}
}

func validationError(verrs domain.ValidationErrors) *Error {
	msg := "invalid input"
	if len(verrs) > 0 {
		msg = verrs[0].Message
	}
	return &Error{Kind: KindValidation, Message: msg, Fields: verrs.Fields(), Err: verrs}
}

// classify maps client, validation and transport errors onto the taxonomy.
func classify(err error) error {
	if err == nil {
		return nil
	}

	var oe *Error
	if errors.As(err, &oe) {
		return oe
	}
	if errors.Is(err, ErrAbandoned) || errors.Is(err, ErrInFlight) || errors.Is(err, ErrCompleted) {
		return err
	}

	var verrs domain.ValidationErrors
	if errors.As(err, &verrs) {
		return validationError(verrs)
	}

	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		e := &Error{Message: apiErr.Message, Err: err}
		switch {
		case apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden:
			e.Kind = KindAuth
		case apiErr.Status >= 500:
			e.Kind = KindServer
		case apiErr.Status >= 400:
			e.Kind = KindValidation
			e.Fields = apiErr.Fields
		default:
			e.Kind = KindServer
		}
		return e
	}

	if errors.Is(err, session.ErrNoSession) {
		return authError("not signed in to a business", err)
	}
	if errors.Is(err, client.ErrUnexpectedResponse) {
		return &Error{Kind: KindServer, Message: "unexpected response from server", Err: err}
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindNetwork, Message: "request cancelled or timed out", Err: err}
	}
	return &Error{Kind: KindNetwork, Message: "could not reach the server", Err: err}
}

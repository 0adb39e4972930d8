// Package failure defines the closed set of reasons a reaction toggle can fail.
//
// Failure is sealed: only the three types in this package implement it. Code that must
// handle every case implements Visitor, so adding a case breaks every handler at compile
// time instead of falling through a type switch at run time.
package failure

import (
	"context"
	"errors"
	"fmt"
)

// Kind identifies a failure case. Its string form is the wire code.
type Kind string

const (
	KindUnauthenticated Kind = "unauthenticated"
	KindNotFound        Kind = "not_found"
	KindTransient       Kind = "transient"
)

// Failure is a reaction failure. It cannot be implemented outside this package.
type Failure interface {
	error
	Kind() Kind
	Accept(v Visitor)
	sealed()
}

// Visitor dispatches over every Failure case.
type Visitor interface {
	VisitUnauthenticated(f *UnauthenticatedError)
	VisitNotFound(f *NotFoundError)
	VisitTransient(f *TransientError)
}

// UnauthenticatedError means the caller has no identity or it resolves to no known user.
type UnauthenticatedError struct {
	Reason string
}

// NotFoundError means the referenced resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

// TransientError covers store and network failures. A fresh attempt may succeed.
type TransientError struct {
	Op  string
	Err error
}

// Unauthenticated returns an UnauthenticatedError.
func Unauthenticated(reason string) Failure {
	return &UnauthenticatedError{Reason: reason}
}

// NotFound returns a NotFoundError for resource id.
func NotFound(resource, id string) Failure {
	return &NotFoundError{Resource: resource, ID: id}
}

// Transient wraps err as a TransientError raised by op.
func Transient(op string, err error) Failure {
	return &TransientError{Op: op, Err: err}
}

func (f *UnauthenticatedError) Error() string {
	if f.Reason == "" {
		return "unauthenticated"
	}
	return "unauthenticated: " + f.Reason
}

func (f *UnauthenticatedError) Kind() Kind { return KindUnauthenticated }
func (f *UnauthenticatedError) Accept(v Visitor) { v.VisitUnauthenticated(f) }
func (f *UnauthenticatedError) sealed() {}

func (f *NotFoundError) Error() string {
	if f.ID == "" {
		return fmt.Sprintf("%s not found", f.Resource)
	}
	return fmt.Sprintf("%s %q not found", f.Resource, f.ID)
}

func (f *NotFoundError) Kind() Kind { return KindNotFound }
func (f *NotFoundError) Accept(v Visitor) { v.VisitNotFound(f) }
func (f *NotFoundError) sealed() {}

func (f *TransientError) Error() string {
	switch {
	case f.Op == "" && f.Err == nil:
		return "transient failure"
	case f.Err == nil:
		return f.Op + ": transient failure"
	case f.Op == "":
		return f.Err.Error()
	}
	return fmt.Sprintf("%s: %v", f.Op, f.Err)
}

func (f *TransientError) Unwrap() error { return f.Err }
func (f *TransientError) Kind() Kind { return KindTransient }
func (f *TransientError) Accept(v Visitor) { v.VisitTransient(f) }
func (f *TransientError) sealed() {}

// Classify maps any error into the taxonomy. A Failure anywhere in err's chain is
// returned as is; everything else, including cancellation and deadlines, is transient.
func Classify(err error) Failure {
	if err == nil {
		return nil
	}
	var f Failure
	if errors.As(err, &f) {
		return f
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return Transient("timeout", err)
	}
	return Transient("", err)
}

// Is reports whether err classifies as kind.
func Is(err error, kind Kind) bool {
	f := Classify(err)
	return f != nil && f.Kind() == kind
}

// FromCode rebuilds a Failure from its wire code. message is kept only for transient
// failures; the other cases carry no detail worth trusting from a remote.
// Unknown codes are treated as transient.
func FromCode(code, message string) Failure {
	switch Kind(code) {
	case KindUnauthenticated:
		return &UnauthenticatedError{}
	case KindNotFound:
		return &NotFoundError{Resource: "prompt"}
	default:
		return Transient("", errors.New(message))
	}
}

package reaction

import (
	"context"

	"github.com/mikiasgoitom/PromptShelf/internal/domain/entity"
	"github.com/mikiasgoitom/PromptShelf/internal/domain/failure"
)

// Toggler performs the toggle procedure remotely.
type Toggler interface {
	Toggle(ctx context.Context, promptID string, kind entity.ReactionKind) (entity.MembershipState, error)
}

// Source streams authoritative membership states for the signed-in caller.
type Source interface {
	Subscribe(ctx context.Context, promptID string, kind entity.ReactionKind) (<-chan entity.MembershipState, error)
}

// ErrorContext tells the gate where a failure came from.
type ErrorContext struct {
	PromptID string
	Kind     entity.ReactionKind
	Action   string
}

// Gate is the controller's link to the signed-in session and the error surface.
type Gate interface {
	// CallerIdentity reports the signed-in identity, if any.
	CallerIdentity() (string, bool)
	ReportError(f failure.Failure, ec ErrorContext)
	RequireSignIn()
}

// Notifier shows success messages.
type Notifier interface {
	Notify(message string)
}

// Event is the click that triggered a toggle. The controller consumes it so that
// enclosing elements, such as a card that links to the prompt, do not react.
type Event interface {
	StopPropagation()
	PreventDefault()
}

// failureRouter sends each failure case to the gate.
type failureRouter struct {
	gate Gate
	ec   ErrorContext
}

func (r failureRouter) VisitUnauthenticated(f *failure.UnauthenticatedError) {
	r.gate.ReportError(f, r.ec)
	r.gate.RequireSignIn()
}

func (r failureRouter) VisitNotFound(f *failure.NotFoundError) {
	r.gate.ReportError(f, r.ec)
}

func (r failureRouter) VisitTransient(f *failure.TransientError) {
	r.gate.ReportError(f, r.ec)
}

func successMessage(kind entity.ReactionKind, active bool) string {
	switch {
	case kind == entity.ReactionBookmark && active:
		return "Bookmarked"
	case kind == entity.ReactionBookmark:
		return "Bookmark removed"
	case active:
		return "Liked"
	}
	return "Like removed"
}

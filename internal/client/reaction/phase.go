package reaction

import "github.com/mikiasgoitom/PromptShelf/internal/domain/failure"

// Snapshot is what the button shows: the flag and the counter.
type Snapshot struct {
	Active bool
	Count  int64
}

// flipped is the optimistic guess for toggling s. The counter never goes below zero.
func (s Snapshot) flipped() Snapshot {
	if s.Active {
		return Snapshot{Active: false, Count: max(0, s.Count-1)}
	}
	return Snapshot{Active: true, Count: s.Count + 1}
}

// Phase is where the controller is in a toggle. It is one of Resting, Pending or
// RolledBack.
type Phase interface {
	isPhase()
}

// Resting shows the authoritative state.
type Resting struct{}

// Pending shows Guess while a toggle is in flight. Base is the authoritative state the
// guess was derived from.
type Pending struct {
	Guess Snapshot
	Base  Snapshot
}

// RolledBack shows the authoritative state after a failed toggle.
type RolledBack struct {
	Failure failure.Failure
}

func (Resting) isPhase() {}
func (Pending) isPhase() {}
func (RolledBack) isPhase() {}

// Size is a presentation hint passed through to the view.
type Size string

const (
	SizeSmall   Size = "sm"
	SizeDefault Size = "default"
	SizeLarge   Size = "lg"
)

// View is everything a renderer needs.
type View struct {
	Count     int64
	Active    bool
	Busy      bool
	ShowCount bool
	Size      Size
	Phase     Phase
}

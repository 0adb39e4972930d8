package entity

import (
	"fmt"
	"time"
)

// ReactionKind is one of the independent toggleable relations a user may hold on a prompt.
type ReactionKind string

const (
	ReactionLike     ReactionKind = "like"
	ReactionBookmark ReactionKind = "bookmark"
)

// ReactionKinds lists every supported kind.
var ReactionKinds = []ReactionKind{ReactionLike, ReactionBookmark}

// Valid reports whether k is a supported reaction kind.
func (k ReactionKind) Valid() bool {
	return k == ReactionLike || k == ReactionBookmark
}

// ParseReactionKind converts s into a ReactionKind.
func ParseReactionKind(s string) (ReactionKind, error) {
	k := ReactionKind(s)
	if !k.Valid() {
		return "", fmt.Errorf("unknown reaction kind %q", s)
	}
	return k, nil
}

// Reaction is a membership record: user UserID holds Kind on prompt PromptID.
// There is at most one record per (UserID, PromptID, Kind). Records are never updated.
type Reaction struct {
	ID        string       `bson:"_id,omitempty" json:"id"`
	UserID    string       `bson:"user_id" json:"user_id"`
	PromptID  string       `bson:"prompt_id" json:"prompt_id"`
	Kind      ReactionKind `bson:"-" json:"kind"`
	CreatedAt time.Time    `bson:"created_at" json:"created_at"`
}

// ToggleOutcome is what the reaction store reports after a committed toggle.
type ToggleOutcome struct {
	Active   bool
	Count    int64
	Revision int64
}

// MembershipState is the authoritative view of one caller's reaction on a prompt
// together with the prompt's shared counter for that kind.
type MembershipState struct {
	PromptID string       `json:"prompt_id"`
	Kind     ReactionKind `json:"kind"`
	Active   bool         `json:"active"`
	Count    int64        `json:"count"`
	Revision int64        `json:"revision"`
}

// MembershipChange is published after every committed toggle.
type MembershipChange struct {
	PromptID string       `json:"prompt_id"`
	UserID   string       `json:"user_id"`
	Kind     ReactionKind `json:"kind"`
	Active   bool         `json:"active"`
	Count    int64        `json:"count"`
	Revision int64        `json:"revision"`
}

// Package token implements the stacking status ledger each combatant carries.
//
// A Ledger is a value. Every operation returns a new Ledger and never writes
// into the slices of the one it was given, so a ledger captured before an
// action stays valid after the action resolves.
package token

import (
	"slices"

	"etherduel/internal/catalog"
)

// Ids with bespoke rules in Add.
const (
	Immunity = "immunity"
	Jam      = "jam"
	Reload   = "reload"
	Counter  = "counter"

	// Vulnerable is granted by vulnerable_if_unblocked.
	Vulnerable = "vulnerable"
)

// jamPurge is removed from the holder whenever jam is applied.
var jamPurge = []string{"aim", "loaded"}

// Stamp records the timeline position a token was granted at.
type Stamp struct {
	Turn int `json:"turn"`
	SP   int `json:"sp"`
}

// Instance is one stored stack entry. Stacks is always > 0.
type Instance struct {
	ID        string `json:"id"`
	Stacks    int    `json:"stacks"`
	GrantedAt *Stamp `json:"grantedAt,omitempty"`
}

// Ledger holds a combatant's tokens in one bucket per duration class.
type Ledger struct {
	Usage     []Instance `json:"usage"`
	Turn      []Instance `json:"turn"`
	Permanent []Instance `json:"permanent"`
}

// Definitions resolves token ids to their static definitions.
type Definitions interface {
	Token(id string) (catalog.TokenDef, bool)
}

func (l Ledger) bucket(d catalog.Duration) []Instance {
	switch d {
	case catalog.DurationUsage:
		return l.Usage
	case catalog.DurationTurn:
		return l.Turn
	default:
		return l.Permanent
	}
}

func (l Ledger) withBucket(d catalog.Duration, items []Instance) Ledger {
	switch d {
	case catalog.DurationUsage:
		l.Usage = items
	case catalog.DurationTurn:
		l.Turn = items
	default:
		l.Permanent = items
	}
	return l
}

var durations = []catalog.Duration{catalog.DurationPermanent, catalog.DurationUsage, catalog.DurationTurn}

// Has reports whether any bucket holds the token.
func (l Ledger) Has(id string) bool {
	return l.Stacks(id) > 0
}

// Stacks sums the token's stacks across buckets; 0 when absent.
func (l Ledger) Stacks(id string) int {
	n := 0
	for _, d := range durations {
		for _, it := range l.bucket(d) {
			if it.ID == id {
				n += it.Stacks
			}
		}
	}
	return n
}

// All flattens the ledger in display order: permanent, usage, turn.
func (l Ledger) All() []Instance {
	out := make([]Instance, 0, len(l.Permanent)+len(l.Usage)+len(l.Turn))
	out = append(out, l.Permanent...)
	out = append(out, l.Usage...)
	out = append(out, l.Turn...)
	return out
}

// Len is the number of stored entries.
func (l Ledger) Len() int {
	return len(l.Permanent) + len(l.Usage) + len(l.Turn)
}

// Clone returns a ledger that shares nothing with l.
func (l Ledger) Clone() Ledger {
	return Ledger{
		Usage:     cloneInstances(l.Usage),
		Turn:      cloneInstances(l.Turn),
		Permanent: cloneInstances(l.Permanent),
	}
}

func cloneInstances(in []Instance) []Instance {
	if in == nil {
		return nil
	}
	out := make([]Instance, len(in))
	for i, it := range in {
		out[i] = it
		if it.GrantedAt != nil {
			s := *it.GrantedAt
			out[i].GrantedAt = &s
		}
	}
	return out
}

// Equal compares two ledgers structurally. Nil and empty buckets are equal.
func Equal(a, b Ledger) bool {
	for _, d := range durations {
		if !slices.EqualFunc(a.bucket(d), b.bucket(d), instanceEqual) {
			return false
		}
	}
	return true
}

func instanceEqual(a, b Instance) bool {
	if a.ID != b.ID || a.Stacks != b.Stacks {
		return false
	}
	if (a.GrantedAt == nil) != (b.GrantedAt == nil) {
		return false
	}
	return a.GrantedAt == nil || *a.GrantedAt == *b.GrantedAt
}

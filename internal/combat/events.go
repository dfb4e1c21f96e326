package combat

import (
	"fmt"

	"etherduel/internal/timeline"
)

// EventKind classifies a log entry.
type EventKind string

const (
	EventModifier  EventKind = "modifier"
	EventCritical  EventKind = "critical"
	EventDamage    EventKind = "damage"
	EventBlock     EventKind = "block"
	EventToken     EventKind = "token"
	EventExecute   EventKind = "execute"
	EventHeal      EventKind = "heal"
	EventRetaliate EventKind = "retaliate"
	EventDOT       EventKind = "dot"
	EventEther     EventKind = "ether"
	EventSkip      EventKind = "skip"
	EventWarning   EventKind = "warning"
	EventExpire    EventKind = "expire"
	EventOutcome   EventKind = "outcome"
	EventSettle    EventKind = "settle"
)

// Event is one presentation-facing log entry.
type Event struct {
	Turn    int           `json:"turn"`
	Index   int           `json:"index"`
	Actor   timeline.Side `json:"actor,omitempty"`
	Card    string        `json:"card,omitempty"`
	Kind    EventKind     `json:"kind"`
	Message string        `json:"message"`
}

// Warning builds a warning event outside of any action.
func Warning(turn int, format string, args ...any) Event {
	return Event{Turn: turn, Index: -1, Kind: EventWarning, Message: fmt.Sprintf(format, args...)}
}

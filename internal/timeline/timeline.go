// Package timeline merges both sides' selected cards into one speed-ordered
// action queue for a turn.
package timeline

import (
	"sort"

	"etherduel/internal/catalog"
)

// Defaults applied to card fields left unset in the catalog.
const (
	DefaultSpeedCost  = 5
	DefaultActionCost = 1
	DefaultWeight     = 1
	DefaultHits       = 1
	DefaultMaxTU      = 30
)

// Side identifies which combatant an action belongs to.
type Side string

const (
	Player Side = "player"
	Enemy  Side = "enemy"
)

// Opponent returns the other side.
func (s Side) Opponent() Side {
	if s == Player {
		return Enemy
	}
	return Player
}

// Play references a card a side wants to use this turn. SourceUnit names the
// enemy unit playing it when the enemy fields several.
type Play struct {
	CardID     string `json:"card"`
	SourceUnit string `json:"unit,omitempty"`
}

// Action is one queue entry. Order is 1-based, Index 0-based, and TU is the
// cumulative time-unit stamp (the action's speed position).
type Action struct {
	Actor      Side         `json:"actor"`
	Card       catalog.Card `json:"card"`
	SpeedCost  int          `json:"speedCost"`
	Weight     int          `json:"weight"`
	Order      int          `json:"order"`
	Index      int          `json:"index"`
	TU         int          `json:"tu"`
	SourceUnit string       `json:"unit,omitempty"`
}

// Timeline is a turn's ordered action queue.
type Timeline []Action

// Cards resolves card ids to definitions.
type Cards interface {
	Card(id string) (catalog.Card, bool)
}

var priorityWeights = map[catalog.Priority]int{
	catalog.PriorityQuick:  2,
	catalog.PriorityNormal: DefaultWeight,
	catalog.PrioritySlow:   0,
}

// Inflate looks a card up and fills in defaults for unset fields.
func Inflate(cards Cards, id string) (catalog.Card, bool) {
	c, ok := cards.Card(id)
	if !ok {
		return catalog.Card{}, false
	}
	if c.SpeedCost <= 0 {
		c.SpeedCost = DefaultSpeedCost
	}
	if c.ActionCost <= 0 {
		c.ActionCost = DefaultActionCost
	}
	if c.Hits <= 0 {
		c.Hits = DefaultHits
	}
	if c.Priority == "" {
		c.Priority = catalog.PriorityNormal
	}
	if c.Traits == nil {
		c.Traits = []catalog.Trait{}
	}
	if c.Effects == nil {
		c.Effects = catalog.EffectList{}
	}
	return c, true
}

// Weight is the tie-break weight of an inflated card; higher acts first.
func Weight(c catalog.Card) int {
	if c.PriorityWeight != nil {
		return *c.PriorityWeight
	}
	if w, ok := priorityWeights[c.Priority]; ok {
		return w
	}
	return DefaultWeight
}

// Build merges the player's and enemy's plays into one queue. Unknown card ids
// are dropped. Entries are ordered by ascending speed cost, then descending
// weight, then input order with the player's list first. An entry that would
// push the running total past maxTU is left out; later entries may still fit.
// maxTU <= 0 means DefaultMaxTU.
func Build(cards Cards, player, enemy []Play, maxTU int) Timeline {
	if maxTU <= 0 {
		maxTU = DefaultMaxTU
	}
	type entry struct {
		action Action
		seq    int
	}
	entries := make([]entry, 0, len(player)+len(enemy))
	add := func(side Side, plays []Play) {
		for _, p := range plays {
			c, ok := Inflate(cards, p.CardID)
			if !ok {
				continue
			}
			entries = append(entries, entry{
				action: Action{
					Actor:      side,
					Card:       c,
					SpeedCost:  c.SpeedCost,
					Weight:     Weight(c),
					SourceUnit: p.SourceUnit,
				},
				seq: len(entries),
			})
		}
	}
	add(Player, player)
	add(Enemy, enemy)

	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].action, entries[j].action
		if a.SpeedCost != b.SpeedCost {
			return a.SpeedCost < b.SpeedCost
		}
		if a.Weight != b.Weight {
			return a.Weight > b.Weight
		}
		return entries[i].seq < entries[j].seq
	})

	out := make(Timeline, 0, len(entries))
	total := 0
	for _, e := range entries {
		if total+e.action.SpeedCost > maxTU {
			continue
		}
		total += e.action.SpeedCost
		a := e.action
		a.Index = len(out)
		a.Order = a.Index + 1
		a.TU = total
		out = append(out, a)
	}
	return out
}

// ForActor returns the side's actions in queue order.
func (t Timeline) ForActor(s Side) []Action {
	var out []Action
	for _, a := range t {
		if a.Actor == s {
			out = append(out, a)
		}
	}
	return out
}

// CardsFor returns the cards the side plays this turn in queue order.
func (t Timeline) CardsFor(s Side) []catalog.Card {
	var out []catalog.Card
	for _, a := range t.ForActor(s) {
		out = append(out, a.Card)
	}
	return out
}

// PrevSameActor returns the closest earlier action by the same actor as the
// action at index i.
func (t Timeline) PrevSameActor(i int) (Action, bool) {
	if i <= 0 || i >= len(t) {
		return Action{}, false
	}
	for j := i - 1; j >= 0; j-- {
		if t[j].Actor == t[i].Actor {
			return t[j], true
		}
	}
	return Action{}, false
}

// IsLastForActor reports whether no later action belongs to the same actor.
func (t Timeline) IsLastForActor(i int) bool {
	if i < 0 || i >= len(t) {
		return false
	}
	for j := i + 1; j < len(t); j++ {
		if t[j].Actor == t[i].Actor {
			return false
		}
	}
	return true
}

// OpponentWithin reports whether an opposing action lies further along the
// queue at most window time units after the action at index i.
func (t Timeline) OpponentWithin(i, window int) bool {
	if i < 0 || i >= len(t) {
		return false
	}
	cur := t[i]
	for j := i + 1; j < len(t); j++ {
		if t[j].TU-cur.TU > window {
			break
		}
		if t[j].Actor == cur.Actor.Opponent() {
			return true
		}
	}
	return false
}

// TotalTU is the time units the queue consumes.
func (t Timeline) TotalTU() int {
	if len(t) == 0 {
		return 0
	}
	return t[len(t)-1].TU
}

// Clone copies the queue slice. Cards are shared; they are never mutated.
func (t Timeline) Clone() Timeline {
	if t == nil {
		return nil
	}
	out := make(Timeline, len(t))
	copy(out, t)
	return out
}

package token

import (
	"fmt"

	"etherduel/internal/catalog"
)

// Change describes what an Add did. Exactly one of Applied, Cancelled,
// Blocked, Consumed or Warning is usually set; Note is a human-readable
// summary for the battle log.
type Change struct {
	Token     string
	Applied   int
	Cancelled int
	// Against is the opposite token stacks were cancelled against.
	Against  string
	Blocked  bool
	Consumed int
	Purged   []string
	Warning  string
	Note     string
}

// Add grants stacks of a token. at is kept only for turn-duration tokens whose
// definition opts into timeline expiry.
func Add(defs Definitions, l Ledger, id string, stacks int, at *Stamp) (Ledger, Change) {
	ch := Change{Token: id}
	if stacks <= 0 {
		ch.Note = fmt.Sprintf("%s: nothing to add", id)
		return l, ch
	}
	def, ok := defs.Token(id)
	if !ok {
		ch.Warning = fmt.Sprintf("unknown token %q", id)
		return l, ch
	}

	if def.Category == catalog.Negative && id != Immunity && stacksIn(l.Permanent, Immunity) > 0 {
		l = l.withBucket(catalog.DurationPermanent, decrement(l.Permanent, Immunity, 1))
		ch.Blocked = true
		ch.Note = fmt.Sprintf("immunity blocked %s", def.Name)
		return l, ch
	}

	switch id {
	case Jam:
		if l.Has(Jam) {
			ch.Note = "already jammed"
			return l, ch
		}
		for _, p := range jamPurge {
			if l.Has(p) {
				l = removeEverywhere(l, p)
				ch.Purged = append(ch.Purged, p)
			}
		}
		stacks = 1
	case Reload:
		held := l.Stacks(Jam)
		if held == 0 {
			ch.Note = "nothing to reload"
			return l, ch
		}
		l = removeEverywhere(l, Jam)
		ch.Consumed = held
		ch.Note = "reload cleared jam"
		return l, ch
	}

	if def.Cancels != "" {
		if held := l.Stacks(def.Cancels); held > 0 {
			n := min(held, stacks)
			l = RemoveAny(defs, l, def.Cancels, n)
			ch.Cancelled = n
			ch.Against = def.Cancels
			stacks -= n
			if stacks == 0 {
				ch.Note = fmt.Sprintf("%s cancelled %d %s", def.Name, n, def.Cancels)
				return l, ch
			}
		}
	}

	var stamp *Stamp
	if def.Duration == catalog.DurationTurn && def.Timeline && at != nil {
		s := *at
		stamp = &s
	}
	l = l.withBucket(def.Duration, increment(l.bucket(def.Duration), id, stacks, stamp))
	ch.Applied = stacks
	if ch.Cancelled > 0 {
		ch.Note = fmt.Sprintf("%s +%d (%d cancelled %s)", def.Name, stacks, ch.Cancelled, def.Cancels)
	} else {
		ch.Note = fmt.Sprintf("%s +%d", def.Name, stacks)
	}
	return l, ch
}

// Remove takes stacks off a token in one bucket. Entries reaching zero are
// deleted; an absent token is left alone.
func Remove(l Ledger, id string, d catalog.Duration, stacks int) Ledger {
	if stacks <= 0 {
		return l
	}
	items := l.bucket(d)
	if stacksIn(items, id) == 0 {
		return l
	}
	return l.withBucket(d, decrement(items, id, stacks))
}

// RemoveAny removes stacks from the bucket the token's definition names, or
// from every bucket in display order when the definition is unknown.
func RemoveAny(defs Definitions, l Ledger, id string, stacks int) Ledger {
	if def, ok := defs.Token(id); ok && stacksIn(l.bucket(def.Duration), id) > 0 {
		return Remove(l, id, def.Duration, stacks)
	}
	for _, d := range durations {
		if stacks <= 0 {
			break
		}
		held := stacksIn(l.bucket(d), id)
		if held == 0 {
			continue
		}
		n := min(held, stacks)
		l = Remove(l, id, d, n)
		stacks -= n
	}
	return l
}

// ClearTurn drops turn-duration tokens that carry no grant stamp. Stamped
// tokens are left for ExpireByTimeline.
func ClearTurn(l Ledger) Ledger {
	kept := make([]Instance, 0, len(l.Turn))
	for _, it := range l.Turn {
		if it.GrantedAt != nil {
			kept = append(kept, it)
		}
	}
	l.Turn = kept
	return l
}

// ExpireByTimeline drops stamped turn tokens once the timeline has come a
// full lap past the position they were granted at. It returns the expired ids.
func ExpireByTimeline(l Ledger, turn, sp int) (Ledger, []string) {
	var expired []string
	kept := make([]Instance, 0, len(l.Turn))
	for _, it := range l.Turn {
		if g := it.GrantedAt; g != nil && turn > g.Turn && sp >= g.SP {
			expired = append(expired, it.ID)
			continue
		}
		kept = append(kept, it)
	}
	if len(expired) == 0 {
		return l, nil
	}
	l.Turn = kept
	return l, expired
}

func stacksIn(items []Instance, id string) int {
	n := 0
	for _, it := range items {
		if it.ID == id {
			n += it.Stacks
		}
	}
	return n
}

// increment returns a copy of items with stacks added to the entry for id,
// appending a new entry when none exists. A newer stamp replaces the old one.
func increment(items []Instance, id string, stacks int, stamp *Stamp) []Instance {
	out := cloneInstances(items)
	for i := range out {
		if out[i].ID == id {
			out[i].Stacks += stacks
			if stamp != nil {
				out[i].GrantedAt = stamp
			}
			return out
		}
	}
	return append(out, Instance{ID: id, Stacks: stacks, GrantedAt: stamp})
}

// decrement returns a copy of items with up to stacks removed from entries
// for id, in order, dropping entries that reach zero.
func decrement(items []Instance, id string, stacks int) []Instance {
	out := make([]Instance, 0, len(items))
	for _, it := range items {
		if it.ID == id && stacks > 0 {
			n := min(it.Stacks, stacks)
			it.Stacks -= n
			stacks -= n
			if it.Stacks <= 0 {
				continue
			}
		}
		out = append(out, it)
	}
	return out
}

func removeEverywhere(l Ledger, id string) Ledger {
	for _, d := range durations {
		if held := stacksIn(l.bucket(d), id); held > 0 {
			l = l.withBucket(d, decrement(l.bucket(d), id, held))
		}
	}
	return l
}

// RemoveAll drops every stack of the token from every bucket.
func RemoveAll(l Ledger, id string) Ledger {
	return removeEverywhere(l, id)
}

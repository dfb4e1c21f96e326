package battle

import (
	"fmt"

	"etherduel/internal/combat"
	"etherduel/internal/timeline"
	"etherduel/internal/token"
)

// Step resolves the queued action at index. It is a pure function of its
// arguments: the same state and index always give the same result, and st is
// never modified.
func (e *Engine) Step(st State, index int) StepResult {
	if len(st.Queue) == 0 || index < 0 || index >= len(st.Queue) {
		return e.warn(st, "no order to resolve from")
	}
	if st.Done() {
		return e.warn(st, "battle is over")
	}
	if index < st.Index {
		return e.warn(st, "action %d already resolved", index)
	}
	a := st.Queue[index]
	var events []combat.Event

	for _, side := range []timeline.Side{timeline.Player, timeline.Enemy} {
		c := st.combatant(side)
		l, expired := token.ExpireByTimeline(c.Tokens, st.Turn, a.TU)
		for _, id := range expired {
			events = append(events, combat.Event{
				Turn: st.Turn, Index: index, Actor: side, Kind: combat.EventExpire,
				Message: fmt.Sprintf("%s: %s wore off", c.Name, id),
			})
		}
		c.Tokens = l
		if side == timeline.Enemy {
			st.Enemy = c
		} else {
			st.Player = c
		}
	}

	out := combat.Resolve(combat.Input{
		Timeline: st.Queue,
		Index:    index,
		Player:   st.Player,
		Enemy:    st.Enemy,
		Defs:     e.Catalog,
		Rules:    e.Rules.Combat(),
		Roller:   combat.NewRoller(st.Seed, uint64(st.Turn)<<32|uint64(index)),
		Ctx: combat.Context{
			Turn:      st.Turn,
			Unused:    st.unused(),
			ForceCrit: st.ForceCrit,
		},
	})
	events = append(events, out.Events...)
	st.Player, st.Enemy = out.Player, out.Enemy
	st.Index = index + 1
	if a.Actor == timeline.Enemy {
		st.EnemyEther += out.Ether
	} else {
		st.PlayerEther += out.Ether
	}

	if o := outcomeOf(st.Player, st.Enemy); o != Ongoing {
		st.Outcome = o
		events = append(events, combat.Event{
			Turn: st.Turn, Index: index, Kind: combat.EventOutcome, Message: string(o),
		})
		e.log().Info("battle decided", "id", st.ID, "turn", st.Turn, "outcome", o)
	}
	return StepResult{State: st, Events: events}
}

// ResolveTurn steps through every remaining action of the turn, stopping
// early once the battle is decided.
func (e *Engine) ResolveTurn(st State) StepResult {
	if st.Pending() == 0 {
		return e.warn(st, "no order to resolve from")
	}
	var events []combat.Event
	for st.Index < len(st.Queue) && !st.Done() {
		res := e.Step(st, st.Index)
		st = res.State
		events = append(events, res.Events...)
	}
	return StepResult{State: st, Events: events}
}

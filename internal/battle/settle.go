package battle

import (
	"fmt"

	"etherduel/internal/catalog"
	"etherduel/internal/combat"
	"etherduel/internal/ether"
	"etherduel/internal/timeline"
	"etherduel/internal/token"
)

// TurnSettlement is the end-of-turn ether breakdown for both sides.
type TurnSettlement struct {
	Turn     int                  `json:"turn"`
	Player   ether.Settlement     `json:"player"`
	Enemy    ether.Settlement     `json:"enemy"`
	Transfer ether.TransferResult `json:"transfer"`
}

// SettleResult is the outcome of EndTurn.
type SettleResult struct {
	State      State
	Settlement *TurnSettlement
	Events     []combat.Event
}

// EndTurn settles both sides' accumulated ether and applies the net
// transfer. Unresolved actions must be stepped first unless the battle is
// already decided.
func (e *Engine) EndTurn(st State) SettleResult {
	if st.Settled {
		return e.settleWarn(st, "turn %d already settled", st.Turn)
	}
	if st.Pending() > 0 && !st.Done() {
		return e.settleWarn(st, "%d actions still to resolve", st.Pending())
	}

	multipliers := e.Catalog.ComboMultipliers()
	settle := func(side timeline.Side, raw int, relic float64) (ether.Settlement, map[string]int) {
		c := st.combatant(side)
		combo, _ := e.detector().Detect(st.Queue.CardsFor(side))
		return ether.Settle(ether.SettleInput{
			Raw:           raw,
			Halve:         holdsEffect(e.Catalog, c.Tokens, catalog.TokenEffectEtherHalve),
			Combo:         combo,
			Multipliers:   multipliers,
			Amplifier:     relic,
			Usage:         c.ComboUsage,
			DeflationBase: e.Rules.DeflationBase,
		})
	}
	ps, pUsage := settle(timeline.Player, st.PlayerEther, st.PlayerRelic)
	es, eUsage := settle(timeline.Enemy, st.EnemyEther, st.EnemyRelic)
	st.Player.ComboUsage = pUsage
	st.Enemy.ComboUsage = eUsage

	tr := ether.Transfer(ether.TransferInput{
		Player:        ether.Pool{Ether: st.Player.Ether, Overflow: st.Player.EtherOverflow},
		Enemy:         ether.Pool{Ether: st.Enemy.Ether, Overflow: st.Enemy.EtherOverflow},
		PlayerSettled: ps.Final,
		EnemySettled:  es.Final,
		PlayerDead:    !st.Player.Alive(),
		EnemyDead:     !st.Enemy.Alive(),
		Cap:           e.Rules.MaxEther,
	})
	st.Player.Ether, st.Player.EtherOverflow = tr.Player.Ether, tr.Player.Overflow
	st.Enemy.Ether, st.Enemy.EtherOverflow = tr.Enemy.Ether, tr.Enemy.Overflow
	st.PlayerEther, st.EnemyEther = 0, 0
	st.Settled = true

	ts := &TurnSettlement{Turn: st.Turn, Player: ps, Enemy: es, Transfer: tr}
	events := []combat.Event{
		settleEvent(st.Turn, timeline.Player, ps),
		settleEvent(st.Turn, timeline.Enemy, es),
	}
	if tr.Moved > 0 {
		events = append(events, combat.Event{Turn: st.Turn, Index: -1, Actor: tr.Toward, Kind: combat.EventSettle,
			Message: fmt.Sprintf("%d ether moves to %s", tr.Moved, tr.Toward)})
	}
	if tr.Recovered > 0 {
		events = append(events, combat.Event{Turn: st.Turn, Index: -1, Kind: combat.EventSettle,
			Message: fmt.Sprintf("recovered +%d ether", tr.Recovered)})
	}
	e.log().Debug("turn settled", "id", st.ID, "turn", st.Turn,
		"player", ps.Final, "enemy", es.Final, "moved", tr.Moved, "recovered", tr.Recovered)
	return SettleResult{State: st, Settlement: ts, Events: events}
}

func (e *Engine) settleWarn(st State, format string, args ...any) SettleResult {
	res := e.warn(st, format, args...)
	return SettleResult{State: res.State, Events: res.Events}
}

func (e *Engine) detector() ether.Detector {
	if e.Detector == nil {
		return ether.HandDetector{}
	}
	return e.Detector
}

func settleEvent(turn int, side timeline.Side, s ether.Settlement) combat.Event {
	msg := fmt.Sprintf("%s settles %d ether", side, s.Final)
	if s.Combo != "" {
		msg = fmt.Sprintf("%s settles %d ether (%s x%.2f, deflation %.2f)", side, s.Final, s.Combo, s.Multiplier, s.Deflation)
	}
	return combat.Event{Turn: turn, Index: -1, Actor: side, Kind: combat.EventSettle, Message: msg}
}

func holdsEffect(defs token.Definitions, l token.Ledger, k catalog.TokenEffectKind) bool {
	for _, it := range l.All() {
		if def, ok := defs.Token(it.ID); ok && def.Effect.Kind == k {
			return true
		}
	}
	return false
}

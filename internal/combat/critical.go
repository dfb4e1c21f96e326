package combat

import (
	"etherduel/internal/catalog"
	"etherduel/internal/timeline"
	"etherduel/internal/token"
)

// Rules are the balance constants the resolver reads.
type Rules struct {
	// CritBase is the player's base critical chance in percent.
	CritBase       float64
	CritMultiplier int
	// CrossWindow is the default window for cross_bonus effects that do not
	// set their own.
	CrossWindow int
}

// DefaultRules returns the stock balance constants.
func DefaultRules() Rules {
	return Rules{CritBase: 5, CritMultiplier: 2, CrossWindow: 2}
}

// CritChance is the attacker's critical chance in percent for one hit.
func CritChance(att Combatant, defs token.Definitions, rules Rules, double bool) float64 {
	chance := rules.CritBase + float64(att.Strength) + float64(att.Energy)
	chance += float64(tokenSum(defs, att.Tokens, catalog.TokenEffectCritBonus))
	if double {
		chance *= 2
	}
	return chance
}

// RollCrit decides whether a hit is critical. Enemy actors never crit and a
// forced crit skips the draw.
func RollCrit(actor timeline.Side, chance float64, forced bool, r Roller) bool {
	if actor == timeline.Enemy {
		return false
	}
	if forced {
		return true
	}
	if r == nil || chance <= 0 {
		return false
	}
	return r.Float64()*100 < chance
}

// tokenSum adds stacks*value over held tokens whose definition has kind k.
func tokenSum(defs token.Definitions, l token.Ledger, k catalog.TokenEffectKind) int {
	n := 0
	for _, it := range l.All() {
		def, ok := defs.Token(it.ID)
		if !ok || def.Effect.Kind != k {
			continue
		}
		n += it.Stacks * def.Effect.Value
	}
	return n
}

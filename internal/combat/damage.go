package combat

import (
	"etherduel/internal/catalog"
	"etherduel/internal/token"
)

// DamageResult is the outcome of applying one hit.
type DamageResult struct {
	Target Combatant
	// Blocked is the block the hit destroyed.
	Blocked int
	// Dealt is the hp the hit removed.
	Dealt int
}

// ApplyDamage absorbs amount with block first and takes the rest from hp,
// flooring hp at zero. With ignoreBlock the block is neither used nor spent.
func ApplyDamage(c Combatant, amount int, ignoreBlock bool) DamageResult {
	if amount <= 0 {
		return DamageResult{Target: c}
	}
	var res DamageResult
	if !ignoreBlock && c.Block > 0 {
		res.Blocked = min(c.Block, amount)
		c.Block -= res.Blocked
		amount -= res.Blocked
	}
	res.Dealt = min(c.HP, amount)
	c.HP -= res.Dealt
	res.Target = clampHP(c)
	return res
}

// HitDamage scales base damage by the attacker's dealt and the defender's
// taken percentage tokens, then by the critical multiplier.
func HitDamage(base int, att, def Combatant, defs token.Definitions, crit bool, multiplier int) int {
	if base <= 0 {
		return 0
	}
	dealt := max(0, 100+tokenSum(defs, att.Tokens, catalog.TokenEffectDamageDealt))
	taken := max(0, 100+tokenSum(defs, def.Tokens, catalog.TokenEffectDamageTaken))
	d := base * dealt / 100
	d = d * taken / 100
	if crit && multiplier > 1 {
		d *= multiplier
	}
	return max(0, d)
}

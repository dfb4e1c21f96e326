package combat

import (
	"fmt"

	"etherduel/internal/catalog"
	"etherduel/internal/timeline"
	"etherduel/internal/token"
)

// Context is per-turn information the resolver needs besides the queue.
type Context struct {
	Turn int
	// Unused holds each side's hand cards not played this turn.
	Unused    map[timeline.Side][]catalog.Card
	ForceCrit bool
}

// Input is everything one action's resolution reads.
type Input struct {
	Timeline timeline.Timeline
	Index    int
	Player   Combatant
	Enemy    Combatant
	Defs     token.Definitions
	Rules    Rules
	Roller   Roller
	Ctx      Context
}

// Hit records one resolved hit.
type Hit struct {
	Damage  int  `json:"damage"`
	Blocked int  `json:"blocked"`
	Dealt   int  `json:"dealt"`
	Crit    bool `json:"crit"`
}

// Output is the result of resolving one action.
type Output struct {
	Player Combatant
	Enemy  Combatant
	// Card is the resolution-scoped card view after modifiers.
	Card   catalog.Card
	Events []Event
	Hits   []Hit
	// Ether is the action's contribution to its actor's turn total.
	Ether   int
	Skipped bool
}

type resolution struct {
	in     Input
	action timeline.Action
	card   catalog.Card
	att    Combatant
	def    Combatant
	before token.Ledger
	events []Event
	hits   []Hit

	ignoreBlock bool
	misfire     bool
	jamAfter    bool
	executed    bool
}

// Resolve runs one action through the pre-attack, critical, damage and
// post-attack stages, then the once-per-action side effects. It never fails:
// bad references resolve as a no-op with a warning event.
func Resolve(in Input) Output {
	if in.Index < 0 || in.Index >= len(in.Timeline) {
		return Output{
			Player:  in.Player,
			Enemy:   in.Enemy,
			Events:  []Event{{Turn: in.Ctx.Turn, Index: in.Index, Kind: EventWarning, Message: fmt.Sprintf("no action at index %d", in.Index)}},
			Skipped: true,
		}
	}
	if in.Rules.CritMultiplier == 0 {
		in.Rules = DefaultRules()
	}
	a := in.Timeline[in.Index]
	r := &resolution{in: in, action: a, card: a.Card}
	if a.Actor == timeline.Enemy {
		r.att, r.def = in.Enemy.Clone(), in.Player.Clone()
	} else {
		r.att, r.def = in.Player.Clone(), in.Enemy.Clone()
	}
	r.before = r.att.Tokens

	if !r.att.Alive() || !r.def.Alive() {
		r.emit(EventSkip, "%s skipped: battle already decided", r.card.Name)
		return r.output(true)
	}

	r.payRetaliation()
	if !r.att.Alive() {
		r.emit(EventSkip, "%s fell before acting", r.att.Name)
		return r.output(true)
	}

	r.preAttack()
	if r.attacks() {
		if r.misfire {
			r.emit(EventModifier, "%s misfired: jammed", r.card.Name)
		} else {
			r.hitLoop()
		}
		r.spendAttackTokens()
	}
	if r.jamAfter {
		r.grant(&r.att, token.Jam, 1, nil)
	}
	r.gainBlock()
	r.onHitBlock()
	r.onResolve()
	r.damageOverTime()
	r.consumeRequirements()

	out := r.output(false)
	out.Ether = max(0, r.card.Ether)
	if out.Ether > 0 {
		r.emit(EventEther, "%s +%d ether", r.card.Name, out.Ether)
		out.Events = r.events
	}
	return out
}

func (r *resolution) output(skipped bool) Output {
	out := Output{Card: r.card, Events: r.events, Hits: r.hits, Skipped: skipped}
	if r.action.Actor == timeline.Enemy {
		out.Enemy, out.Player = r.att, r.def
	} else {
		out.Player, out.Enemy = r.att, r.def
	}
	return out
}

func (r *resolution) emit(kind EventKind, format string, args ...any) {
	r.events = append(r.events, Event{
		Turn:    r.in.Ctx.Turn,
		Index:   r.action.Index,
		Actor:   r.action.Actor,
		Card:    r.card.ID,
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
	})
}

func (r *resolution) attacks() bool {
	return r.card.Type == catalog.Attack || r.card.Damage > 0
}

func (r *resolution) grant(c *Combatant, id string, stacks int, at *token.Stamp) {
	l, ch := token.Add(r.in.Defs, c.Tokens, id, stacks, at)
	c.Tokens = l
	switch {
	case ch.Warning != "":
		r.emit(EventWarning, "%s", ch.Warning)
	case ch.Note != "":
		r.emit(EventToken, "%s: %s", c.Name, ch.Note)
	}
}

// payRetaliation lets the defender's stored counter hit the actor.
func (r *resolution) payRetaliation() {
	n := tokenSum(r.in.Defs, r.def.Tokens, catalog.TokenEffectRetaliate)
	if n <= 0 {
		return
	}
	res := ApplyDamage(r.att, n, false)
	r.att = res.Target
	for _, it := range r.def.Tokens.All() {
		if d, ok := r.in.Defs.Token(it.ID); ok && d.Effect.Kind == catalog.TokenEffectRetaliate {
			r.def.Tokens = token.RemoveAll(r.def.Tokens, it.ID)
		}
	}
	r.emit(EventRetaliate, "%s retaliates for %d (%d blocked)", r.def.Name, n, res.Blocked)
}

func (r *resolution) preAttack() {
	c := &r.card
	tl := r.in.Timeline
	for _, e := range c.Effects {
		switch e := e.(type) {
		case catalog.IgnoreBlock:
			r.ignoreBlock = true
			r.emit(EventModifier, "%s ignores block", c.Name)
		case catalog.ClearBlocks:
			r.att.Block, r.def.Block = 0, 0
			r.emit(EventModifier, "%s clears all block", c.Name)
		case catalog.DoubleIfOnlyAttack:
			if countType(tl.CardsFor(r.action.Actor), catalog.Attack) == 1 {
				c.Damage *= 2
				r.emit(EventModifier, "%s doubled: only attack this turn", c.Name)
			}
		case catalog.StatScaled:
			stat := r.att.Strength
			if e.Stat == catalog.StatAgility {
				stat = r.att.Agility
			}
			if bonus := stat * e.PerPoint; bonus != 0 {
				c.Damage = max(0, c.Damage+bonus)
				r.emit(EventModifier, "%s %+d from %s", c.Name, bonus, e.Stat)
			}
		case catalog.CrossBonus:
			window := e.Window
			if window <= 0 {
				window = r.in.Rules.CrossWindow
			}
			if tl.OpponentWithin(r.action.Index, window) {
				c.Damage += e.Damage
				r.emit(EventModifier, "%s cross +%d", c.Name, e.Damage)
			}
		case catalog.ChainBonus:
			if prev, ok := tl.PrevSameActor(r.action.Index); ok && prev.Card.HasTrait(e.After) {
				c.Damage += e.Damage
				r.emit(EventModifier, "%s +%d after %s", c.Name, e.Damage, prev.Card.Name)
			}
		case catalog.Ammo:
			if r.att.Tokens.Has(token.Jam) {
				r.misfire = true
			} else {
				r.jamAfter = true
			}
		case catalog.Reload:
			r.grant(&r.att, token.Reload, 1, nil)
			r.misfire = false
		case catalog.MultiHit:
			hits := 1
			if r.att.Energy > 0 && r.in.Roller != nil {
				hits = 0
				for i := 0; i < r.att.Energy; i++ {
					hits += 1 + r.in.Roller.IntN(2)
				}
			}
			c.Hits = hits
			r.emit(EventModifier, "%s strikes %d times", c.Name, hits)
		}
	}
	if c.Hits <= 0 {
		c.Hits = 1
	}
}

func (r *resolution) hitLoop() {
	crit := r.card.Effects.Has(catalog.KindGuaranteedCrit) || r.in.Ctx.ForceCrit
	double := r.card.Effects.Has(catalog.KindDoubleCrit)
	hits := r.card.Hits
	for h := 0; h < hits; h++ {
		if !r.def.Alive() {
			break
		}
		chance := CritChance(r.att, r.in.Defs, r.in.Rules, double)
		isCrit := RollCrit(r.action.Actor, chance, crit, r.in.Roller)
		dmg := HitDamage(r.card.Damage, r.att, r.def, r.in.Defs, isCrit, r.in.Rules.CritMultiplier)
		blockBefore := r.def.Block
		res := ApplyDamage(r.def, dmg, r.ignoreBlock)
		r.def = res.Target
		r.hits = append(r.hits, Hit{Damage: dmg, Blocked: res.Blocked, Dealt: res.Dealt, Crit: isCrit})
		if isCrit {
			r.emit(EventCritical, "%s critical hit", r.card.Name)
		}
		r.emit(EventDamage, "%s hits %s for %d (%d blocked)", r.card.Name, r.def.Name, res.Dealt, res.Blocked)

		hits += r.postAttack(h, isCrit, blockBefore, res)
	}
}

// postAttack runs the per-hit triggers in the card's declared order and
// returns any extra hits granted. Extra-hit and retaliation triggers only
// count on the first hit; execute fires at most once per action.
func (r *resolution) postAttack(h int, crit bool, blockBefore int, res DamageResult) int {
	extra := 0
	first := h == 0
	for _, e := range r.card.Effects {
		switch e := e.(type) {
		case catalog.Execute:
			if r.executed || !r.def.Alive() || r.def.MaxHP <= 0 {
				continue
			}
			if r.def.HP*100 < r.def.MaxHP*e.BelowPercent {
				r.def.HP = 0
				r.executed = true
				r.emit(EventExecute, "%s executes %s", r.card.Name, r.def.Name)
			}
		case catalog.VulnerableIfUnblocked:
			if blockBefore == 0 {
				r.grant(&r.def, token.Vulnerable, e.Stacks, nil)
			}
		case catalog.ExtraHitIfLast:
			if first && r.in.Timeline.IsLastForActor(r.action.Index) {
				extra += e.Hits
				r.emit(EventModifier, "%s last card: +%d hit", r.card.Name, e.Hits)
			}
		case catalog.ExtraHitPerUnused:
			if !first {
				continue
			}
			cat := e.Category
			if cat == "" {
				cat = r.card.Category
			}
			if n := countCategory(r.in.Ctx.Unused[r.action.Actor], cat); n > 0 {
				extra += n
				r.emit(EventModifier, "%s +%d hit from unused %s cards", r.card.Name, n, cat)
			}
		case catalog.Retaliate:
			if first && e.Damage > 0 {
				r.grant(&r.att, token.Counter, e.Damage, nil)
			}
		case catalog.StealBlock:
			if res.Blocked > 0 {
				r.att.Block += res.Blocked
				r.emit(EventBlock, "%s takes %d block", r.att.Name, res.Blocked)
			}
		case catalog.CritReload:
			if crit {
				r.jamAfter = false
				if r.att.Tokens.Has(token.Jam) {
					r.grant(&r.att, token.Reload, 1, nil)
				}
			}
		}
	}
	return extra
}

// spendAttackTokens removes one stack from each usage-duration critical or
// damage bonus token the attacker used.
func (r *resolution) spendAttackTokens() {
	for _, it := range r.att.Tokens.Usage {
		def, ok := r.in.Defs.Token(it.ID)
		if !ok {
			continue
		}
		if def.Effect.Kind == catalog.TokenEffectCritBonus || def.Effect.Kind == catalog.TokenEffectDamageDealt {
			r.att.Tokens = token.Remove(r.att.Tokens, it.ID, catalog.DurationUsage, 1)
		}
	}
}

func (r *resolution) gainBlock() {
	if r.card.Type == catalog.Defense {
		r.att.Defending = true
	}
	if r.card.Block > 0 {
		r.att.Block += r.card.Block
		r.emit(EventBlock, "%s gains %d block", r.att.Name, r.card.Block)
	}
}

// onHitBlock grants flat block from onhit_block tokens held before this
// action. A token this card grants itself never pays out on the same card.
func (r *resolution) onHitBlock() {
	if len(r.hits) == 0 {
		return
	}
	self := map[string]bool{}
	for _, e := range r.card.Effects {
		if g, ok := e.(catalog.GrantToken); ok && g.Target == catalog.TargetSelf {
			self[g.Token] = true
		}
	}
	total := 0
	for _, it := range r.before.All() {
		def, ok := r.in.Defs.Token(it.ID)
		if !ok || def.Effect.Kind != catalog.TokenEffectOnHitBlock || self[it.ID] {
			continue
		}
		total += def.Effect.Value
	}
	if total > 0 {
		r.att.Block += total
		r.emit(EventBlock, "%s gains %d block on hit", r.att.Name, total)
	}
}

func (r *resolution) onResolve() {
	at := &token.Stamp{Turn: r.in.Ctx.Turn, SP: r.action.TU}
	for _, e := range r.card.Effects {
		switch e := e.(type) {
		case catalog.GrantToken:
			if e.Target == catalog.TargetOpponent {
				r.grant(&r.def, e.Token, e.Stacks, at)
			} else {
				r.grant(&r.att, e.Token, e.Stacks, at)
			}
		case catalog.Heal:
			if e.Amount <= 0 || !r.att.Alive() {
				continue
			}
			before := r.att.HP
			r.att.HP += e.Amount
			r.att = clampHP(r.att)
			r.emit(EventHeal, "%s heals %d", r.att.Name, r.att.HP-before)
		}
	}
}

// damageOverTime hurts the actor by its dot tokens, bypassing block.
func (r *resolution) damageOverTime() {
	n := tokenSum(r.in.Defs, r.att.Tokens, catalog.TokenEffectDOT)
	if n <= 0 || !r.att.Alive() {
		return
	}
	res := ApplyDamage(r.att, n, true)
	r.att = res.Target
	r.emit(EventDOT, "%s takes %d over time", r.att.Name, res.Dealt)
}

// consumeRequirements spends the card's prerequisite tokens, never taking a
// token below its RetainMin.
func (r *resolution) consumeRequirements() {
	for _, req := range r.card.Requires {
		held := r.att.Tokens.Stacks(req.Token)
		floor := 0
		if def, ok := r.in.Defs.Token(req.Token); ok {
			floor = def.RetainMin
		}
		take := min(req.Stacks, held-floor)
		if take <= 0 {
			continue
		}
		r.att.Tokens = token.RemoveAny(r.in.Defs, r.att.Tokens, req.Token, take)
		r.emit(EventToken, "%s spends %d %s", r.att.Name, take, req.Token)
	}
}

func countType(cards []catalog.Card, t catalog.CardType) int {
	n := 0
	for _, c := range cards {
		if c.Type == t {
			n++
		}
	}
	return n
}

func countCategory(cards []catalog.Card, cat string) int {
	if cat == "" {
		return 0
	}
	n := 0
	for _, c := range cards {
		if c.Category == cat {
			n++
		}
	}
	return n
}

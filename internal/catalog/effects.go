package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ErrUnknownEffect is returned when a card declares an effect kind the
// resolver does not implement.
var ErrUnknownEffect = errors.New("unknown effect kind")

// EffectKind is the discriminator of the effect union.
type EffectKind string

const (
	KindIgnoreBlock           EffectKind = "ignore_block"
	KindClearBlocks           EffectKind = "clear_blocks"
	KindDoubleIfOnlyAttack    EffectKind = "double_if_only_attack"
	KindStatScaled            EffectKind = "stat_scaled"
	KindCrossBonus            EffectKind = "cross_bonus"
	KindChainBonus            EffectKind = "chain_bonus"
	KindAmmo                  EffectKind = "ammo"
	KindReload                EffectKind = "reload"
	KindMultiHit              EffectKind = "multi_hit"
	KindDoubleCrit            EffectKind = "double_crit"
	KindGuaranteedCrit        EffectKind = "guaranteed_crit"
	KindExecute               EffectKind = "execute"
	KindVulnerableIfUnblocked EffectKind = "vulnerable_if_unblocked"
	KindExtraHitIfLast        EffectKind = "extra_hit_if_last"
	KindExtraHitPerUnused     EffectKind = "extra_hit_per_unused"
	KindRetaliate             EffectKind = "retaliate"
	KindStealBlock            EffectKind = "steal_block"
	KindCritReload            EffectKind = "crit_reload"
	KindGrantToken            EffectKind = "grant_token"
	KindHeal                  EffectKind = "heal"
)

// Effect is one entry of a card's effect list. The concrete types below are
// the closed set of effects; the resolver dispatches on them with a type
// switch.
type Effect interface {
	Kind() EffectKind
}

// Stat names a combatant attribute an effect can scale with.
type Stat string

const (
	StatStrength Stat = "strength"
	StatAgility  Stat = "agility"
)

// Target selects who receives a granted token.
type Target string

const (
	TargetSelf     Target = "self"
	TargetOpponent Target = "opponent"
)

type (
	IgnoreBlock        struct{}
	ClearBlocks        struct{}
	DoubleIfOnlyAttack struct{}
	StatScaled         struct {
		Stat     Stat `json:"stat"`
		PerPoint int  `json:"perPoint"`
	}
	// CrossBonus applies when an opposing action sits at most Window time
	// units further along the queue.
	CrossBonus struct {
		Window int `json:"window"`
		Damage int `json:"damage"`
	}
	// ChainBonus applies when the same actor's previous action carries After.
	ChainBonus struct {
		After  Trait `json:"after"`
		Damage int   `json:"damage"`
	}
	Ammo           struct{}
	Reload         struct{}
	MultiHit       struct{}
	DoubleCrit     struct{}
	GuaranteedCrit struct{}
	Execute        struct {
		BelowPercent int `json:"belowPercent"`
	}
	VulnerableIfUnblocked struct {
		Stacks int `json:"stacks"`
	}
	ExtraHitIfLast struct {
		Hits int `json:"hits"`
	}
	// ExtraHitPerUnused adds one hit per unplayed hand card of Category. An
	// empty Category means the card's own category.
	ExtraHitPerUnused struct {
		Category string `json:"category"`
	}
	Retaliate struct {
		Damage int `json:"damage"`
	}
	StealBlock struct{}
	CritReload struct{}
	GrantToken struct {
		Token  string `json:"token"`
		Stacks int    `json:"stacks"`
		Target Target `json:"target"`
	}
	Heal struct {
		Amount int `json:"amount"`
	}
)

func (IgnoreBlock) Kind() EffectKind           { return KindIgnoreBlock }
func (ClearBlocks) Kind() EffectKind           { return KindClearBlocks }
func (DoubleIfOnlyAttack) Kind() EffectKind    { return KindDoubleIfOnlyAttack }
func (StatScaled) Kind() EffectKind            { return KindStatScaled }
func (CrossBonus) Kind() EffectKind            { return KindCrossBonus }
func (ChainBonus) Kind() EffectKind            { return KindChainBonus }
func (Ammo) Kind() EffectKind                  { return KindAmmo }
func (Reload) Kind() EffectKind                { return KindReload }
func (MultiHit) Kind() EffectKind              { return KindMultiHit }
func (DoubleCrit) Kind() EffectKind            { return KindDoubleCrit }
func (GuaranteedCrit) Kind() EffectKind        { return KindGuaranteedCrit }
func (Execute) Kind() EffectKind               { return KindExecute }
func (VulnerableIfUnblocked) Kind() EffectKind { return KindVulnerableIfUnblocked }
func (ExtraHitIfLast) Kind() EffectKind        { return KindExtraHitIfLast }
func (ExtraHitPerUnused) Kind() EffectKind     { return KindExtraHitPerUnused }
func (Retaliate) Kind() EffectKind             { return KindRetaliate }
func (StealBlock) Kind() EffectKind            { return KindStealBlock }
func (CritReload) Kind() EffectKind            { return KindCritReload }
func (GrantToken) Kind() EffectKind            { return KindGrantToken }
func (Heal) Kind() EffectKind                  { return KindHeal }

// EffectList is a card's ordered effect list. Order is preserved from the
// catalog file and is the order each stage evaluates its effects in.
type EffectList []Effect

// Has reports whether the list contains an effect of kind k.
func (l EffectList) Has(k EffectKind) bool {
	for _, e := range l {
		if e.Kind() == k {
			return true
		}
	}
	return false
}

// effectSpec is the flat YAML and JSON shape of one effect entry.
type effectSpec struct {
	Kind         EffectKind `yaml:"kind" json:"kind"`
	Stat         Stat       `yaml:"stat" json:"stat"`
	PerPoint     int        `yaml:"perPoint" json:"perPoint"`
	Window       int        `yaml:"window" json:"window"`
	Damage       int        `yaml:"damage" json:"damage"`
	After        Trait      `yaml:"after" json:"after"`
	BelowPercent int        `yaml:"belowPercent" json:"belowPercent"`
	Stacks       int        `yaml:"stacks" json:"stacks"`
	Hits         int        `yaml:"hits" json:"hits"`
	Category     string     `yaml:"category" json:"category"`
	Token        string     `yaml:"token" json:"token"`
	Target       Target     `yaml:"target" json:"target"`
	Amount       int        `yaml:"amount" json:"amount"`
}

func (s effectSpec) effect() (Effect, error) {
	switch s.Kind {
	case KindIgnoreBlock:
		return IgnoreBlock{}, nil
	case KindClearBlocks:
		return ClearBlocks{}, nil
	case KindDoubleIfOnlyAttack:
		return DoubleIfOnlyAttack{}, nil
	case KindStatScaled:
		if s.Stat != StatStrength && s.Stat != StatAgility {
			return nil, fmt.Errorf("stat_scaled: unknown stat %q", s.Stat)
		}
		return StatScaled{Stat: s.Stat, PerPoint: s.PerPoint}, nil
	case KindCrossBonus:
		return CrossBonus{Window: s.Window, Damage: s.Damage}, nil
	case KindChainBonus:
		if s.After == "" {
			return nil, errors.New("chain_bonus: after is required")
		}
		return ChainBonus{After: s.After, Damage: s.Damage}, nil
	case KindAmmo:
		return Ammo{}, nil
	case KindReload:
		return Reload{}, nil
	case KindMultiHit:
		return MultiHit{}, nil
	case KindDoubleCrit:
		return DoubleCrit{}, nil
	case KindGuaranteedCrit:
		return GuaranteedCrit{}, nil
	case KindExecute:
		return Execute{BelowPercent: s.BelowPercent}, nil
	case KindVulnerableIfUnblocked:
		stacks := s.Stacks
		if stacks <= 0 {
			stacks = 1
		}
		return VulnerableIfUnblocked{Stacks: stacks}, nil
	case KindExtraHitIfLast:
		hits := s.Hits
		if hits <= 0 {
			hits = 1
		}
		return ExtraHitIfLast{Hits: hits}, nil
	case KindExtraHitPerUnused:
		return ExtraHitPerUnused{Category: s.Category}, nil
	case KindRetaliate:
		return Retaliate{Damage: s.Damage}, nil
	case KindStealBlock:
		return StealBlock{}, nil
	case KindCritReload:
		return CritReload{}, nil
	case KindGrantToken:
		if s.Token == "" {
			return nil, errors.New("grant_token: token is required")
		}
		stacks := s.Stacks
		if stacks <= 0 {
			stacks = 1
		}
		target := s.Target
		if target == "" {
			target = TargetSelf
		}
		if target != TargetSelf && target != TargetOpponent {
			return nil, fmt.Errorf("grant_token: unknown target %q", target)
		}
		return GrantToken{Token: s.Token, Stacks: stacks, Target: target}, nil
	case KindHeal:
		return Heal{Amount: s.Amount}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownEffect, s.Kind)
	}
}

// UnmarshalYAML decodes a sequence of {kind: ...} mappings.
func (l *EffectList) UnmarshalYAML(value *yaml.Node) error {
	var specs []effectSpec
	if err := value.Decode(&specs); err != nil {
		return err
	}
	return l.fromSpecs(specs)
}

// UnmarshalJSON accepts the shape MarshalJSON writes.
func (l *EffectList) UnmarshalJSON(b []byte) error {
	var specs []effectSpec
	if err := json.Unmarshal(b, &specs); err != nil {
		return err
	}
	return l.fromSpecs(specs)
}

func (l *EffectList) fromSpecs(specs []effectSpec) error {
	out := make(EffectList, 0, len(specs))
	for i, s := range specs {
		e, err := s.effect()
		if err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
		out = append(out, e)
	}
	*l = out
	return nil
}

// MarshalJSON writes each effect with its kind so clients can tell them apart.
func (l EffectList) MarshalJSON() ([]byte, error) {
	out := make([]map[string]any, 0, len(l))
	for _, e := range l {
		b, err := json.Marshal(e)
		if err != nil {
			return nil, err
		}
		m := map[string]any{}
		if err := json.Unmarshal(b, &m); err != nil {
			return nil, err
		}
		m["kind"] = e.Kind()
		out = append(out, m)
	}
	return json.Marshal(out)
}

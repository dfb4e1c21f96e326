package catalog

// CardType classifies what a card mainly does.
type CardType string

const (
	Attack  CardType = "attack"
	Defense CardType = "defense"
	Support CardType = "support"
	General CardType = "general"
)

// Trait tags a card for positional bonuses on neighbouring actions.
type Trait string

const (
	TraitCross    Trait = "cross"
	TraitChain    Trait = "chain"
	TraitFollowUp Trait = "followup"
	TraitFinisher Trait = "finisher"
)

// Priority names a tie-break tier for cards with equal speed cost.
type Priority string

const (
	PriorityQuick  Priority = "quick"
	PriorityNormal Priority = "normal"
	PrioritySlow   Priority = "slow"
)

// Card is a static card definition. Zero values for SpeedCost, ActionCost,
// Hits and Priority mean "use the default" and are filled in when the card is
// placed on a timeline.
type Card struct {
	ID             string      `yaml:"id" json:"id"`
	Name           string      `yaml:"name" json:"name"`
	Type           CardType    `yaml:"type" json:"type"`
	Damage         int         `yaml:"damage" json:"damage"`
	Block          int         `yaml:"block" json:"block"`
	SpeedCost      int         `yaml:"speedCost" json:"speedCost"`
	ActionCost     int         `yaml:"actionCost" json:"actionCost"`
	Priority       Priority    `yaml:"priority" json:"priority"`
	PriorityWeight *int        `yaml:"priorityWeight" json:"priorityWeight,omitempty"`
	Hits           int         `yaml:"hits" json:"hits"`
	Ether          int         `yaml:"ether" json:"ether"`
	Traits         []Trait     `yaml:"traits" json:"traits"`
	Category       string      `yaml:"category" json:"category,omitempty"`
	Effects        EffectList  `yaml:"effects" json:"effects"`
	Requires       []TokenCost `yaml:"requires" json:"requires,omitempty"`
}

// HasTrait reports whether the card carries trait t.
func (c Card) HasTrait(t Trait) bool {
	for _, tr := range c.Traits {
		if tr == t {
			return true
		}
	}
	return false
}

// TokenCost is a prerequisite token a card consumes when it resolves.
type TokenCost struct {
	Token  string `yaml:"token" json:"token"`
	Stacks int    `yaml:"stacks" json:"stacks"`
}

// Duration is the expiry class of a token.
type Duration string

const (
	DurationUsage     Duration = "usage"
	DurationTurn      Duration = "turn"
	DurationPermanent Duration = "permanent"
)

// TokenCategory marks a token as a buff, a debuff or neither.
type TokenCategory string

const (
	Positive TokenCategory = "positive"
	Negative TokenCategory = "negative"
	Neutral  TokenCategory = "neutral"
)

// TokenEffectKind names what a held token does to resolution.
type TokenEffectKind string

const (
	TokenEffectNone        TokenEffectKind = ""
	TokenEffectCritBonus   TokenEffectKind = "crit_bonus"
	TokenEffectDamageDealt TokenEffectKind = "damage_dealt"
	TokenEffectDamageTaken TokenEffectKind = "damage_taken"
	TokenEffectDOT         TokenEffectKind = "dot"
	TokenEffectOnHitBlock  TokenEffectKind = "onhit_block"
	TokenEffectEtherHalve  TokenEffectKind = "ether_halve"
	TokenEffectRetaliate   TokenEffectKind = "retaliate"
)

// TokenEffect is the effect descriptor of a token definition. Value is read
// per stack for crit_bonus, damage_dealt, damage_taken and dot, and as a flat
// amount for onhit_block.
type TokenEffect struct {
	Kind  TokenEffectKind `yaml:"kind" json:"kind"`
	Value int             `yaml:"value" json:"value"`
}

// TokenDef is a static token definition.
type TokenDef struct {
	ID       string        `yaml:"id" json:"id"`
	Name     string        `yaml:"name" json:"name"`
	Duration Duration      `yaml:"duration" json:"duration"`
	Category TokenCategory `yaml:"category" json:"category"`
	Effect   TokenEffect   `yaml:"effect" json:"effect"`
	// Cancels names the opposite token; overlapping stacks cancel 1:1.
	Cancels string `yaml:"cancels" json:"cancels,omitempty"`
	// RetainMin is the floor a prerequisite consumption never goes below.
	RetainMin int `yaml:"retainMin" json:"retainMin,omitempty"`
	// Timeline makes turn-duration grants expire one lap after the granting
	// position instead of at end of turn.
	Timeline bool `yaml:"timeline" json:"timeline,omitempty"`
}

package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testCatalogYAML = `cards:
  - id: slash
    name: Slash
    type: attack
    damage: 8
    speedCost: 3
    traits: [chain]
    effects:
      - kind: vulnerable_if_unblocked
        stacks: 2
      - kind: stat_scaled
        stat: agility
        perPoint: 5
  - id: guard
    type: defense
    block: 10
    priorityWeight: 0
tokens:
  - id: offense
    duration: usage
    category: positive
    effect: {kind: damage_dealt, value: 50}
    cancels: dull
  - id: dull
    duration: usage
    category: negative
    effect: {kind: damage_dealt, value: -50}
combos:
  pair: 1.5
`

func TestLoad_Valid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testCatalogYAML), 0o600)) //nolint:gosec // test file

	c, err := Load(path)
	require.NoError(t, err)

	slash, ok := c.Card("slash")
	require.True(t, ok)
	assert.Equal(t, "Slash", slash.Name)
	assert.Equal(t, Attack, slash.Type)
	assert.True(t, slash.HasTrait(TraitChain))
	require.Len(t, slash.Effects, 2)
	assert.Equal(t, VulnerableIfUnblocked{Stacks: 2}, slash.Effects[0])
	assert.Equal(t, StatScaled{Stat: StatAgility, PerPoint: 5}, slash.Effects[1])

	guard, ok := c.Card("guard")
	require.True(t, ok)
	assert.Equal(t, "guard", guard.Name, "name defaults to id")
	require.NotNil(t, guard.PriorityWeight)
	assert.Equal(t, 0, *guard.PriorityWeight)

	assert.Equal(t, map[string]float64{"pair": 1.5}, c.ComboMultipliers())
}

func TestNew_SymmetricCancels(t *testing.T) {
	c, err := Parse([]byte(testCatalogYAML))
	require.NoError(t, err)

	dull, ok := c.Token("dull")
	require.True(t, ok)
	assert.Equal(t, "offense", dull.Cancels)
	assert.Equal(t, Negative, dull.Category)
}

func TestNew_Errors(t *testing.T) {
	tests := []struct {
		name   string
		cards  []Card
		tokens []TokenDef
		want   error
	}{
		{"duplicate card", []Card{{ID: "a"}, {ID: "a"}}, nil, ErrDuplicateCard},
		{"card without id", []Card{{Name: "x"}}, nil, ErrMissingID},
		{"duplicate token", nil, []TokenDef{{ID: "t", Duration: DurationTurn}, {ID: "t", Duration: DurationTurn}}, ErrDuplicateToken},
		{"bad duration", nil, []TokenDef{{ID: "t", Duration: "forever"}}, ErrBadDuration},
		{"unknown cancel", nil, []TokenDef{{ID: "t", Duration: DurationTurn, Cancels: "ghost"}}, ErrBadCancel},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.cards, tt.tokens, nil)
			require.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParse_UnknownEffect(t *testing.T) {
	_, err := Parse([]byte(`cards:
  - id: odd
    effects:
      - kind: summon_dragon
`))
	require.ErrorIs(t, err, ErrUnknownEffect)
}

func TestParse_EffectDefaults(t *testing.T) {
	c, err := Parse([]byte(`cards:
  - id: mark
    effects:
      - kind: grant_token
        token: burn
      - kind: extra_hit_if_last
`))
	require.NoError(t, err)
	mark, _ := c.Card("mark")
	assert.Equal(t, General, mark.Type)
	assert.Equal(t, EffectList{
		GrantToken{Token: "burn", Stacks: 1, Target: TargetSelf},
		ExtraHitIfLast{Hits: 1},
	}, mark.Effects)
}

func TestEffectList_MarshalJSONIncludesKind(t *testing.T) {
	b, err := json.Marshal(EffectList{Execute{BelowPercent: 10}, IgnoreBlock{}})
	require.NoError(t, err)
	assert.JSONEq(t, `[{"kind":"execute","belowPercent":10},{"kind":"ignore_block"}]`, string(b))
}

func TestEffectList_JSONRoundTrip(t *testing.T) {
	in := EffectList{
		ChainBonus{After: TraitFollowUp, Damage: 3},
		GrantToken{Token: "burn", Stacks: 2, Target: TargetOpponent},
		Ammo{},
	}
	b, err := json.Marshal(in)
	require.NoError(t, err)

	var out EffectList
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, in, out)

	err = json.Unmarshal([]byte(`[{"kind":"teleport"}]`), &out)
	assert.ErrorIs(t, err, ErrUnknownEffect)
}

func TestEffectList_Has(t *testing.T) {
	l := EffectList{Ammo{}, Heal{Amount: 2}}
	assert.True(t, l.Has(KindHeal))
	assert.False(t, l.Has(KindGuaranteedCrit))
	assert.False(t, EffectList(nil).Has(KindAmmo))
}

func TestCards_SortedByID(t *testing.T) {
	c, err := New([]Card{{ID: "b"}, {ID: "a"}, {ID: "c"}}, nil, nil)
	require.NoError(t, err)
	cards := c.Cards()
	require.Len(t, cards, 3)
	assert.Equal(t, []string{"a", "b", "c"}, []string{cards[0].ID, cards[1].ID, cards[2].ID})
}

func TestLoad_DefaultCatalog(t *testing.T) {
	c, err := Load(filepath.Join("..", "..", "catalogs", "default.yaml"))
	require.NoError(t, err)
	assert.NotEmpty(t, c.Cards())
	_, ok := c.Token("immunity")
	assert.True(t, ok)
}

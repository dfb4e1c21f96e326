package timeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etherduel/internal/catalog"
)

func intPtr(v int) *int { return &v }

func testCards(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New([]catalog.Card{
		{ID: "jab", Type: catalog.Attack, Damage: 4, SpeedCost: 3},
		{ID: "swing", Type: catalog.Attack, Damage: 9, SpeedCost: 5},
		{ID: "heavy", Type: catalog.Attack, Damage: 20, SpeedCost: 5, PriorityWeight: intPtr(2)},
		{ID: "lazy", Type: catalog.Attack, Damage: 20, SpeedCost: 5, PriorityWeight: intPtr(0)},
		{ID: "quick", Type: catalog.Attack, SpeedCost: 5, Priority: catalog.PriorityQuick},
		{ID: "plain"},
		{ID: "big", SpeedCost: 12},
	}, nil, nil)
	require.NoError(t, err)
	return c
}

func plays(ids ...string) []Play {
	out := make([]Play, len(ids))
	for i, id := range ids {
		out[i] = Play{CardID: id}
	}
	return out
}

func TestBuild_PlayerThenEnemyScenario(t *testing.T) {
	tl := Build(testCards(t), plays("jab"), plays("swing"), 10)

	require.Len(t, tl, 2)
	assert.Equal(t, Player, tl[0].Actor)
	assert.Equal(t, Enemy, tl[1].Actor)
	assert.Equal(t, []int{3, 8}, []int{tl[0].TU, tl[1].TU})
	assert.Equal(t, []int{1, 2}, []int{tl[0].Order, tl[1].Order})
	assert.Equal(t, []int{0, 1}, []int{tl[0].Index, tl[1].Index})
}

func TestBuild_WeightBreaksTies(t *testing.T) {
	tl := Build(testCards(t), plays("lazy"), plays("heavy"), 30)
	require.Len(t, tl, 2)
	assert.Equal(t, "heavy", tl[0].Card.ID, "weight 2 resolves before weight 0")
	assert.Equal(t, "lazy", tl[1].Card.ID)
}

func TestBuild_PriorityNames(t *testing.T) {
	tl := Build(testCards(t), plays("swing"), plays("quick"), 30)
	require.Len(t, tl, 2)
	assert.Equal(t, "quick", tl[0].Card.ID)
	assert.Equal(t, 2, tl[0].Weight)
	assert.Equal(t, DefaultWeight, tl[1].Weight)
}

func TestBuild_EqualTiesKeepInputOrder(t *testing.T) {
	tl := Build(testCards(t), plays("swing", "plain"), plays("swing"), 30)
	require.Len(t, tl, 3)
	assert.Equal(t, []Side{Player, Player, Enemy}, []Side{tl[0].Actor, tl[1].Actor, tl[2].Actor})
	assert.Equal(t, "swing", tl[0].Card.ID)
	assert.Equal(t, "plain", tl[1].Card.ID)
}

func TestBuild_Deterministic(t *testing.T) {
	cards := testCards(t)
	p := plays("swing", "jab", "lazy", "quick")
	e := plays("heavy", "plain", "jab")
	first := Build(cards, p, e, 30)
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, Build(cards, p, e, 30))
	}
	for i := 1; i < len(first); i++ {
		assert.LessOrEqual(t, first[i-1].SpeedCost, first[i].SpeedCost)
		if first[i-1].SpeedCost == first[i].SpeedCost {
			assert.GreaterOrEqual(t, first[i-1].Weight, first[i].Weight)
		}
	}
}

func TestBuild_DefaultsAndUnknownIDs(t *testing.T) {
	tl := Build(testCards(t), plays("plain", "ghost"), nil, 30)
	require.Len(t, tl, 1)
	a := tl[0]
	assert.Equal(t, DefaultSpeedCost, a.SpeedCost)
	assert.Equal(t, DefaultActionCost, a.Card.ActionCost)
	assert.Equal(t, DefaultHits, a.Card.Hits)
	assert.Equal(t, catalog.PriorityNormal, a.Card.Priority)
	assert.Equal(t, DefaultWeight, a.Weight)
	assert.NotNil(t, a.Card.Traits)
	assert.NotNil(t, a.Card.Effects)
}

func TestBuild_BudgetExclusionIsPerEntry(t *testing.T) {
	// Both jabs and the swing fit (3+3+5 = 11); big would reach 23.
	tl := Build(testCards(t), plays("jab", "big", "jab"), plays("swing"), 12)
	ids := make([]string, len(tl))
	for i, a := range tl {
		ids[i] = a.Card.ID
	}
	assert.Equal(t, []string{"jab", "jab", "swing"}, ids)
	assert.Equal(t, 11, tl.TotalTU())
}

func TestBuild_Empty(t *testing.T) {
	tl := Build(testCards(t), nil, nil, 0)
	assert.NotNil(t, tl)
	assert.Empty(t, tl)
	assert.Equal(t, 0, tl.TotalTU())
}

func TestTimeline_Neighbours(t *testing.T) {
	tl := Build(testCards(t), plays("jab", "swing"), plays("jab", "big"), 40)
	// sp: p-jab 3, e-jab 3, p-swing 5, e-big 12 -> tu 3, 6, 11, 23
	require.Len(t, tl, 4)

	prev, ok := tl.PrevSameActor(2)
	require.True(t, ok)
	assert.Equal(t, 0, prev.Index)
	_, ok = tl.PrevSameActor(0)
	assert.False(t, ok)

	assert.False(t, tl.IsLastForActor(0))
	assert.True(t, tl.IsLastForActor(2))
	assert.True(t, tl.IsLastForActor(3))

	assert.True(t, tl.OpponentWithin(0, 3), "enemy jab is 3 tu later")
	assert.False(t, tl.OpponentWithin(0, 2))
	assert.False(t, tl.OpponentWithin(2, 5), "enemy big is 12 tu later")
	assert.False(t, tl.OpponentWithin(3, 10), "nothing after the last action")

	assert.Len(t, tl.ForActor(Player), 2)
	assert.Len(t, tl.CardsFor(Enemy), 2)
	assert.Equal(t, Enemy, Player.Opponent())
	assert.Equal(t, Player, Enemy.Opponent())
}

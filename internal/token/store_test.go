package token

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"etherduel/internal/catalog"
)

func testDefs(t *testing.T) *catalog.Catalog {
	t.Helper()
	c, err := catalog.New(nil, []catalog.TokenDef{
		{ID: Immunity, Duration: catalog.DurationPermanent, Category: catalog.Positive},
		{ID: Jam, Duration: catalog.DurationPermanent, Category: catalog.Neutral},
		{ID: Reload, Duration: catalog.DurationUsage, Category: catalog.Positive},
		{ID: "aim", Duration: catalog.DurationUsage, Category: catalog.Positive},
		{ID: "offense", Duration: catalog.DurationUsage, Category: catalog.Positive, Cancels: "dull"},
		{ID: "dull", Duration: catalog.DurationUsage, Category: catalog.Negative},
		{ID: "vulnerable", Duration: catalog.DurationTurn, Category: catalog.Negative},
		{ID: "shaken", Duration: catalog.DurationTurn, Category: catalog.Negative, Timeline: true},
		{ID: "burn", Duration: catalog.DurationPermanent, Category: catalog.Negative},
	}, nil)
	require.NoError(t, err)
	return c
}

func TestAdd_CreatesAndIncrements(t *testing.T) {
	defs := testDefs(t)
	l, ch := Add(defs, Ledger{}, "aim", 2, nil)
	assert.Equal(t, 2, ch.Applied)
	l, _ = Add(defs, l, "aim", 1, nil)

	require.Len(t, l.Usage, 1)
	assert.Equal(t, Instance{ID: "aim", Stacks: 3}, l.Usage[0])
	assert.Equal(t, 3, l.Stacks("aim"))
	assert.True(t, l.Has("aim"))
}

func TestAdd_UnknownTokenWarns(t *testing.T) {
	defs := testDefs(t)
	l, ch := Add(defs, Ledger{}, "ghost", 1, nil)
	assert.NotEmpty(t, ch.Warning)
	assert.Equal(t, 0, l.Len())
}

func TestAdd_ImmunityBlocksNegativeOnce(t *testing.T) {
	defs := testDefs(t)
	l, _ := Add(defs, Ledger{}, Immunity, 1, nil)

	l, ch := Add(defs, l, "vulnerable", 2, nil)
	assert.True(t, ch.Blocked)
	assert.False(t, l.Has("vulnerable"))
	assert.False(t, l.Has(Immunity), "one immunity stack consumed")

	l, ch = Add(defs, l, "vulnerable", 2, nil)
	assert.False(t, ch.Blocked)
	assert.Equal(t, 2, l.Stacks("vulnerable"))
}

func TestAdd_ImmunityIgnoresPositive(t *testing.T) {
	defs := testDefs(t)
	l, _ := Add(defs, Ledger{}, Immunity, 1, nil)
	l, ch := Add(defs, l, "aim", 1, nil)
	assert.False(t, ch.Blocked)
	assert.Equal(t, 1, l.Stacks(Immunity))
}

func TestAdd_CancellationPairs(t *testing.T) {
	defs := testDefs(t)
	tests := []struct {
		name        string
		held        int
		add         int
		wantOffense int
		wantDull    int
		wantCancel  int
	}{
		{"fully cancelled", 3, 2, 0, 1, 2},
		{"exact cancel", 2, 2, 0, 0, 2},
		{"leftover applied", 1, 3, 2, 0, 1},
		{"nothing to cancel", 0, 2, 2, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := Ledger{}
			if tt.held > 0 {
				l, _ = Add(defs, l, "dull", tt.held, nil)
			}
			l, ch := Add(defs, l, "offense", tt.add, nil)
			assert.Equal(t, tt.wantCancel, ch.Cancelled)
			assert.Equal(t, tt.wantOffense, l.Stacks("offense"))
			assert.Equal(t, tt.wantDull, l.Stacks("dull"))
		})
	}
}

func TestAdd_CancellationIsSymmetric(t *testing.T) {
	defs := testDefs(t)
	l, _ := Add(defs, Ledger{}, "offense", 2, nil)
	l, ch := Add(defs, l, "dull", 1, nil)
	assert.Equal(t, 1, ch.Cancelled)
	assert.Equal(t, 1, l.Stacks("offense"))
	assert.False(t, l.Has("dull"))
}

func TestAdd_JamPurgesAndRefusesToStack(t *testing.T) {
	defs := testDefs(t)
	l, _ := Add(defs, Ledger{}, "aim", 2, nil)

	l, ch := Add(defs, l, Jam, 3, nil)
	assert.Equal(t, []string{"aim"}, ch.Purged)
	assert.Equal(t, 1, l.Stacks(Jam), "jam never stacks past one")
	assert.False(t, l.Has("aim"))

	l, ch = Add(defs, l, Jam, 1, nil)
	assert.Equal(t, 0, ch.Applied)
	assert.Equal(t, 1, l.Stacks(Jam))
}

func TestAdd_ReloadOnlyClearsJam(t *testing.T) {
	defs := testDefs(t)
	l, ch := Add(defs, Ledger{}, Reload, 1, nil)
	assert.Equal(t, 0, l.Len(), "reload without jam is a no-op")
	assert.Equal(t, 0, ch.Applied)

	l, _ = Add(defs, l, Jam, 1, nil)
	l, ch = Add(defs, l, Reload, 1, nil)
	assert.Equal(t, 1, ch.Consumed)
	assert.False(t, l.Has(Jam))
	assert.False(t, l.Has(Reload), "reload is not stored when it consumes jam")
}

func TestAdd_StampOnlyForTimelineTurnTokens(t *testing.T) {
	defs := testDefs(t)
	at := &Stamp{Turn: 1, SP: 4}
	l, _ := Add(defs, Ledger{}, "shaken", 1, at)
	l, _ = Add(defs, l, "vulnerable", 1, at)
	l, _ = Add(defs, l, "aim", 1, at)

	require.Len(t, l.Turn, 2)
	assert.Equal(t, &Stamp{Turn: 1, SP: 4}, l.Turn[0].GrantedAt)
	assert.Nil(t, l.Turn[1].GrantedAt)
	assert.Nil(t, l.Usage[0].GrantedAt)

	at.SP = 99
	assert.Equal(t, 4, l.Turn[0].GrantedAt.SP, "stamp is copied")
}

func TestRemove(t *testing.T) {
	defs := testDefs(t)
	l, _ := Add(defs, Ledger{}, "burn", 3, nil)

	l = Remove(l, "burn", catalog.DurationPermanent, 1)
	assert.Equal(t, 2, l.Stacks("burn"))

	l = Remove(l, "burn", catalog.DurationPermanent, 5)
	assert.False(t, l.Has("burn"))
	assert.Empty(t, l.Permanent)

	same := Remove(l, "missing", catalog.DurationTurn, 1)
	assert.True(t, Equal(l, same))
}

func TestRemove_DoesNotAliasInput(t *testing.T) {
	defs := testDefs(t)
	before, _ := Add(defs, Ledger{}, "burn", 3, nil)
	after := Remove(before, "burn", catalog.DurationPermanent, 1)
	assert.Equal(t, 3, before.Stacks("burn"))
	assert.Equal(t, 2, after.Stacks("burn"))
}

func TestAddRemove_RoundTrip(t *testing.T) {
	defs := testDefs(t)
	base, _ := Add(defs, Ledger{}, "burn", 1, nil)
	base, _ = Add(defs, base, "vulnerable", 2, nil)

	for _, id := range []string{"aim", "burn", "vulnerable"} {
		def, _ := defs.Token(id)
		l, _ := Add(defs, base, id, 4, nil)
		l = Remove(l, id, def.Duration, 4)
		assert.True(t, Equal(base, l), "round trip for %s", id)
	}
}

func TestClearTurn_KeepsStampedAndIsIdempotent(t *testing.T) {
	defs := testDefs(t)
	l, _ := Add(defs, Ledger{}, "vulnerable", 2, nil)
	l, _ = Add(defs, l, "shaken", 1, &Stamp{Turn: 2, SP: 6})
	l, _ = Add(defs, l, "burn", 1, nil)

	once := ClearTurn(l)
	twice := ClearTurn(once)

	assert.False(t, once.Has("vulnerable"))
	assert.True(t, once.Has("shaken"))
	assert.True(t, once.Has("burn"))
	assert.True(t, Equal(once, twice))
}

func TestExpireByTimeline(t *testing.T) {
	defs := testDefs(t)
	l, _ := Add(defs, Ledger{}, "shaken", 1, &Stamp{Turn: 2, SP: 6})

	tests := []struct {
		name    string
		turn    int
		sp      int
		expired bool
	}{
		{"same turn later sp", 2, 10, false},
		{"next turn earlier sp", 3, 5, false},
		{"next turn same sp", 3, 6, true},
		{"two turns later", 4, 1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ids := ExpireByTimeline(l, tt.turn, tt.sp)
			assert.Equal(t, !tt.expired, got.Has("shaken"))
			if tt.expired {
				assert.Equal(t, []string{"shaken"}, ids)
			} else {
				assert.Empty(t, ids)
			}
		})
	}
}

func TestAll_DisplayOrder(t *testing.T) {
	defs := testDefs(t)
	l, _ := Add(defs, Ledger{}, "vulnerable", 1, nil)
	l, _ = Add(defs, l, "aim", 1, nil)
	l, _ = Add(defs, l, "burn", 1, nil)

	all := l.All()
	require.Len(t, all, 3)
	assert.Equal(t, []string{"burn", "aim", "vulnerable"}, []string{all[0].ID, all[1].ID, all[2].ID})
}

func TestStacks_NeverNonPositive(t *testing.T) {
	defs := testDefs(t)
	ids := []string{"aim", "offense", "dull", "vulnerable", "burn", Jam, Reload, Immunity}
	r := rand.New(rand.NewPCG(7, 11))
	l := Ledger{}
	for i := 0; i < 500; i++ {
		id := ids[r.IntN(len(ids))]
		n := r.IntN(4)
		if r.IntN(2) == 0 {
			l, _ = Add(defs, l, id, n, nil)
		} else {
			l = RemoveAny(defs, l, id, n)
		}
		for _, it := range l.All() {
			require.Positive(t, it.Stacks, "entry %s after step %d", it.ID, i)
		}
	}
}

func TestStacks_NetAccounting(t *testing.T) {
	defs := testDefs(t)
	l := Ledger{}
	added, removed := 0, 0
	for _, n := range []int{3, 1, 4} {
		var ch Change
		l, ch = Add(defs, l, "burn", n, nil)
		added += ch.Applied
	}
	for _, n := range []int{2, 1} {
		l = Remove(l, "burn", catalog.DurationPermanent, n)
		removed += n
	}
	assert.Equal(t, added-removed, l.Stacks("burn"))
}

// Package battle drives a whole battle: it plans each turn's timeline, steps
// through it one action at a time and settles the ether economy at turn end.
package battle

import (
	"fmt"
	"log/slog"
	"math"
	"slices"

	"etherduel/internal/catalog"
	"etherduel/internal/combat"
	"etherduel/internal/config"
	"etherduel/internal/ether"
	"etherduel/internal/timeline"
	"etherduel/internal/token"
)

type Engine struct {
	Catalog  *catalog.Catalog
	Rules    config.Rules
	Detector ether.Detector
	Logger   *slog.Logger
}

// StepResult is the state after a transition plus the events it produced.
type StepResult struct {
	State  State
	Events []combat.Event
}

// NewEngine returns an engine using the hand detector.
func NewEngine(cat *catalog.Catalog, rules config.Rules, logger *slog.Logger) *Engine {
	return &Engine{Catalog: cat, Rules: rules, Detector: ether.HandDetector{}, Logger: logger}
}

func (e *Engine) log() *slog.Logger {
	if e.Logger == nil {
		return slog.Default()
	}
	return e.Logger
}

// Setup describes a new battle. Zero-valued fighters use the rules' defaults.
type Setup struct {
	ID           string
	Seed         uint64
	Player       config.Fighter
	Enemy        config.Fighter
	PlayerRelic  float64
	EnemyRelic   float64
	PlayerTokens map[string]int
	EnemyTokens  map[string]int
}

// NewBattle builds the initial state. Unknown starting tokens are skipped
// with a warning event.
func (e *Engine) NewBattle(s Setup) StepResult {
	var events []combat.Event
	build := func(f, def config.Fighter, tokens map[string]int) combat.Combatant {
		if f.Name == "" {
			f.Name = def.Name
		}
		if f.HP <= 0 {
			f.HP = def.HP
		}
		if f.Energy <= 0 {
			f.Energy = def.Energy
		}
		c := combat.Combatant{
			Name:       f.Name,
			HP:         f.HP,
			MaxHP:      f.HP,
			Strength:   f.Strength,
			Agility:    f.Agility,
			Energy:     f.Energy,
			MaxEnergy:  f.Energy,
			ComboUsage: map[string]int{},
			Ether:      min(e.Rules.StartingEther, e.etherCap()),
		}
		for _, id := range sortedKeys(tokens) {
			var ch token.Change
			c.Tokens, ch = token.Add(e.Catalog, c.Tokens, id, tokens[id], nil)
			if ch.Warning != "" {
				events = append(events, combat.Warning(0, "%s: %s", c.Name, ch.Warning))
			}
		}
		return c
	}
	st := State{
		ID:          s.ID,
		Seed:        s.Seed,
		Player:      build(s.Player, e.Rules.Player, s.PlayerTokens),
		Enemy:       build(s.Enemy, e.Rules.Enemy, s.EnemyTokens),
		PlayerRelic: s.PlayerRelic,
		EnemyRelic:  s.EnemyRelic,
		Queue:       timeline.Timeline{},
		Settled:     true,
		Outcome:     Ongoing,
	}
	e.log().Debug("battle created", "id", st.ID, "seed", st.Seed)
	return StepResult{State: st, Events: events}
}

func (e *Engine) etherCap() int {
	if e.Rules.MaxEther <= 0 {
		return math.MaxInt
	}
	return e.Rules.MaxEther
}

// TurnInput is both sides' selections for one turn.
type TurnInput struct {
	Player []timeline.Play
	Enemy  []timeline.Play
	// PlayerUnused and EnemyUnused are hand card ids left unplayed.
	PlayerUnused []string
	EnemyUnused  []string
	ForceCrit    bool
}

// PlanTurn opens the next turn and builds its queue.
func (e *Engine) PlanTurn(st State, in TurnInput) StepResult {
	if st.Done() {
		return e.warn(st, "battle is over")
	}
	if !st.Settled {
		return e.warn(st, "turn %d has not been settled", st.Turn)
	}
	st.Turn++
	if e.Rules.BlockResetsEachTurn {
		st.Player.Block, st.Player.Defending = 0, false
		st.Enemy.Block, st.Enemy.Defending = 0, false
	}
	st.Player.Tokens = token.ClearTurn(st.Player.Tokens)
	st.Enemy.Tokens = token.ClearTurn(st.Enemy.Tokens)

	st.Queue = timeline.Build(e.Catalog, in.Player, in.Enemy, e.Rules.MaxTimeUnits)
	st.Index = 0
	st.Player.Energy = max(0, st.Player.MaxEnergy-actionCost(st.Queue.CardsFor(timeline.Player)))
	st.Enemy.Energy = max(0, st.Enemy.MaxEnergy-actionCost(st.Queue.CardsFor(timeline.Enemy)))
	st.PlayerUnused = e.inflate(in.PlayerUnused)
	st.EnemyUnused = e.inflate(in.EnemyUnused)
	st.ForceCrit = in.ForceCrit
	st.PlayerEther, st.EnemyEther = 0, 0
	st.Settled = false

	events := []combat.Event{{
		Turn:    st.Turn,
		Index:   -1,
		Kind:    combat.EventModifier,
		Message: fmt.Sprintf("turn %d: %d actions, %d tu", st.Turn, len(st.Queue), st.Queue.TotalTU()),
	}}
	if dropped := len(in.Player) + len(in.Enemy) - len(st.Queue); dropped > 0 {
		events = append(events, combat.Warning(st.Turn, "%d selected cards were unknown or over the time budget", dropped))
	}
	e.log().Debug("turn planned", "id", st.ID, "turn", st.Turn, "actions", len(st.Queue))
	return StepResult{State: st, Events: events}
}

func (e *Engine) warn(st State, format string, args ...any) StepResult {
	ev := combat.Warning(st.Turn, format, args...)
	e.log().Warn(ev.Message, "id", st.ID, "turn", st.Turn)
	return StepResult{State: st, Events: []combat.Event{ev}}
}

func (e *Engine) inflate(ids []string) []catalog.Card {
	var out []catalog.Card
	for _, id := range ids {
		if c, ok := timeline.Inflate(e.Catalog, id); ok {
			out = append(out, c)
		}
	}
	return out
}

func actionCost(cards []catalog.Card) int {
	n := 0
	for _, c := range cards {
		n += c.ActionCost
	}
	return n
}

func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

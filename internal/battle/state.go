package battle

import (
	"etherduel/internal/catalog"
	"etherduel/internal/combat"
	"etherduel/internal/timeline"
)

// Outcome is the terminal signal of a battle.
type Outcome string

const (
	Ongoing   Outcome = "ongoing"
	PlayerWon Outcome = "player_won"
	EnemyWon  Outcome = "enemy_won"
	Draw      Outcome = "draw"
)

// State is the whole battle. It is a value: engine methods take a State and
// return a new one without writing into the argument.
type State struct {
	ID   string `json:"id"`
	Seed uint64 `json:"seed"`
	// Turn is 0 before the first PlanTurn and only ever increases.
	Turn        int              `json:"turn"`
	Player      combat.Combatant `json:"player"`
	Enemy       combat.Combatant `json:"enemy"`
	PlayerRelic float64          `json:"playerRelic"`
	EnemyRelic  float64          `json:"enemyRelic"`

	Queue timeline.Timeline `json:"queue"`
	// Index is the next queue entry to resolve.
	Index        int            `json:"index"`
	PlayerUnused []catalog.Card `json:"playerUnused,omitempty"`
	EnemyUnused  []catalog.Card `json:"enemyUnused,omitempty"`
	ForceCrit    bool           `json:"forceCrit,omitempty"`
	// PlayerEther and EnemyEther accumulate this turn's contributions.
	PlayerEther int  `json:"playerEther"`
	EnemyEther  int  `json:"enemyEther"`
	Settled     bool `json:"settled"`

	Snapshot      *Snapshot `json:"snapshot,omitempty"`
	SnapshotTaken bool      `json:"snapshotTaken"`
	RewindUsed    bool      `json:"rewindUsed"`

	Outcome Outcome `json:"outcome"`
}

// Snapshot is the captured combatant and queue state Rewind restores.
type Snapshot struct {
	Turn         int               `json:"turn"`
	Player       combat.Combatant  `json:"player"`
	Enemy        combat.Combatant  `json:"enemy"`
	Queue        timeline.Timeline `json:"queue"`
	Index        int               `json:"index"`
	PlayerUnused []catalog.Card    `json:"-"`
	EnemyUnused  []catalog.Card    `json:"-"`
	ForceCrit    bool              `json:"-"`
	PlayerEther  int               `json:"playerEther"`
	EnemyEther   int               `json:"enemyEther"`
	Settled      bool              `json:"settled"`
	Outcome      Outcome           `json:"outcome"`
}

// Done reports whether the battle has a winner or ended in a draw.
func (s State) Done() bool { return s.Outcome != Ongoing && s.Outcome != "" }

// Pending reports how many queued actions are still unresolved.
func (s State) Pending() int { return max(0, len(s.Queue)-s.Index) }

func (s State) combatant(side timeline.Side) combat.Combatant {
	if side == timeline.Enemy {
		return s.Enemy
	}
	return s.Player
}

func (s State) unused() map[timeline.Side][]catalog.Card {
	return map[timeline.Side][]catalog.Card{
		timeline.Player: s.PlayerUnused,
		timeline.Enemy:  s.EnemyUnused,
	}
}

func (s State) capture() *Snapshot {
	return &Snapshot{
		Turn:         s.Turn,
		Player:       s.Player.Clone(),
		Enemy:        s.Enemy.Clone(),
		Queue:        s.Queue.Clone(),
		Index:        s.Index,
		PlayerUnused: cloneCards(s.PlayerUnused),
		EnemyUnused:  cloneCards(s.EnemyUnused),
		ForceCrit:    s.ForceCrit,
		PlayerEther:  s.PlayerEther,
		EnemyEther:   s.EnemyEther,
		Settled:      s.Settled,
		Outcome:      s.Outcome,
	}
}

func (s State) restore(snap *Snapshot) State {
	s.Turn = snap.Turn
	s.Player = snap.Player.Clone()
	s.Enemy = snap.Enemy.Clone()
	s.Queue = snap.Queue.Clone()
	s.Index = snap.Index
	s.PlayerUnused = cloneCards(snap.PlayerUnused)
	s.EnemyUnused = cloneCards(snap.EnemyUnused)
	s.ForceCrit = snap.ForceCrit
	s.PlayerEther = snap.PlayerEther
	s.EnemyEther = snap.EnemyEther
	s.Settled = snap.Settled
	s.Outcome = snap.Outcome
	return s
}

func cloneCards(in []catalog.Card) []catalog.Card {
	if in == nil {
		return nil
	}
	out := make([]catalog.Card, len(in))
	copy(out, in)
	return out
}

func outcomeOf(p, e combat.Combatant) Outcome {
	switch {
	case !p.Alive() && !e.Alive():
		return Draw
	case !e.Alive():
		return PlayerWon
	case !p.Alive():
		return EnemyWon
	}
	return Ongoing
}

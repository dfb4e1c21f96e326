package ether

import (
	"maps"
	"math"

	"etherduel/internal/timeline"
)

const epsilon = 1e-9

// DefaultDeflationBase is the per-use deflation factor.
const DefaultDeflationBase = 0.8

// SettleInput is one side's end-of-turn accumulation.
type SettleInput struct {
	Raw int
	// Halve applies 0.5 to Raw before any multiplier.
	Halve       bool
	Combo       string
	Multipliers map[string]float64
	// Amplifier is the relic scalar; 0 means 1.
	Amplifier float64
	// Usage is combo name to settlements so far this battle.
	Usage         map[string]int
	DeflationBase float64
}

// Settlement is the breakdown of one side's settlement.
type Settlement struct {
	Raw        int     `json:"raw"`
	Halved     bool    `json:"halved"`
	Base       float64 `json:"base"`
	Combo      string  `json:"combo,omitempty"`
	Multiplier float64 `json:"multiplier"`
	Amplifier  float64 `json:"amplifier"`
	// Usage is the combo's settlement count before this one.
	Usage     int     `json:"usage"`
	Deflation float64 `json:"deflation"`
	Final     int     `json:"final"`
}

// Settle computes floor(base * multiplier * amplifier * deflation) and
// returns the combo usage map with this settlement counted. The input map is
// not modified.
func Settle(in SettleInput) (Settlement, map[string]int) {
	s := Settlement{
		Raw:        max(0, in.Raw),
		Halved:     in.Halve,
		Multiplier: 1,
		Amplifier:  in.Amplifier,
		Deflation:  1,
	}
	s.Base = float64(s.Raw)
	if in.Halve {
		s.Base *= 0.5
	}
	if s.Amplifier <= 0 {
		s.Amplifier = 1
	}
	usage := maps.Clone(in.Usage)
	if usage == nil {
		usage = map[string]int{}
	}
	if m, ok := in.Multipliers[in.Combo]; ok && in.Combo != "" {
		base := in.DeflationBase
		if base <= 0 {
			base = DefaultDeflationBase
		}
		s.Combo = in.Combo
		s.Multiplier = m
		s.Usage = usage[in.Combo]
		s.Deflation = math.Pow(base, float64(s.Usage))
		usage[in.Combo]++
	}
	s.Final = max(0, int(math.Floor(s.Base*s.Multiplier*s.Amplifier*s.Deflation+epsilon)))
	return s, usage
}

// Pool is a side's banked ether.
type Pool struct {
	Ether    int `json:"ether"`
	Overflow int `json:"overflow"`
}

// TransferInput is both sides' state at the end of a turn.
type TransferInput struct {
	Player, Enemy               Pool
	PlayerSettled, EnemySettled int
	PlayerDead, EnemyDead       bool

	// Cap bounds each pool; excess goes to Overflow. 0 means no cap.
	Cap int
}

// TransferResult is the outcome of a transfer.
type TransferResult struct {
	Player Pool `json:"player"`
	Enemy  Pool `json:"enemy"`
	// Toward is the side that received ether; empty when nothing moved.
	Toward timeline.Side `json:"toward,omitempty"`
	// Moved is the settled difference actually drawn from the other side.
	Moved int `json:"moved"`
	// Recovered is the dead side's residual pool forfeited on top of Moved.
	Recovered int `json:"recovered"`
}

// Transfer moves the settled difference from the lower side's pool to the
// higher. A dead side forfeits what it still holds afterwards.
func Transfer(in TransferInput) TransferResult {
	res := TransferResult{Player: clampPool(in.Player), Enemy: clampPool(in.Enemy)}
	diff := in.PlayerSettled - in.EnemySettled

	var from, to *Pool
	switch {
	case diff > 0:
		from, to, res.Toward = &res.Enemy, &res.Player, timeline.Player
	case diff < 0:
		from, to, res.Toward = &res.Player, &res.Enemy, timeline.Enemy
		diff = -diff
	}
	if from != nil {
		res.Moved = min(diff, from.Ether)
		from.Ether -= res.Moved
		to.Ether += res.Moved
	}
	if res.Moved == 0 {
		res.Toward = ""
	}

	if in.PlayerDead != in.EnemyDead {
		loser, winner, side := &res.Enemy, &res.Player, timeline.Player
		if in.PlayerDead {
			loser, winner, side = &res.Player, &res.Enemy, timeline.Enemy
		}
		res.Recovered = loser.Ether
		winner.Ether += loser.Ether
		loser.Ether = 0
		if res.Recovered > 0 && res.Moved == 0 {
			res.Toward = side
		}
	}

	if in.Cap > 0 {
		res.Player = capPool(res.Player, in.Cap)
		res.Enemy = capPool(res.Enemy, in.Cap)
	}
	return res
}

func clampPool(p Pool) Pool {
	p.Ether = max(0, p.Ether)
	p.Overflow = max(0, p.Overflow)
	return p
}

func capPool(p Pool, limit int) Pool {
	if p.Ether > limit {
		p.Overflow += p.Ether - limit
		p.Ether = limit
	}
	return p
}

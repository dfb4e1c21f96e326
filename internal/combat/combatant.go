// Package combat resolves a single timeline action against two combatants.
//
// Combatants are passed in and returned by value. Resolve never writes into
// the values it was given; the caller replaces its copies with the Output.
package combat

import (
	"maps"

	"etherduel/internal/token"
)

// Combatant is one side's battle state.
type Combatant struct {
	Name      string       `json:"name"`
	HP        int          `json:"hp"`
	MaxHP     int          `json:"maxHp"`
	Block     int          `json:"block"`
	Defending bool         `json:"defending"`
	Strength  int          `json:"strength"`
	Agility   int          `json:"agility"`
	Energy    int          `json:"energy"`
	MaxEnergy int          `json:"maxEnergy"`
	Tokens    token.Ledger `json:"tokens"`
	// ComboUsage counts settlements per combo name this battle.
	ComboUsage    map[string]int `json:"comboUsage"`
	Ether         int            `json:"ether"`
	EtherOverflow int            `json:"etherOverflow"`
}

// Alive reports whether hp is above zero.
func (c Combatant) Alive() bool { return c.HP > 0 }

// Clone returns a copy sharing no mutable state with c.
func (c Combatant) Clone() Combatant {
	c.Tokens = c.Tokens.Clone()
	if c.ComboUsage != nil {
		c.ComboUsage = maps.Clone(c.ComboUsage)
	}
	return c
}

func clampHP(c Combatant) Combatant {
	if c.HP < 0 {
		c.HP = 0
	}
	if c.MaxHP > 0 && c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
	if c.Block < 0 {
		c.Block = 0
	}
	return c
}

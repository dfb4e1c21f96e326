// Package config loads battle balance rules from YAML and host settings from
// the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"etherduel/internal/combat"
)

var ErrInvalidRules = errors.New("invalid rules")

// Fighter is the starting profile for one side of a new battle.
type Fighter struct {
	Name     string `yaml:"name" json:"name"`
	HP       int    `yaml:"hp" json:"hp"`
	Energy   int    `yaml:"energy" json:"energy"`
	Strength int    `yaml:"strength" json:"strength"`
	Agility  int    `yaml:"agility" json:"agility"`
}

// Rules are the tunable balance constants.
type Rules struct {
	CritBase       float64 `yaml:"critBase"`
	CritMultiplier int     `yaml:"critMultiplier"`
	CrossWindow    int     `yaml:"crossWindow"`
	MaxTimeUnits   int     `yaml:"maxTimeUnits"`
	DeflationBase  float64 `yaml:"deflationBase"`
	MaxEther       int     `yaml:"maxEther"`
	StartingEther  int     `yaml:"startingEther"`
	// BlockResetsEachTurn clears block and the defending flag when a turn is
	// planned.
	BlockResetsEachTurn bool    `yaml:"blockResetsEachTurn"`
	Player              Fighter `yaml:"player"`
	Enemy               Fighter `yaml:"enemy"`
}

// DefaultRules returns the stock rules.
func DefaultRules() Rules {
	return Rules{
		CritBase:            5,
		CritMultiplier:      2,
		CrossWindow:         2,
		MaxTimeUnits:        30,
		DeflationBase:       0.8,
		MaxEther:            100,
		StartingEther:       20,
		BlockResetsEachTurn: true,
		Player:              Fighter{Name: "Player", HP: 60, Energy: 3},
		Enemy:               Fighter{Name: "Enemy", HP: 50, Energy: 3},
	}
}

// Validate reports the first out-of-range value.
func (r Rules) Validate() error {
	switch {
	case r.CritMultiplier < 1:
		return fmt.Errorf("%w: critMultiplier %d < 1", ErrInvalidRules, r.CritMultiplier)
	case r.MaxTimeUnits < 1:
		return fmt.Errorf("%w: maxTimeUnits %d < 1", ErrInvalidRules, r.MaxTimeUnits)
	case r.DeflationBase <= 0 || r.DeflationBase > 1:
		return fmt.Errorf("%w: deflationBase %v outside (0, 1]", ErrInvalidRules, r.DeflationBase)
	case r.MaxEther < 0 || r.StartingEther < 0:
		return fmt.Errorf("%w: ether limits must not be negative", ErrInvalidRules)
	case r.Player.HP < 1 || r.Enemy.HP < 1:
		return fmt.Errorf("%w: starting hp must be positive", ErrInvalidRules)
	}
	return nil
}

// Combat returns the subset of rules the action resolver reads.
func (r Rules) Combat() combat.Rules {
	return combat.Rules{
		CritBase:       r.CritBase,
		CritMultiplier: r.CritMultiplier,
		CrossWindow:    r.CrossWindow,
	}
}

// ParseRules decodes YAML over DefaultRules, so a file only lists overrides.
func ParseRules(b []byte) (Rules, error) {
	r := DefaultRules()
	if err := yaml.Unmarshal(b, &r); err != nil {
		return Rules{}, fmt.Errorf("parse rules: %w", err)
	}
	if err := r.Validate(); err != nil {
		return Rules{}, err
	}
	return r, nil
}

// LoadRules reads rules from path. An empty path yields DefaultRules.
func LoadRules(path string) (Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path is cleaned and comes from operator config
	if err != nil {
		return Rules{}, fmt.Errorf("read rules: %w", err)
	}
	r, err := ParseRules(b)
	if err != nil {
		return Rules{}, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return r, nil
}

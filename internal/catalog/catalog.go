// Package catalog holds the static card, token and combo definitions the
// battle engine reads from, and loads them from YAML.
package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"gopkg.in/yaml.v3"
)

var (
	ErrDuplicateCard  = errors.New("duplicate card id")
	ErrDuplicateToken = errors.New("duplicate token id")
	ErrMissingID      = errors.New("definition is missing an id")
	ErrBadDuration    = errors.New("token has an unknown duration")
	ErrBadCancel      = errors.New("token cancels an unknown token")
)

// Catalog is an immutable lookup table of definitions. Build it with New,
// Parse or Load and share it read-only.
type Catalog struct {
	cards  map[string]Card
	tokens map[string]TokenDef
	combos map[string]float64
}

type file struct {
	Cards  []Card             `yaml:"cards"`
	Tokens []TokenDef         `yaml:"tokens"`
	Combos map[string]float64 `yaml:"combos"`
}

// New validates the definitions and builds a catalog. Cancellation pairs are
// made symmetric: if A cancels B and B names no partner, B cancels A.
func New(cards []Card, tokens []TokenDef, combos map[string]float64) (*Catalog, error) {
	c := &Catalog{
		cards:  make(map[string]Card, len(cards)),
		tokens: make(map[string]TokenDef, len(tokens)),
		combos: make(map[string]float64, len(combos)),
	}
	for _, card := range cards {
		if card.ID == "" {
			return nil, fmt.Errorf("card %q: %w", card.Name, ErrMissingID)
		}
		if _, ok := c.cards[card.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, card.ID)
		}
		if card.Name == "" {
			card.Name = card.ID
		}
		if card.Type == "" {
			card.Type = General
		}
		c.cards[card.ID] = card
	}
	for _, t := range tokens {
		if t.ID == "" {
			return nil, fmt.Errorf("token %q: %w", t.Name, ErrMissingID)
		}
		if _, ok := c.tokens[t.ID]; ok {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateToken, t.ID)
		}
		switch t.Duration {
		case DurationUsage, DurationTurn, DurationPermanent:
		default:
			return nil, fmt.Errorf("token %s: %w: %q", t.ID, ErrBadDuration, t.Duration)
		}
		if t.Name == "" {
			t.Name = t.ID
		}
		if t.Category == "" {
			t.Category = Neutral
		}
		c.tokens[t.ID] = t
	}
	for id, t := range c.tokens {
		if t.Cancels == "" {
			continue
		}
		other, ok := c.tokens[t.Cancels]
		if !ok {
			return nil, fmt.Errorf("token %s: %w: %s", id, ErrBadCancel, t.Cancels)
		}
		if other.Cancels == "" {
			other.Cancels = id
			c.tokens[other.ID] = other
		}
	}
	for name, m := range combos {
		c.combos[name] = m
	}
	return c, nil
}

// Parse builds a catalog from YAML bytes.
func Parse(b []byte) (*Catalog, error) {
	var f file
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	return New(f.Cards, f.Tokens, f.Combos)
}

// Load reads a catalog from a YAML file.
func Load(path string) (*Catalog, error) {
	cleanPath := filepath.Clean(path)
	b, err := os.ReadFile(cleanPath) //nolint:gosec // path is cleaned and comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", cleanPath, err)
	}
	return c, nil
}

// Card looks up a card definition.
func (c *Catalog) Card(id string) (Card, bool) {
	if c == nil {
		return Card{}, false
	}
	card, ok := c.cards[id]
	return card, ok
}

// Token looks up a token definition.
func (c *Catalog) Token(id string) (TokenDef, bool) {
	if c == nil {
		return TokenDef{}, false
	}
	t, ok := c.tokens[id]
	return t, ok
}

// ComboMultipliers returns a copy of the combo multiplier table.
func (c *Catalog) ComboMultipliers() map[string]float64 {
	if c == nil {
		return map[string]float64{}
	}
	out := make(map[string]float64, len(c.combos))
	for k, v := range c.combos {
		out[k] = v
	}
	return out
}

// Cards returns every card sorted by id.
func (c *Catalog) Cards() []Card {
	if c == nil {
		return nil
	}
	out := make([]Card, 0, len(c.cards))
	for _, card := range c.cards {
		out = append(out, card)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

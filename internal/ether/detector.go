// Package ether settles each side's per-turn ether accumulation into a net
// transfer, with combo multipliers and per-combo diminishing returns.
package ether

import (
	"sort"

	"etherduel/internal/catalog"
)

// Combo names reported by HandDetector, strongest first.
const (
	FiveOfAKind = "five_of_a_kind"
	Flush       = "flush"
	FullHouse   = "full_house"
	FourOfAKind = "four_of_a_kind"
	Straight    = "straight"
	Triple      = "triple"
	TwoPair     = "two_pair"
	Pair        = "pair"
)

// Detector names the combo a set of played cards forms, if any.
type Detector interface {
	Detect(cards []catalog.Card) (string, bool)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(cards []catalog.Card) (string, bool)

func (f DetectorFunc) Detect(cards []catalog.Card) (string, bool) { return f(cards) }

// HandDetector reads played cards like a poker hand: action cost is the rank
// and card type is the suit.
type HandDetector struct{}

func (HandDetector) Detect(cards []catalog.Card) (string, bool) {
	if len(cards) == 0 {
		return "", false
	}
	ranks := map[int]int{}
	suits := map[catalog.CardType]int{}
	for _, c := range cards {
		ranks[c.ActionCost]++
		suits[c.Type]++
	}
	counts := make([]int, 0, len(ranks))
	for _, n := range ranks {
		counts = append(counts, n)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(counts)))
	top, second := counts[0], 0
	if len(counts) > 1 {
		second = counts[1]
	}
	maxSuit := 0
	for _, n := range suits {
		maxSuit = max(maxSuit, n)
	}

	switch {
	case top >= 5:
		return FiveOfAKind, true
	case maxSuit >= 4:
		return Flush, true
	case top >= 3 && second >= 2:
		return FullHouse, true
	case top >= 4:
		return FourOfAKind, true
	case longestRun(ranks) >= 3:
		return Straight, true
	case top >= 3:
		return Triple, true
	case top >= 2 && second >= 2:
		return TwoPair, true
	case top >= 2:
		return Pair, true
	}
	return "", false
}

func longestRun(ranks map[int]int) int {
	keys := make([]int, 0, len(ranks))
	for k := range ranks {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	best, run := 0, 0
	for i, k := range keys {
		if i > 0 && k == keys[i-1]+1 {
			run++
		} else {
			run = 1
		}
		best = max(best, run)
	}
	return best
}

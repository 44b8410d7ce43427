package services

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// DefaultLevelThresholds is the minimum total XP for levels 1 through 11.
var DefaultLevelThresholds = []int{0, 100, 250, 500, 1000, 1750, 2750, 4000, 5500, 7500, 10000}

// DefaultLevelStep is the XP per level past the last threshold.
const DefaultLevelStep = 2500

// LevelTable maps total XP to a level. Every non-negative total has exactly
// one level and the mapping never decreases as XP grows.
type LevelTable struct {
	thresholds []int
	step       int
}

func NewLevelTable(thresholds []int, step int) (*LevelTable, error) {
	if len(thresholds) == 0 || thresholds[0] != 0 {
		return nil, fmt.Errorf("level thresholds must start at 0")
	}
	for i := 1; i < len(thresholds); i++ {
		if thresholds[i] <= thresholds[i-1] {
			return nil, fmt.Errorf("level thresholds must be strictly increasing, got %d after %d", thresholds[i], thresholds[i-1])
		}
	}
	if step <= 0 {
		return nil, fmt.Errorf("level step must be positive, got %d", step)
	}

	own := make([]int, len(thresholds))
	copy(own, thresholds)
	return &LevelTable{thresholds: own, step: step}, nil
}

func DefaultLevelTable() *LevelTable {
	table, _ := NewLevelTable(DefaultLevelThresholds, DefaultLevelStep)
	return table
}

// ParseLevelThresholds reads a comma separated list such as "0,100,250".
func ParseLevelThresholds(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	thresholds := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return nil, fmt.Errorf("invalid level threshold %q: %w", p, err)
		}
		thresholds = append(thresholds, v)
	}
	return thresholds, nil
}

func (t *LevelTable) LevelFor(totalXP int) int {
	if totalXP < 0 {
		totalXP = 0
	}
	// number of thresholds at or below totalXP
	idx := sort.Search(len(t.thresholds), func(i int) bool { return t.thresholds[i] > totalXP })
	if idx < len(t.thresholds) {
		return idx
	}
	last := t.thresholds[len(t.thresholds)-1]
	return len(t.thresholds) + (totalXP-last)/t.step
}

// ThresholdFor returns the minimum total XP for level.
func (t *LevelTable) ThresholdFor(level int) int {
	if level <= 1 {
		return 0
	}
	if level <= len(t.thresholds) {
		return t.thresholds[level-1]
	}
	last := t.thresholds[len(t.thresholds)-1]
	return last + (level-len(t.thresholds))*t.step
}

func (t *LevelTable) XPToNextLevel(totalXP int) int {
	return t.ThresholdFor(t.LevelFor(totalXP)+1) - totalXP
}

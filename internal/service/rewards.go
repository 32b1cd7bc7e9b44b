package service

import (
	"fmt"

	"github.com/alexanderramin/taskquest/internal/domain"
)

// RewardTable maps categories to points. Aliases route categories that have
// no entry of their own onto a tier that does.
type RewardTable struct {
	points  map[domain.Category]int64
	aliases map[domain.Category]domain.Category
}

// NewRewardTable copies points and aliases into an immutable table. Every
// reward must be non-negative, simple must be present, and each alias must
// point at a category with its own reward.
func NewRewardTable(points map[domain.Category]int64, aliases map[domain.Category]domain.Category) (RewardTable, error) {
	t := RewardTable{
		points:  make(map[domain.Category]int64, len(points)),
		aliases: make(map[domain.Category]domain.Category, len(aliases)),
	}
	for c, p := range points {
		if p < 0 {
			return RewardTable{}, fmt.Errorf("reward for %q is negative: %d", c, p)
		}
		t.points[c] = p
	}
	if _, ok := t.points[domain.CategorySimple]; !ok {
		return RewardTable{}, fmt.Errorf("reward table must define %q", domain.CategorySimple)
	}
	for from, to := range aliases {
		if _, ok := t.points[to]; !ok {
			return RewardTable{}, fmt.Errorf("alias %q points at %q, which has no reward", from, to)
		}
		t.aliases[from] = to
	}
	return t, nil
}

// DefaultRewardTable returns the built-in rewards.
func DefaultRewardTable() RewardTable {
	t, err := NewRewardTable(
		map[domain.Category]int64{
			domain.CategorySimple:   10,
			domain.CategoryEmail:    25,
			domain.CategoryResearch: 50,
			domain.CategoryReport:   75,
			domain.CategoryComplex:  100,
		},
		map[domain.Category]domain.Category{
			domain.CategoryCalendar: domain.CategoryComplex,
			domain.CategoryNotion:   domain.CategoryComplex,
			domain.CategorySlack:    domain.CategoryEmail,
			domain.CategoryGeneral:  domain.CategorySimple,
		},
	)
	if err != nil {
		panic(err)
	}
	return t
}

// RewardFor returns the direct reward for c, else its alias's reward, else
// the simple reward.
func (t RewardTable) RewardFor(c domain.Category) int64 {
	if p, ok := t.points[c]; ok {
		return p
	}
	if alias, ok := t.aliases[c]; ok {
		return t.points[alias]
	}
	return t.points[domain.CategorySimple]
}

// With returns a copy of t with points and aliases laid over it.
func (t RewardTable) With(points map[domain.Category]int64, aliases map[domain.Category]domain.Category) (RewardTable, error) {
	mergedPoints := make(map[domain.Category]int64, len(t.points)+len(points))
	for c, p := range t.points {
		mergedPoints[c] = p
	}
	for c, p := range points {
		mergedPoints[c] = p
	}
	mergedAliases := make(map[domain.Category]domain.Category, len(t.aliases)+len(aliases))
	for from, to := range t.aliases {
		mergedAliases[from] = to
	}
	for from, to := range aliases {
		mergedAliases[from] = to
	}
	return NewRewardTable(mergedPoints, mergedAliases)
}

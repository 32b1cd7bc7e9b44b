package service

import (
	"testing"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRewardTable_RewardFor(t *testing.T) {
	table := DefaultRewardTable()
	tests := []struct {
		category domain.Category
		want     int64
	}{
		{domain.CategorySimple, 10},
		{domain.CategoryEmail, 25},
		{domain.CategoryResearch, 50},
		{domain.CategoryReport, 75},
		{domain.CategoryComplex, 100},
		{domain.CategoryCalendar, 100},
		{domain.CategoryNotion, 100},
		{domain.CategorySlack, 25},
		{domain.CategoryGeneral, 10},
		{"unknown_xyz", 10},
		{"", 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, table.RewardFor(tt.category), "category=%q", tt.category)
	}
}

func TestRewardFor_UnknownMatchesSimple(t *testing.T) {
	table := DefaultRewardTable()
	assert.Equal(t, table.RewardFor(domain.CategorySimple), table.RewardFor("unknown_xyz"))
}

func TestNewRewardTable_CopiesInput(t *testing.T) {
	points := map[domain.Category]int64{domain.CategorySimple: 1, domain.CategoryEmail: 2}
	table, err := NewRewardTable(points, nil)
	require.NoError(t, err)

	points[domain.CategoryEmail] = 99
	assert.Equal(t, int64(2), table.RewardFor(domain.CategoryEmail))
}

func TestNewRewardTable_Rejects(t *testing.T) {
	_, err := NewRewardTable(map[domain.Category]int64{domain.CategorySimple: -1}, nil)
	assert.ErrorContains(t, err, "negative")

	_, err = NewRewardTable(map[domain.Category]int64{domain.CategoryEmail: 5}, nil)
	assert.ErrorContains(t, err, "must define")

	_, err = NewRewardTable(
		map[domain.Category]int64{domain.CategorySimple: 1},
		map[domain.Category]domain.Category{domain.CategorySlack: domain.CategoryEmail},
	)
	assert.ErrorContains(t, err, "has no reward")
}

func TestRewardTable_With(t *testing.T) {
	base := DefaultRewardTable()
	table, err := base.With(
		map[domain.Category]int64{domain.CategoryEmail: 30},
		map[domain.Category]domain.Category{domain.CategoryGeneral: domain.CategoryEmail},
	)
	require.NoError(t, err)

	assert.Equal(t, int64(30), table.RewardFor(domain.CategoryEmail))
	assert.Equal(t, int64(30), table.RewardFor(domain.CategoryGeneral))
	assert.Equal(t, int64(30), table.RewardFor(domain.CategorySlack))
	assert.Equal(t, int64(25), base.RewardFor(domain.CategoryEmail), "base is unchanged")

	_, err = base.With(nil, map[domain.Category]domain.Category{domain.CategorySlack: "nowhere"})
	assert.Error(t, err)
}

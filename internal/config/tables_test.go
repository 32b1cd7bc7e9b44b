package config

import (
	"testing"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTables_NormalizesKeys(t *testing.T) {
	doc := `
rewards:
  Email: 30
  simple: 5
aliases:
  " Slack ": EMAIL
traits:
  research: p
  slack: i
keywords:
  Email: [" Mail ", INBOX, ""]
`
	tables, err := ParseTables([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, map[domain.Category]int64{domain.CategoryEmail: 30, domain.CategorySimple: 5}, tables.Rewards)
	assert.Equal(t, map[domain.Category]domain.Category{domain.CategorySlack: domain.CategoryEmail}, tables.Aliases)
	assert.Equal(t, map[domain.Category]domain.Trait{
		domain.CategoryResearch: domain.TraitProducer,
		domain.CategorySlack:    domain.TraitIntegrator,
	}, tables.Traits)
	assert.Equal(t, []string{"mail", "inbox"}, tables.Keywords[domain.CategoryEmail])
}

func TestParseTables_EmptyDocument(t *testing.T) {
	tables, err := ParseTables(nil)
	require.NoError(t, err)
	assert.Equal(t, Tables{}, tables)
}

func TestParseTables_Rejects(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"unknown key", "reward:\n  email: 3\n"},
		{"negative reward", "rewards:\n  email: -1\n"},
		{"unknown trait", "traits:\n  email: Q\n"},
		{"keywords for unknown category", "keywords:\n  weather: [rain]\n"},
		{"empty alias target", "aliases:\n  slack: \"\"\n"},
		{"malformed yaml", "rewards: [1, 2\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseTables([]byte(tt.doc))
			assert.ErrorIs(t, err, ErrInvalid)
		})
	}
}

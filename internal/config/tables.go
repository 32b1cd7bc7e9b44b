package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alexanderramin/taskquest/internal/domain"
	"gopkg.in/yaml.v3"
)

// Tables overrides the built-in reward, alias, trait, and keyword tables.
// Entries are merged over the defaults; an empty Tables changes nothing.
//
//	rewards:  {simple: 10, email: 30}
//	aliases:  {slack: email}
//	traits:   {research: P, slack: I}
//	keywords: {email: [mail, inbox]}
type Tables struct {
	Rewards  map[domain.Category]int64           `yaml:"rewards"`
	Aliases  map[domain.Category]domain.Category `yaml:"aliases"`
	Traits   map[domain.Category]domain.Trait    `yaml:"traits"`
	Keywords map[domain.Category][]string        `yaml:"keywords"`
}

// LoadTables reads and validates a YAML tables file.
func LoadTables(path string) (Tables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Tables{}, fmt.Errorf("reading tables file: %w", err)
	}
	return ParseTables(data)
}

// ParseTables decodes a YAML tables document. Unknown top-level keys are
// rejected so typos surface instead of being ignored.
func ParseTables(data []byte) (Tables, error) {
	var t Tables
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&t); err != nil && !errors.Is(err, io.EOF) {
		return Tables{}, fmt.Errorf("%w: parsing tables: %v", ErrInvalid, err)
	}
	t.normalize()
	if err := t.Validate(); err != nil {
		return Tables{}, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return t, nil
}

// normalize lowercases categories and keywords and uppercases trait codes.
func (t *Tables) normalize() {
	if t.Rewards != nil {
		m := make(map[domain.Category]int64, len(t.Rewards))
		for c, p := range t.Rewards {
			m[normCategory(c)] = p
		}
		t.Rewards = m
	}
	if t.Aliases != nil {
		m := make(map[domain.Category]domain.Category, len(t.Aliases))
		for from, to := range t.Aliases {
			m[normCategory(from)] = normCategory(to)
		}
		t.Aliases = m
	}
	if t.Traits != nil {
		m := make(map[domain.Category]domain.Trait, len(t.Traits))
		for c, tr := range t.Traits {
			m[normCategory(c)] = domain.Trait(strings.ToUpper(strings.TrimSpace(string(tr))))
		}
		t.Traits = m
	}
	if t.Keywords != nil {
		m := make(map[domain.Category][]string, len(t.Keywords))
		for c, words := range t.Keywords {
			out := make([]string, 0, len(words))
			for _, w := range words {
				if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
					out = append(out, w)
				}
			}
			m[normCategory(c)] = out
		}
		t.Keywords = m
	}
}

func normCategory(c domain.Category) domain.Category {
	return domain.Category(strings.ToLower(strings.TrimSpace(string(c))))
}

// Validate checks the overrides on their own. Whether an alias target has a
// reward is checked when the tables are merged over the defaults.
func (t Tables) Validate() error {
	var problems []error
	for c, p := range t.Rewards {
		if c == "" {
			problems = append(problems, errors.New("reward with empty category"))
		}
		if p < 0 {
			problems = append(problems, fmt.Errorf("reward for %q is negative: %d", c, p))
		}
	}
	for from, to := range t.Aliases {
		if from == "" || to == "" {
			problems = append(problems, fmt.Errorf("alias %q -> %q has an empty side", from, to))
		}
	}
	for c, tr := range t.Traits {
		if !domain.IsKnownTrait(tr) {
			problems = append(problems, fmt.Errorf("category %q maps to unknown trait %q", c, tr))
		}
	}
	for c := range t.Keywords {
		if !domain.IsKnownCategory(c) {
			problems = append(problems, fmt.Errorf("keywords for unknown category %q", c))
		}
	}
	return errors.Join(problems...)
}

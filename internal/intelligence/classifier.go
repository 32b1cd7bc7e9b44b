package intelligence

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/llm"
)

const fallbackReasoning = "model returned an unknown or empty category, defaulting to general"

// classifyOutput is the JSON shape requested from the model.
type classifyOutput struct {
	Category   string         `json:"category"`
	Parameters map[string]any `json:"parameters"`
	Reasoning  string         `json:"reasoning"`
}

// LLMClassifier asks a language model to pick the category.
type LLMClassifier struct {
	client llm.LLMClient
}

// NewLLMClassifier creates a classifier backed by client.
func NewLLMClassifier(client llm.LLMClient) *LLMClassifier {
	return &LLMClassifier{client: client}
}

// Classify never returns an empty intent. Any model failure yields a general
// intent together with the error that caused it.
func (c *LLMClassifier) Classify(ctx context.Context, input string, sc domain.SessionContext) (Intent, error) {
	resp, err := c.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskClassify,
		SystemPrompt: buildClassifySystemPrompt(sc),
		UserPrompt:   input,
		JSON:         true,
	})
	if err != nil {
		return generalIntent(fmt.Sprintf("intent analysis failed: %v", err)), fmt.Errorf("llm classify failed: %w", err)
	}

	out, err := llm.ExtractJSON[classifyOutput](resp.Text, nil)
	if err != nil {
		return generalIntent(fmt.Sprintf("intent analysis failed: %v", err)), fmt.Errorf("extracting intent: %w", err)
	}

	raw := strings.ToLower(strings.TrimSpace(out.Category))
	if !domain.IsKnownCategory(domain.Category(raw)) {
		return Intent{Category: domain.CategoryGeneral, Parameters: out.Parameters, Reasoning: fallbackReasoning}, nil
	}
	return Intent{Category: domain.Category(raw), Parameters: out.Parameters, Reasoning: out.Reasoning}, nil
}

func generalIntent(reasoning string) Intent {
	return Intent{Category: domain.CategoryGeneral, Reasoning: reasoning}
}

// DefaultKeywords is the keyword table used when no model is available.
// General has no keywords; it is what remains when nothing matches.
func DefaultKeywords() map[domain.Category][]string {
	return map[domain.Category][]string{
		domain.CategoryEmail:    {"email", "mail", "inbox", "reply", "draft", "send", "recipient", "subject"},
		domain.CategoryResearch: {"research", "search", "find", "investigate", "look", "learn", "compare", "sources"},
		domain.CategoryReport:   {"report", "summary", "summarize", "stats", "analytics", "performance", "progress", "xp"},
		domain.CategoryCalendar: {"calendar", "schedule", "meeting", "event", "appointment", "availability", "tomorrow", "book"},
		domain.CategoryNotion:   {"notion", "note", "notes", "page", "wiki", "document", "knowledge", "journal"},
		domain.CategorySlack:    {"slack", "channel", "team", "ping", "notify", "message", "dm", "announce"},
	}
}

// KeywordClassifier scores each category by how many of its keywords appear
// in the input. The highest score wins, ties go to the earlier category in
// dispatch order, and no match at all means general.
type KeywordClassifier struct {
	keywords map[domain.Category][]string
}

// NewKeywordClassifier creates a classifier over the given table. A nil
// table uses DefaultKeywords.
func NewKeywordClassifier(keywords map[domain.Category][]string) *KeywordClassifier {
	if keywords == nil {
		keywords = DefaultKeywords()
	}
	return &KeywordClassifier{keywords: keywords}
}

func (c *KeywordClassifier) Classify(_ context.Context, input string, _ domain.SessionContext) (Intent, error) {
	words := make(map[string]bool)
	for _, w := range strings.FieldsFunc(strings.ToLower(input), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}) {
		words[w] = true
	}

	best := domain.CategoryGeneral
	bestHits := 0
	var matched []string
	for _, cat := range domain.KnownCategories() {
		hits := 0
		var catMatched []string
		for _, kw := range c.keywords[cat] {
			if words[kw] {
				hits++
				catMatched = append(catMatched, kw)
			}
		}
		if hits > bestHits {
			best, bestHits, matched = cat, hits, catMatched
		}
	}

	if bestHits == 0 {
		return generalIntent("no category keywords matched"), nil
	}
	return Intent{
		Category:  best,
		Reasoning: fmt.Sprintf("matched keywords: %s", strings.Join(matched, ", ")),
	}, nil
}

// NewClassifier picks the model-backed classifier when the client can be
// used and the keyword classifier otherwise.
func NewClassifier(client llm.LLMClient, enabled bool) Classifier {
	if client == nil || !enabled {
		return NewKeywordClassifier(nil)
	}
	return NewLLMClassifier(client)
}

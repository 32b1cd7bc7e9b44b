package service

import (
	"context"
	"fmt"
	"time"

	"github.com/alexanderramin/taskquest/internal/domain"
)

// TraitMapping assigns dispatch categories to trait buckets. Categories
// absent from the mapping contribute to no trait.
type TraitMapping struct {
	m map[domain.Category]domain.Trait
}

// NewTraitMapping copies m into an immutable mapping. Every value must be
// one of the four trait codes.
func NewTraitMapping(m map[domain.Category]domain.Trait) (TraitMapping, error) {
	out := make(map[domain.Category]domain.Trait, len(m))
	for c, tr := range m {
		if !domain.IsKnownTrait(tr) {
			return TraitMapping{}, fmt.Errorf("category %q maps to unknown trait %q", c, tr)
		}
		out[c] = tr
	}
	return TraitMapping{m: out}, nil
}

// DefaultTraitMapping returns the built-in category to trait mapping.
func DefaultTraitMapping() TraitMapping {
	return TraitMapping{m: map[domain.Category]domain.Trait{
		domain.CategoryResearch: domain.TraitProducer,
		domain.CategoryReport:   domain.TraitProducer,
		domain.CategoryEmail:    domain.TraitAdministrator,
		domain.CategoryCalendar: domain.TraitAdministrator,
		domain.CategoryNotion:   domain.TraitEntrepreneur,
		domain.CategoryGeneral:  domain.TraitEntrepreneur,
		domain.CategorySlack:    domain.TraitIntegrator,
	}}
}

// TraitFor returns the trait c counts toward.
func (m TraitMapping) TraitFor(c domain.Category) (domain.Trait, bool) {
	tr, ok := m.m[c]
	return tr, ok
}

var traitDetails = map[domain.Trait]domain.TraitDetails{
	domain.TraitProducer: {
		Name:        "Producer",
		Badge:       "🚀",
		Description: "You are results-focused and action-oriented. You excel at getting things done.",
	},
	domain.TraitAdministrator: {
		Name:        "Administrator",
		Badge:       "🗂️",
		Description: "You are organized, systematic, and process-oriented. You bring order to chaos.",
	},
	domain.TraitEntrepreneur: {
		Name:        "Entrepreneur",
		Badge:       "💡",
		Description: "You are a creative, innovative, and strategic thinker. You see the big picture.",
	},
	domain.TraitIntegrator: {
		Name:        "Integrator",
		Badge:       "🤝",
		Description: "You are collaborative and people-focused. You build strong teams and connections.",
	},
}

var traitRecommendations = map[domain.Trait][]string{
	domain.TraitProducer: {
		"Delegate smaller tasks to maintain high output.",
		"Take short breaks to avoid burnout.",
		"Set clear, achievable daily goals.",
	},
	domain.TraitAdministrator: {
		"Don't be afraid to innovate on existing processes.",
		"Schedule time for creative thinking.",
		"Use templates to streamline your administrative tasks.",
	},
	domain.TraitEntrepreneur: {
		"Collaborate with 'A' types to bring your ideas to life.",
		"Break down big ideas into smaller, actionable steps.",
		"Set clear priorities to focus your creative energy.",
	},
	domain.TraitIntegrator: {
		"Use your people skills to unblock team members.",
		"Facilitate meetings to ensure all voices are heard.",
		"Organize team-building activities to boost morale.",
	},
}

// Details returns the presentation data for tr.
func Details(tr domain.Trait) domain.TraitDetails {
	return traitDetails[tr]
}

// Badge is the display label for a dominant trait.
type Badge struct {
	Trait domain.Trait `json:"trait"`
	Name  string       `json:"name"`
	Emoji string       `json:"emoji"`
}

// TraitScorer derives a trait profile from per-category call counts. The
// profile is recomputed on every call.
type TraitScorer struct {
	store   MetricStore
	mapping TraitMapping
	options
}

// NewTraitScorer creates a scorer. A nil store always yields the default
// profile. A zero mapping uses DefaultTraitMapping.
func NewTraitScorer(store MetricStore, mapping TraitMapping, opts ...Option) *TraitScorer {
	if mapping.m == nil {
		mapping = DefaultTraitMapping()
	}
	return &TraitScorer{store: store, mapping: mapping, options: buildOptions(opts)}
}

// DefaultProfile is the profile of a user with no mapped history.
func DefaultProfile() domain.TraitProfile {
	return profileFor(domain.ZeroTraitScores(), domain.TraitIntegrator)
}

func profileFor(scores map[domain.Trait]float64, dominant domain.Trait) domain.TraitProfile {
	d := traitDetails[dominant]
	return domain.TraitProfile{
		Scores:        scores,
		Dominant:      dominant,
		DominantName:  d.Name,
		DominantScore: scores[dominant],
		Description:   d.Description,
	}
}

// ComputeProfile buckets the user's call counts by trait and scores each
// trait as its share of all mapped calls. Ties go to the earlier trait in
// P, A, E, I order; a zero maximum falls back to Integrator.
func (s *TraitScorer) ComputeProfile(ctx context.Context, userID string) domain.TraitProfile {
	return s.ProfileFrom(s.readMetrics(ctx, userID))
}

// ProfileFrom scores an already-read set of aggregates.
func (s *TraitScorer) ProfileFrom(metrics []domain.AgentMetric) domain.TraitProfile {
	buckets := make(map[domain.Trait]int64, len(domain.TraitOrder))
	var total int64
	for _, m := range metrics {
		tr, ok := s.mapping.TraitFor(m.Category)
		if !ok {
			continue
		}
		buckets[tr] += m.CallCount
		total += m.CallCount
	}
	if total == 0 {
		return DefaultProfile()
	}

	scores := domain.ZeroTraitScores()
	dominant := domain.TraitOrder[0]
	for _, tr := range domain.TraitOrder {
		scores[tr] = float64(buckets[tr]) / float64(total) * 100
		if scores[tr] > scores[dominant] {
			dominant = tr
		}
	}
	if scores[dominant] == 0 {
		dominant = domain.TraitIntegrator
	}
	return profileFor(scores, dominant)
}

// Badge returns the badge of the user's dominant trait.
func (s *TraitScorer) Badge(ctx context.Context, userID string) Badge {
	return BadgeFor(s.ComputeProfile(ctx, userID).Dominant)
}

// Recommendations returns the three tips for the user's dominant trait.
func (s *TraitScorer) Recommendations(ctx context.Context, userID string) []string {
	return RecommendationsFor(s.ComputeProfile(ctx, userID).Dominant)
}

// BadgeFor returns the display badge of tr.
func BadgeFor(tr domain.Trait) Badge {
	d := traitDetails[tr]
	return Badge{Trait: tr, Name: d.Name, Emoji: d.Badge}
}

// RecommendationsFor returns a copy of the tips for tr.
func RecommendationsFor(tr domain.Trait) []string {
	src := traitRecommendations[tr]
	out := make([]string, len(src))
	copy(out, src)
	return out
}

// ProfileSnapshot is a profile with its badge, tips, and the aggregates it
// was scored from, all taken from a single read.
type ProfileSnapshot struct {
	Profile         domain.TraitProfile  `json:"profile"`
	Badge           Badge                `json:"badge"`
	Recommendations []string             `json:"recommendations"`
	Usage           []domain.AgentMetric `json:"usage"`
}

// Snapshot reads the user's aggregates once and derives everything the
// profile views show from them.
func (s *TraitScorer) Snapshot(ctx context.Context, userID string) ProfileSnapshot {
	metrics := s.readMetrics(ctx, userID)
	if metrics == nil {
		metrics = []domain.AgentMetric{}
	}
	p := s.ProfileFrom(metrics)
	return ProfileSnapshot{
		Profile:         p,
		Badge:           BadgeFor(p.Dominant),
		Recommendations: RecommendationsFor(p.Dominant),
		Usage:           metrics,
	}
}

// TopCategory returns the user's most-called category.
func (s *TraitScorer) TopCategory(ctx context.Context, userID string) (domain.AgentMetric, bool) {
	metrics := s.readMetrics(ctx, userID)
	if len(metrics) == 0 {
		return domain.AgentMetric{}, false
	}
	return metrics[0], true
}

// Metrics returns the user's aggregates, sorted by call count descending.
func (s *TraitScorer) Metrics(ctx context.Context, userID string) []domain.AgentMetric {
	return s.readMetrics(ctx, userID)
}

func (s *TraitScorer) readMetrics(ctx context.Context, userID string) []domain.AgentMetric {
	if s.store == nil {
		return nil
	}
	startedAt := time.Now()
	metrics, err := s.store.ReadAggregateMetrics(ctx, userID)
	if err != nil {
		s.degrade("read_metrics", userID, err)
		s.observe(ctx, "read-metrics", startedAt, err, map[string]any{"user_id": userID})
		return nil
	}
	return metrics
}

// With returns a copy of m with overrides laid over it.
func (m TraitMapping) With(overrides map[domain.Category]domain.Trait) (TraitMapping, error) {
	merged := make(map[domain.Category]domain.Trait, len(m.m)+len(overrides))
	for c, tr := range m.m {
		merged[c] = tr
	}
	for c, tr := range overrides {
		merged[c] = tr
	}
	return NewTraitMapping(merged)
}

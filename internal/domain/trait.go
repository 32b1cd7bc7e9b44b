package domain

// TraitDetails is the fixed presentation data for a trait.
type TraitDetails struct {
	Name        string
	Badge       string
	Description string
}

// TraitProfile is derived on demand from AgentMetric aggregates; it is never stored.
type TraitProfile struct {
	Scores        map[Trait]float64 `json:"scores"`
	Dominant      Trait             `json:"dominant_trait"`
	DominantName  string            `json:"dominant_name"`
	DominantScore float64           `json:"dominant_score"`
	Description   string            `json:"description"`
}

// ZeroTraitScores returns a score map with every trait present at zero.
func ZeroTraitScores() map[Trait]float64 {
	scores := make(map[Trait]float64, len(TraitOrder))
	for _, t := range TraitOrder {
		scores[t] = 0
	}
	return scores
}

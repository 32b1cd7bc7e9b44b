package domain

// SessionContext is the mutable per-session state shown alongside each reply.
type SessionContext struct {
	EnergyLevel int       `json:"energy_level"`
	FlowState   FlowState `json:"flow_state"`
	FocusScore  int       `json:"focus_score"`
}

const (
	defaultEnergyLevel = 80
	defaultFocusScore  = 90

	deepWorkCost = 5
	focusedCost  = 2
	fallbackCost = 1
)

// DefaultSessionContext returns the state a new session starts with.
func DefaultSessionContext() SessionContext {
	return SessionContext{
		EnergyLevel: defaultEnergyLevel,
		FlowState:   FlowFocused,
		FocusScore:  defaultFocusScore,
	}
}

// ApplyCost deducts the energy cost of one completed task and updates the
// flow state. It must run after the task's category is final.
func (c *SessionContext) ApplyCost(category Category) {
	switch category {
	case CategoryResearch, CategoryReport, CategoryComplex:
		c.EnergyLevel -= deepWorkCost
		c.FlowState = FlowDeepWork
	case CategoryEmail, CategorySimple, CategoryGeneral, CategoryCalendar, CategoryNotion, CategorySlack:
		c.EnergyLevel -= focusedCost
		c.FlowState = FlowFocused
	default:
		c.EnergyLevel -= fallbackCost
	}
	if c.EnergyLevel < 0 {
		c.EnergyLevel = 0
	}
}

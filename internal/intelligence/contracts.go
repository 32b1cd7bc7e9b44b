package intelligence

import (
	"context"

	"github.com/alexanderramin/taskquest/internal/domain"
)

// Intent is the classification of one user command.
type Intent struct {
	Category   domain.Category `json:"category"`
	Parameters map[string]any  `json:"parameters,omitempty"`
	Reasoning  string          `json:"reasoning"`
}

// Classifier maps free text onto a dispatch category. Implementations always
// return a usable Intent; a non-nil error only reports why it fell back to
// general.
type Classifier interface {
	Classify(ctx context.Context, input string, sc domain.SessionContext) (Intent, error)
}

// HandlerRequest carries everything a category handler may use.
type HandlerRequest struct {
	UserID  string
	Input   string
	Intent  Intent
	Context domain.SessionContext
}

// Handler renders the reply for one category. Handle never fails: internal
// errors come back inline in the returned text.
type Handler interface {
	Handle(ctx context.Context, req HandlerRequest) string
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(ctx context.Context, req HandlerRequest) string

func (f HandlerFunc) Handle(ctx context.Context, req HandlerRequest) string { return f(ctx, req) }

// ReportSnapshot is the progress data the report handler renders.
type ReportSnapshot struct {
	Level          int
	TotalPoints    int64
	TasksCompleted int64
}

// ReportSource supplies progress and usage data for reports. Lookups degrade
// to zero values rather than failing.
type ReportSource interface {
	Snapshot(ctx context.Context, userID string) ReportSnapshot
	TopCategory(ctx context.Context, userID string) (domain.AgentMetric, bool)
}

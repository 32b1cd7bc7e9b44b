package intelligence

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/llm"
)

// PromptHandler runs one category's prompt template against the model and
// decorates the answer with the category header.
type PromptHandler struct {
	name         string
	header       string
	systemPrompt string
	offline      string
	client       llm.LLMClient
}

// PromptHandlerSpec describes a prompt-template handler.
type PromptHandlerSpec struct {
	Name         string // shown in inline errors, e.g. "Email"
	Header       string
	SystemPrompt string
	Offline      string // reply when no model is configured; empty uses a generic note
}

// NewPromptHandler creates a handler. A nil client always answers offline.
func NewPromptHandler(spec PromptHandlerSpec, client llm.LLMClient) *PromptHandler {
	return &PromptHandler{
		name:         spec.Name,
		header:       spec.Header,
		systemPrompt: spec.SystemPrompt,
		offline:      spec.Offline,
		client:       client,
	}
}

func (h *PromptHandler) Handle(ctx context.Context, req HandlerRequest) string {
	if h.client == nil {
		return h.decorate(h.offlineText(req.Input))
	}

	resp, err := h.client.Generate(ctx, llm.GenerateRequest{
		Task:         llm.TaskHandle,
		SystemPrompt: h.systemPrompt,
		UserPrompt:   buildHandlerUserPrompt(req),
	})
	if errors.Is(err, llm.ErrDisabled) {
		return h.decorate(h.offlineText(req.Input))
	}
	if err != nil {
		return fmt.Sprintf("❌ Error in %s Agent: %v", h.name, err)
	}

	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return fmt.Sprintf("❌ Error in %s Agent: empty response from model", h.name)
	}
	return h.decorate(text)
}

func (h *PromptHandler) decorate(body string) string {
	return h.header + "\n\n" + body
}

func (h *PromptHandler) offlineText(input string) string {
	if h.offline != "" {
		return h.offline
	}
	return fmt.Sprintf("Noted your %s request: %q. Enable a language model (TASKQUEST_LLM_ENABLED=true) to have it drafted for you.",
		strings.ToLower(h.name), input)
}

// buildHandlerUserPrompt passes along any parameters the classifier extracted.
func buildHandlerUserPrompt(req HandlerRequest) string {
	if len(req.Intent.Parameters) == 0 {
		return req.Input
	}
	var b strings.Builder
	b.WriteString(req.Input)
	b.WriteString("\n\nExtracted details:\n")
	for _, k := range slices.Sorted(maps.Keys(req.Intent.Parameters)) {
		fmt.Fprintf(&b, "- %s: %v\n", k, req.Intent.Parameters[k])
	}
	return b.String()
}

// ReportHandler renders a performance report from stored progress. It does
// not call the model.
type ReportHandler struct {
	source ReportSource
}

// NewReportHandler creates a report handler reading from source.
func NewReportHandler(source ReportSource) *ReportHandler {
	return &ReportHandler{source: source}
}

func (h *ReportHandler) Handle(ctx context.Context, req HandlerRequest) string {
	snap := ReportSnapshot{Level: 1}
	var top domain.AgentMetric
	hasTop := false
	if h.source != nil {
		snap = h.source.Snapshot(ctx, req.UserID)
		top, hasTop = h.source.TopCategory(ctx, req.UserID)
	}

	var b strings.Builder
	b.WriteString("📊 **Your Performance Report**\n\n")
	b.WriteString("Here's a snapshot of your recent activity:\n\n")
	fmt.Fprintf(&b, "- **Level:** %d\n", snap.Level)
	fmt.Fprintf(&b, "- **Total XP:** %d\n", snap.TotalPoints)
	fmt.Fprintf(&b, "- **Tasks Completed:** %d\n", snap.TasksCompleted)
	fmt.Fprintf(&b, "- **Current Energy:** %d/100\n", req.Context.EnergyLevel)
	fmt.Fprintf(&b, "- **Current Flow State:** %s\n\n", req.Context.FlowState.Label())
	if hasTop {
		fmt.Fprintf(&b, "**Your Top Agent:** `%s` (called %d times).", top.Category, top.CallCount)
	} else {
		b.WriteString("Start completing tasks to see your agent analytics!")
	}
	return b.String()
}

// DefaultHandlerSpecs returns the prompt handlers for every category except
// report.
func DefaultHandlerSpecs() map[domain.Category]PromptHandlerSpec {
	return map[domain.Category]PromptHandlerSpec{
		domain.CategoryEmail:    {Name: "Email", Header: "📧 **Email Agent:**", SystemPrompt: emailSystemPrompt},
		domain.CategoryResearch: {Name: "Research", Header: "🔍 **Research Agent:**", SystemPrompt: researchSystemPrompt},
		domain.CategoryCalendar: {Name: "Calendar", Header: "📅 **Calendar Agent:**", SystemPrompt: calendarSystemPrompt},
		domain.CategoryNotion:   {Name: "Notion", Header: "📝 **Notion Agent:**", SystemPrompt: notionSystemPrompt},
		domain.CategorySlack:    {Name: "Slack", Header: "💬 **Slack Agent:**", SystemPrompt: slackSystemPrompt},
		domain.CategoryGeneral: {
			Name:         "General",
			Header:       "💬 **Response:**",
			SystemPrompt: generalSystemPrompt,
			Offline:      generalOfflineText,
		},
	}
}

// NewHandlers builds one handler per dispatch category. A nil client makes
// every prompt handler answer offline.
func NewHandlers(client llm.LLMClient, source ReportSource) map[domain.Category]Handler {
	handlers := make(map[domain.Category]Handler, len(domain.KnownCategories()))
	for cat, spec := range DefaultHandlerSpecs() {
		handlers[cat] = NewPromptHandler(spec, client)
	}
	handlers[domain.CategoryReport] = NewReportHandler(source)
	return handlers
}

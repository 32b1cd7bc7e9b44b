package intelligence

import (
	"context"
	"strings"
	"testing"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/llm"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubReportSource struct {
	snap   ReportSnapshot
	top    domain.AgentMetric
	hasTop bool
}

func (s stubReportSource) Snapshot(context.Context, string) ReportSnapshot { return s.snap }

func (s stubReportSource) TopCategory(context.Context, string) (domain.AgentMetric, bool) {
	return s.top, s.hasTop
}

func TestPromptHandler_DecoratesModelOutput(t *testing.T) {
	client := &mockLLMClient{response: "  Subject: Launch\n\nHi Alice,  "}
	h := NewPromptHandler(DefaultHandlerSpecs()[domain.CategoryEmail], client)

	got := h.Handle(context.Background(), HandlerRequest{Input: "email alice about the launch"})

	assert.Equal(t, "📧 **Email Agent:**\n\nSubject: Launch\n\nHi Alice,", got)
	assert.Equal(t, llm.TaskHandle, client.last.Task)
	assert.Equal(t, emailSystemPrompt, client.last.SystemPrompt)
	assert.False(t, client.last.JSON)
}

func TestPromptHandler_ErrorRenderedInline(t *testing.T) {
	client := &mockLLMClient{err: llm.ErrProviderUnavailable}
	h := NewPromptHandler(DefaultHandlerSpecs()[domain.CategoryResearch], client)

	got := h.Handle(context.Background(), HandlerRequest{Input: "research go generics"})

	assert.True(t, strings.HasPrefix(got, "❌ Error in Research Agent: "), got)
	assert.Contains(t, got, llm.ErrProviderUnavailable.Error())
}

func TestPromptHandler_EmptyResponseIsAnError(t *testing.T) {
	h := NewPromptHandler(DefaultHandlerSpecs()[domain.CategorySlack], &mockLLMClient{response: "   "})
	got := h.Handle(context.Background(), HandlerRequest{Input: "ping the team"})
	assert.Equal(t, "❌ Error in Slack Agent: empty response from model", got)
}

func TestPromptHandler_OfflineWithoutClient(t *testing.T) {
	h := NewPromptHandler(DefaultHandlerSpecs()[domain.CategoryCalendar], nil)
	got := h.Handle(context.Background(), HandlerRequest{Input: "book a room"})

	assert.True(t, strings.HasPrefix(got, "📅 **Calendar Agent:**\n\n"), got)
	assert.Contains(t, got, `"book a room"`)
}

func TestPromptHandler_DisabledClientAnswersOffline(t *testing.T) {
	h := NewPromptHandler(DefaultHandlerSpecs()[domain.CategoryGeneral], llm.DisabledClient{})
	got := h.Handle(context.Background(), HandlerRequest{Input: "hello"})
	assert.Equal(t, "💬 **Response:**\n\n"+generalOfflineText, got)
}

func TestPromptHandler_PassesExtractedParameters(t *testing.T) {
	client := &mockLLMClient{response: "ok"}
	h := NewPromptHandler(DefaultHandlerSpecs()[domain.CategoryEmail], client)

	h.Handle(context.Background(), HandlerRequest{
		Input:  "email bob",
		Intent: Intent{Category: domain.CategoryEmail, Parameters: map[string]any{"to": "bob", "subject": "hi"}},
	})

	assert.Equal(t, "email bob\n\nExtracted details:\n- subject: hi\n- to: bob\n", client.last.UserPrompt)
}

func TestReportHandler_WithTopCategory(t *testing.T) {
	h := NewReportHandler(stubReportSource{
		snap:   ReportSnapshot{Level: 3, TotalPoints: 275, TasksCompleted: 6},
		top:    domain.AgentMetric{Category: domain.CategoryResearch, CallCount: 4},
		hasTop: true,
	})

	got := h.Handle(context.Background(), HandlerRequest{
		UserID:  "u1",
		Context: domain.SessionContext{EnergyLevel: 70, FlowState: domain.FlowDeepWork},
	})

	want := "📊 **Your Performance Report**\n\n" +
		"Here's a snapshot of your recent activity:\n\n" +
		"- **Level:** 3\n" +
		"- **Total XP:** 275\n" +
		"- **Tasks Completed:** 6\n" +
		"- **Current Energy:** 70/100\n" +
		"- **Current Flow State:** Deep work\n\n" +
		"**Your Top Agent:** `research` (called 4 times)."
	assert.Equal(t, want, got)
}

func TestReportHandler_NoMetricsYet(t *testing.T) {
	h := NewReportHandler(stubReportSource{snap: ReportSnapshot{Level: 1}})
	got := h.Handle(context.Background(), HandlerRequest{Context: domain.DefaultSessionContext()})
	assert.True(t, strings.HasSuffix(got, "Start completing tasks to see your agent analytics!"), got)
	assert.Contains(t, got, "- **Level:** 1\n")
}

func TestReportHandler_NilSourceUsesDefaults(t *testing.T) {
	got := NewReportHandler(nil).Handle(context.Background(), HandlerRequest{Context: domain.DefaultSessionContext()})
	assert.Contains(t, got, "- **Level:** 1\n")
	assert.Contains(t, got, "- **Total XP:** 0\n")
}

func TestNewHandlers_CoversEveryCategory(t *testing.T) {
	handlers := NewHandlers(nil, nil)
	for _, c := range domain.KnownCategories() {
		h, ok := handlers[c]
		require.True(t, ok, "missing handler for %s", c)
		assert.NotEmpty(t, h.Handle(context.Background(), HandlerRequest{Input: "x", Context: domain.DefaultSessionContext()}))
	}
	assert.IsType(t, &ReportHandler{}, handlers[domain.CategoryReport])
}

func TestHandlerFunc(t *testing.T) {
	var h Handler = HandlerFunc(func(_ context.Context, req HandlerRequest) string { return "echo: " + req.Input })
	assert.Equal(t, "echo: hi", h.Handle(context.Background(), HandlerRequest{Input: "hi"}))
}

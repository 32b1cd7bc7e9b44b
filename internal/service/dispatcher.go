package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taskquest/internal/domain"
	"github.com/alexanderramin/taskquest/internal/intelligence"
	"github.com/alexanderramin/taskquest/internal/sessionstore"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ErrEmptyInput is returned by Handle for blank commands.
var ErrEmptyInput = errors.New("input is empty")

// Request is one inbound command. SessionID defaults to UserID.
type Request struct {
	UserID    string
	SessionID string
	Input     string
}

// Response is the outcome of one dispatched command. Reply is the raw
// handler output; Text adds the progress footer.
type Response struct {
	Text      string                `json:"text"`
	Reply     string                `json:"reply"`
	Category  domain.Category       `json:"category"`
	Reasoning string                `json:"reasoning"`
	Stats     Stats                 `json:"stats"`
	Context   domain.SessionContext `json:"context"`
}

// DispatcherDeps are the collaborators a Dispatcher orchestrates. Activity
// may be nil, in which case chats and usage metrics are not recorded.
type DispatcherDeps struct {
	Classifier intelligence.Classifier
	Handlers   map[domain.Category]intelligence.Handler
	Tracker    *ProgressTracker
	Scorer     *TraitScorer
	Sessions   sessionstore.Store
	Activity   ActivityStore
}

// Dispatcher routes commands to category handlers and keeps score.
type Dispatcher struct {
	classifier intelligence.Classifier
	handlers   map[domain.Category]intelligence.Handler
	tracker    *ProgressTracker
	scorer     *TraitScorer
	sessions   sessionstore.Store
	activity   ActivityStore
	inflight   *keyedMutex
	options
}

// NewDispatcher wires a dispatcher. Tracker, Scorer, and Sessions are
// required; a nil Classifier uses the keyword classifier.
func NewDispatcher(deps DispatcherDeps, opts ...Option) (*Dispatcher, error) {
	if deps.Tracker == nil || deps.Scorer == nil || deps.Sessions == nil {
		return nil, errors.New("dispatcher needs a tracker, a scorer, and a session store")
	}
	classifier := deps.Classifier
	if classifier == nil {
		classifier = intelligence.NewKeywordClassifier(nil)
	}
	handlers := make(map[domain.Category]intelligence.Handler, len(deps.Handlers))
	for c, h := range deps.Handlers {
		handlers[c] = h
	}
	return &Dispatcher{
		classifier: classifier,
		handlers:   handlers,
		tracker:    deps.Tracker,
		scorer:     deps.Scorer,
		sessions:   deps.Sessions,
		activity:   deps.Activity,
		inflight:   newKeyedMutex(),
		options:    buildOptions(opts),
	}, nil
}

// Handle runs one command end to end: classify, run the handler, award
// points, apply the energy cost, and record the exchange. Commands in the
// same session run one at a time. Only blank input is an error.
func (d *Dispatcher) Handle(ctx context.Context, req Request) (resp Response, err error) {
	input := strings.TrimSpace(req.Input)
	if input == "" {
		return Response{}, ErrEmptyInput
	}
	sessionID := sessionKey(req)

	startedAt := time.Now()
	fields := map[string]any{"user_id": req.UserID, "session_id": sessionID}
	defer func() {
		fields["category"] = string(resp.Category)
		fields["points"] = resp.Stats.PointsAwarded
		d.observe(ctx, "dispatch", startedAt, err, fields)
	}()

	unlock := d.inflight.Lock(sessionID)
	defer unlock()

	sc := d.loadSession(ctx, sessionID)

	intent, cerr := d.classifier.Classify(ctx, input, sc)
	if cerr != nil {
		d.logger.Warn("classification fell back to general",
			zap.String("user_id", req.UserID),
			zap.Error(cerr),
		)
		d.metrics.recordClassifierFallback()
	}
	if !domain.IsKnownCategory(intent.Category) {
		intent.Category = domain.CategoryGeneral
	}
	category := intent.Category

	reply := d.runHandler(ctx, category, intelligence.HandlerRequest{
		UserID:  req.UserID,
		Input:   input,
		Intent:  intent,
		Context: sc,
	})

	stats := d.tracker.AwardPoints(ctx, req.UserID, category)

	sc.ApplyCost(category)
	if serr := d.sessions.Save(ctx, sessionID, sc); serr != nil {
		d.logger.Warn("saving session context failed",
			zap.String("session_id", sessionID),
			zap.Error(serr),
		)
	}

	text := ComposeResponse(reply, stats, sc)
	d.recordActivity(ctx, req.UserID, input, text, category, stats.PointsAwarded)
	d.metrics.recordDispatch(category, stats.PointsAwarded)

	return Response{
		Text:      text,
		Reply:     reply,
		Category:  category,
		Reasoning: intent.Reasoning,
		Stats:     stats,
		Context:   sc,
	}, nil
}

// runHandler invokes the category's handler, falling back to general, and
// turns a panic into an inline error.
func (d *Dispatcher) runHandler(ctx context.Context, category domain.Category, req intelligence.HandlerRequest) (reply string) {
	h, ok := d.handlers[category]
	if !ok {
		h, ok = d.handlers[domain.CategoryGeneral]
	}
	if !ok {
		return fmt.Sprintf("❌ No handler available for %s.", category)
	}

	start := time.Now()
	panicked := false
	defer func() {
		if r := recover(); r != nil {
			panicked = true
			d.logger.Error("handler panicked",
				zap.String("category", string(category)),
				zap.Any("panic", r),
			)
			reply = fmt.Sprintf("❌ Error in %s handler: %v", category, r)
		}
		d.metrics.recordHandler(category, time.Since(start), panicked)
	}()
	return h.Handle(ctx, req)
}

func (d *Dispatcher) loadSession(ctx context.Context, sessionID string) domain.SessionContext {
	sc, err := d.sessions.Load(ctx, sessionID)
	if err != nil {
		d.logger.Warn("loading session context failed, using defaults",
			zap.String("session_id", sessionID),
			zap.Error(err),
		)
		return domain.DefaultSessionContext()
	}
	return sc
}

// recordActivity logs the exchange and bumps the category aggregate by the
// points actually credited, which is zero when the award failed.
func (d *Dispatcher) recordActivity(ctx context.Context, userID, input, text string, category domain.Category, awarded int64) {
	if d.activity == nil {
		return
	}
	entry := domain.ChatLogEntry{
		ID:        uuid.New().String(),
		UserID:    userID,
		Input:     input,
		Response:  text,
		Category:  category,
		CreatedAt: d.now(),
	}
	if err := d.activity.LogChat(ctx, entry); err != nil {
		d.degrade("log_chat", userID, err)
	}
	if err := d.activity.IncrementAggregateMetric(ctx, userID, category, awarded); err != nil {
		d.degrade("increment_metric", userID, err)
	}
}

// ComposeResponse appends the progress footer to a handler reply.
func ComposeResponse(reply string, stats Stats, sc domain.SessionContext) string {
	var b strings.Builder
	b.WriteString(reply)
	b.WriteString("\n\n---\n")
	fmt.Fprintf(&b, "**✨ XP Earned:** +%d XP | **Level %d** (%d total XP) | **Tasks:** %d\n",
		stats.PointsAwarded, stats.Level, stats.TotalPoints, stats.TasksCompleted)
	fmt.Fprintf(&b, "**⚡ Energy:** %d/100 | **Flow State:** %s", sc.EnergyLevel, sc.FlowState.Label())
	return b.String()
}

func sessionKey(req Request) string {
	if req.SessionID != "" {
		return req.SessionID
	}
	return req.UserID
}

// Stats returns the user's current progress.
func (d *Dispatcher) Stats(ctx context.Context, userID string) Stats {
	return d.tracker.CurrentStats(ctx, userID)
}

// Context returns the session's current context.
func (d *Dispatcher) Context(ctx context.Context, sessionID string) domain.SessionContext {
	return d.loadSession(ctx, sessionID)
}

func (d *Dispatcher) Profile(ctx context.Context, userID string) domain.TraitProfile {
	return d.scorer.ComputeProfile(ctx, userID)
}

func (d *Dispatcher) Badge(ctx context.Context, userID string) Badge {
	return d.scorer.Badge(ctx, userID)
}

func (d *Dispatcher) Recommendations(ctx context.Context, userID string) []string {
	return d.scorer.Recommendations(ctx, userID)
}

// ProfileSnapshot returns a consistent profile, badge, tips, and usage view.
func (d *Dispatcher) ProfileSnapshot(ctx context.Context, userID string) ProfileSnapshot {
	return d.scorer.Snapshot(ctx, userID)
}

// Usage returns the user's per-category aggregates.
func (d *Dispatcher) Usage(ctx context.Context, userID string) []domain.AgentMetric {
	return d.scorer.Metrics(ctx, userID)
}

func (d *Dispatcher) History(ctx context.Context, userID string, limit int) []domain.TaskHistoryEntry {
	return d.tracker.History(ctx, userID, limit)
}

// Chats returns the user's recent exchanges, newest first.
func (d *Dispatcher) Chats(ctx context.Context, userID string, limit int) []domain.ChatLogEntry {
	if d.activity == nil {
		return []domain.ChatLogEntry{}
	}
	chats, err := d.activity.ListChats(ctx, userID, limit)
	if err != nil {
		d.degrade("list_chats", userID, err)
		return []domain.ChatLogEntry{}
	}
	return chats
}

// Reset deletes every stored record for the user and drops the session
// context. Unlike the read paths it reports store failures, since the
// caller asked for a destructive change.
func (d *Dispatcher) Reset(ctx context.Context, userID, sessionID string) (err error) {
	startedAt := time.Now()
	defer func() {
		d.observe(ctx, "reset", startedAt, err, map[string]any{"user_id": userID})
	}()

	if sessionID == "" {
		sessionID = userID
	}
	unlock := d.inflight.Lock(sessionID)
	defer unlock()

	if d.activity != nil {
		if err = d.activity.ResetUser(ctx, userID); err != nil {
			return fmt.Errorf("resetting user %s: %w", userID, err)
		}
	}
	if err = d.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("dropping session %s: %w", sessionID, err)
	}
	return nil
}

// NewReportSource adapts the tracker and scorer for the report handler.
func NewReportSource(tracker *ProgressTracker, scorer *TraitScorer) intelligence.ReportSource {
	return reportSource{tracker: tracker, scorer: scorer}
}

type reportSource struct {
	tracker *ProgressTracker
	scorer  *TraitScorer
}

func (r reportSource) Snapshot(ctx context.Context, userID string) intelligence.ReportSnapshot {
	s := r.tracker.CurrentStats(ctx, userID)
	return intelligence.ReportSnapshot{Level: s.Level, TotalPoints: s.TotalPoints, TasksCompleted: s.TasksCompleted}
}

func (r reportSource) TopCategory(ctx context.Context, userID string) (domain.AgentMetric, bool) {
	return r.scorer.TopCategory(ctx, userID)
}

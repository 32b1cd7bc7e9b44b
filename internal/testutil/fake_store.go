package testutil

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/alexanderramin/taskquest/internal/domain"
)

// ErrFakeStore is returned by FakeRecordStore operations listed in Fail.
var ErrFakeStore = errors.New("fake store failure")

// FakeRecordStore is an in-memory record store for service tests. Operations
// named in Fail return ErrFakeStore without touching state.
type FakeRecordStore struct {
	mu       sync.Mutex
	progress map[string]domain.ProgressRecord
	history  map[string][]domain.TaskHistoryEntry
	metrics  map[string]map[domain.Category]domain.AgentMetric
	chats    map[string][]domain.ChatLogEntry

	Fail  map[string]bool
	Calls []string
}

func NewFakeRecordStore() *FakeRecordStore {
	return &FakeRecordStore{
		progress: make(map[string]domain.ProgressRecord),
		history:  make(map[string][]domain.TaskHistoryEntry),
		metrics:  make(map[string]map[domain.Category]domain.AgentMetric),
		chats:    make(map[string][]domain.ChatLogEntry),
		Fail:     make(map[string]bool),
	}
}

// FailOn makes the named operations fail from now on.
func (f *FakeRecordStore) FailOn(ops ...string) *FakeRecordStore {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, op := range ops {
		f.Fail[op] = true
	}
	return f
}

func (f *FakeRecordStore) record(op string) error {
	f.Calls = append(f.Calls, op)
	if f.Fail[op] {
		return ErrFakeStore
	}
	return nil
}

// CallsTo returns how many times op was invoked.
func (f *FakeRecordStore) CallsTo(op string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c == op {
			n++
		}
	}
	return n
}

// SeedMetric sets a metric row directly.
func (f *FakeRecordStore) SeedMetric(userID string, category domain.Category, calls, points int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.metrics[userID] == nil {
		f.metrics[userID] = make(map[domain.Category]domain.AgentMetric)
	}
	f.metrics[userID][category] = domain.AgentMetric{
		UserID: userID, Category: category, CallCount: calls, PointsGenerated: points,
	}
}

func (f *FakeRecordStore) ReadProgress(_ context.Context, userID string) (domain.ProgressRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ReadProgress"); err != nil {
		return domain.ProgressRecord{}, err
	}
	rec, ok := f.progress[userID]
	if !ok {
		rec = domain.NewProgressRecord(userID)
		f.progress[userID] = rec
	}
	return rec, nil
}

func (f *FakeRecordStore) WriteProgress(_ context.Context, rec domain.ProgressRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("WriteProgress"); err != nil {
		return err
	}
	f.progress[rec.UserID] = rec
	return nil
}

func (f *FakeRecordStore) AppendHistory(_ context.Context, e domain.TaskHistoryEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("AppendHistory"); err != nil {
		return err
	}
	for _, existing := range f.history[e.UserID] {
		if existing.SequenceNumber == e.SequenceNumber {
			return nil
		}
	}
	f.history[e.UserID] = append(f.history[e.UserID], e)
	return nil
}

func (f *FakeRecordStore) ListHistory(_ context.Context, userID string, limit int) ([]domain.TaskHistoryEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListHistory"); err != nil {
		return nil, err
	}
	src := f.history[userID]
	out := make([]domain.TaskHistoryEntry, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		out = append(out, src[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeRecordStore) ReadAggregateMetrics(_ context.Context, userID string) ([]domain.AgentMetric, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ReadAggregateMetrics"); err != nil {
		return nil, err
	}
	out := make([]domain.AgentMetric, 0, len(f.metrics[userID]))
	for _, m := range f.metrics[userID] {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CallCount != out[j].CallCount {
			return out[i].CallCount > out[j].CallCount
		}
		return out[i].Category < out[j].Category
	})
	return out, nil
}

func (f *FakeRecordStore) IncrementAggregateMetric(_ context.Context, userID string, category domain.Category, pointsDelta int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("IncrementAggregateMetric"); err != nil {
		return err
	}
	if f.metrics[userID] == nil {
		f.metrics[userID] = make(map[domain.Category]domain.AgentMetric)
	}
	m := f.metrics[userID][category]
	m.UserID = userID
	m.Category = category
	m.CallCount++
	m.PointsGenerated += pointsDelta
	f.metrics[userID][category] = m
	return nil
}

func (f *FakeRecordStore) LogChat(_ context.Context, e domain.ChatLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("LogChat"); err != nil {
		return err
	}
	f.chats[e.UserID] = append(f.chats[e.UserID], e)
	return nil
}

func (f *FakeRecordStore) ListChats(_ context.Context, userID string, limit int) ([]domain.ChatLogEntry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ListChats"); err != nil {
		return nil, err
	}
	src := f.chats[userID]
	out := make([]domain.ChatLogEntry, 0, len(src))
	for i := len(src) - 1; i >= 0; i-- {
		out = append(out, src[i])
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *FakeRecordStore) ResetUser(_ context.Context, userID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.record("ResetUser"); err != nil {
		return err
	}
	delete(f.progress, userID)
	delete(f.history, userID)
	delete(f.metrics, userID)
	delete(f.chats, userID)
	return nil
}

func (f *FakeRecordStore) Ping(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.record("Ping")
}

func (f *FakeRecordStore) Close() error { return nil }

package pipeline

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ax4consultants-lab/polymarket-agent-mvp/internal/domain"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

type fakeMarketFetcher struct {
	pages [][]domain.Market
	err   error
	calls int
}

func (f *fakeMarketFetcher) GetMarkets(_ context.Context, _, offset int) ([]domain.Market, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	page := offset / 100
	if page >= len(f.pages) {
		return nil, nil
	}
	return f.pages[page], nil
}

type fakeBookSource struct {
	mu    sync.Mutex
	books map[string]*domain.RawBook
	errs  map[string]error
	calls map[string]int
}

func newFakeBookSource() *fakeBookSource {
	return &fakeBookSource{
		books: make(map[string]*domain.RawBook),
		errs:  make(map[string]error),
		calls: make(map[string]int),
	}
}

func (f *fakeBookSource) GetBook(_ context.Context, tokenID string) (*domain.RawBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[tokenID]++
	if err := f.errs[tokenID]; err != nil {
		return nil, err
	}
	if book, ok := f.books[tokenID]; ok {
		cp := *book
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

type fakeBookCache struct {
	mu    sync.Mutex
	books map[string]*domain.RawBook
	sets  int
}

func newFakeBookCache() *fakeBookCache {
	return &fakeBookCache{books: make(map[string]*domain.RawBook)}
}

func (f *fakeBookCache) SetBook(_ context.Context, book *domain.RawBook, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.books[book.TokenID] = book
	return nil
}

func (f *fakeBookCache) GetBook(_ context.Context, tokenID string) (*domain.RawBook, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if book, ok := f.books[tokenID]; ok {
		cp := *book
		return &cp, nil
	}
	return nil, domain.ErrNotFound
}

type fakeRateLimiter struct {
	mu    sync.Mutex
	waits int
}

func (f *fakeRateLimiter) Allow(context.Context, string, int, time.Duration) (bool, error) {
	return true, nil
}

func (f *fakeRateLimiter) Wait(context.Context, string, int, time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.waits++
	return nil
}

type fakeCycleStore struct {
	mu       sync.Mutex
	nextID   int64
	started  map[int64]time.Time
	finished map[int64]domain.CycleUpdate
}

func newFakeCycleStore() *fakeCycleStore {
	return &fakeCycleStore{
		started:  make(map[int64]time.Time),
		finished: make(map[int64]domain.CycleUpdate),
	}
}

func (f *fakeCycleStore) CreateCycle(_ context.Context, startedAt time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	f.started[f.nextID] = startedAt
	return f.nextID, nil
}

func (f *fakeCycleStore) FinishCycle(_ context.Context, id int64, upd domain.CycleUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.finished[id] = upd
	return nil
}

func (f *fakeCycleStore) LastCycle(_ context.Context) (*domain.Cycle, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.nextID == 0 {
		return nil, domain.ErrNotFound
	}
	c := &domain.Cycle{ID: f.nextID, StartedAt: f.started[f.nextID], Status: domain.CycleStatusRunning}
	if upd, ok := f.finished[f.nextID]; ok {
		c.Status = upd.Status
		c.MarketsScanned = upd.MarketsScanned
		c.BooksFetched = upd.BooksFetched
		c.CandidatesEmitted = upd.CandidatesEmitted
		c.ErrorMessage = upd.ErrorMessage
		c.ExecutionTimeMs = upd.ExecutionTimeMs
	}
	return c, nil
}

type fakeSummaryStore struct {
	mu    sync.Mutex
	saved map[int64][]domain.BookSnapshot
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{saved: make(map[int64][]domain.BookSnapshot)}
}

func (f *fakeSummaryStore) SaveSummaries(_ context.Context, cycleID int64, snaps []domain.BookSnapshot) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved[cycleID] = snaps
	return nil
}

func (f *fakeSummaryStore) SummariesByCycle(_ context.Context, cycleID int64) ([]domain.BookSnapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[cycleID], nil
}

type fakeSignalStore struct {
	mu    sync.Mutex
	saved map[int64][]domain.SignalCandidate
}

func newFakeSignalStore() *fakeSignalStore {
	return &fakeSignalStore{saved: make(map[int64][]domain.SignalCandidate)}
}

func (f *fakeSignalStore) SaveCandidates(_ context.Context, cands []domain.SignalCandidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range cands {
		f.saved[c.CycleID] = append(f.saved[c.CycleID], c)
	}
	return nil
}

func (f *fakeSignalStore) CandidatesByCycle(_ context.Context, cycleID int64) ([]domain.SignalCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved[cycleID], nil
}

type fakeSignalBus struct {
	mu        sync.Mutex
	published []domain.SignalCandidate
}

func (f *fakeSignalBus) PublishCandidate(_ context.Context, cand domain.SignalCandidate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = append(f.published, cand)
	return nil
}

func (f *fakeSignalBus) ReadCandidates(context.Context, string, int64, time.Duration) ([]domain.StreamMessage, error) {
	return nil, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	events []string
}

func (f *fakeNotifier) Notify(_ context.Context, eventType, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, eventType)
	return nil
}

type fakeLockManager struct {
	mu         sync.Mutex
	acquireErr error
	held       bool
	released   bool
	refreshes  int
}

func (f *fakeLockManager) Acquire(_ context.Context, _ string, _ time.Duration) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.acquireErr != nil {
		return "", f.acquireErr
	}
	f.held = true
	return "token-1", nil
}

func (f *fakeLockManager) Release(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.held = false
	f.released = true
	return nil
}

func (f *fakeLockManager) Refresh(_ context.Context, _, _ string, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	return nil
}

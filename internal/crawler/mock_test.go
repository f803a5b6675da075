package crawler

import (
	"context"
	"sync"
	"time"

	"github.com/kartfirsat/campaignworker/services/cache"
	"github.com/kartfirsat/campaignworker/services/store"
)

// MockCacheService implements a simple in-memory cache for testing
type MockCacheService struct {
	mu    sync.Mutex
	cache map[string][]byte
	ttls  map[string]time.Duration
}

func NewMockCacheService() *MockCacheService {
	return &MockCacheService{
		cache: make(map[string][]byte),
		ttls:  make(map[string]time.Duration),
	}
}

func (m *MockCacheService) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if val, ok := m.cache[key]; ok {
		return val, nil
	}
	return nil, cache.ErrMiss
}

func (m *MockCacheService) Set(key string, value []byte, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cache[key] = value
	m.ttls[key] = expiration
	return nil
}

func (m *MockCacheService) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.cache, key)
	return nil
}

// fakeRenderer returns canned HTML and records requests
type fakeRenderer struct {
	html     string
	degraded []string
	err      error
	calls    int
	last     RenderRequest
}

func (f *fakeRenderer) Name() string { return "fake" }

func (f *fakeRenderer) Render(ctx context.Context, req RenderRequest) (RenderResult, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return RenderResult{}, f.err
	}
	return RenderResult{HTML: f.html, Degraded: f.degraded}, nil
}

// fakeStore keeps campaigns in memory keyed by card and title
type fakeStore struct {
	cards       []store.Card
	cardsErr    error
	saved       map[string]store.Campaign
	order       []string
	failTitle   string
	deactivated []int64
}

func newFakeStore(cards ...store.Card) *fakeStore {
	return &fakeStore{cards: cards, saved: map[string]store.Campaign{}}
}

func (f *fakeStore) GetCardsForSource(ctx context.Context, sourceID string) ([]store.Card, error) {
	return f.cards, f.cardsErr
}

func (f *fakeStore) UpsertCampaign(ctx context.Context, c *store.Campaign) (store.UpsertOutcome, error) {
	if c.Title == f.failTitle {
		return 0, context.DeadlineExceeded
	}
	key := c.Title
	if _, ok := f.saved[key]; ok {
		f.saved[key] = *c
		return store.Updated, nil
	}
	f.saved[key] = *c
	f.order = append(f.order, key)
	return store.Inserted, nil
}

func (f *fakeStore) DeactivateExpired(ctx context.Context, cardIDs []int64, asOf time.Time) (int64, error) {
	f.deactivated = cardIDs
	return 0, nil
}

func noWait(context.Context, time.Duration) error { return nil }

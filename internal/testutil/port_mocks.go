package testutil

import (
	"context"
	"sync"

	"github.com/mselser95/polymarket-arb/internal/ports"
	"github.com/mselser95/polymarket-arb/pkg/types"
)

// MockFeed is an in-memory ports.Feed for driving the ingest loop in tests.
type MockFeed struct {
	mu         sync.Mutex
	ch         chan types.PriceEvent
	subscribed []string
	subscribeErr error
	closed     bool
}

// NewMockFeed creates a MockFeed with the given channel buffer size.
func NewMockFeed(bufferSize int) *MockFeed {
	return &MockFeed{ch: make(chan types.PriceEvent, bufferSize)}
}

// Subscribe returns the mock's channel, recording the requested tokens.
func (m *MockFeed) Subscribe(_ context.Context, tokens []string) (<-chan types.PriceEvent, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.subscribeErr != nil {
		return nil, m.subscribeErr
	}
	m.subscribed = append(m.subscribed, tokens...)
	return m.ch, nil
}

// Push sends one event into the mock feed.
func (m *MockFeed) Push(evt types.PriceEvent) {
	m.ch <- evt
}

// SetSubscribeError makes every later Subscribe call fail with err until it
// is set again (nil clears it).
func (m *MockFeed) SetSubscribeError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.subscribeErr = err
}

// Subscribed returns the tokens requested across all Subscribe calls.
func (m *MockFeed) Subscribed() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.subscribed))
	copy(result, m.subscribed)
	return result
}

// Close closes the underlying channel.
func (m *MockFeed) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.closed {
		close(m.ch)
		m.closed = true
	}
	return nil
}

// MockOrderClient is an in-memory ports.OrderClient scripted per token.
type MockOrderClient struct {
	mu         sync.Mutex
	buyResults map[string]ports.FillResult
	buyErrs    map[string]error
	sellResults map[string]ports.FillResult
	sellErrs    map[string]error
	buyCalls   []string
	sellCalls  []string
}

// NewMockOrderClient creates an empty MockOrderClient; unscripted tokens
// fill completely at the requested price and size.
func NewMockOrderClient() *MockOrderClient {
	return &MockOrderClient{
		buyResults:  make(map[string]ports.FillResult),
		buyErrs:     make(map[string]error),
		sellResults: make(map[string]ports.FillResult),
		sellErrs:    make(map[string]error),
	}
}

// SetBuyResult scripts the outcome of every later SubmitBuy for token.
func (m *MockOrderClient) SetBuyResult(token string, result ports.FillResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buyResults[token] = result
}

// SetBuyError scripts SubmitBuy to fail for token.
func (m *MockOrderClient) SetBuyError(token string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buyErrs[token] = err
}

// SetSellResult scripts the outcome of every later SubmitSell for token.
func (m *MockOrderClient) SetSellResult(token string, result ports.FillResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sellResults[token] = result
}

// SubmitBuy returns the scripted result for token, or a full fill at the
// requested price/size if nothing was scripted.
func (m *MockOrderClient) SubmitBuy(_ context.Context, token string, priceCents, sizeCents int) (ports.FillResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.buyCalls = append(m.buyCalls, token)
	if err, ok := m.buyErrs[token]; ok {
		return ports.FillResult{}, err
	}
	if r, ok := m.buyResults[token]; ok {
		return r, nil
	}
	return ports.FillResult{FilledContracts: sizeCents, CostCents: priceCents * sizeCents, OrderID: "mock-buy-" + token}, nil
}

// SubmitSell returns the scripted result for token, or a full fill at the
// requested price/size if nothing was scripted.
func (m *MockOrderClient) SubmitSell(_ context.Context, token string, priceCents, sizeCents int) (ports.FillResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sellCalls = append(m.sellCalls, token)
	if err, ok := m.sellErrs[token]; ok {
		return ports.FillResult{}, err
	}
	if r, ok := m.sellResults[token]; ok {
		return r, nil
	}
	return ports.FillResult{FilledContracts: sizeCents, CostCents: priceCents * sizeCents, OrderID: "mock-sell-" + token}, nil
}

// BuyCalls returns the tokens SubmitBuy was called with, in order.
func (m *MockOrderClient) BuyCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	result := make([]string, len(m.buyCalls))
	copy(result, m.buyCalls)
	return result
}

// MockDiscovery is an in-memory ports.Discovery returning scripted pairs.
type MockDiscovery struct {
	mu    sync.Mutex
	pairs []types.MarketPair
	errs  []error
}

// NewMockDiscovery creates a MockDiscovery that returns pairs and errs on
// every Discover call.
func NewMockDiscovery(pairs []types.MarketPair, errs []error) *MockDiscovery {
	return &MockDiscovery{pairs: pairs, errs: errs}
}

// Discover returns the scripted pairs and errors, ignoring leagues.
func (m *MockDiscovery) Discover(_ context.Context, _ []string) ([]types.MarketPair, []error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	pairs := make([]types.MarketPair, len(m.pairs))
	copy(pairs, m.pairs)
	return pairs, m.errs
}

// MockPersistence is an in-memory ports.Persistence for ledger/discovery
// snapshot round-trip tests.
type MockPersistence struct {
	mu   sync.Mutex
	blobs map[string][]byte
	saveErr error
}

// NewMockPersistence creates an empty MockPersistence.
func NewMockPersistence() *MockPersistence {
	return &MockPersistence{blobs: make(map[string][]byte)}
}

// SetSaveError makes every SaveSnapshot call fail with err.
func (m *MockPersistence) SetSaveError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

// SaveSnapshot stores blob under key in memory.
func (m *MockPersistence) SaveSnapshot(_ context.Context, key string, blob []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)
	m.blobs[key] = cp
	return nil
}

// LoadSnapshot returns the blob previously saved under key, if any.
func (m *MockPersistence) LoadSnapshot(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.blobs[key]
	if !ok {
		return nil, nil
	}
	cp := make([]byte, len(blob))
	copy(cp, blob)
	return cp, nil
}

package journal

import (
	"context"
	"slices"
	"sync"

	"github.com/rustyeddy/tracker/pkg/id"
	"github.com/rustyeddy/tracker/portfolio"
	"go.uber.org/zap"
)

const memFeedBuffer = 64

// Memory is a process-local journal. Peers created with Peer share the
// same documents under their own origin, which is how tests model a second
// device.
type Memory struct {
	b   *memBackend
	opt options
}

var _ Journal = (*Memory)(nil)

type memBackend struct {
	mu    sync.Mutex
	docs  map[string]map[string][]byte
	order map[string][]string
	subs  map[string][]*memSub
}

type memSub struct {
	ch     chan Change
	origin string
}

func NewMemory(opts ...Option) *Memory {
	return &Memory{
		b: &memBackend{
			docs:  map[string]map[string][]byte{},
			order: map[string][]string{},
			subs:  map[string][]*memSub{},
		},
		opt: buildOptions(opts),
	}
}

// Peer returns a journal sharing m's documents with a new origin.
func (m *Memory) Peer() *Memory {
	opt := m.opt
	opt.origin = id.New()
	return &Memory{b: m.b, opt: opt}
}

// Origin returns the writer name attached to this journal's changes.
func (m *Memory) Origin() string { return m.opt.origin }

// Seed stores raw document bytes as they are, bypassing encoding. It lets
// callers load documents written by older versions.
func (m *Memory) Seed(userID, portfolioID string, data []byte) {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	m.b.put(userID, portfolioID, slices.Clone(data))
}

func (b *memBackend) put(userID, portfolioID string, data []byte) {
	docs, ok := b.docs[userID]
	if !ok {
		docs = map[string][]byte{}
		b.docs[userID] = docs
	}
	if _, exists := docs[portfolioID]; !exists {
		b.order[userID] = append(b.order[userID], portfolioID)
	}
	docs[portfolioID] = data
}

func (m *Memory) Save(ctx context.Context, userID string, p portfolio.Portfolio) error {
	data, err := portfolio.Encode(p)
	if err != nil {
		return err
	}
	// watchers see what a reload would return
	stored, _, err := portfolio.Decode(data)
	if err != nil {
		return err
	}

	m.b.mu.Lock()
	defer m.b.mu.Unlock()
	m.b.put(userID, p.ID, data)
	m.publish(userID, Change{Kind: Saved, PortfolioID: p.ID, Portfolio: stored, Origin: m.opt.origin})
	return nil
}

func (m *Memory) Delete(ctx context.Context, userID, portfolioID string) error {
	m.b.mu.Lock()
	defer m.b.mu.Unlock()

	docs := m.b.docs[userID]
	if _, ok := docs[portfolioID]; !ok {
		return nil
	}
	delete(docs, portfolioID)
	m.b.order[userID] = slices.DeleteFunc(m.b.order[userID], func(s string) bool { return s == portfolioID })
	m.publish(userID, Change{Kind: Deleted, PortfolioID: portfolioID, Origin: m.opt.origin})
	return nil
}

func (m *Memory) LoadAll(ctx context.Context, userID string) ([]portfolio.Portfolio, error) {
	m.b.mu.Lock()
	raws := make([]rawDoc, 0, len(m.b.order[userID]))
	for _, pid := range m.b.order[userID] {
		raws = append(raws, rawDoc{id: pid, data: m.b.docs[userID][pid]})
	}
	m.b.mu.Unlock()

	out, migrated := decodeAll(m.opt.log, userID, raws)
	writeBack(ctx, m, m.opt.log, userID, migrated)
	return out, nil
}

func (m *Memory) Watch(ctx context.Context, userID string) (<-chan Change, error) {
	sub := &memSub{ch: make(chan Change, memFeedBuffer), origin: m.opt.origin}

	m.b.mu.Lock()
	m.b.subs[userID] = append(m.b.subs[userID], sub)
	m.b.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.b.mu.Lock()
		defer m.b.mu.Unlock()
		m.b.subs[userID] = slices.DeleteFunc(m.b.subs[userID], func(s *memSub) bool { return s == sub })
		close(sub.ch)
	}()
	return sub.ch, nil
}

// publish must be called with the backend lock held. A subscriber whose
// buffer is full misses the change.
func (m *Memory) publish(userID string, c Change) {
	for _, s := range m.b.subs[userID] {
		if s.origin == c.Origin {
			continue
		}
		select {
		case s.ch <- c:
		default:
			m.opt.log.Warn("dropping change for slow watcher",
				zap.String("user", userID),
				zap.String("portfolio", c.PortfolioID))
		}
	}
}

func (m *Memory) Close() error { return nil }

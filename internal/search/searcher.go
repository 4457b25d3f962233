package search

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/varejolabs/pdv-terminal/internal/catalog"
	"github.com/varejolabs/pdv-terminal/pkg/logger"
)

// Results carries one settled candidate list back to the terminal.
type Results struct {
	Query    string
	Products []catalog.Product
}

// Searcher debounces catalog queries and guarantees supersession: when a new
// query arrives before an older one settles, the older one is cancelled and
// its results are never published.
type Searcher struct {
	provider catalog.Searcher
	debounce time.Duration
	limit    int
	logg     *logger.Logger
	publish  func(Results)

	mu     sync.Mutex
	gen    uint64
	timer  *time.Timer
	cancel context.CancelFunc
	closed bool
}

// New builds a debounced searcher. publish is invoked from a background
// goroutine once per settled query.
func New(provider catalog.Searcher, debounce time.Duration, limit int, logg *logger.Logger, publish func(Results)) (*Searcher, error) {
	if provider == nil {
		return nil, fmt.Errorf("catalog provider required")
	}
	if publish == nil {
		return nil, fmt.Errorf("publish callback required")
	}
	if debounce <= 0 {
		debounce = 250 * time.Millisecond
	}
	if limit <= 0 {
		limit = 10
	}
	return &Searcher{
		provider: provider,
		debounce: debounce,
		limit:    limit,
		logg:     logg,
		publish:  publish,
	}, nil
}

// Submit schedules the query after the debounce window, superseding any
// pending or in-flight query. An empty query publishes an empty candidate
// list immediately.
func (s *Searcher) Submit(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	s.gen++
	gen := s.gen
	s.stopPendingLocked()

	if query == "" {
		go s.publish(Results{Query: ""})
		return
	}

	s.timer = time.AfterFunc(s.debounce, func() {
		s.run(gen, query)
	})
}

// Close cancels any pending or in-flight query.
func (s *Searcher) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.gen++
	s.stopPendingLocked()
}

func (s *Searcher) run(gen uint64, query string) {
	s.mu.Lock()
	if s.closed || gen != s.gen {
		s.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.mu.Unlock()

	products, err := s.provider.SearchProducts(ctx, query, s.limit)
	cancel()

	s.mu.Lock()
	stale := s.closed || gen != s.gen
	s.mu.Unlock()
	if stale {
		return
	}

	if err != nil {
		if s.logg != nil {
			s.logg.Error(ctx, "catalog search failed", err)
		}
		return
	}

	s.publish(Results{Query: query, Products: products})
}

func (s *Searcher) stopPendingLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

package application

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"github.com/nissmart/dashboard-cli/internal/domain"
	"github.com/nissmart/dashboard-cli/internal/ports"
)

const (
	DefaultPollInterval = 5 * time.Second

	loadFailedMessage = "Failed to load data"
)

type Stream string

const (
	StreamPrimary      Stream = "primary"
	StreamTransactions Stream = "transactions"
)

// StreamFetcher reads the two streams a session polls.
type StreamFetcher interface {
	FetchPrimary(ctx context.Context, subject domain.Subject) (domain.Primary, error)
	FetchTransactions(ctx context.Context, subject domain.Subject) ([]domain.Transaction, error)
}

var _ StreamFetcher = (*SnapshotFetcher)(nil)

type SessionState struct {
	Subject             domain.Subject
	Active              bool
	Snapshot            *domain.Snapshot
	LoadingPrimary      bool
	LoadingTransactions bool
	LastError           string
	LastUpdatedAt       time.Time
}

type streamState struct {
	pending int
	issued  uint64
	applied uint64
	ok      bool
	loaded  bool
}

// cycle is one paired fetch of both streams. remaining is guarded by the
// session mutex.
type cycle struct {
	gen       uint64
	remaining int
}

type streamResult struct {
	seq   uint64
	value any
	err   error
}

// PollingSession keeps the snapshot of one subject fresh. Every Start or Stop
// begins a new generation; responses carrying an older generation are
// dropped on arrival. Within a generation each stream has at most one
// physical fetch outstanding and later callers share its result.
type PollingSession struct {
	fetcher  StreamFetcher
	clock    ports.Clock
	interval time.Duration
	logger   zerolog.Logger
	metrics  ports.Metrics

	group  singleflight.Group
	cycles sync.WaitGroup

	mu            sync.Mutex
	closed        bool
	subject       domain.Subject
	active        bool
	generation    uint64
	ctx           context.Context
	cancel        context.CancelFunc
	timer         ports.Timer
	streams       map[Stream]*streamState
	primary       domain.Primary
	transactions  []domain.Transaction
	dirty         bool
	snapshot      *domain.Snapshot
	lastError     string
	lastUpdatedAt time.Time

	listeners listeners
}

func NewPollingSession(fetcher StreamFetcher, clock ports.Clock, interval time.Duration, opts ...Option) *PollingSession {
	if clock == nil {
		clock = ports.SystemClock{}
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	o := applyOptions("polling_session", opts)

	return &PollingSession{
		fetcher:  fetcher,
		clock:    clock,
		interval: interval,
		logger:   o.logger,
		metrics:  o.metrics,
		streams:  newStreams(),
	}
}

func newStreams() map[Stream]*streamState {
	return map[Stream]*streamState{
		StreamPrimary:      {},
		StreamTransactions: {},
	}
}

// Start binds the session to subject, abandoning whatever the previous
// generation had in flight, fetches immediately and arms the periodic tick.
func (s *PollingSession) Start(ctx context.Context, subject domain.Subject) error {
	if subject.IsZero() {
		return ErrNoSubject
	}

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrSessionClosed
	}
	s.haltLocked()
	s.generation++
	gen := s.generation
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.subject = subject
	s.active = true
	s.streams = newStreams()
	s.primary = nil
	s.transactions = nil
	s.dirty = false
	s.snapshot = nil
	s.lastError = ""
	s.lastUpdatedAt = time.Time{}
	s.timer = s.clock.AfterFunc(s.interval, func() { s.tick(gen) })
	s.launchLocked(gen)
	s.mu.Unlock()

	s.logger.Debug().Str("subject", subject.String()).Uint64("generation", gen).Msg("polling started")
	s.listeners.notify()
	return nil
}

// Stop cancels the timer and abandons in-flight fetches. The last snapshot
// stays readable.
func (s *PollingSession) Stop() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.haltLocked()
	s.generation++
	subject := s.subject
	s.mu.Unlock()

	s.logger.Debug().Str("subject", subject.String()).Msg("polling stopped")
	s.listeners.notify()
}

// Reset stops the session and forgets its subject and snapshot.
func (s *PollingSession) Reset() {
	s.mu.Lock()
	if s.active {
		s.haltLocked()
		s.generation++
	}
	s.subject = domain.Subject{}
	s.streams = newStreams()
	s.primary = nil
	s.transactions = nil
	s.dirty = false
	s.snapshot = nil
	s.lastError = ""
	s.lastUpdatedAt = time.Time{}
	s.mu.Unlock()

	s.listeners.notify()
}

// Close resets the session and waits for abandoned cycles to drain. A closed
// session refuses to start again.
func (s *PollingSession) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.Reset()
	s.cycles.Wait()
}

// RefreshNow runs an extra cycle without touching the tick schedule.
func (s *PollingSession) RefreshNow() {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return
	}
	s.launchLocked(s.generation)
	s.mu.Unlock()

	s.listeners.notify()
}

func (s *PollingSession) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()

	return SessionState{
		Subject:             s.subject,
		Active:              s.active,
		Snapshot:            s.snapshot,
		LoadingPrimary:      s.active && s.streams[StreamPrimary].pending > 0,
		LoadingTransactions: s.active && s.streams[StreamTransactions].pending > 0,
		LastError:           s.lastError,
		LastUpdatedAt:       s.lastUpdatedAt,
	}
}

func (s *PollingSession) Subscribe(fn func()) func() {
	return s.listeners.add(fn)
}

func (s *PollingSession) haltLocked() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.active = false
	for _, st := range s.streams {
		st.pending = 0
	}
}

// tick re-arms before fetching so the schedule does not drift with
// fetch latency.
func (s *PollingSession) tick(gen uint64) {
	s.mu.Lock()
	if gen != s.generation || !s.active {
		s.mu.Unlock()
		return
	}
	s.timer = s.clock.AfterFunc(s.interval, func() { s.tick(gen) })
	s.launchLocked(gen)
	s.mu.Unlock()

	s.listeners.notify()
}

func (s *PollingSession) launchLocked(gen uint64) {
	ctx := s.ctx
	subject := s.subject
	c := &cycle{gen: gen, remaining: 2}
	s.streams[StreamPrimary].pending++
	s.streams[StreamTransactions].pending++

	s.cycles.Add(2)
	go s.runStream(ctx, c, StreamPrimary, func(ctx context.Context) (any, error) {
		return s.fetcher.FetchPrimary(ctx, subject)
	})
	go s.runStream(ctx, c, StreamTransactions, func(ctx context.Context) (any, error) {
		return s.fetcher.FetchTransactions(ctx, subject)
	})
}

func (s *PollingSession) runStream(ctx context.Context, c *cycle, stream Stream, fetch func(context.Context) (any, error)) {
	defer s.cycles.Done()

	leader := false
	ch := s.group.DoChan(fmt.Sprintf("%s/%d", stream, c.gen), func() (any, error) {
		leader = true
		seq := s.issue(c.gen, stream)
		started := time.Now()
		value, err := fetch(ctx)
		s.metrics.ObserveFetch(string(stream), time.Since(started), err)
		return streamResult{seq: seq, value: value, err: err}, nil
	})
	res := <-ch
	if !leader {
		s.metrics.IncCoalesced(string(stream))
	}

	result, _ := res.Val.(streamResult)
	if s.settle(c, stream, result) {
		s.listeners.notify()
	}
}

func (s *PollingSession) issue(gen uint64, stream Stream) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if gen != s.generation {
		return 0
	}
	st := s.streams[stream]
	st.issued++
	return st.issued
}

// settle applies one stream result and reports whether state changed. The
// second stream to settle closes the cycle and publishes.
func (s *PollingSession) settle(c *cycle, stream Stream, result streamResult) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	c.remaining--
	if c.gen != s.generation || !s.active || result.seq == 0 {
		s.metrics.IncAbandoned(string(stream))
		s.logger.Debug().Str("stream", string(stream)).Uint64("generation", c.gen).Msg("dropped response from abandoned generation")
		return false
	}

	st := s.streams[stream]
	if st.pending > 0 {
		st.pending--
	}
	if result.seq > st.applied {
		st.applied = result.seq
		s.applyLocked(st, stream, result)
	}
	if c.remaining == 0 {
		s.publishLocked()
	}
	return true
}

func (s *PollingSession) applyLocked(st *streamState, stream Stream, result streamResult) {
	if result.err != nil {
		st.ok = false
		s.lastError = domain.UserMessage(result.err, loadFailedMessage)
		s.logger.Warn().Err(result.err).Str("stream", string(stream)).Str("subject", s.subject.String()).Msg("fetch failed")
		return
	}

	switch value := result.value.(type) {
	case domain.Primary:
		s.primary = value
	case []domain.Transaction:
		s.transactions = value
	}
	st.ok = true
	st.loaded = true
	s.dirty = true
}

// publishLocked replaces the snapshot once both streams have produced a
// value, and clears the error when the latest result of each stream is a
// success.
func (s *PollingSession) publishLocked() {
	primary := s.streams[StreamPrimary]
	txs := s.streams[StreamTransactions]
	if s.dirty && primary.loaded && txs.loaded {
		now := s.clock.Now()
		s.snapshot = domain.NewSnapshot(now, s.primary, s.transactions)
		s.lastUpdatedAt = now
		s.dirty = false
	}
	if primary.ok && txs.ok {
		s.lastError = ""
	}
}

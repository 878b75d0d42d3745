// Package session manages a pool of headless browser sessions so page
// renders reuse warm Chrome contexts instead of paying startup cost per
// check.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/a11ycheck/a11ycheck/internal/metrics"
)

// ErrPoolClosed is returned by Acquire after Close.
var ErrPoolClosed = errors.New("session pool closed")

// Config controls pool sizing and politeness.
type Config struct {
	// Size is the number of concurrent browser sessions.
	Size int
	// MaxSessionRenders recycles a session after this many renders to
	// bound memory growth in long-lived tabs. Zero disables recycling.
	MaxSessionRenders int
	// HostQPS limits renders per target host. Zero disables the limiter.
	HostQPS float64
	// UserAgent is applied to every session.
	UserAgent string
}

// Session is one browser context. Tabs are created per render from its
// Context; the Chrome process itself starts lazily on first use.
type Session struct {
	id      string
	ctx     context.Context
	cancel  context.CancelFunc
	renders int
}

// Context returns the browser context to spawn tab contexts from.
func (s *Session) Context() context.Context { return s.ctx }

// ID identifies the session in logs.
func (s *Session) ID() string { return s.id }

// Pool hands out browser sessions with bounded concurrency. Acquire blocks
// when every session is busy.
type Pool struct {
	allocCtx    context.Context
	allocCancel context.CancelFunc
	logger      *zap.Logger
	cfg         Config

	// slots holds one entry per pool seat. A nil entry means the seat is
	// free but has no live session yet.
	slots chan *Session

	hostLimiters sync.Map

	mu      sync.Mutex
	closed  bool
	spawned int
}

// NewPool builds a pool over a shared Chrome exec allocator. No browser
// process is launched until a session is first used.
func NewPool(cfg Config, logger *zap.Logger) (*Pool, error) {
	if cfg.Size <= 0 {
		return nil, fmt.Errorf("pool size must be positive, got %d", cfg.Size)
	}
	metrics.Init()

	opts := chromedp.DefaultExecAllocatorOptions[:]
	opts = append(opts,
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.UserAgent(cfg.UserAgent),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)

	p := &Pool{
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		logger:      logger,
		cfg:         cfg,
		slots:       make(chan *Session, cfg.Size),
	}
	for i := 0; i < cfg.Size; i++ {
		p.slots <- nil
	}
	return p, nil
}

// Acquire returns a session, blocking until a seat frees up or ctx is done.
// The caller must hand the session back with Release or Discard.
func (p *Pool) Acquire(ctx context.Context) (*Session, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrPoolClosed
	}
	p.mu.Unlock()

	select {
	case s := <-p.slots:
		if s == nil {
			return p.newSession(), nil
		}
		return s, nil
	case <-ctx.Done():
		return nil, fmt.Errorf("acquire session: %w", ctx.Err())
	}
}

// Release returns a healthy session to the pool, recycling it when it has
// reached its render budget.
func (p *Pool) Release(s *Session) {
	if s == nil {
		return
	}
	s.renders++
	if p.cfg.MaxSessionRenders > 0 && s.renders >= p.cfg.MaxSessionRenders {
		p.logger.Debug("recycling session",
			zap.String("session_id", s.id),
			zap.Int("renders", s.renders))
		s.cancel()
		p.returnSeat(nil)
		return
	}
	p.returnSeat(s)
}

// Discard tears down a session whose browser state is no longer trusted,
// freeing its seat for a fresh one.
func (p *Pool) Discard(s *Session) {
	if s == nil {
		return
	}
	p.logger.Warn("discarding session",
		zap.String("session_id", s.id),
		zap.Int("renders", s.renders))
	s.cancel()
	p.returnSeat(nil)
}

// WithSession runs fn with an acquired session, releasing on success and
// discarding when fn reports the session is broken. The seat is returned on
// every exit path: a panic in fn discards the session before unwinding.
func (p *Pool) WithSession(ctx context.Context, fn func(*Session) (broken bool, err error)) error {
	s, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	broken := true
	defer func() {
		if broken {
			p.Discard(s)
		} else {
			p.Release(s)
		}
	}()
	broken, err = fn(s)
	return err
}

// WaitHost blocks until the per-host rate budget allows another render of
// the given host.
func (p *Pool) WaitHost(ctx context.Context, host string) error {
	if p.cfg.HostQPS <= 0 {
		return nil
	}
	host = strings.ToLower(host)
	val, _ := p.hostLimiters.LoadOrStore(host, rate.NewLimiter(rate.Limit(p.cfg.HostQPS), 1))
	limiter, ok := val.(*rate.Limiter)
	if !ok {
		return fmt.Errorf("unexpected limiter type %T", val)
	}
	start := time.Now()
	if err := limiter.Wait(ctx); err != nil {
		return fmt.Errorf("wait host limiter: %w", err)
	}
	metrics.ObserveRateLimitDelay(host, time.Since(start))
	return nil
}

// Close tears down every session and the underlying allocator. Sessions
// currently checked out are cancelled through the allocator context.
func (p *Pool) Close(ctx context.Context) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.mu.Unlock()

	for i := 0; i < p.cfg.Size; i++ {
		select {
		case s := <-p.slots:
			if s != nil {
				s.cancel()
			}
		case <-ctx.Done():
			p.allocCancel()
			return fmt.Errorf("drain pool: %w", ctx.Err())
		}
	}
	p.allocCancel()
	return nil
}

func (p *Pool) newSession() *Session {
	ctx, cancel := chromedp.NewContext(p.allocCtx)

	p.mu.Lock()
	p.spawned++
	id := fmt.Sprintf("session-%d", p.spawned)
	p.mu.Unlock()

	p.logger.Debug("created session", zap.String("session_id", id))
	return &Session{id: id, ctx: ctx, cancel: cancel}
}

func (p *Pool) returnSeat(s *Session) {
	p.mu.Lock()
	closed := p.closed
	p.mu.Unlock()
	if closed {
		if s != nil {
			s.cancel()
		}
		return
	}
	select {
	case p.slots <- s:
	default:
		// Seat accounting guarantees capacity; reaching here means a
		// double release.
		if s != nil {
			s.cancel()
		}
	}
}

// renderBackoff is how long WithSession callers should wait before a retry
// after a discarded session. Kept here so retry pacing lives beside the
// pool that makes retries necessary.
const renderBackoff = 250 * time.Millisecond

// Backoff returns the retry pause after a session discard.
func Backoff() time.Duration { return renderBackoff }

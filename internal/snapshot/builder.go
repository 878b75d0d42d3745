package snapshot

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/a11ycheck/a11ycheck/internal/accessibility"
	"github.com/a11ycheck/a11ycheck/internal/session"
)

// BuilderConfig controls how pages are rendered into snapshots.
type BuilderConfig struct {
	// RenderTimeout bounds one render attempt end to end.
	RenderTimeout time.Duration
	// SettleWait is the post-ready pause for late scripts when the caller
	// does not supply one.
	SettleWait time.Duration
	// UserAgent overrides the browser user agent per tab.
	UserAgent string
}

// Builder renders pages in pooled browser sessions and parses them into
// immutable snapshots.
type Builder struct {
	pool   *session.Pool
	clock  accessibility.Clock
	logger *zap.Logger
	cfg    BuilderConfig
}

// NewBuilder wires a builder to a session pool.
func NewBuilder(pool *session.Pool, clock accessibility.Clock, cfg BuilderConfig, logger *zap.Logger) *Builder {
	return &Builder{
		pool:   pool,
		clock:  clock,
		logger: logger,
		cfg:    cfg,
	}
}

// Build renders the URL and returns its snapshot. A render that dies with
// the session is retried once on a fresh session before giving up.
func (b *Builder) Build(ctx context.Context, rawURL string, opts accessibility.CheckOptions) (*Snapshot, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse: %v", accessibility.ErrInvalidURL, err)
	}

	if err := b.pool.WaitHost(ctx, parsed.Hostname()); err != nil {
		return nil, err
	}

	snap, err := b.renderOnce(ctx, rawURL, opts)
	if errors.Is(err, accessibility.ErrRenderCrash) {
		b.logger.Warn("render crashed, retrying on fresh session",
			zap.String("url", rawURL), zap.Error(err))
		select {
		case <-time.After(session.Backoff()):
		case <-ctx.Done():
			return nil, fmt.Errorf("retry render: %w", ctx.Err())
		}
		snap, err = b.renderOnce(ctx, rawURL, opts)
	}
	return snap, err
}

func (b *Builder) renderOnce(ctx context.Context, rawURL string, opts accessibility.CheckOptions) (*Snapshot, error) {
	var data PageData
	err := b.pool.WithSession(ctx, func(s *session.Session) (bool, error) {
		var renderErr error
		data, renderErr = b.renderInSession(ctx, s, rawURL, opts)
		if renderErr != nil {
			classified := classifyRenderError(renderErr)
			// A crashed or torn-down tab poisons the whole session.
			return errors.Is(classified, accessibility.ErrRenderCrash), classified
		}
		return false, nil
	})
	if err != nil {
		return nil, err
	}

	data.RenderedAt = b.clock.Now()
	snap, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("build snapshot: %w", err)
	}
	return snap, nil
}

func (b *Builder) renderInSession(ctx context.Context, s *session.Session, rawURL string, opts accessibility.CheckOptions) (PageData, error) {
	tabCtx, cancelTab := chromedp.NewContext(s.Context())
	defer cancelTab()

	taskCtx, cancelTask := context.WithTimeout(tabCtx, b.cfg.RenderTimeout)
	defer cancelTask()

	stopForward := forwardCancel(ctx, cancelTask)
	defer stopForward()

	meta := newResponseMeta()
	recordResponse(tabCtx, meta)

	var htmlText string
	var rawSamples []StyleSample
	tasks := chromedp.Tasks{
		network.Enable(),
		emulation.SetUserAgentOverride(b.cfg.UserAgent),
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Sleep(opts.WaitDuration(b.cfg.SettleWait)),
		chromedp.OuterHTML("html", &htmlText, chromedp.ByQuery),
		chromedp.Evaluate(styleSampleJS, &rawSamples),
	}

	var screenshot []byte
	if opts.IncludeScreenshots {
		tasks = append(tasks, chromedp.ActionFunc(func(ctx context.Context) error {
			buf, err := page.CaptureScreenshot().
				WithFormat(page.CaptureScreenshotFormatPng).
				Do(ctx)
			if err != nil {
				return fmt.Errorf("capture screenshot: %w", err)
			}
			screenshot = buf
			return nil
		}))
	}

	if err := chromedp.Run(taskCtx, tasks); err != nil {
		return PageData{}, fmt.Errorf("chromedp run: %w", err)
	}

	return PageData{
		URL:          rawURL,
		FinalURL:     meta.finalURL(rawURL),
		StatusCode:   meta.statusCode,
		HTML:         htmlText,
		Screenshot:   screenshot,
		StyleSamples: rawSamples,
	}, nil
}

type responseMeta struct {
	once       sync.Once
	statusCode int
	headers    http.Header
	url        string
}

func newResponseMeta() *responseMeta {
	return &responseMeta{headers: make(http.Header)}
}

func (m *responseMeta) finalURL(raw string) string {
	if m.url == "" {
		return raw
	}
	return m.url
}

func recordResponse(tabCtx context.Context, meta *responseMeta) {
	chromedp.ListenTarget(tabCtx, func(ev interface{}) {
		resp, ok := ev.(*network.EventResponseReceived)
		if !ok || resp.Type != network.ResourceTypeDocument {
			return
		}
		meta.once.Do(func() {
			meta.statusCode = int(resp.Response.Status)
			meta.url = resp.Response.URL
			for k, v := range resp.Response.Headers {
				meta.headers.Add(k, fmt.Sprint(v))
			}
		})
	})
}

// forwardCancel propagates the caller's cancellation into the task context
// without tying the tab's lifetime to the caller.
func forwardCancel(parent context.Context, cancel context.CancelFunc) func() {
	if parent == nil {
		return func() {}
	}
	done := make(chan struct{})
	go func() {
		select {
		case <-parent.Done():
			cancel()
		case <-done:
		}
	}()
	return func() { close(done) }
}

// classifyRenderError maps chromedp failures onto the stable error set.
func classifyRenderError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, context.DeadlineExceeded):
		return fmt.Errorf("%w: %v", accessibility.ErrRenderTimeout, err)
	case isNavigationError(err):
		return fmt.Errorf("%w: %v", accessibility.ErrNavigation, err)
	default:
		return fmt.Errorf("%w: %v", accessibility.ErrRenderCrash, err)
	}
}

// isNavigationError matches the net error strings Chrome reports for
// unreachable targets.
func isNavigationError(err error) bool {
	msg := err.Error()
	if strings.Contains(msg, "net::ERR_") {
		return true
	}
	return strings.Contains(msg, "page load error")
}

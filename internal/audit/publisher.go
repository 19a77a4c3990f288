package audit

import (
	"context"
	"log/slog"
	"sync"

	"docproof/pkg/requestcontext"
)

// Sink receives every published event in addition to the primary store.
// The Kafka sink implements this; tests use in-memory fakes.
type Sink interface {
	Publish(ctx context.Context, event Event) error
}

// Publisher captures structured audit events. The primary store write is
// synchronous so domain operations fail loudly when their trail cannot be
// persisted; secondary sinks are best-effort.
type Publisher struct {
	store  Store
	sinks  []Sink
	logger *slog.Logger

	asyncCh chan Event
	wg      sync.WaitGroup
	closed  chan struct{}
}

// Option configures the Publisher.
type Option func(*Publisher)

// WithSink adds a secondary delivery target (e.g. Kafka).
func WithSink(sink Sink) Option {
	return func(p *Publisher) {
		if sink != nil {
			p.sinks = append(p.sinks, sink)
		}
	}
}

// WithAsyncBuffer enables asynchronous publishing through a buffered channel.
// Store write errors are logged instead of surfaced to the caller.
func WithAsyncBuffer(size int) Option {
	return func(p *Publisher) {
		if size > 0 {
			p.asyncCh = make(chan Event, size)
		}
	}
}

// WithLogger sets a logger for async and sink error reporting.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Publisher) {
		p.logger = logger
	}
}

func NewPublisher(store Store, opts ...Option) *Publisher {
	p := &Publisher{
		store:  store,
		logger: slog.Default(),
		closed: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.asyncCh != nil {
		p.wg.Add(1)
		go p.drain()
	}
	return p
}

// Emit records an event. Timestamp, request id, client IP and device display
// are filled from context when the caller leaves them empty.
func (p *Publisher) Emit(ctx context.Context, event Event) error {
	if event.Timestamp.IsZero() {
		event.Timestamp = requestcontext.Now(ctx)
	}
	if event.RequestID == "" {
		event.RequestID = requestcontext.RequestID(ctx)
	}
	if event.ClientIP == "" {
		event.ClientIP = requestcontext.ClientIP(ctx)
	}
	if event.Device == "" {
		if ua := requestcontext.UserAgent(ctx); ua != "" {
			event.Device = ParseUserAgent(ua)
		}
	}

	if p.asyncCh != nil {
		select {
		case p.asyncCh <- event:
		case <-ctx.Done():
			return ctx.Err()
		}
		return nil
	}

	return p.deliver(ctx, event)
}

// ListByWallet exposes the stored trail for a wallet.
func (p *Publisher) ListByWallet(ctx context.Context, wallet string) ([]Event, error) {
	return p.store.ListByWallet(ctx, wallet)
}

// Close stops the async drain goroutine, flushing queued events first.
func (p *Publisher) Close() {
	if p.asyncCh != nil {
		close(p.asyncCh)
		p.wg.Wait()
	}
	close(p.closed)
}

func (p *Publisher) deliver(ctx context.Context, event Event) error {
	if err := p.store.Append(ctx, event); err != nil {
		return err
	}
	for _, sink := range p.sinks {
		if err := sink.Publish(ctx, event); err != nil {
			p.logger.WarnContext(ctx, "audit sink publish failed",
				"action", event.Action,
				"error", err,
			)
		}
	}
	return nil
}

func (p *Publisher) drain() {
	defer p.wg.Done()
	ctx := context.Background()
	for event := range p.asyncCh {
		if err := p.deliver(ctx, event); err != nil {
			p.logger.Error("audit event dropped", "action", event.Action, "error", err)
		}
	}
}

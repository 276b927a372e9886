// Package notify is the engine's outbound notification side-channel.
//
// The engine only fires events; delivery, retries and templating belong to
// whoever consumes them.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Event is a single user-facing notification.
type Event struct {
	UserID   string            `json:"userId"`
	Title    string            `json:"title"`
	Message  string            `json:"message"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Notifier emits events to some channel.
type Notifier interface {
	Emit(ctx context.Context, ev Event) error
}

// Dispatcher wraps a Notifier so that callers never see an error: failures
// are logged and dropped.
type Dispatcher struct {
	n     Notifier
	log   *slog.Logger
	async bool
	wg    sync.WaitGroup
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithAsync makes Send return immediately and emit on its own goroutine.
func WithAsync() Option {
	return func(d *Dispatcher) { d.async = true }
}

// NewDispatcher returns a Dispatcher over n. A nil logger uses slog.Default.
func NewDispatcher(n Notifier, log *slog.Logger, opts ...Option) *Dispatcher {
	if log == nil {
		log = slog.Default()
	}
	d := &Dispatcher{n: n, log: log}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Send emits ev. Events without a recipient are skipped silently.
func (d *Dispatcher) Send(ctx context.Context, ev Event) {
	if d == nil || d.n == nil || ev.UserID == "" {
		return
	}
	if !d.async {
		d.emit(ctx, ev)
		return
	}
	// The caller's request may finish before the publish does.
	ctx = context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		d.emit(ctx, ev)
	}()
}

// Wait blocks until every in-flight async Send has finished.
func (d *Dispatcher) Wait() { d.wg.Wait() }

func (d *Dispatcher) emit(ctx context.Context, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Warn("notification panicked", "userId", ev.UserID, "title", ev.Title, "panic", r)
		}
	}()
	if err := d.n.Emit(ctx, ev); err != nil {
		d.log.Warn("notification failed", "userId", ev.UserID, "title", ev.Title, "err", err)
	}
}

package outbox

import (
	"context"
	"errors"
	"fmt"
	"runtime/debug"
	"sync"

	domoutbox "github.com/Zhima-Mochi/minishop-payments/internal/domain/outbox"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability"
	"github.com/Zhima-Mochi/minishop-payments/internal/observability/logctx"
)

const componentOutbox = "outbox"

// Bus is an in-process event bus. Publish fans an event out to its subscribers and waits for them,
// so nothing outlives the request that produced the event. It is not durable.
type Bus struct {
	mu          sync.RWMutex
	subs        map[string][]domoutbox.Handler
	concurrency int
	log         observability.Logger
}

func NewBus(logger observability.Logger) *Bus {
	if logger == nil {
		logger = observability.NopLogger()
	}
	return &Bus{
		subs:        make(map[string][]domoutbox.Handler),
		concurrency: 8, // per-event handler fanout cap
		log:         logger.With(observability.F("component", componentOutbox)),
	}
}

func (b *Bus) Subscribe(eventName string, h domoutbox.Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs[eventName] = append(b.subs[eventName], h)
}

// Publish runs every handler subscribed to the event name. Handler errors and panics are joined
// into the returned error; the remaining handlers still run.
func (b *Bus) Publish(ctx context.Context, e domoutbox.Event) error {
	if e == nil {
		return nil
	}
	name := e.EventName()
	logger := logctx.FromOr(ctx, b.log).With(observability.F("event", name))

	b.mu.RLock()
	handlers := append([]domoutbox.Handler(nil), b.subs[name]...)
	b.mu.RUnlock()

	if len(handlers) == 0 {
		logger.Debug("event_dropped_no_subscriber")
		return nil
	}

	sem := make(chan struct{}, b.concurrency)
	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)
	fail := func(err error) {
		errMu.Lock()
		errs = append(errs, err)
		errMu.Unlock()
	}

	for _, h := range handlers {
		h := h // per-iteration copy; go 1.21 shares the range variable
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			wg.Wait()
			return errors.Join(append(errs, ctx.Err())...)
		}
		wg.Add(1)
		go func() {
			defer func() {
				if r := recover(); r != nil {
					logger.Error("event_handler_panic",
						observability.F("panic", r),
						observability.F("stack", string(debug.Stack())),
					)
					fail(fmt.Errorf("outbox: handler for %s panicked: %v", name, r))
				}
				<-sem
				wg.Done()
			}()

			if err := h(logctx.With(ctx, logger), e); err != nil {
				logger.Warn("event_handler_error", observability.F("error", err))
				fail(err)
			}
		}()
	}

	wg.Wait()

	logger.Debug("event_fanned_out", observability.F("handlers", len(handlers)))
	return errors.Join(errs...)
}

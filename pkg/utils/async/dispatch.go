package async

import (
	"context"
	"sync"

	"github.com/esteira-credito/esteira/pkg/utils/errutil"
	"github.com/esteira-credito/esteira/pkg/utils/logging"
	"github.com/m-mizutani/goerr/v2"
)

// Group tracks handlers started with Dispatch so that shutdown can wait for
// them. The zero value is ready to use.
type Group struct {
	wg sync.WaitGroup
}

// Dispatch runs handler in a new goroutine detached from ctx cancellation but
// keeping its logger. Errors and panics are logged and reported, never
// propagated.
func (g *Group) Dispatch(ctx context.Context, name string, handler func(ctx context.Context) error) {
	bgCtx := logging.With(context.WithoutCancel(ctx), logging.From(ctx).With("task", name))

	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				_ = errutil.Handle(bgCtx, goerr.New("panic in async handler", goerr.V("panic", r)), "async handler panicked")
			}
		}()

		if err := handler(bgCtx); err != nil {
			_ = errutil.Handle(bgCtx, err, "async handler failed")
		}
	}()
}

// Wait blocks until every dispatched handler has returned
func (g *Group) Wait() {
	g.wg.Wait()
}

package async_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/esteira-credito/esteira/pkg/utils/async"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/gt"
)

func TestGroup_Dispatch(t *testing.T) {
	var g async.Group
	var calls atomic.Int32

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	g.Dispatch(ctx, "ok", func(ctx context.Context) error {
		// parent cancellation does not reach the handler
		gt.NoError(t, ctx.Err())
		calls.Add(1)
		return nil
	})
	g.Dispatch(ctx, "fails", func(ctx context.Context) error {
		calls.Add(1)
		return goerr.New("failed")
	})
	g.Dispatch(ctx, "panics", func(ctx context.Context) error {
		calls.Add(1)
		panic("boom")
	})

	g.Wait()
	gt.Value(t, calls.Load()).Equal(int32(3))
}

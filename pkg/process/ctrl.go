package process

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

const (
	exitTimeout = 5 * time.Second
)

type CmdCtxKey string

const (
	RootWgKey CmdCtxKey = "__root_wg_key__"
)

func GetRootWaitGroup(ctx context.Context) *sync.WaitGroup {
	v := ctx.Value(RootWgKey)
	if wg, ok := v.(*sync.WaitGroup); ok {
		return wg
	}

	return nil
}

// Go runs f in the background and lets the root wait function block on it
// at exit. A panic in f is logged instead of crashing the process.
func Go(ctx context.Context, f func()) {
	wg := GetRootWaitGroup(ctx)
	if wg != nil {
		wg.Add(1)
	}
	go func() {
		defer func() {
			if wg != nil {
				wg.Done()
			}
			if err := recover(); err != nil {
				slog.Error("[process] go panic", "error", err)
			}
		}()

		f()
	}()
}

// GetRootContext returns a context canceled on SIGINT or SIGTERM, its
// cancel func, and a wait func that blocks on work started with Go for at
// most exitTimeout.
func GetRootContext() (context.Context, context.CancelFunc, func()) {
	rootWg := &sync.WaitGroup{}
	rootCtx, rootCancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	rootCtx = context.WithValue(rootCtx, RootWgKey, rootWg)

	waitFn := func() {
		exitCtx, exitCancel := context.WithTimeout(context.Background(), exitTimeout)
		defer exitCancel()

		waitDone := make(chan struct{})
		go func() {
			rootWg.Wait()
			close(waitDone)
		}()

		select {
		case <-exitCtx.Done():
			slog.Warn("[process] background work still running at exit")
		case <-waitDone:
		}
	}

	return rootCtx, rootCancel, waitFn
}

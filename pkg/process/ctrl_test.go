package process

import (
	"sync/atomic"
	"testing"
)

func TestGoWaitsAndRecovers(t *testing.T) {
	ctx, cancel, wait := GetRootContext()
	defer cancel()

	var ran atomic.Int32
	Go(ctx, func() { ran.Add(1) })
	Go(ctx, func() { panic("boom") })
	wait()

	if ran.Load() != 1 {
		t.Errorf("ran = %d", ran.Load())
	}
	if GetRootWaitGroup(ctx) == nil {
		t.Error("root context has no wait group")
	}
}

func TestGoWithoutRoot(t *testing.T) {
	done := make(chan struct{})
	Go(t.Context(), func() { close(done) })
	<-done
}

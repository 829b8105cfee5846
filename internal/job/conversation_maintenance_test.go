package job

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"
)

func TestConversationMaintenanceStartRunsPrune(t *testing.T) {
	stub := &stubConversationPruner{}
	job := NewConversationMaintenance(trace.NewNoopTracerProvider().Tracer("test"), stub, 30*24*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("maintenance job did not stop")
	}

	if atomic.LoadInt32(&stub.pruneCalls) == 0 {
		t.Fatal("expected prune to run at least once")
	}
}

func TestConversationMaintenanceDisabledWithoutRetention(t *testing.T) {
	stub := &stubConversationPruner{}
	job := NewConversationMaintenance(trace.NewNoopTracerProvider().Tracer("test"), stub, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		job.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("maintenance job did not stop")
	}

	if atomic.LoadInt32(&stub.pruneCalls) != 0 {
		t.Fatal("expected no prune calls with zero retention")
	}
}

type stubConversationPruner struct {
	pruneCalls int32
}

func (s *stubConversationPruner) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	atomic.AddInt32(&s.pruneCalls, 1)
	return 0, nil
}

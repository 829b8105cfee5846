package job

import (
	"context"
	"log"
	"time"

	"go.opentelemetry.io/otel/trace"
)

const pruneTick = time.Hour

type ConversationPruner interface {
	PruneOlderThan(ctx context.Context, age time.Duration) (int64, error)
}

// ConversationMaintenance periodically deletes conversation history older
// than the retention window.
type ConversationMaintenance struct {
	tracer    trace.Tracer
	pruner    ConversationPruner
	retention time.Duration
}

func NewConversationMaintenance(tracer trace.Tracer, pruner ConversationPruner, retention time.Duration) *ConversationMaintenance {
	return &ConversationMaintenance{
		tracer:    tracer,
		pruner:    pruner,
		retention: retention,
	}
}

func (j *ConversationMaintenance) Start(ctx context.Context) {
	if j == nil || j.pruner == nil || j.retention <= 0 {
		<-ctx.Done()
		return
	}

	log.Println("Conversation maintenance starting...")
	ticker := time.NewTicker(pruneTick)
	defer ticker.Stop()

	j.runPrune(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Println("Conversation maintenance stopped")
			return
		case <-ticker.C:
			j.runPrune(ctx)
		}
	}
}

func (j *ConversationMaintenance) runPrune(ctx context.Context) {
	if j.tracer != nil {
		_, span := j.tracer.Start(ctx, "conversation-job.prune")
		defer span.End()
	}
	deleted, err := j.pruner.PruneOlderThan(ctx, j.retention)
	if err != nil {
		log.Printf("conversation prune error: %v", err)
		return
	}
	if deleted > 0 {
		log.Printf("conversation prune removed %d row(s)", deleted)
	}
}

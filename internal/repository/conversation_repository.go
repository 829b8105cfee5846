package repository

import (
	"context"
	"time"

	"covered-call-strategist/internal/domain"

	"go.opentelemetry.io/otel/trace"
)

type ConversationRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewConversationRepository(pool PgxPool, tracer trace.Tracer) *ConversationRepository {
	return &ConversationRepository{pool: pool, tracer: tracer}
}

func (r *ConversationRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "conversation-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS conversation_messages (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL,
			role TEXT NOT NULL,
			content TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_conversation_messages_user_created
			ON conversation_messages (user_id, created_at DESC)`,
	)
	return err
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, userID int64, role, content string) error {
	_, span := r.tracer.Start(ctx, "conversation-repo.append-message")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO conversation_messages (user_id, role, content) VALUES ($1, $2, $3)`,
		userID, role, content,
	)
	return err
}

// RecentMessages returns up to limit messages for the user in chronological
// order. The query reads newest-first so the limit trims old history, then
// the result is reversed.
func (r *ConversationRepository) RecentMessages(ctx context.Context, userID int64, limit int) ([]domain.ConversationMessage, error) {
	_, span := r.tracer.Start(ctx, "conversation-repo.recent-messages")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT role, content, created_at
		 FROM conversation_messages
		 WHERE user_id = $1
		 ORDER BY created_at DESC
		 LIMIT $2`,
		userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []domain.ConversationMessage
	for rows.Next() {
		var m domain.ConversationMessage
		if err := rows.Scan(&m.Role, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i, j := 0, len(messages)-1; i < j; i, j = i+1, j-1 {
		messages[i], messages[j] = messages[j], messages[i]
	}
	return messages, nil
}

func (r *ConversationRepository) ClearHistory(ctx context.Context, userID int64) error {
	_, span := r.tracer.Start(ctx, "conversation-repo.clear-history")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`DELETE FROM conversation_messages WHERE user_id = $1`,
		userID,
	)
	return err
}

// PruneOlderThan removes messages past the retention window.
func (r *ConversationRepository) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	_, span := r.tracer.Start(ctx, "conversation-repo.prune-older-than")
	defer span.End()

	tag, err := r.pool.Exec(ctx,
		`DELETE FROM conversation_messages WHERE created_at < NOW() - $1::interval`,
		age.String(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

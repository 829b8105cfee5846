package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel/trace"
)

type AllowedUser struct {
	TelegramID int64
	Note       string
	AddedAt    time.Time
}

// AllowedUserRepository backs the bot's access allowlist. An empty table
// means the allowlist is disabled and everyone may use the bot.
type AllowedUserRepository struct {
	pool   PgxPool
	tracer trace.Tracer
}

func NewAllowedUserRepository(pool PgxPool, tracer trace.Tracer) *AllowedUserRepository {
	return &AllowedUserRepository{pool: pool, tracer: tracer}
}

func (r *AllowedUserRepository) RunMigrations(ctx context.Context) error {
	_, span := r.tracer.Start(ctx, "allowed-user-repo.run-migrations")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`CREATE TABLE IF NOT EXISTS allowed_users (
			telegram_id BIGINT PRIMARY KEY,
			note TEXT NOT NULL DEFAULT '',
			added_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`,
	)
	return err
}

func (r *AllowedUserRepository) Add(ctx context.Context, telegramID int64, note string) error {
	_, span := r.tracer.Start(ctx, "allowed-user-repo.add")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`INSERT INTO allowed_users (telegram_id, note) VALUES ($1, $2)
		 ON CONFLICT (telegram_id) DO UPDATE SET note = EXCLUDED.note`,
		telegramID, note,
	)
	return err
}

func (r *AllowedUserRepository) Remove(ctx context.Context, telegramID int64) error {
	_, span := r.tracer.Start(ctx, "allowed-user-repo.remove")
	defer span.End()

	_, err := r.pool.Exec(ctx,
		`DELETE FROM allowed_users WHERE telegram_id = $1`,
		telegramID,
	)
	return err
}

func (r *AllowedUserRepository) IsAllowed(ctx context.Context, telegramID int64) (bool, error) {
	_, span := r.tracer.Start(ctx, "allowed-user-repo.is-allowed")
	defer span.End()

	row := r.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM allowed_users WHERE telegram_id = $1)`,
		telegramID,
	)
	var allowed bool
	if err := row.Scan(&allowed); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, err
	}
	return allowed, nil
}

func (r *AllowedUserRepository) Count(ctx context.Context) (int64, error) {
	_, span := r.tracer.Start(ctx, "allowed-user-repo.count")
	defer span.End()

	row := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM allowed_users`)
	var n int64
	if err := row.Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (r *AllowedUserRepository) List(ctx context.Context) ([]AllowedUser, error) {
	_, span := r.tracer.Start(ctx, "allowed-user-repo.list")
	defer span.End()

	rows, err := r.pool.Query(ctx,
		`SELECT telegram_id, note, added_at FROM allowed_users ORDER BY added_at ASC`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []AllowedUser
	for rows.Next() {
		var u AllowedUser
		if err := rows.Scan(&u.TelegramID, &u.Note, &u.AddedAt); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"covered-call-strategist/internal/repository"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	"go.opentelemetry.io/otel/trace"
)

var (
	loadEnvFunc = godotenv.Load
	openPool    = pgxpool.New
)

type command int

const (
	cmdAdd command = iota
	cmdRemove
	cmdList
)

type options struct {
	command    command
	telegramID int64
	note       string
}

// allowlistStore is the slice of AllowedUserRepository this tool drives.
type allowlistStore interface {
	RunMigrations(ctx context.Context) error
	Add(ctx context.Context, telegramID int64, note string) error
	Remove(ctx context.Context, telegramID int64) error
	List(ctx context.Context) ([]repository.AllowedUser, error)
}

func main() {
	loadEnvFunc()

	opts, err := parseOptions(os.Args[1:])
	if err != nil {
		log.Fatalf("parse options: %v", err)
	}

	dsn := strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if dsn == "" {
		log.Fatal("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := openPool(ctx, dsn)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("ping postgres: %v", err)
	}

	tracer := trace.NewNoopTracerProvider().Tracer("adduser")
	repo := repository.NewAllowedUserRepository(pool, tracer)

	if err := run(ctx, repo, opts, os.Stdout); err != nil {
		log.Fatalf("adduser: %v", err)
	}
}

func run(ctx context.Context, store allowlistStore, opts options, out io.Writer) error {
	if err := store.RunMigrations(ctx); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	switch opts.command {
	case cmdAdd:
		if err := store.Add(ctx, opts.telegramID, opts.note); err != nil {
			return fmt.Errorf("add user %d: %w", opts.telegramID, err)
		}
		fmt.Fprintf(out, "User %d added to the allowlist", opts.telegramID)
		if opts.note != "" {
			fmt.Fprintf(out, " (%s)", opts.note)
		}
		fmt.Fprintln(out)
	case cmdRemove:
		if err := store.Remove(ctx, opts.telegramID); err != nil {
			return fmt.Errorf("remove user %d: %w", opts.telegramID, err)
		}
		fmt.Fprintf(out, "User %d removed from the allowlist\n", opts.telegramID)
	case cmdList:
		users, err := store.List(ctx)
		if err != nil {
			return fmt.Errorf("list users: %w", err)
		}
		if len(users) == 0 {
			fmt.Fprintln(out, "Allowlist is empty: access is open to everyone")
			return nil
		}
		for _, u := range users {
			line := fmt.Sprintf("%d", u.TelegramID)
			if u.Note != "" {
				line += "\t" + u.Note
			}
			fmt.Fprintln(out, line)
		}
	}
	return nil
}

func parseOptions(args []string) (options, error) {
	fs := flag.NewFlagSet("adduser", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)

	add := fs.Int64("add", 0, "Telegram user ID to add to the allowlist")
	remove := fs.Int64("remove", 0, "Telegram user ID to remove from the allowlist")
	list := fs.Bool("list", false, "print the current allowlist")
	note := fs.String("note", "", "optional note stored with an added user")

	if err := fs.Parse(args); err != nil {
		return options{}, err
	}

	chosen := 0
	if *add != 0 {
		chosen++
	}
	if *remove != 0 {
		chosen++
	}
	if *list {
		chosen++
	}
	if chosen != 1 {
		return options{}, fmt.Errorf("exactly one of -add, -remove, or -list is required")
	}

	switch {
	case *add != 0:
		if *add < 0 {
			return options{}, fmt.Errorf("telegram ID must be positive")
		}
		return options{command: cmdAdd, telegramID: *add, note: strings.TrimSpace(*note)}, nil
	case *remove != 0:
		if *remove < 0 {
			return options{}, fmt.Errorf("telegram ID must be positive")
		}
		return options{command: cmdRemove, telegramID: *remove}, nil
	default:
		return options{command: cmdList}, nil
	}
}

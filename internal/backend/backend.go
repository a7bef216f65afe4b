// Package backend opens the ledger store and the optional event client that
// a process runs against, as selected by DATA_BACKEND and AMQP_URL.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"balancebooks/internal/amqp"
	"balancebooks/internal/config"
	"balancebooks/internal/ledger"
	"balancebooks/internal/ledger/memory"
	"balancebooks/internal/storage"
)

// Kind names a ledger store implementation.
type Kind string

const (
	KindMemory Kind = "memory"
	KindSQLite Kind = "sqlite"
)

// ErrUnknownKind is returned for a DATA_BACKEND value with no store behind it.
var ErrUnknownKind = errors.New("unknown ledger backend")

func (k Kind) valid() bool {
	return k == KindMemory || k == KindSQLite
}

// Events configures the AMQP client. An empty URL disables events.
type Events struct {
	URL      string
	Exchange string
	Queue    string
}

func (e Events) Enabled() bool { return e.URL != "" }

type Config struct {
	Kind       Kind
	SQLitePath string
	// DataDir seeds the memory store; "data" when empty.
	DataDir string
	Events  Events
}

// FromAppConfig picks the backend settings out of the process config.
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, errors.New("backend: nil app config")
	}
	cfg := Config{
		Kind:       Kind(app.DataBackend),
		SQLitePath: app.SQLiteDBPath,
		DataDir:    app.DataDir,
		Events:     Events{URL: app.AMQPURL, Exchange: app.AMQPExchange, Queue: app.AMQPQueue},
	}
	return cfg, cfg.Validate()
}

// Validate reports every problem with c at once.
func (c Config) Validate() error {
	var errs []error
	if !c.Kind.valid() {
		errs = append(errs, fmt.Errorf("%w %q", ErrUnknownKind, c.Kind))
	}
	if c.Kind == KindSQLite && c.SQLitePath == "" {
		errs = append(errs, errors.New("sqlite backend needs a database path"))
	}
	if c.Events.Enabled() && (c.Events.Exchange == "" || c.Events.Queue == "") {
		errs = append(errs, errors.New("events need both an exchange and a queue"))
	}
	return errors.Join(errs...)
}

// Resources is what Open hands back to a process.
type Resources struct {
	Store ledger.Store
	// Events is nil when AMQP is disabled or the broker was unreachable.
	Events *amqp.Client

	closers []func() error
}

// Cleanup closes the event client, then the store.
func (r *Resources) Cleanup() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	r.closers = nil
	return errors.Join(errs...)
}

// Open builds the store for cfg.Kind and dials the broker when events are
// enabled. A broker that cannot be reached is logged and skipped; the store
// failing to open is fatal.
func Open(ctx context.Context, logger *slog.Logger, cfg Config) (*Resources, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	res := &Resources{}
	switch cfg.Kind {
	case KindSQLite:
		repo, err := storage.NewSQLiteRepository(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open sqlite ledger: %w", err)
		}
		res.Store = repo
		logger.InfoContext(ctx, "Ledger opened", "backend", cfg.Kind, "db_path", cfg.SQLitePath)
	case KindMemory:
		dir := cfg.DataDir
		if dir == "" {
			dir = "data"
		}
		res.Store = memory.NewFromFiles(dir)
		logger.InfoContext(ctx, "Ledger opened", "backend", cfg.Kind, "data_dir", dir)
	}
	res.closers = append(res.closers, res.Store.Close)

	if !cfg.Events.Enabled() {
		return res, nil
	}
	client, err := amqp.NewClient(cfg.Events.URL, cfg.Events.Exchange, cfg.Events.Queue)
	if err != nil {
		logger.WarnContext(ctx, "Event broker unreachable, running without events", "error", err)
		return res, nil
	}
	res.Events = client
	res.closers = append(res.closers, client.Close)
	logger.InfoContext(ctx, "Event client connected",
		"exchange", cfg.Events.Exchange,
		"queue", cfg.Events.Queue)
	return res, nil
}

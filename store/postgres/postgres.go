package postgres

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"net"
	"net/url"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/tsawler/census/model"
	"github.com/tsawler/census/store"
)

func init() {
	store.Register("postgres", func(ctx context.Context, cfg store.Config, schema model.Schema, opts store.Options) (store.Store, error) {
		return Open(ctx, cfg, schema, opts)
	})
}

// MaxConns caps the pool. The batch writer uses one connection and the API
// only reads.
const MaxConns = 4

// Store is a PostgreSQL table.
type Store struct {
	pool   *pgxpool.Pool
	schema model.Schema
	opts   store.Options
	log    *zap.Logger
}

var _ store.Store = (*Store)(nil)

// DSN builds a connection URL for cfg.
func DSN(cfg store.Config) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port)),
		Path:   "/" + cfg.Name,
	}
	if cfg.SSLMode != "" {
		u.RawQuery = url.Values{"sslmode": {cfg.SSLMode}}.Encode()
	}
	return u.String()
}

// Open creates a pool for cfg and pings the server.
func Open(ctx context.Context, cfg store.Config, schema model.Schema, opts store.Options) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(DSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("postgres: parsing config for %s: %w", cfg, err)
	}
	pcfg.MaxConns = MaxConns

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, fmt.Errorf("postgres: connecting to %s: %w", cfg, err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres: connecting to %s: %w", cfg, err)
	}
	return New(pool, schema, opts), nil
}

// New wraps an existing pool. The Store takes ownership of pool.
func New(pool *pgxpool.Pool, schema model.Schema, opts store.Options) *Store {
	if opts.Logger == nil {
		opts = store.NewOptions(store.WithChunkSize(opts.ChunkSize))
	}
	return &Store{
		pool:   pool,
		schema: schema,
		opts:   opts,
		log:    opts.Logger.Named("store").With(zap.String("dialect", "postgres"), zap.String("table", schema.Table)),
	}
}

// Schema returns the table schema.
func (s *Store) Schema() model.Schema { return s.schema }

// Close closes the pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

// EnsureSchema creates the table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, store.DDL(store.Postgres, s.schema)); err != nil {
		return fmt.Errorf("postgres: creating table %s: %w", s.schema.Table, err)
	}
	s.log.Debug("table ensured")
	return nil
}

// ReplaceAll clears the table and inserts records in one transaction. On
// any error the transaction is rolled back and the table is unchanged.
func (s *Store) ReplaceAll(ctx context.Context, records iter.Seq[model.Record]) (n int, err error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: acquiring connection: %w", err)
	}
	defer conn.Release()

	tx, err := conn.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			// The caller's context may be the reason for the failure.
			if rbErr := tx.Rollback(context.WithoutCancel(ctx)); rbErr != nil && !errors.Is(rbErr, pgx.ErrTxClosed) {
				s.log.Error("rollback failed", zap.Error(rbErr))
			}
			s.log.Warn("replace rolled back", zap.Error(err))
		}
	}()

	if _, err = tx.Exec(ctx, store.DeleteSQL(store.Postgres, s.schema)); err != nil {
		return 0, fmt.Errorf("postgres: clearing %s: %w", s.schema.Table, err)
	}

	n, err = store.Chunk(records, s.schema.Width(), s.opts.ChunkSize, func(batch []model.Record) error {
		query := store.InsertSQL(store.Postgres, s.schema, len(batch))
		if _, err := tx.Exec(ctx, query, store.InsertArgs(batch)...); err != nil {
			return fmt.Errorf("postgres: inserting into %s: %w", s.schema.Table, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("postgres: committing %s: %w", s.schema.Table, err)
	}
	s.log.Info("table replaced", zap.Int("rows", n))
	return n, nil
}

// List returns records selected by q.
func (s *Store) List(ctx context.Context, q store.Query) ([]model.Record, error) {
	query, err := store.SelectSQL(store.Postgres, s.schema, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("postgres: listing %s: %w", s.schema.Table, err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var rec model.Record
		if err := rows.Scan(store.ScanDest(&rec, s.schema.Width())...); err != nil {
			return nil, fmt.Errorf("postgres: scanning %s: %w", s.schema.Table, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Labels returns the label column in insertion order.
func (s *Store) Labels(ctx context.Context) ([]string, error) {
	rows, err := s.pool.Query(ctx, store.LabelsSQL(store.Postgres, s.schema))
	if err != nil {
		return nil, fmt.Errorf("postgres: listing labels of %s: %w", s.schema.Table, err)
	}
	labels, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("postgres: listing labels of %s: %w", s.schema.Table, err)
	}
	return labels, nil
}

// ByLabel returns the first record with the given label, or
// store.ErrNotFound.
func (s *Store) ByLabel(ctx context.Context, label string) (model.Record, error) {
	var rec model.Record
	err := s.pool.QueryRow(ctx, store.ByLabelSQL(store.Postgres, s.schema), label).
		Scan(store.ScanDest(&rec, s.schema.Width())...)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Record{}, fmt.Errorf("%w: %s %q", store.ErrNotFound, s.schema.LabelColumn, label)
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("postgres: reading %s: %w", s.schema.Table, err)
	}
	return rec, nil
}

package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"iter"
	"net"
	"strconv"
	"time"

	"github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/tsawler/census/model"
	"github.com/tsawler/census/store"
)

func init() {
	store.Register("mysql", open)
	store.Register("sqlite", open)
}

// Store is a table in a database/sql database.
type Store struct {
	db      *sql.DB
	dialect store.Dialect
	schema  model.Schema
	opts    store.Options
	log     *zap.Logger
}

var _ store.Store = (*Store)(nil)

func open(ctx context.Context, cfg store.Config, schema model.Schema, opts store.Options) (store.Store, error) {
	return Open(ctx, cfg, schema, opts)
}

// Open connects to the database named by cfg and pings it.
func Open(ctx context.Context, cfg store.Config, schema model.Schema, opts store.Options) (*Store, error) {
	dialect, err := store.ParseDialect(cfg.Driver)
	if err != nil {
		return nil, err
	}
	if dialect == store.Postgres {
		return nil, fmt.Errorf("sqlstore: %w %q, use the postgres package", store.ErrUnknownDriver, cfg.Driver)
	}
	dsn, err := DSN(cfg)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(cfg.Driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: opening %s: %w", cfg, err)
	}
	if dialect == store.SQLite {
		// One connection keeps an in-memory database alive and serializes
		// writers.
		db.SetMaxOpenConns(1)
	} else {
		db.SetConnMaxIdleTime(60 * time.Second)
		db.SetMaxIdleConns(4)
		db.SetMaxOpenConns(16)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlstore: connecting to %s: %w", cfg, err)
	}
	return New(db, dialect, schema, opts), nil
}

// New wraps an open database. The Store takes ownership of db.
func New(db *sql.DB, dialect store.Dialect, schema model.Schema, opts store.Options) *Store {
	if opts.Logger == nil {
		opts = store.NewOptions(store.WithChunkSize(opts.ChunkSize))
	}
	return &Store{
		db:      db,
		dialect: dialect,
		schema:  schema,
		opts:    opts,
		log:     opts.Logger.Named("store").With(zap.String("dialect", dialect.String()), zap.String("table", schema.Table)),
	}
}

// DSN builds the driver data source name for cfg.
func DSN(cfg store.Config) (string, error) {
	switch cfg.Driver {
	case "sqlite":
		if cfg.Path == "" {
			return ":memory:", nil
		}
		return cfg.Path, nil
	case "mysql":
		mc := mysql.NewConfig()
		mc.User = cfg.User
		mc.Passwd = cfg.Password
		mc.Net = "tcp"
		mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.Port))
		mc.DBName = cfg.Name
		return mc.FormatDSN(), nil
	}
	return "", fmt.Errorf("sqlstore: %w %q", store.ErrUnknownDriver, cfg.Driver)
}

// Schema returns the table schema.
func (s *Store) Schema() model.Schema { return s.schema }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// EnsureSchema creates the table if it does not exist.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, store.DDL(s.dialect, s.schema)); err != nil {
		return fmt.Errorf("sqlstore: creating table %s: %w", s.schema.Table, err)
	}
	s.log.Debug("table ensured")
	return nil
}

// ReplaceAll clears the table and inserts records in one transaction on one
// connection. On any error the transaction is rolled back and the table is
// unchanged.
func (s *Store) ReplaceAll(ctx context.Context, records iter.Seq[model.Record]) (n int, err error) {
	conn, err := s.db.Conn(ctx)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: acquiring connection: %w", err)
	}
	defer conn.Close()

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlstore: beginning transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				s.log.Error("rollback failed", zap.Error(rbErr))
			}
			s.log.Warn("replace rolled back", zap.Error(err))
		}
	}()

	if _, err = tx.ExecContext(ctx, store.DeleteSQL(s.dialect, s.schema)); err != nil {
		return 0, fmt.Errorf("sqlstore: clearing %s: %w", s.schema.Table, err)
	}

	n, err = store.Chunk(records, s.schema.Width(), s.opts.ChunkSize, func(batch []model.Record) error {
		query := store.InsertSQL(s.dialect, s.schema, len(batch))
		if _, err := tx.ExecContext(ctx, query, store.InsertArgs(batch)...); err != nil {
			return fmt.Errorf("sqlstore: inserting into %s: %w", s.schema.Table, err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("sqlstore: committing %s: %w", s.schema.Table, err)
	}
	s.log.Info("table replaced", zap.Int("rows", n))
	return n, nil
}

// List returns records selected by q.
func (s *Store) List(ctx context.Context, q store.Query) ([]model.Record, error) {
	query, err := store.SelectSQL(s.dialect, s.schema, q)
	if err != nil {
		return nil, err
	}
	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing %s: %w", s.schema.Table, err)
	}
	defer rows.Close()

	var out []model.Record
	for rows.Next() {
		var rec model.Record
		if err := rows.Scan(store.ScanDest(&rec, s.schema.Width())...); err != nil {
			return nil, fmt.Errorf("sqlstore: scanning %s: %w", s.schema.Table, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// Labels returns the label column in insertion order.
func (s *Store) Labels(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, store.LabelsSQL(s.dialect, s.schema))
	if err != nil {
		return nil, fmt.Errorf("sqlstore: listing labels of %s: %w", s.schema.Table, err)
	}
	defer rows.Close()

	var labels []string
	for rows.Next() {
		var l string
		if err := rows.Scan(&l); err != nil {
			return nil, err
		}
		labels = append(labels, l)
	}
	return labels, rows.Err()
}

// ByLabel returns the first record with the given label, or
// store.ErrNotFound.
func (s *Store) ByLabel(ctx context.Context, label string) (model.Record, error) {
	var rec model.Record
	err := s.db.QueryRowContext(ctx, store.ByLabelSQL(s.dialect, s.schema), label).
		Scan(store.ScanDest(&rec, s.schema.Width())...)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Record{}, fmt.Errorf("%w: %s %q", store.ErrNotFound, s.schema.LabelColumn, label)
	}
	if err != nil {
		return model.Record{}, fmt.Errorf("sqlstore: reading %s: %w", s.schema.Table, err)
	}
	return rec, nil
}

package store

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/tsawler/census/model"
)

var (
	// ErrUnknownDriver is returned by Open for unregistered driver names.
	ErrUnknownDriver = errors.New("store: unknown driver")
	// ErrNotFound is returned when a labelled record does not exist.
	ErrNotFound = errors.New("store: record not found")
	// ErrWidth is returned when a record's field count differs from the
	// schema width.
	ErrWidth = errors.New("store: record width does not match schema")
)

// Sink loads records into a table it owns.
type Sink interface {
	// EnsureSchema creates the table if it does not exist.
	EnsureSchema(ctx context.Context) error
	// ReplaceAll clears the table and inserts records in order within one
	// transaction, returning the number of rows inserted.
	ReplaceAll(ctx context.Context, records iter.Seq[model.Record]) (int, error)
}

// Reader queries a loaded table.
type Reader interface {
	List(ctx context.Context, q Query) ([]model.Record, error)
	Labels(ctx context.Context) ([]string, error)
	ByLabel(ctx context.Context, label string) (model.Record, error)
}

// Store is a Sink and Reader over one table.
type Store interface {
	Sink
	Reader
	Schema() model.Schema
	Close() error
}

// Query selects rows for List.
type Query struct {
	// OrderBy is the label column or a numeric column name. Empty means
	// insertion order.
	OrderBy string
	Desc    bool
	// Limit caps the number of rows; 0 means no limit.
	Limit int
}

// Config holds connection parameters. It is passed to Open explicitly.
type Config struct {
	Driver   string `mapstructure:"driver" yaml:"driver"`
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Name     string `mapstructure:"name" yaml:"name"`
	User     string `mapstructure:"user" yaml:"user"`
	Password string `mapstructure:"password" yaml:"-"`
	SSLMode  string `mapstructure:"sslmode" yaml:"sslmode"`
	// Path is the database file for sqlite; empty means in-memory.
	Path string `mapstructure:"path" yaml:"path"`
}

// DefaultConfig returns the local PostgreSQL configuration.
func DefaultConfig() Config {
	return Config{
		Driver:  "postgres",
		Host:    "localhost",
		Port:    5432,
		Name:    "pdf_datasets",
		User:    "postgres",
		SSLMode: "disable",
	}
}

// String describes the connection without the password.
func (c Config) String() string {
	if c.Driver == "sqlite" {
		if c.Path == "" {
			return "sqlite::memory:"
		}
		return "sqlite:" + c.Path
	}
	return fmt.Sprintf("%s://%s@%s:%d/%s", c.Driver, c.User, c.Host, c.Port, c.Name)
}

// DefaultChunkSize is the number of rows per INSERT statement.
const DefaultChunkSize = 500

// Options configure an opened Store.
type Options struct {
	Logger    *zap.Logger
	ChunkSize int
}

// Option sets an Options field.
type Option func(*Options)

// WithLogger sets the store logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithChunkSize sets the number of rows per INSERT.
func WithChunkSize(n int) Option {
	return func(o *Options) { o.ChunkSize = n }
}

// NewOptions applies opts over the defaults.
func NewOptions(opts ...Option) Options {
	o := Options{Logger: zap.NewNop(), ChunkSize: DefaultChunkSize}
	for _, fn := range opts {
		fn(&o)
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.ChunkSize <= 0 {
		o.ChunkSize = DefaultChunkSize
	}
	return o
}

// OpenFunc opens a Store for a registered driver.
type OpenFunc func(ctx context.Context, cfg Config, schema model.Schema, opts Options) (Store, error)

var (
	driversMu sync.RWMutex
	drivers   = make(map[string]OpenFunc)
)

// Register makes a driver available to Open. It panics if fn is nil or
// name is already registered.
func Register(name string, fn OpenFunc) {
	driversMu.Lock()
	defer driversMu.Unlock()
	if fn == nil {
		panic("store: Register open func is nil")
	}
	if _, dup := drivers[name]; dup {
		panic("store: Register called twice for driver " + name)
	}
	drivers[name] = fn
}

// Drivers returns the registered driver names, sorted.
func Drivers() []string {
	driversMu.RLock()
	defer driversMu.RUnlock()
	names := make([]string, 0, len(drivers))
	for name := range drivers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Open validates schema and opens a Store with the driver named by
// cfg.Driver.
func Open(ctx context.Context, cfg Config, schema model.Schema, opts ...Option) (Store, error) {
	if err := schema.Validate(); err != nil {
		return nil, fmt.Errorf("store: %w", err)
	}
	driversMu.RLock()
	fn, ok := drivers[cfg.Driver]
	driversMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w %q (registered: %v)", ErrUnknownDriver, cfg.Driver, Drivers())
	}
	return fn(ctx, cfg, schema, NewOptions(opts...))
}

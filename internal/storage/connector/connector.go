// Package connector owns the live database handle. It turns a
// config.Database into a *gorm.DB for one of the supported dialects and
// exposes the three things the rest of the application needs from it:
// a connectivity check, schema sync, and raw statements.
//
// One Connector is built at process start and passed down explicitly;
// nothing in this package is a package-level singleton.
package connector

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"strconv"
	"time"

	mysqldrv "github.com/go-sql-driver/mysql"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/aanand-mishra/students-api/internal/config"
	"github.com/aanand-mishra/students-api/internal/storage"
	"github.com/aanand-mishra/students-api/internal/types"

	// Registers the "sqlite3" database/sql driver used by the sqlite dialector.
	_ "github.com/mattn/go-sqlite3"
)

const dialTimeout = 5 * time.Second

// Connector wraps a *gorm.DB bound to a single dialect.
type Connector struct {
	db      *gorm.DB
	dialect string
}

type options struct {
	logger   *slog.Logger
	sqlTrace bool
}

// Option customises Open.
type Option func(*options)

// WithLogger routes gorm's own log output (slow queries, warnings and,
// with WithSQLTrace, every statement) through l.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithSQLTrace logs every SQL statement at debug level.
func WithSQLTrace(on bool) Option {
	return func(o *options) { o.sqlTrace = on }
}

// Open connects to the database described by cfg. The production path
// passes the env-driven config.Database; tests pass an explicit literal
// pointing at a throwaway database.
//
// Any failure to reach the server or authenticate is reported as an
// error wrapping storage.ErrConnection.
func Open(ctx context.Context, cfg config.Database, opts ...Option) (*Connector, error) {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}

	dialector, err := dialectorFor(cfg)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: newGormLogger(o)})
	if err != nil {
		return nil, fmt.Errorf("connector.Open: %w: %w", storage.ErrConnection, err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("connector.Open: %w: %w", storage.ErrConnection, err)
	}
	if cfg.Dialect == config.DialectSQLite {
		// SQLite serialises writers; a single connection also keeps
		// in-memory databases alive and shared.
		sqlDB.SetMaxOpenConns(1)
	}

	c := &Connector{db: db, dialect: cfg.Dialect}
	if err := c.Authenticate(ctx); err != nil {
		sqlDB.Close()
		return nil, err
	}

	o.logger.Info("database connected",
		slog.String("dialect", cfg.Dialect),
		slog.String("database", cfg.Name))

	return c, nil
}

func dialectorFor(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Dialect {
	case config.DialectMySQL:
		return mysql.New(mysql.Config{DSN: mysqlDSN(cfg)}), nil
	case config.DialectPostgres:
		return postgres.New(postgres.Config{DSN: postgresDSN(cfg)}), nil
	case config.DialectSQLite:
		return sqlite.Open(cfg.Name), nil
	default:
		return nil, fmt.Errorf("connector: unsupported dialect %q", cfg.Dialect)
	}
}

// mysqlDSN builds the go-sql-driver DSN. ClientFoundRows makes UPDATE
// report matched rows rather than changed rows, so an update that writes
// identical values still counts as a hit.
func mysqlDSN(cfg config.Database) string {
	mc := mysqldrv.NewConfig()
	mc.User = cfg.User
	mc.Passwd = cfg.Password
	mc.Net = "tcp"
	mc.Addr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.EffectivePort()))
	mc.DBName = cfg.Name
	mc.ParseTime = true
	mc.ClientFoundRows = true
	mc.Timeout = dialTimeout
	mc.Params = map[string]string{"charset": "utf8mb4"}
	return mc.FormatDSN()
}

func postgresDSN(cfg config.Database) string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(cfg.User, cfg.Password),
		Host:     net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.EffectivePort())),
		Path:     "/" + cfg.Name,
		RawQuery: url.Values{"sslmode": {"disable"}, "connect_timeout": {strconv.Itoa(int(dialTimeout.Seconds()))}}.Encode(),
	}
	return u.String()
}

func newGormLogger(o options) gormlogger.Interface {
	level := gormlogger.Warn
	logAt := slog.LevelWarn
	if o.sqlTrace {
		level = gormlogger.Info
		logAt = slog.LevelDebug
	}

	return gormlogger.New(
		slog.NewLogLogger(o.logger.Handler(), logAt),
		gormlogger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// Authenticate verifies the server is reachable and accepts our
// credentials.
func (c *Connector) Authenticate(ctx context.Context) error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("connector.Authenticate: %w: %w", storage.ErrConnection, err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return fmt.Errorf("connector.Authenticate: %w: %w", storage.ErrConnection, err)
	}
	return nil
}

// Sync materialises the schema. Without force it is an idempotent
// create-or-update; with force the students table is dropped first so
// the database starts empty.
func (c *Connector) Sync(ctx context.Context, force bool) error {
	db := c.db.WithContext(ctx)

	if force {
		if err := db.Migrator().DropTable(&types.Student{}); err != nil {
			return fmt.Errorf("connector.Sync: drop: %w", err)
		}
	}
	if err := db.AutoMigrate(&types.Student{}); err != nil {
		return fmt.Errorf("connector.Sync: migrate: %w", err)
	}
	return nil
}

// Query runs a raw statement and returns the affected-row count.
func (c *Connector) Query(ctx context.Context, sql string, args ...any) (int64, error) {
	res := c.db.WithContext(ctx).Exec(sql, args...)
	if res.Error != nil {
		return 0, fmt.Errorf("connector.Query: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// Dialect returns the config.Dialect* constant this connector speaks.
func (c *Connector) Dialect() string {
	return c.dialect
}

// DB returns the underlying gorm handle.
func (c *Connector) DB() *gorm.DB {
	return c.db
}

// Close releases the connection pool.
func (c *Connector) Close() error {
	sqlDB, err := c.db.DB()
	if err != nil {
		return fmt.Errorf("connector.Close: %w", err)
	}
	return sqlDB.Close()
}

package tenant

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/lib/pq"

	"github.com/mathachew7/JoslaSync/internal/observability/metrics"
	"github.com/mathachew7/JoslaSync/pkg/database"
)

// pq error codes the registry cares about.
const (
	pqDuplicateDatabase = "42P04"
)

// Database names are derived from company names and must stay within a
// conservative charset; anything else is rejected before it reaches SQL.
var dbNamePattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// Registry maps tenant database names to live, schema-initialized connection
// pools. It is the only component allowed to construct tenant pools: at most
// one pool per name is retained for the life of the process, held in a
// fixed-capacity cache.
//
// Pool construction on a cache miss is deliberately not serialized: two
// requests racing on the same never-seen name may each build a pool. Both are
// equivalent; the loser is closed and discarded. This benign redundancy is
// cheaper than a lock on the hot path.
type Registry struct {
	master *sql.DB
	cfg    *database.Config
	cache  *engineCache
	logger *slog.Logger
}

// NewRegistry creates a tenant connection registry. master is the already
// open master-directory pool; cfg carries the server host and credentials
// used for every tenant pool.
func NewRegistry(master *sql.DB, cfg *database.Config, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		master: master,
		cfg:    cfg,
		cache:  newEngineCache(engineCacheSize),
		logger: logger,
	}
}

// Master exposes the master-directory pool.
func (r *Registry) Master() *sql.DB {
	return r.master
}

// Engine returns the cached connection pool for dbName, constructing and
// caching one on first reference.
func (r *Registry) Engine(dbName string) (*sql.DB, error) {
	if !dbNamePattern.MatchString(dbName) {
		return nil, fmt.Errorf("invalid tenant database name %q", dbName)
	}

	if db, ok := r.cache.get(dbName); ok {
		metrics.ObserveEngineCache("hit")
		return db, nil
	}
	metrics.ObserveEngineCache("miss")

	db, err := database.Open(r.cfg.WithDatabase(dbName))
	if err != nil {
		return nil, fmt.Errorf("failed to open tenant pool for %q: %w", dbName, err)
	}

	winner, kept, evicted := r.cache.add(dbName, db)
	if !kept {
		// Another request built the pool first; ours was never used.
		db.Close()
	}
	if evicted != nil {
		metrics.ObserveEngineCache("evict")
		evicted.Close()
	}
	metrics.SetActiveEngines(r.cache.len())
	return winner, nil
}

// EnsureSchema idempotently creates every tenant table in dbName. Cheap when
// the schema already exists; safe to call on every tenant-session open.
func (r *Registry) EnsureSchema(ctx context.Context, dbName string) error {
	db, err := r.Engine(dbName)
	if err != nil {
		return err
	}
	if err := applyTenantSchema(ctx, db); err != nil {
		return err
	}
	r.logger.Debug("tenant schema ensured", slog.String("db_name", dbName))
	return nil
}

// OpenSession checks a connection out of the tenant's pool. The caller owns
// the session and must Close it on every exit path.
func (r *Registry) OpenSession(ctx context.Context, dbName string) (*Session, error) {
	db, err := r.Engine(dbName)
	if err != nil {
		return nil, err
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open tenant session for %q: %w", dbName, err)
	}
	return &Session{conn: conn, dbName: dbName}, nil
}

// CreateDatabaseIfMissing physically creates the tenant database through the
// master connection. "Already exists" is swallowed; any other failure, such
// as insufficient privilege, propagates.
func (r *Registry) CreateDatabaseIfMissing(ctx context.Context, dbName string) error {
	if !dbNamePattern.MatchString(dbName) {
		return fmt.Errorf("invalid tenant database name %q", dbName)
	}

	_, err := r.master.ExecContext(ctx, fmt.Sprintf(`CREATE DATABASE %s`, pq.QuoteIdentifier(dbName)))
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == pqDuplicateDatabase {
			r.logger.Info("tenant database already exists", slog.String("db_name", dbName))
			return nil
		}
		return fmt.Errorf("failed to create tenant database %q: %w", dbName, err)
	}

	r.logger.Info("created tenant database", slog.String("db_name", dbName))
	return nil
}

// Close closes every cached tenant pool. The master pool is owned by the
// composition root and is not closed here.
func (r *Registry) Close() {
	r.cache.closeAll()
	metrics.SetActiveEngines(0)
}

// Session is a single checked-out tenant connection bound to one database.
type Session struct {
	conn   *sql.Conn
	dbName string
}

// DBName reports which tenant database the session is bound to.
func (s *Session) DBName() string { return s.dbName }

// Close returns the connection to its pool.
func (s *Session) Close() error { return s.conn.Close() }

func (s *Session) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return s.conn.ExecContext(ctx, query, args...)
}

func (s *Session) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return s.conn.QueryContext(ctx, query, args...)
}

func (s *Session) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return s.conn.QueryRowContext(ctx, query, args...)
}

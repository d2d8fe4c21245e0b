// Package postgres is the PostgreSQL backend. Queries are plain SQL through
// pgx; case mutations and their audit entries share one transaction.
package postgres

import (
	"context"
	"embed"
	"errors"
	"strings"

	"github.com/esteira-credito/esteira/pkg/domain/interfaces"
	"github.com/esteira-credito/esteira/pkg/domain/model"
	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// DBTX is satisfied by both *pgxpool.Pool and pgx.Tx
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// TxRunner runs a function inside a transaction
type TxRunner struct {
	pool *pgxpool.Pool
}

func NewTxRunner(pool *pgxpool.Pool) *TxRunner {
	return &TxRunner{pool: pool}
}

// RunInTx commits when fn succeeds and rolls back otherwise
func (r *TxRunner) RunInTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return unavailable(err, "failed to begin transaction")
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return unavailable(err, "failed to commit transaction")
	}
	return nil
}

type Postgres struct {
	pool        *pgxpool.Pool
	caseRepo    *caseRepository
	audit       *auditRepository
	execution   *slaExecutionRepository
	interaction *interactionRepository
	guard       *sweepGuardRepository
}

var _ interfaces.Repository = &Postgres{}

// New connects to dsn and pings the server
func New(ctx context.Context, dsn string) (*Postgres, error) {
	poolCfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to parse postgres DSN")
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create postgres pool")
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, unavailable(err, "failed to connect to postgres",
			goerr.V("host", poolCfg.ConnConfig.Host), goerr.V("database", poolCfg.ConnConfig.Database))
	}

	return NewWithPool(pool), nil
}

// NewWithPool wraps an existing pool
func NewWithPool(pool *pgxpool.Pool) *Postgres {
	txRunner := NewTxRunner(pool)
	return &Postgres{
		pool:        pool,
		caseRepo:    newCaseRepository(pool, txRunner),
		audit:       newAuditRepository(pool),
		execution:   newSLAExecutionRepository(pool),
		interaction: newInteractionRepository(pool),
		guard:       newSweepGuardRepository(pool),
	}
}

// Migrate applies the embedded migrations to dsn and returns the resulting
// schema version
func Migrate(dsn string) (uint, error) {
	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return 0, goerr.Wrap(err, "failed to open migration source")
	}

	m, err := migrate.NewWithSourceInstance("iofs", source, migrateURL(dsn))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to initialize migrations")
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, goerr.Wrap(err, "failed to apply migrations")
	}

	version, dirty, err := m.Version()
	if err != nil && !errors.Is(err, migrate.ErrNilVersion) {
		return 0, goerr.Wrap(err, "failed to read migration version")
	}
	if dirty {
		return version, goerr.New("migration left the schema dirty", goerr.V("version", version))
	}
	return version, nil
}

// migrateURL rewrites a postgres:// DSN into the pgx5:// scheme the
// golang-migrate pgx driver registers
func migrateURL(dsn string) string {
	for _, prefix := range []string{"postgres://", "postgresql://"} {
		if strings.HasPrefix(dsn, prefix) {
			return "pgx5://" + strings.TrimPrefix(dsn, prefix)
		}
	}
	return dsn
}

func (p *Postgres) Case() interfaces.CaseRepository {
	return p.caseRepo
}

func (p *Postgres) Audit() interfaces.AuditRepository {
	return p.audit
}

func (p *Postgres) SLAExecution() interfaces.SLAExecutionRepository {
	return p.execution
}

func (p *Postgres) Interaction() interfaces.InteractionRepository {
	return p.interaction
}

func (p *Postgres) SweepGuard() interfaces.SweepGuardRepository {
	return p.guard
}

func (p *Postgres) Close() error {
	p.pool.Close()
	return nil
}

func unavailable(err error, msg string, opts ...goerr.Option) error {
	return goerr.Wrap(errors.Join(model.ErrStoreUnavailable, err), msg, opts...)
}

// isUUID reports whether id fits the UUID key columns. Anything else cannot
// name a stored row.
func isUUID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func nullableJSON(raw []byte) []byte {
	if len(raw) == 0 {
		return nil
	}
	return raw
}

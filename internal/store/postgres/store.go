package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/gosuda/coperto/internal/domain"
)

// dbtx is satisfied by both *pgxpool.Pool and pgx.Tx so every repo can run
// inside or outside a transaction.
type dbtx interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type Store struct {
	pool         *pgxpool.Pool
	tenants      *TenantRepo
	users        *UserRepo
	settings     *SettingsRepo
	shifts       *ShiftRepo
	tables       *TableRepo
	reservations *ReservationRepo
	audit        *AuditRepo
}

func New(ctx context.Context, dsn string, maxConns int32) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: parse config: %w", err)
	}

	cfg.MaxConns = maxConns

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("postgres.New: connect: %w", err)
	}

	err = pool.Ping(ctx)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("postgres.New: ping: %w", err)
	}

	return &Store{
		pool:         pool,
		tenants:      NewTenantRepo(pool),
		users:        NewUserRepo(pool),
		settings:     NewSettingsRepo(pool),
		shifts:       NewShiftRepo(pool),
		tables:       NewTableRepo(pool),
		reservations: NewReservationRepo(pool),
		audit:        NewAuditRepo(pool),
	}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Tenants() domain.TenantRepository                          { return s.tenants }
func (s *Store) Users() domain.UserRepository                              { return s.users }
func (s *Store) ReservationSettings() domain.ReservationSettingsRepository { return s.settings }
func (s *Store) Shifts() domain.ShiftRepository                            { return s.shifts }
func (s *Store) Tables() domain.TableRepository                            { return s.tables }
func (s *Store) Reservations() domain.ReservationRepository                { return s.reservations }
func (s *Store) Audit() domain.AuditRepository                             { return s.audit }

// InTx runs fn in a transaction. pgx.BeginTxFunc commits when fn returns nil
// and rolls back on error or panic.
func (s *Store) InTx(ctx context.Context, fn func(tx domain.Tx) error) error {
	err := pgx.BeginTxFunc(ctx, s.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		return fn(newTxRepos(tx))
	})
	if err != nil {
		return fmt.Errorf("postgres.InTx: %w", err)
	}
	return nil
}

// txRepos binds the transactional repositories to a single pgx.Tx.
type txRepos struct {
	shifts       *ShiftRepo
	tables       *TableRepo
	reservations *ReservationRepo
	audit        *AuditRepo
}

func newTxRepos(tx pgx.Tx) *txRepos {
	return &txRepos{
		shifts:       NewShiftRepo(tx),
		tables:       NewTableRepo(tx),
		reservations: NewReservationRepo(tx),
		audit:        NewAuditRepo(tx),
	}
}

func (t *txRepos) Shifts() domain.ShiftRepository             { return t.shifts }
func (t *txRepos) Tables() domain.TableRepository             { return t.tables }
func (t *txRepos) Reservations() domain.ReservationRepository { return t.reservations }
func (t *txRepos) Audit() domain.AuditRepository              { return t.audit }

// Package app wires repositories into use cases. The server, the CLI and
// end-to-end tests build the same object graph through it.
package app

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/iho/leaveledger/internal/adapter/repository/memory"
	"github.com/iho/leaveledger/internal/adapter/repository/postgres"
	"github.com/iho/leaveledger/internal/infrastructure/metrics"
	"github.com/iho/leaveledger/internal/usecase"
)

// Repositories are the storage ports the use cases run on.
type Repositories struct {
	TxManager    usecase.TransactionManager
	Balances     usecase.BalanceRepository
	Transactions usecase.LedgerTransactionRepository
	Ledger       usecase.LedgerRepository
	Requests     usecase.RequestRepository
	Variants     usecase.VariantRepository
	Workflows    usecase.WorkflowRepository
	Holidays     usecase.HolidayRepository
	Outbox       usecase.OutboxRepository
	Audit        usecase.AuditRepository
	Directory    usecase.EmployeeDirectory
}

// NewMemoryRepositories returns repositories over an in-process store.
func NewMemoryRepositories(store *memory.Store) Repositories {
	return Repositories{
		TxManager:    store,
		Balances:     memory.NewBalanceRepository(store),
		Transactions: memory.NewLedgerTransactionRepository(store),
		Ledger:       memory.NewLedgerRepository(store),
		Requests:     memory.NewRequestRepository(store),
		Variants:     memory.NewVariantRepository(store),
		Workflows:    memory.NewWorkflowRepository(store),
		Holidays:     memory.NewHolidayRepository(store),
		Outbox:       memory.NewOutboxRepository(store),
		Audit:        memory.NewAuditRepository(store),
		Directory:    memory.NewDirectory(store),
	}
}

// NewPostgresRepositories returns repositories over a connection pool. The
// directory reads the employees table; callers may replace it.
func NewPostgresRepositories(pool *pgxpool.Pool, txOpts ...postgres.TxOption) Repositories {
	return Repositories{
		TxManager:    postgres.NewTxManager(pool, txOpts...),
		Balances:     postgres.NewBalanceRepository(pool),
		Transactions: postgres.NewLedgerTransactionRepository(pool),
		Ledger:       postgres.NewLedgerRepository(pool),
		Requests:     postgres.NewRequestRepository(pool),
		Variants:     postgres.NewVariantRepository(pool),
		Workflows:    postgres.NewWorkflowRepository(pool),
		Holidays:     postgres.NewHolidayRepository(pool),
		Outbox:       postgres.NewOutboxRepository(pool),
		Audit:        postgres.NewAuditRepository(pool),
		Directory:    postgres.NewEmployeeRepository(pool),
	}
}

// Options tune NewServices. Zero values are usable: IDs default to ULIDs
// and metrics are disabled.
type Options struct {
	IDGen   usecase.IDGenerator
	Retrier usecase.Retrier
	Logger  zerolog.Logger
	Metrics *metrics.Metrics
	Clock   func() time.Time
}

// Services are the wired use cases.
type Services struct {
	Ledger         *usecase.LedgerUseCase
	Balances       *usecase.BalanceUseCase
	Accrual        *usecase.AccrualUseCase
	Engine         *usecase.WorkflowEngine
	Requests       *usecase.RequestUseCase
	Reconciliation *usecase.ReconciliationUseCase
	Audit          usecase.AuditRepository
	Outbox         usecase.OutboxRepository
}

// NewServices builds the use cases over repos.
func NewServices(repos Repositories, opts Options) *Services {
	if opts.IDGen == nil {
		opts.IDGen = postgres.NewULIDGenerator()
	}

	ledger := usecase.NewLedgerUseCase(repos.TxManager, repos.Balances, repos.Transactions, repos.Outbox, opts.IDGen, opts.Metrics)
	balances := usecase.NewBalanceUseCase(ledger, opts.Metrics)
	accrual := usecase.NewAccrualUseCase(repos.TxManager, ledger, usecase.NewEntitlementCalculator(), repos.Variants,
		repos.Directory, repos.Audit, opts.IDGen, opts.Logger, opts.Metrics)
	engine := usecase.NewWorkflowEngine(repos.Workflows, repos.Directory, opts.Logger)

	requests := usecase.NewRequestUseCase(usecase.RequestUseCaseDeps{
		TxManager:   repos.TxManager,
		RequestRepo: repos.Requests,
		VariantRepo: repos.Variants,
		HolidayRepo: repos.Holidays,
		OutboxRepo:  repos.Outbox,
		AuditRepo:   repos.Audit,
		Directory:   repos.Directory,
		Ledger:      ledger,
		Balances:    balances,
		Accrual:     accrual,
		Engine:      engine,
		IDGen:       opts.IDGen,
		Retrier:     opts.Retrier,
		Logger:      opts.Logger,
		Metrics:     opts.Metrics,
	})

	if opts.Clock != nil {
		ledger.WithClock(opts.Clock)
		accrual.WithClock(opts.Clock)
		requests.WithClock(opts.Clock)
	}

	return &Services{
		Ledger:         ledger,
		Balances:       balances,
		Accrual:        accrual,
		Engine:         engine,
		Requests:       requests,
		Reconciliation: usecase.NewReconciliationUseCase(repos.Ledger, opts.Logger, opts.Metrics),
		Audit:          repos.Audit,
		Outbox:         repos.Outbox,
	}
}

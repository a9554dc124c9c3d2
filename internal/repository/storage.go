package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/AlekseyZapadovnikov/issue-tracker/conf"
	"github.com/AlekseyZapadovnikov/issue-tracker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Коды ошибок PostgreSQL, которые переводятся в доменные ошибки.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
)

// DBPool описывает минимальный интерфейс пула подключений к PostgreSQL.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Begin(ctx context.Context) (pgx.Tx, error)
	Close()
}

// Storage инкапсулирует пул подключений и предоставляет его репозиториям.
type Storage struct {
	pool DBPool
}

// NewStorage создаёт пул подключений к PostgreSQL и проверяет соединение.
func NewStorage(ctx context.Context, cfg *conf.DbConf) (*Storage, error) {
	pool, err := pgxpool.New(ctx, ConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	// Проверяем подключение.
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Storage{pool: pool}, nil
}

// ConnString собирает DSN PostgreSQL из конфигурации.
func ConnString(cfg *conf.DbConf) string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=disable",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.Name,
	)
}

// Close закрывает пул подключений, когда он больше не нужен.
func (s *Storage) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// withTx выполняет fn в транзакции и откатывает её при любой ошибке.
func (s *Storage) withTx(ctx context.Context, fn func(tx pgx.Tx) error) (err error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	committed := false
	defer func() {
		if !committed {
			if rollbackErr := tx.Rollback(ctx); rollbackErr != nil && !errors.Is(rollbackErr, pgx.ErrTxClosed) {
				err = errors.Join(err, fmt.Errorf("rollback tx: %w", rollbackErr))
			}
		}
	}()

	if err := fn(tx); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	committed = true
	return nil
}

// translate переводит нарушения ограничений PostgreSQL в доменные ошибки.
func translate(err error, what string) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgForeignKeyViolation:
			return domain.NewConflictError(fmt.Sprintf("%s references missing entity (%s)", what, pgErr.ConstraintName))
		case pgUniqueViolation:
			return domain.NewConflictError(fmt.Sprintf("%s already exists (%s)", what, pgErr.ConstraintName))
		}
	}
	return err
}

// notFoundOnNoRows превращает pgx.ErrNoRows в доменную ошибку отсутствия ресурса.
func notFoundOnNoRows(err error, resource string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.NewNotFoundError(resource)
	}
	return err
}

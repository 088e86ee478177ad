// Package repository содержит хранилища состояния сессий панели продаж.
package repository

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/mmeshcher/sales-dashboard/internal/model"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// ErrSessionNotFound возвращается, если сохранённой сессии нет.
var ErrSessionNotFound = errors.New("session not found")

// PostgresRepository хранит состояние сессий в PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создаёт новый репозиторий и инициализирует схему БД через миграции.
func NewPostgresRepository(dsn string) (*PostgresRepository, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	r := &PostgresRepository{pool: pool}

	if err := r.runMigrations(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return r, nil
}

func (r *PostgresRepository) runMigrations(ctx context.Context) error {
	db := stdlib.OpenDBFromPool(r.pool)
	defer db.Close()

	goose.SetBaseFS(migrationsFS)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}

var retryDelays = []time.Duration{1 * time.Second, 3 * time.Second, 5 * time.Second}

func withRetry(ctx context.Context, delays []time.Duration, fn func() error) error {
	var err error
	for i := 0; i <= len(delays); i++ {
		err = fn()
		if err == nil {
			return nil
		}

		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}

		if !isRetryable(err) || i == len(delays) {
			break
		}

		timer := time.NewTimer(delays[i])
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return err
}

func isRetryable(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgerrcode.SerializationFailure || pgErr.Code == pgerrcode.DeadlockDetected
	}
	return isConnectionError(err)
}

func isConnectionError(err error) bool {
	return strings.Contains(err.Error(), "connection refused") ||
		strings.Contains(err.Error(), "broken pipe") ||
		strings.Contains(err.Error(), "connection reset by peer")
}

// Close закрывает пул соединений с БД.
func (r *PostgresRepository) Close() error {
	r.pool.Close()
	return nil
}

// LoadSession возвращает сохранённое состояние сессии.
func (r *PostgresRepository) LoadSession(ctx context.Context, id string) (*model.PageState, error) {
	var raw []byte
	err := withRetry(ctx, retryDelays, func() error {
		return r.pool.QueryRow(ctx,
			`SELECT state FROM dashboard_sessions WHERE id = $1`,
			id,
		).Scan(&raw)
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("select session: %w", err)
	}

	var ps model.PageState
	if err := json.Unmarshal(raw, &ps); err != nil {
		return nil, fmt.Errorf("decode session state: %w", err)
	}

	return &ps, nil
}

// SaveSession сохраняет состояние сессии, перезаписывая предыдущее.
func (r *PostgresRepository) SaveSession(ctx context.Context, id string, ps model.PageState) error {
	raw, err := json.Marshal(ps)
	if err != nil {
		return fmt.Errorf("encode session state: %w", err)
	}

	err = withRetry(ctx, retryDelays, func() error {
		_, err := r.pool.Exec(ctx,
			`INSERT INTO dashboard_sessions (id, state, updated_at)
			 VALUES ($1, $2, NOW())
			 ON CONFLICT (id) DO UPDATE SET state = EXCLUDED.state, updated_at = EXCLUDED.updated_at`,
			id, raw,
		)
		return err
	})
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}

	return nil
}

// DeleteSessionsBefore удаляет сессии, не обновлявшиеся с момента cutoff, и возвращает их количество.
func (r *PostgresRepository) DeleteSessionsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmdTag, err := r.pool.Exec(ctx,
		`DELETE FROM dashboard_sessions WHERE updated_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("delete sessions: %w", err)
	}
	return cmdTag.RowsAffected(), nil
}

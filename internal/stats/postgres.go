package stats

import (
	"context"
	"fmt"
	"net/url"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/plausch-chat/plausch/internal/config"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS usermessagestats (
    username      TEXT PRIMARY KEY,
    message_count BIGINT NOT NULL
)`

// Postgres implements Store on a pgx connection pool.
type Postgres struct {
	pool *pgxpool.Pool
}

// Connect creates a connection pool for the statistics database and verifies
// it is reachable.
func Connect(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(BuildConnString(cfg))
	if err != nil {
		return nil, fmt.Errorf("parse connection string: %w", err)
	}

	poolCfg.MinConns = int32(cfg.MinConns)
	poolCfg.MaxConns = int32(cfg.MaxConns)

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return pool, nil
}

// BuildConnString builds a PostgreSQL connection string from config.
func BuildConnString(cfg config.DatabaseConfig) string {
	// URL-encode password to handle special characters
	escapedPassword := url.QueryEscape(cfg.Password)

	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		cfg.User,
		escapedPassword,
		cfg.Host,
		cfg.Port,
		cfg.Name,
		cfg.SSLMode,
	)
}

// NewPostgres creates a Postgres store over pool and ensures the counter
// table exists.
func NewPostgres(ctx context.Context, pool *pgxpool.Pool) (*Postgres, error) {
	if _, err := pool.Exec(ctx, schemaSQL); err != nil {
		return nil, fmt.Errorf("ensure statistics table: %w", err)
	}
	return &Postgres{pool: pool}, nil
}

// RecordMessage increments username's counter, creating the row on first use.
func (p *Postgres) RecordMessage(ctx context.Context, username string) error {
	_, err := p.pool.Exec(ctx, `
		INSERT INTO usermessagestats (username, message_count)
		VALUES ($1, 1)
		ON CONFLICT (username)
		DO UPDATE SET message_count = usermessagestats.message_count + 1`,
		username,
	)
	if err != nil {
		return fmt.Errorf("record message for %q: %w", username, err)
	}
	return nil
}

// Summary loads all counters and renders the statistics text.
func (p *Postgres) Summary(ctx context.Context) (string, error) {
	rows, err := p.pool.Query(ctx, `SELECT username, message_count FROM usermessagestats`)
	if err != nil {
		return "", fmt.Errorf("load statistics: %w", err)
	}
	defer rows.Close()

	var counts []UserCount
	for rows.Next() {
		var c UserCount
		if err := rows.Scan(&c.Username, &c.Messages); err != nil {
			return "", fmt.Errorf("scan statistics row: %w", err)
		}
		counts = append(counts, c)
	}
	if err := rows.Err(); err != nil {
		return "", fmt.Errorf("read statistics: %w", err)
	}

	return RenderSummary(counts), nil
}

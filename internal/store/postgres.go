package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// Postgres guarda os blobs na tabela kv_state (key, value jsonb)
type Postgres struct{ db *sql.DB }

func NewPostgres(db *sql.DB) *Postgres { return &Postgres{db: db} }

// EnsureSchema cria a tabela kv_state se ainda não existir
func (p *Postgres) EnsureSchema(ctx context.Context) error {
	_, err := p.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS kv_state (
		  key        TEXT PRIMARY KEY,
		  value      JSONB NOT NULL,
		  updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return fmt.Errorf("create kv_state: %w", err)
	}
	return nil
}

func (p *Postgres) Load(ctx context.Context, key string, dst any) error {
	var b []byte
	err := p.db.QueryRowContext(ctx, `SELECT value FROM kv_state WHERE key=$1`, key).Scan(&b)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return decode(key, b, dst)
}

// Save sobrescreve o blob inteiro com ON CONFLICT
func (p *Postgres) Save(ctx context.Context, key string, v any) error {
	b, err := encode(key, v)
	if err != nil {
		return err
	}
	_, err = p.db.ExecContext(ctx, `
		INSERT INTO kv_state (key, value, updated_at) VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		key, b)
	return err
}

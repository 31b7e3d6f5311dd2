// Package store define a porta de persistência chave-valor usada pelos serviços.
// Cada chave guarda um blob JSON sobrescrito por inteiro a cada mutação.
package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
)

// Chaves fixas dos blobs persistidos
const (
	KeyWalletState = "wallet_state"
	KeyPlacedBets  = "placed_bets"
)

// ErrNotFound indica que a chave ainda não foi gravada
var ErrNotFound = errors.New("store: key not found")

// Store carrega e grava valores serializados em JSON por chave
type Store interface {
	Load(ctx context.Context, key string, dst any) error
	Save(ctx context.Context, key string, v any) error
}

// Memory é um Store em memória, útil em testes e no modo sem persistência
type Memory struct {
	mu    sync.RWMutex
	data  map[string][]byte
	saves int
}

func NewMemory() *Memory { return &Memory{data: make(map[string][]byte)} }

func (m *Memory) Load(_ context.Context, key string, dst any) error {
	m.mu.RLock()
	b, ok := m.data[key]
	m.mu.RUnlock()
	if !ok {
		return ErrNotFound
	}
	return decode(key, b, dst)
}

func (m *Memory) Save(_ context.Context, key string, v any) error {
	b, err := encode(key, v)
	if err != nil {
		return err
	}
	m.mu.Lock()
	m.data[key] = b
	m.saves++
	m.mu.Unlock()
	return nil
}

// Saves retorna quantas gravações já foram feitas
func (m *Memory) Saves() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.saves
}

func encode(key string, v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", key, err)
	}
	return b, nil
}

func decode(key string, b []byte, dst any) error {
	if len(b) == 0 {
		return ErrNotFound
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

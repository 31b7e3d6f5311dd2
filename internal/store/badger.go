package store

import (
	"context"
	"errors"
	"strings"

	badger "github.com/dgraph-io/badger/v4"
)

// Badger é um Store embutido em disco, sem dependência de servidor externo
type Badger struct {
	db *badger.DB
}

// OpenBadger abre (ou cria) o banco em path
func OpenBadger(path string) (*Badger, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("store: badger path is required")
	}
	db, err := badger.Open(badger.DefaultOptions(path).WithLogger(nil))
	if err != nil {
		return nil, err
	}
	return &Badger{db: db}, nil
}

func (b *Badger) Close() error {
	if b == nil || b.db == nil {
		return nil
	}
	return b.db.Close()
}

func (b *Badger) Load(_ context.Context, key string, dst any) error {
	var raw []byte
	err := b.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		raw, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return decode(key, raw, dst)
}

func (b *Badger) Save(_ context.Context, key string, v any) error {
	raw, err := encode(key, v)
	if err != nil {
		return err
	}
	return b.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), raw)
	})
}

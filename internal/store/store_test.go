package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type blob struct {
	Balance string   `json:"balance"`
	Items   []string `json:"items"`
}

func exercise(t *testing.T, s Store) {
	t.Helper()
	ctx := context.Background()

	var got blob
	require.ErrorIs(t, s.Load(ctx, KeyWalletState, &got), ErrNotFound)

	require.NoError(t, s.Save(ctx, KeyWalletState, blob{Balance: "10", Items: []string{"a"}}))
	require.NoError(t, s.Save(ctx, KeyWalletState, blob{Balance: "7.5", Items: []string{"a", "b"}}))

	require.NoError(t, s.Load(ctx, KeyWalletState, &got))
	assert.Equal(t, blob{Balance: "7.5", Items: []string{"a", "b"}}, got)
}

func TestMemory(t *testing.T) {
	m := NewMemory()
	exercise(t, m)
	assert.Equal(t, 2, m.Saves())
}

func TestFile(t *testing.T) {
	dir := t.TempDir()
	exercise(t, NewFile(dir))

	_, err := os.Stat(filepath.Join(dir, KeyWalletState+".json"))
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, KeyWalletState+".json.tmp"))
	assert.True(t, os.IsNotExist(err))
}

func TestFileSanitizesKey(t *testing.T) {
	f := NewFile("/tmp/x")
	assert.Equal(t, filepath.Join("/tmp/x", "a_b_c.json"), f.path("a/b:c"))
}

func TestFileEmptyBlobIsNotFound(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "empty.json"), nil, 0o644))

	var got blob
	assert.ErrorIs(t, NewFile(dir).Load(context.Background(), "empty", &got), ErrNotFound)
}

func TestBadger(t *testing.T) {
	b, err := OpenBadger(t.TempDir())
	require.NoError(t, err)
	defer b.Close()

	exercise(t, b)
}

func TestOpenBadgerRequiresPath(t *testing.T) {
	_, err := OpenBadger("  ")
	assert.Error(t, err)
}

package store

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"sync"
)

var keySanitizer = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)

// File grava cada chave como um arquivo JSON em Dir
// A escrita usa arquivo temporário + rename para não deixar blob pela metade
type File struct {
	Dir string
	mu  sync.Mutex
}

func NewFile(dir string) *File { return &File{Dir: dir} }

func (f *File) path(key string) string {
	return filepath.Join(f.Dir, keySanitizer.ReplaceAllString(key, "_")+".json")
}

func (f *File) Load(_ context.Context, key string, dst any) error {
	b, err := os.ReadFile(f.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return err
	}
	return decode(key, b, dst)
}

func (f *File) Save(_ context.Context, key string, v any) error {
	b, err := encode(key, v)
	if err != nil {
		return err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return err
	}
	path := f.path(key)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

package main

import (
	"crypto/sha256"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// CompletionCache stores successful completions on disk so a unit whose
// artifacts failed to write is not billed twice. A nil cache is a no-op.
type CompletionCache struct {
	dir string
}

// NewCompletionCache returns nil when dir is empty (caching disabled)
func NewCompletionCache(dir string) *CompletionCache {
	if dir == "" {
		return nil
	}
	return &CompletionCache{dir: dir}
}

// Key hashes everything that influences a completion.
func (c *CompletionCache) Key(parts ...string) string {
	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%x", h.Sum(nil))
}

// Get returns the cached completion for key, if any
func (c *CompletionCache) Get(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	content, err := os.ReadFile(c.path(key))
	if err != nil {
		return "", false
	}
	return string(content), true
}

// Put stores text under key
func (c *CompletionCache) Put(key, text string) error {
	if c == nil {
		return nil
	}
	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return errors.Wrap(err, "creating cache directory")
	}
	if err := os.WriteFile(c.path(key), []byte(text), 0644); err != nil {
		return errors.Wrap(err, "writing cache entry")
	}
	return nil
}

func (c *CompletionCache) path(key string) string {
	return filepath.Join(c.dir, key+".md")
}

package cache

import (
	"context"
	"time"
)

// Entry is a compiled stylesheet together with what it was compiled from.
type Entry struct {
	Path       string    `json:"path"`
	CSS        string    `json:"css"`
	Includes   []string  `json:"includes"`
	Digest     string    `json:"digest"`
	CompiledAt time.Time `json:"compiled_at"`
}

// Store defines the interface for all compiled-CSS backends
type Store interface {
	// Get retrieves an entry; a missing key yields ErrCacheMiss
	Get(ctx context.Context, key string) (*Entry, error)

	// Set stores an entry
	Set(ctx context.Context, key string, e *Entry) error

	// Delete removes an entry
	Delete(ctx context.Context, key string) error

	// Clear removes every entry
	Clear(ctx context.Context) error
}

// Config holds common configuration for store backends
type Config struct {
	// TTL is how long entries live; zero keeps them until evicted
	TTL time.Duration
	// Prefix is prepended to all keys of shared backends
	Prefix string
}

// DefaultConfig returns a default store configuration
func DefaultConfig() Config {
	return Config{
		TTL:    24 * time.Hour,
		Prefix: "gosass:",
	}
}

// ErrCacheMiss is returned when a key is not found in the store
type ErrCacheMiss struct {
	Key string
}

func (e ErrCacheMiss) Error() string {
	return "cache miss: " + e.Key
}

// IsCacheMiss checks if an error is a cache miss
func IsCacheMiss(err error) bool {
	_, ok := err.(ErrCacheMiss)
	return ok
}

func (e *Entry) clone() *Entry {
	c := *e
	c.Includes = append([]string(nil), e.Includes...)
	return &c
}

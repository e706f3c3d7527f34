package doctors

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/mediplus/clinic-platform/pkg/logging"
)

// Embedder turns free text into an embedding vector.
type Embedder interface {
	EmbedText(ctx context.Context, text string) ([]float32, error)
}

// Lister is the slice of the store the directory reads. *Store
// implements it.
type Lister interface {
	List(ctx context.Context) ([]Doctor, error)
}

// Profile is one directory entry: a doctor plus the embedding of their
// match text.
type Profile struct {
	Doctor Doctor
	Vector []float32
}

// Directory is the in-memory doctor index the matcher searches. It owns
// its state: built from Postgres via Refresh, swapped atomically, and
// re-embedded on every refresh so keyword edits take effect without a
// restart.
type Directory struct {
	store    Lister
	embedder Embedder
	logger   *logging.Logger

	mu       sync.RWMutex
	profiles []Profile
}

// NewDirectory creates an empty directory. Call Refresh before serving
// matches.
func NewDirectory(store Lister, embedder Embedder, logger *logging.Logger) *Directory {
	if store == nil {
		panic("doctors: store required")
	}
	if embedder == nil {
		panic("doctors: embedder required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Directory{store: store, embedder: embedder, logger: logger}
}

// Refresh rebuilds the index from the store. The previous index keeps
// serving until the new one is fully built; a doctor whose embedding
// fails is skipped, not fatal.
func (d *Directory) Refresh(ctx context.Context) error {
	list, err := d.store.List(ctx)
	if err != nil {
		return fmt.Errorf("doctors: refresh directory: %w", err)
	}

	profiles := make([]Profile, 0, len(list))
	for _, doc := range list {
		text := doc.MatchText()
		if text == "" {
			continue
		}
		vec, err := d.embedder.EmbedText(ctx, text)
		if err != nil {
			d.logger.Error("doctor embedding failed", "error", err, "doctor_id", doc.ID)
			continue
		}
		profiles = append(profiles, Profile{Doctor: doc, Vector: vec})
	}

	d.mu.Lock()
	d.profiles = profiles
	d.mu.Unlock()

	d.logger.Info("doctor directory refreshed", "doctors", len(profiles))
	return nil
}

// Snapshot returns the current index. The slice must be treated as
// read-only.
func (d *Directory) Snapshot() []Profile {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.profiles
}

// Run refreshes the directory on the given interval until ctx is done.
// Meant to be started as a goroutine after the initial Refresh.
func (d *Directory) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := d.Refresh(ctx); err != nil {
				d.logger.Error("scheduled directory refresh failed", "error", err)
			}
		}
	}
}

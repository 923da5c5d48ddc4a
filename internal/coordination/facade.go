// Package coordination implements the Nerve Center: the single entry point
// every external surface (Tool Surface, HTTP API, CLI) calls to mutate or
// read coordination state. It holds a process-local exclusive mutex around
// every operation and delegates persistence to a store.Store, never
// branching on which concrete Store is active.
package coordination

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/spf13/afero"

	"github.com/nervecenter/nerve-center/internal/store"
)

// DefaultLockTTL is the bounded TTL propose_file_access and
// reclaim_stale_locks use when the caller doesn't override it.
const DefaultLockTTL = 30 * time.Minute

// Facade is the Nerve Center. Every exported method acquires mu before
// touching the Store, computes, and releases it before returning — the
// component order SPEC_FULL.md §4.1 describes. Cross-process safety is the
// Store implementation's responsibility, not this mutex's.
type Facade struct {
	mu     sync.Mutex
	store  store.Store
	logger *slog.Logger

	// fs backs get_project_soul's reads from instructionsDir, so tests can
	// substitute afero.NewMemMapFs() instead of touching the real disk.
	fs              afero.Fs
	instructionsDir string
	lockTTL         time.Duration
	embedder        Embedder

	// notepadCache is a read-through cache of each project's notepad text,
	// invalidated on every append and rebuilt lazily on read, mirroring the
	// teacher's cursor-based digesting applied to raw text instead of an
	// event table.
	notepadCacheMu sync.Mutex
	notepadCache   map[string]string

	// subscribers backs the HTTP API's GET /v1/notepad/stream: a read
	// mirror, never authoritative. Each append is fanned out best-effort —
	// a slow or absent reader never blocks the Store write it shadows.
	subMu       sync.Mutex
	subscribers map[string][]chan string
}

// New constructs a Facade over st. instructionsDir points at the on-disk
// directory get_project_soul reads from; an empty string disables it (the
// operation degrades to placeholders). fs is the filesystem instructionsDir
// is resolved against — afero.NewOsFs() in production, afero.NewMemMapFs()
// in tests; a nil fs defaults to afero.NewOsFs().
func New(st store.Store, logger *slog.Logger, instructionsDir string, fs afero.Fs) *Facade {
	if logger == nil {
		logger = slog.Default()
	}
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Facade{
		store:           st,
		logger:          logger,
		fs:              fs,
		instructionsDir: instructionsDir,
		lockTTL:         DefaultLockTTL,
		notepadCache:    make(map[string]string),
		subscribers:     make(map[string][]chan string),
	}
}

// SetLockTTL overrides the default lock TTL, primarily for tests that need
// to exercise TTL reclamation without sleeping 30 minutes.
func (f *Facade) SetLockTTL(ttl time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lockTTL = ttl
}

func (f *Facade) invalidateNotepadCache(projectID string) {
	f.notepadCacheMu.Lock()
	delete(f.notepadCache, projectID)
	f.notepadCacheMu.Unlock()
}

// appendNotepadLocked appends line to projectID's notepad via the Store and
// invalidates the local cache. Called with f.mu already held.
func (f *Facade) appendNotepadLocked(ctx context.Context, projectID, line string) error {
	if err := f.store.AppendNotepad(ctx, projectID, line); err != nil {
		return err
	}
	f.invalidateNotepadCache(projectID)
	f.broadcastNotepad(projectID, line)
	return nil
}

// SubscribeNotepad registers a channel that receives every subsequent
// notepad append for projectID. The returned cancel func must be called
// when the subscriber disconnects, or the channel leaks; it also closes the
// channel. The channel is buffered and never blocked on when full — a slow
// websocket reader drops lines rather than stalling the facade mutex.
func (f *Facade) SubscribeNotepad(projectID string) (ch <-chan string, cancel func()) {
	c := make(chan string, 16)
	f.subMu.Lock()
	f.subscribers[projectID] = append(f.subscribers[projectID], c)
	f.subMu.Unlock()

	cancelled := false
	return c, func() {
		f.subMu.Lock()
		defer f.subMu.Unlock()
		if cancelled {
			return
		}
		cancelled = true
		subs := f.subscribers[projectID]
		for i, sub := range subs {
			if sub == c {
				f.subscribers[projectID] = append(subs[:i], subs[i+1:]...)
				break
			}
		}
		close(c)
	}
}

func (f *Facade) broadcastNotepad(projectID, line string) {
	f.subMu.Lock()
	defer f.subMu.Unlock()
	for _, c := range f.subscribers[projectID] {
		select {
		case c <- line:
		default:
			// Reader isn't keeping up; drop rather than block the mutex.
		}
	}
}

// Close releases the underlying Store's resources.
func (f *Facade) Close() error {
	return f.store.Close()
}

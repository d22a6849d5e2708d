package cloudsync

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"lifecoach/internal/logging"
	"lifecoach/internal/state"
	"lifecoach/internal/types"
)

// DefaultDebounce is how long state changes must stay quiet before an
// automatic upload fires.
const DefaultDebounce = 3 * time.Second

// Status is a point-in-time view of the engine for the sync status UI.
type Status struct {
	InFlight        bool
	PendingDownload bool
	LastUploadAt    time.Time
	LastShape       *ArchiveShape
}

// Engine drives cloud backup: a debounced silent uploader hooked to state
// commits, and explicit user-initiated upload/download with an in-flight
// guard. Downloads never auto-apply; they wait for Confirm.
type Engine struct {
	store *state.Store
	cloud types.CloudStore
	deb   *Debouncer

	mu           sync.Mutex
	inFlight     bool
	lastShape    *ArchiveShape
	lastUploadAt time.Time
	pending      *types.AppState
}

// NewEngine builds an engine over the store and a cloud backend.
func NewEngine(store *state.Store, cloud types.CloudStore) *Engine {
	e := &Engine{store: store, cloud: cloud}
	e.deb = NewDebouncer(DefaultDebounce, e.autoUpload)
	return e
}

// Start hooks the engine to state commits. Every commit restarts the
// trailing debounce window.
func (e *Engine) Start() {
	e.store.OnCommit(e.deb.Call)
}

// Stop cancels any pending automatic upload.
func (e *Engine) Stop() {
	e.deb.Stop()
}

// autoUpload is the silent background path: errors are logged, never
// surfaced, and no user feedback is produced.
func (e *Engine) autoUpload() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	if err := e.upload(ctx); err != nil {
		logging.SyncWarn("auto upload failed: %v", err)
	}
}

// Upload is the user-initiated push. The in-flight guard rejects a second
// concurrent request instead of queueing it.
func (e *Engine) Upload(ctx context.Context) error {
	if !e.begin() {
		return fmt.Errorf("a sync is already in progress")
	}
	defer e.end()
	return e.upload(ctx)
}

func (e *Engine) upload(ctx context.Context) error {
	st := e.store.Read()
	core, archive := SplitChunks(st)
	shape := ShapeOf(st)

	coreData, err := marshalChunk(core)
	if err != nil {
		return err
	}

	e.mu.Lock()
	archiveChanged := e.lastShape == nil || *e.lastShape != shape
	e.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return e.cloud.Upsert(gctx, KeyCore, coreData)
	})
	if archiveChanged {
		archiveData, err := marshalChunk(archive)
		if err != nil {
			return err
		}
		g.Go(func() error {
			return e.cloud.Upsert(gctx, KeyArchive, archiveData)
		})
	}
	if err := g.Wait(); err != nil {
		return fmt.Errorf("upload: %w", err)
	}

	e.mu.Lock()
	e.lastShape = &shape
	e.lastUploadAt = time.Now()
	e.mu.Unlock()
	if archiveChanged {
		logging.Sync("uploaded core+archive chunks")
	} else {
		logging.Sync("uploaded core chunk (archive unchanged)")
	}
	return nil
}

// Download fetches the cloud snapshot and holds it pending confirmation.
// Returns false when no backup exists, which is a normal outcome.
func (e *Engine) Download(ctx context.Context) (bool, error) {
	if !e.begin() {
		return false, fmt.Errorf("a sync is already in progress")
	}
	defer e.end()

	coreData, coreFound, err := e.cloud.Get(ctx, KeyCore)
	if err != nil {
		return false, fmt.Errorf("download core: %w", err)
	}

	var snap types.AppState
	switch {
	case coreFound:
		var core CoreChunk
		if err := json.Unmarshal(coreData, &core); err != nil {
			return false, fmt.Errorf("parse core chunk: %w", err)
		}
		var archive ArchiveChunk
		archiveData, archiveFound, err := e.cloud.Get(ctx, KeyArchive)
		if err != nil {
			return false, fmt.Errorf("download archive: %w", err)
		}
		if archiveFound {
			if err := json.Unmarshal(archiveData, &archive); err != nil {
				return false, fmt.Errorf("parse archive chunk: %w", err)
			}
		}
		snap = MergeChunks(core, archive)

	default:
		// Pre-split backups wrote one monolithic snapshot.
		legacyData, legacyFound, err := e.cloud.Get(ctx, KeyLegacy)
		if err != nil {
			return false, fmt.Errorf("download legacy backup: %w", err)
		}
		if !legacyFound {
			logging.Sync("no cloud backup found")
			return false, nil
		}
		if err := json.Unmarshal(legacyData, &snap); err != nil {
			return false, fmt.Errorf("parse legacy backup: %w", err)
		}
		logging.Sync("restored from legacy monolithic backup format")
	}

	e.mu.Lock()
	e.pending = &snap
	e.mu.Unlock()
	logging.Sync("download complete, awaiting confirmation")
	return true, nil
}

// Pending returns the downloaded snapshot awaiting confirmation, or nil.
func (e *Engine) Pending() *types.AppState {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.pending == nil {
		return nil
	}
	snap := e.pending.Clone()
	return &snap
}

// Confirm applies the pending snapshot as a full overwrite of local state.
func (e *Engine) Confirm() error {
	e.mu.Lock()
	snap := e.pending
	e.pending = nil
	e.mu.Unlock()
	if snap == nil {
		return fmt.Errorf("no pending download to confirm")
	}
	e.store.Replace(*snap)
	logging.Sync("pending download applied")
	return nil
}

// Cancel discards the pending snapshot.
func (e *Engine) Cancel() {
	e.mu.Lock()
	e.pending = nil
	e.mu.Unlock()
	logging.Sync("pending download discarded")
}

// Status reports the engine's current view.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Status{
		InFlight:        e.inFlight,
		PendingDownload: e.pending != nil,
		LastUploadAt:    e.lastUploadAt,
		LastShape:       e.lastShape,
	}
}

func (e *Engine) begin() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inFlight {
		return false
	}
	e.inFlight = true
	return true
}

func (e *Engine) end() {
	e.mu.Lock()
	e.inFlight = false
	e.mu.Unlock()
}

package attendance

import (
	"context"
	"sync"
	"time"
)

// SyncState is the sync controller's lifecycle state.
type SyncState int

const (
	// SyncIdle - the stored document matches the in-memory one.
	SyncIdle SyncState = iota
	// SyncPending - mutations are waiting on the debounce timer.
	SyncPending
	// SyncFailed - the last save failed; the in-memory document is
	// intact and no retry is scheduled.
	SyncFailed
)

func (s SyncState) String() string {
	switch s {
	case SyncPending:
		return "pending"
	case SyncFailed:
		return "failed"
	default:
		return "idle"
	}
}

type (
	// SaveFunc pushes a document snapshot to the repository.
	SaveFunc func(ctx context.Context, doc Document) error

	// Mirror keeps a best-effort local snapshot of the last known
	// document. It is only ever read when a network load fails.
	Mirror interface {
		WriteSnapshot(doc Document) error
		ReadSnapshot() (Document, bool, error)
	}

	// SyncController debounces document saves: every mutation restarts
	// a single trailing timer, and only its expiry persists the final
	// state. A failed save is reported once and never retried
	// automatically; an explicit Flush bypasses the timer. Overlapping
	// saves are not deduplicated - saves are whole-document replaces,
	// so the last write to complete wins.
	SyncController struct {
		source   func() Document
		save     SaveFunc
		mirror   Mirror
		delay    time.Duration
		onResult func(error)

		mu    sync.Mutex
		timer *time.Timer
		state SyncState
	}

	// SyncOption tweaks a SyncController at construction.
	SyncOption func(*SyncController)
)

// WithMirror attaches a local mirror, written on every save attempt.
func WithMirror(m Mirror) SyncOption {
	return func(c *SyncController) { c.mirror = m }
}

// WithResultFunc registers a callback invoked after every save attempt
// with its outcome.
func WithResultFunc(fn func(error)) SyncOption {
	return func(c *SyncController) { c.onResult = fn }
}

// NewSyncController builds a controller around a document source and a
// save func. source is called at save time so the snapshot always
// carries the latest state.
func NewSyncController(source func() Document, save SaveFunc, delay time.Duration, opts ...SyncOption) *SyncController {
	c := &SyncController{
		source: source,
		save:   save,
		delay:  delay,
		state:  SyncIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NotifyChange signals a document mutation: the controller moves to
// SyncPending and the debounce timer is (re)started. Trailing edge
// only - the first mutation never triggers an immediate save.
func (c *SyncController) NotifyChange() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.state = SyncPending
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() {
		_ = c.doSave(context.Background())
	})
}

// Flush saves immediately, bypassing any running timer.
func (c *SyncController) Flush(ctx context.Context) error {
	c.mu.Lock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
	c.mu.Unlock()

	return c.doSave(ctx)
}

// Stop cancels any pending save without persisting.
func (c *SyncController) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

// State reports the current sync state.
func (c *SyncController) State() SyncState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *SyncController) doSave(ctx context.Context) error {
	doc := c.source()

	err := c.save(ctx, doc)
	if c.mirror != nil {
		// keep the local snapshot current whether the push worked or not
		_ = c.mirror.WriteSnapshot(doc)
	}

	c.mu.Lock()
	if err != nil {
		c.state = SyncFailed
	} else {
		c.state = SyncIdle
	}
	c.mu.Unlock()

	if c.onResult != nil {
		c.onResult(err)
	}
	return err
}

package attendance

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
)

type saveRecorder struct {
	mu    sync.Mutex
	calls []Document
	err   error
}

func (r *saveRecorder) save(ctx context.Context, doc Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, doc)
	return r.err
}

func (r *saveRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *saveRecorder) last() Document {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.calls[len(r.calls)-1]
}

type memMirror struct {
	mu     sync.Mutex
	doc    Document
	writes int
}

func (m *memMirror) WriteSnapshot(doc Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.doc = doc
	m.writes++
	return nil
}

func (m *memMirror) ReadSnapshot() (Document, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.doc, m.writes > 0, nil
}

func TestSyncController_debounceSingleSave(t *testing.T) {
	doc := NewDocument()
	rec := &saveRecorder{}
	ctl := NewSyncController(func() Document { return doc.Clone() }, rec.save, 50*time.Millisecond)
	defer ctl.Stop()

	// two rapid mutations within the window coalesce into one save
	doc.AddNames("Alice")
	ctl.NotifyChange()
	doc.AddNames("Bob")
	ctl.NotifyChange()

	if got := ctl.State(); got != SyncPending {
		t.Errorf("State() = %v, want %v", got, SyncPending)
	}
	if n := rec.count(); n != 0 {
		t.Errorf("saved %d times before the window elapsed", n)
	}

	time.Sleep(150 * time.Millisecond)

	if n := rec.count(); n != 1 {
		t.Fatalf("saved %d times, want exactly 1", n)
	}
	// the snapshot carries the final state, both mutations included
	if saved := rec.last(); len(saved.Roster) != 2 {
		t.Errorf("saved roster = %v, want both names", saved.Roster)
	}
	if got := ctl.State(); got != SyncIdle {
		t.Errorf("State() = %v, want %v", got, SyncIdle)
	}
}

func TestSyncController_notifyRestartsTimer(t *testing.T) {
	doc := NewDocument()
	rec := &saveRecorder{}
	ctl := NewSyncController(func() Document { return doc.Clone() }, rec.save, 80*time.Millisecond)
	defer ctl.Stop()

	ctl.NotifyChange()
	time.Sleep(50 * time.Millisecond)
	ctl.NotifyChange() // restarts the window
	time.Sleep(50 * time.Millisecond)

	// 100ms in, but the second notify pushed expiry to 130ms
	if n := rec.count(); n != 0 {
		t.Errorf("saved %d times before the restarted window elapsed", n)
	}

	time.Sleep(80 * time.Millisecond)
	if n := rec.count(); n != 1 {
		t.Errorf("saved %d times, want exactly 1", n)
	}
}

func TestSyncController_flushBypassesTimer(t *testing.T) {
	doc := NewDocument()
	doc.AddNames("Alice")
	rec := &saveRecorder{}
	ctl := NewSyncController(func() Document { return doc.Clone() }, rec.save, time.Hour)
	defer ctl.Stop()

	ctl.NotifyChange()
	if err := ctl.Flush(context.Background()); err != nil {
		t.Fatalf("Flush() failed: %v", err)
	}
	if n := rec.count(); n != 1 {
		t.Fatalf("saved %d times, want 1", n)
	}
	if got := ctl.State(); got != SyncIdle {
		t.Errorf("State() = %v, want %v", got, SyncIdle)
	}

	// the pending timer was cancelled; no second save follows
	time.Sleep(50 * time.Millisecond)
	if n := rec.count(); n != 1 {
		t.Errorf("saved %d times after flush, want still 1", n)
	}
}

func TestSyncController_failureNoRetry(t *testing.T) {
	doc := NewDocument()
	rec := &saveRecorder{err: errors.New("boom")}
	var (
		resMu   sync.Mutex
		results []error
	)
	ctl := NewSyncController(
		func() Document { return doc.Clone() },
		rec.save,
		20*time.Millisecond,
		WithResultFunc(func(err error) {
			resMu.Lock()
			results = append(results, err)
			resMu.Unlock()
		}),
	)
	defer ctl.Stop()

	ctl.NotifyChange()
	time.Sleep(100 * time.Millisecond)

	if n := rec.count(); n != 1 {
		t.Fatalf("saved %d times, want 1 (no automatic retry)", n)
	}
	if got := ctl.State(); got != SyncFailed {
		t.Errorf("State() = %v, want %v", got, SyncFailed)
	}
	resMu.Lock()
	if len(results) != 1 || results[0] == nil {
		t.Errorf("onResult calls = %v, want one failure", results)
	}
	resMu.Unlock()

	// a new mutation re-enters the normal cycle
	rec.err = nil
	ctl.NotifyChange()
	time.Sleep(100 * time.Millisecond)
	if got := ctl.State(); got != SyncIdle {
		t.Errorf("State() = %v, want %v after recovery", got, SyncIdle)
	}
}

func TestSyncController_mirrorWrittenOnEveryAttempt(t *testing.T) {
	doc := NewDocument()
	doc.AddNames("Alice")
	rec := &saveRecorder{err: errors.New("network down")}
	mir := &memMirror{}
	ctl := NewSyncController(
		func() Document { return doc.Clone() },
		rec.save,
		time.Hour,
		WithMirror(mir),
	)
	defer ctl.Stop()

	if err := ctl.Flush(context.Background()); err == nil {
		t.Fatal("Flush() should have surfaced the save error")
	}

	snap, ok, err := mir.ReadSnapshot()
	if err != nil {
		t.Fatalf("ReadSnapshot() failed: %v", err)
	}
	if !ok {
		t.Fatal("mirror was not written on a failed save")
	}
	if len(snap.Roster) != 1 || snap.Roster[0] != "Alice" {
		t.Errorf("mirror snapshot roster = %v", snap.Roster)
	}
}

func TestSyncController_stopCancelsPendingSave(t *testing.T) {
	doc := NewDocument()
	rec := &saveRecorder{}
	ctl := NewSyncController(func() Document { return doc.Clone() }, rec.save, 20*time.Millisecond)

	ctl.NotifyChange()
	ctl.Stop()
	time.Sleep(100 * time.Millisecond)

	if n := rec.count(); n != 0 {
		t.Errorf("saved %d times after Stop(), want 0", n)
	}
}

package binding

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/drummonds/pdfbridge/engine/pdfrenderer"
	"github.com/oklog/ulid/v2"
)

// Handle is the externally visible reference to an opened document. It is a
// fixed-width token resolved through the bridge's handle table, never an address.
type Handle ulid.ULID

// NullHandle refers to no document
var NullHandle Handle

// ParseHandle parses the string form of a handle
func ParseHandle(s string) (Handle, error) {
	id, err := ulid.Parse(s)
	if err != nil {
		return NullHandle, fmt.Errorf("%w: %v", ErrInvalidHandle, err)
	}
	return Handle(id), nil
}

func (h Handle) String() string { return ulid.ULID(h).String() }

// MarshalText encodes the handle as its ULID string
func (h Handle) MarshalText() ([]byte, error) { return ulid.ULID(h).MarshalText() }

// UnmarshalText decodes a handle from its ULID string
func (h *Handle) UnmarshalText(text []byte) error {
	parsed, err := ParseHandle(string(text))
	if err != nil {
		return err
	}
	*h = parsed
	return nil
}

// IsNull reports whether h is the null handle
func (h Handle) IsNull() bool { return h == NullHandle }

// entry is one slot of the handle table
type entry struct {
	mu       sync.Mutex // serializes engine calls on this document
	name     string
	doc      pdfrenderer.Document // nil when the open failed
	openErr  error
	pages    int
	file     *os.File // duplicated descriptor, nil for in-memory sources
	closed   atomic.Bool
	opened   time.Time
	lastUsed atomic.Int64
	owner    *Document
}

func (e *entry) touch() {
	e.lastUsed.Store(time.Now().UnixNano())
}

func (e *entry) idleSince() time.Time {
	return time.Unix(0, e.lastUsed.Load())
}

func (e *entry) valid() bool {
	return e.doc != nil && e.openErr == nil && !e.closed.Load()
}

// release closes the engine document and the descriptor exactly once
func (e *entry) release() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed.Swap(true) {
		return ErrHandleClosed
	}

	var errs []error
	if e.doc != nil {
		if err := e.doc.Close(); err != nil {
			errs = append(errs, fmt.Errorf("unable to close document: %w", err))
		}
	}
	if e.file != nil {
		if err := e.file.Close(); err != nil {
			errs = append(errs, fmt.Errorf("unable to close descriptor: %w", err))
		}
	}
	return errors.Join(errs...)
}

// handleTable is the indirection table from handles to live documents.
// Closed handles leave a tombstone so use-after-close is told apart from
// handles that never existed.
type handleTable struct {
	mu         sync.RWMutex
	entries    map[Handle]*entry
	tombstones map[Handle]time.Time
}

func newHandleTable() *handleTable {
	return &handleTable{
		entries:    make(map[Handle]*entry),
		tombstones: make(map[Handle]time.Time),
	}
}

func (t *handleTable) add(e *entry) Handle {
	h := Handle(ulid.Make())
	e.touch()
	t.mu.Lock()
	t.entries[h] = e
	t.mu.Unlock()
	return h
}

func (t *handleTable) get(h Handle) (*entry, error) {
	if h.IsNull() {
		return nil, ErrInvalidHandle
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	if e, ok := t.entries[h]; ok {
		e.touch()
		return e, nil
	}
	if _, ok := t.tombstones[h]; ok {
		return nil, ErrHandleClosed
	}
	return nil, ErrInvalidHandle
}

// remove takes h out of the table and releases its resources
func (t *handleTable) remove(h Handle) error {
	if h.IsNull() {
		return ErrInvalidHandle
	}
	t.mu.Lock()
	e, ok := t.entries[h]
	if !ok {
		_, closed := t.tombstones[h]
		t.mu.Unlock()
		if closed {
			return ErrHandleClosed
		}
		return ErrInvalidHandle
	}
	delete(t.entries, h)
	t.tombstones[h] = time.Now()
	t.mu.Unlock()
	return e.release()
}

func (t *handleTable) snapshot() map[Handle]*entry {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[Handle]*entry, len(t.entries))
	for h, e := range t.entries {
		out[h] = e
	}
	return out
}

// pruneTombstones forgets closed handles older than age
func (t *handleTable) pruneTombstones(age time.Duration) int {
	cutoff := time.Now().Add(-age)
	t.mu.Lock()
	defer t.mu.Unlock()
	pruned := 0
	for h, closedAt := range t.tombstones {
		if closedAt.Before(cutoff) {
			delete(t.tombstones, h)
			pruned++
		}
	}
	return pruned
}

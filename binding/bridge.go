// Package binding exposes a PDF engine's page geometry and page rasterization
// through document handles.
//
// A Bridge owns the engine and the handle table. Open returns a managed
// Document that carries its own render configuration; every render call reads
// that configuration at call time. Render calls on null, invalid or closed
// handles draw nothing and return nil.
package binding

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/drummonds/pdfbridge/engine/pdfrenderer"
	"golang.org/x/sys/unix"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

// PasswordPolicy decides what Open does with the owner and user passwords
type PasswordPolicy string

const (
	// PasswordIgnore accepts passwords but never hands them to the engine
	PasswordIgnore PasswordPolicy = "ignore"
	// PasswordForward tries the user password, then the owner password
	PasswordForward PasswordPolicy = "forward"
)

// EngineFactory builds the process-wide engine during Init
type EngineFactory func(cfg pdfrenderer.Config) (pdfrenderer.Engine, error)

// Options configures a Bridge
type Options struct {
	Engine         pdfrenderer.Config
	EngineFactory  EngineFactory // defaults to pdfrenderer.NewEngine
	PasswordPolicy PasswordPolicy
	DefaultConfig  RenderConfig // applied to every newly opened Document
	Journal        Journal
}

// Bridge owns the engine state and the table of live document handles
type Bridge struct {
	opts    Options
	journal Journal
	handles *handleTable

	once    sync.Once
	initErr error

	mu     sync.RWMutex
	engine pdfrenderer.Engine
	closed bool
}

// NewBridge creates a Bridge. Init must be called before documents are opened.
func NewBridge(opts Options) *Bridge {
	if opts.EngineFactory == nil {
		opts.EngineFactory = pdfrenderer.NewEngine
	}
	if opts.PasswordPolicy == "" {
		opts.PasswordPolicy = PasswordIgnore
	}
	if opts.DefaultConfig == (RenderConfig{}) {
		opts.DefaultConfig = DefaultRenderConfig()
	}
	journal := opts.Journal
	if journal == nil {
		journal = nopJournal{}
	}
	return &Bridge{
		opts:    opts,
		journal: journal,
		handles: newHandleTable(),
	}
}

// Init performs the one-time global setup of the PDF engine. It is safe to
// call repeatedly; every call returns the result of the first.
func (b *Bridge) Init(ctx context.Context) error {
	b.once.Do(func() {
		if err := ctx.Err(); err != nil {
			b.initErr = err
			return
		}
		engine, err := b.opts.EngineFactory(b.opts.Engine)
		if err != nil {
			b.initErr = fmt.Errorf("unable to initialize PDF engine: %w", err)
			Logger.Error("PDF engine initialization failed", "engine", b.opts.Engine.Name, "error", err)
			return
		}
		b.mu.Lock()
		b.engine = engine
		b.mu.Unlock()
		Logger.Info("PDF engine initialized", "engine", engine.Name(), "passwordPolicy", b.opts.PasswordPolicy)
	})
	return b.initErr
}

// EngineName returns the name of the initialized engine, empty before Init
func (b *Bridge) EngineName() string {
	engine, err := b.currentEngine()
	if err != nil {
		return ""
	}
	return engine.Name()
}

// PasswordPolicy reports how passwords given to Open are treated
func (b *Bridge) PasswordPolicy() PasswordPolicy {
	return b.opts.PasswordPolicy
}

func (b *Bridge) currentEngine() (pdfrenderer.Engine, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.engine == nil || b.closed {
		return nil, ErrNotInitialized
	}
	return b.engine, nil
}

// Open duplicates fd and opens the document it refers to. The duplicate
// belongs to the returned handle and the caller keeps ownership of fd. The
// stream is read positionally from offset 0, so several handles may be
// opened on one descriptor.
//
// Open always returns a Document. Failure is observable only through
// IsValid and OpenError.
func (b *Bridge) Open(ctx context.Context, fd uintptr, ownerPassword, userPassword string) *Document {
	return b.openDescriptor(ctx, fd, fmt.Sprintf("fd:%d", fd), ownerPassword, userPassword)
}

// OpenFile opens the document behind an already open file. The file stays owned by the caller.
func (b *Bridge) OpenFile(ctx context.Context, f *os.File, ownerPassword, userPassword string) *Document {
	return b.openDescriptor(ctx, f.Fd(), f.Name(), ownerPassword, userPassword)
}

func (b *Bridge) openDescriptor(ctx context.Context, fd uintptr, name, ownerPassword, userPassword string) *Document {
	dup, err := unix.Dup(int(fd))
	if err != nil {
		Logger.Warn("Open fd failed", "fd", fd, "error", err)
		return b.register(name, 0, nil, nil, fmt.Errorf("unable to duplicate descriptor %d: %w", fd, err))
	}
	file := os.NewFile(uintptr(dup), name)
	info, err := file.Stat()
	if err != nil {
		Logger.Warn("Stat fd failed", "fd", fd, "error", err)
		return b.register(name, 0, nil, file, fmt.Errorf("unable to stat descriptor %d: %w", fd, err))
	}
	return b.openSource(ctx, name, file, info.Size(), file, ownerPassword, userPassword)
}

// OpenBytes opens a document held in memory
func (b *Bridge) OpenBytes(ctx context.Context, name string, data []byte, ownerPassword, userPassword string) *Document {
	return b.openSource(ctx, name, bytes.NewReader(data), int64(len(data)), nil, ownerPassword, userPassword)
}

func (b *Bridge) openSource(ctx context.Context, name string, r io.ReaderAt, size int64, file *os.File, ownerPassword, userPassword string) *Document {
	engine, err := b.currentEngine()
	if err != nil {
		return b.register(name, size, nil, file, err)
	}

	var doc pdfrenderer.Document
	for _, password := range b.passwords(ownerPassword, userPassword) {
		doc, err = engine.Open(ctx, pdfrenderer.Source{
			Name:     name,
			Reader:   r,
			Size:     size,
			Password: password,
		})
		if err == nil {
			break
		}
	}
	if err != nil {
		Logger.Warn("Open failed", "name", name, "error", err)
		return b.register(name, size, nil, file, err)
	}
	return b.register(name, size, doc, file, nil)
}

// passwords lists the passwords to try, in order
func (b *Bridge) passwords(ownerPassword, userPassword string) []string {
	if b.opts.PasswordPolicy != PasswordForward {
		return []string{""}
	}
	var out []string
	if userPassword != "" {
		out = append(out, userPassword)
	}
	if ownerPassword != "" && ownerPassword != userPassword {
		out = append(out, ownerPassword)
	}
	if len(out) == 0 {
		out = append(out, "")
	}
	return out
}

// register stores a handle for the opened (or failed) document
func (b *Bridge) register(name string, size int64, doc pdfrenderer.Document, file *os.File, openErr error) *Document {
	e := &entry{
		name:    name,
		doc:     doc,
		openErr: openErr,
		file:    file,
		opened:  time.Now(),
	}
	if doc != nil {
		pages, err := doc.PageCount()
		if err != nil {
			Logger.Warn("Document failed validity check", "name", name, "error", err)
			e.openErr = fmt.Errorf("validity check failed: %w", err)
		}
		e.pages = pages
	}

	h := b.handles.add(e)
	owner := &Document{bridge: b, handle: h, config: b.opts.DefaultConfig}
	e.owner = owner

	ev := OpenEvent{
		Handle:   h,
		Name:     name,
		Size:     size,
		Pages:    e.pages,
		Valid:    e.valid(),
		OpenedAt: e.opened,
	}
	if e.openErr != nil {
		ev.OpenErr = e.openErr.Error()
	}
	if err := b.journal.RecordOpen(ev); err != nil {
		Logger.Warn("Unable to journal open", "handle", h, "error", err)
	}
	Logger.Debug("Registered document handle", "handle", h, "name", name, "valid", ev.Valid, "pages", e.pages)
	return owner
}

// Lookup returns the managed Document for a handle
func (b *Bridge) Lookup(h Handle) (*Document, error) {
	e, err := b.handles.get(h)
	if err != nil {
		return nil, err
	}
	return e.owner, nil
}

// resolve returns the live entry behind h
func (b *Bridge) resolve(h Handle) (*entry, error) {
	if _, err := b.currentEngine(); err != nil {
		return nil, err
	}
	return b.handles.get(h)
}

// release closes a handle exactly once
func (b *Bridge) release(h Handle) error {
	err := b.handles.remove(h)
	if errors.Is(err, ErrHandleClosed) || errors.Is(err, ErrInvalidHandle) {
		return err
	}
	if jerr := b.journal.RecordClose(h, time.Now()); jerr != nil {
		Logger.Warn("Unable to journal close", "handle", h, "error", jerr)
	}
	Logger.Debug("Released document handle", "handle", h)
	return err
}

// HandleInfo summarizes a live handle
type HandleInfo struct {
	Handle   Handle    `json:"handle"`
	Name     string    `json:"name"`
	Valid    bool      `json:"valid"`
	Pages    int       `json:"pages"`
	OpenedAt time.Time `json:"openedAt"`
	LastUsed time.Time `json:"lastUsed"`
}

// Handles lists the live handles
func (b *Bridge) Handles() []HandleInfo {
	var out []HandleInfo
	for h, e := range b.handles.snapshot() {
		out = append(out, HandleInfo{
			Handle:   h,
			Name:     e.name,
			Valid:    e.valid(),
			Pages:    e.pages,
			OpenedAt: e.opened,
			LastUsed: e.idleSince(),
		})
	}
	return out
}

// CloseIdle closes every handle not used for longer than maxIdle and returns how many were closed
func (b *Bridge) CloseIdle(maxIdle time.Duration) int {
	cutoff := time.Now().Add(-maxIdle)
	closed := 0
	for h, e := range b.handles.snapshot() {
		if e.idleSince().After(cutoff) {
			continue
		}
		if err := b.release(h); err != nil && !errors.Is(err, ErrHandleClosed) {
			Logger.Warn("Error closing idle handle", "handle", h, "error", err)
		}
		closed++
	}
	// tombstones only need to outlive any caller still holding the handle
	b.handles.pruneTombstones(24 * time.Hour)
	return closed
}

// Close releases every live handle and tears down the engine. The bridge cannot be reused.
func (b *Bridge) Close() error {
	var errs []error
	for h := range b.handles.snapshot() {
		if err := b.release(h); err != nil && !errors.Is(err, ErrHandleClosed) {
			errs = append(errs, err)
		}
	}

	b.mu.Lock()
	engine := b.engine
	b.engine = nil
	b.closed = true
	b.mu.Unlock()

	if engine != nil {
		if err := engine.Close(); err != nil {
			errs = append(errs, fmt.Errorf("unable to close PDF engine: %w", err))
		}
	}
	return errors.Join(errs...)
}

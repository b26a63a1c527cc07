package binding

import (
	"time"
)

// RenderOp names the render entry point that was called
type RenderOp string

const (
	OpPage   RenderOp = "page"
	OpRange  RenderOp = "range"
	OpRegion RenderOp = "region"
)

// RenderStatus is the outcome of a render call
type RenderStatus string

const (
	RenderCompleted RenderStatus = "completed"
	RenderFailed    RenderStatus = "failed"
	RenderSkipped   RenderStatus = "skipped" // null, invalid or closed handle
)

// OpenEvent describes a handle that was just registered
type OpenEvent struct {
	Handle   Handle
	Name     string
	Size     int64
	Pages    int
	Valid    bool
	OpenErr  string
	OpenedAt time.Time
}

// RenderEvent describes one call to a render entry point
type RenderEvent struct {
	Handle    Handle
	Op        RenderOp
	FirstPage int
	LastPage  int
	Region    string // "x,y,w,h" for region renders
	Config    RenderConfig
	Status    RenderStatus
	Err       string
	Duration  time.Duration
	StartedAt time.Time
}

// Journal receives lifecycle and render events. Implementations must be safe
// for concurrent use; errors are logged and never affect the call.
type Journal interface {
	RecordOpen(ev OpenEvent) error
	RecordClose(h Handle, closedAt time.Time) error
	RecordRender(ev RenderEvent) error
}

type nopJournal struct{}

func (nopJournal) RecordOpen(OpenEvent) error { return nil }
func (nopJournal) RecordClose(Handle, time.Time) error { return nil }
func (nopJournal) RecordRender(RenderEvent) error { return nil }

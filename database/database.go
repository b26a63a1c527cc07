package database

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/drummonds/pdfbridge/binding"
	"github.com/oklog/ulid/v2"
)

// Logger is global since we will need it everywhere
var Logger = slog.Default()

// Session is the journal record of one document handle
type Session struct {
	Handle    string     `json:"handle"`
	Name      string     `json:"name"`
	Size      int64      `json:"size"`
	Pages     int        `json:"pages"`
	Valid     bool       `json:"valid"`
	OpenError string     `json:"openError,omitempty"`
	Renders   int        `json:"renders"` // completed renders
	OpenedAt  time.Time  `json:"openedAt"`
	ClosedAt  *time.Time `json:"closedAt,omitempty"`
}

// Render is the journal record of one render call
type Render struct {
	ID          ulid.ULID `json:"id"`
	Handle      string    `json:"handle"`
	Op          string    `json:"op"`
	FirstPage   int       `json:"firstPage"`
	LastPage    int       `json:"lastPage"`
	Region      string    `json:"region,omitempty"`
	HDPI        float64   `json:"hdpi"`
	VDPI        float64   `json:"vdpi"`
	Rotate      int       `json:"rotate"`
	UseMediaBox bool      `json:"useMediaBox"`
	Crop        bool      `json:"crop"`
	Status      string    `json:"status"`
	Error       string    `json:"error,omitempty"`
	DurationMs  int64     `json:"durationMs"`
	StartedAt   time.Time `json:"startedAt"`
}

// Repository stores the session journal. It receives events from the
// binding and answers queries from the HTTP bridge.
type Repository interface {
	binding.Journal
	Close() error
	Ping(ctx context.Context) error
	GetSession(handle string) (*Session, error)
	GetRecentSessions(limit, offset int) ([]Session, error)
	GetRendersForSession(handle string, limit int) ([]Render, error)
	DeleteOldSessions(olderThan time.Duration) (int, error)
}

// NopRepository keeps no journal. Used when DATABASE_TYPE is none.
type NopRepository struct{}

func (NopRepository) RecordOpen(binding.OpenEvent) error { return nil }
func (NopRepository) RecordClose(binding.Handle, time.Time) error { return nil }
func (NopRepository) RecordRender(binding.RenderEvent) error { return nil }
func (NopRepository) Close() error { return nil }
func (NopRepository) Ping(context.Context) error { return nil }
func (NopRepository) GetSession(string) (*Session, error) { return nil, sql.ErrNoRows }
func (NopRepository) GetRecentSessions(int, int) ([]Session, error) { return []Session{}, nil }
func (NopRepository) GetRendersForSession(string, int) ([]Render, error) { return []Render{}, nil }
func (NopRepository) DeleteOldSessions(time.Duration) (int, error) { return 0, nil }

package database

import (
	"time"

	"github.com/drummonds/pdfbridge/binding"
	"github.com/oklog/ulid/v2"
	"github.com/uptrace/bun"
)

// BunSession represents the sessions table for Bun ORM
type BunSession struct {
	bun.BaseModel `bun:"table:sessions,alias:s"`

	Handle    string     `bun:"handle,pk"` // ULID as string
	Name      string     `bun:"name,notnull"`
	Size      int64      `bun:"size,notnull"`
	Pages     int        `bun:"pages,notnull"`
	Valid     bool       `bun:"valid,notnull"`
	OpenError string     `bun:"open_error,nullzero"`
	Renders   int        `bun:"renders,notnull"`
	OpenedAt  time.Time  `bun:"opened_at,notnull"`
	ClosedAt  *time.Time `bun:"closed_at,nullzero"`
}

// ToSession converts BunSession to Session
func (bs *BunSession) ToSession() *Session {
	return &Session{
		Handle:    bs.Handle,
		Name:      bs.Name,
		Size:      bs.Size,
		Pages:     bs.Pages,
		Valid:     bs.Valid,
		OpenError: bs.OpenError,
		Renders:   bs.Renders,
		OpenedAt:  bs.OpenedAt,
		ClosedAt:  bs.ClosedAt,
	}
}

// FromOpenEvent converts a binding open event to BunSession
func FromOpenEvent(ev binding.OpenEvent) *BunSession {
	return &BunSession{
		Handle:    ev.Handle.String(),
		Name:      ev.Name,
		Size:      ev.Size,
		Pages:     ev.Pages,
		Valid:     ev.Valid,
		OpenError: ev.OpenErr,
		OpenedAt:  ev.OpenedAt,
	}
}

// BunRender represents the renders table for Bun ORM
type BunRender struct {
	bun.BaseModel `bun:"table:renders,alias:r"`

	ID          string    `bun:"id,pk"` // ULID as string
	Handle      string    `bun:"handle,notnull"`
	Op          string    `bun:"op,notnull"`
	FirstPage   int       `bun:"first_page,notnull"`
	LastPage    int       `bun:"last_page,notnull"`
	Region      string    `bun:"region,nullzero"`
	HDPI        float64   `bun:"hdpi,notnull"`
	VDPI        float64   `bun:"vdpi,notnull"`
	Rotate      int       `bun:"rotate,notnull"`
	UseMediaBox bool      `bun:"use_media_box,notnull"`
	Crop        bool      `bun:"crop,notnull"`
	Status      string    `bun:"status,notnull"`
	Error       string    `bun:"error,nullzero"`
	DurationMs  int64     `bun:"duration_ms,notnull"`
	StartedAt   time.Time `bun:"started_at,notnull"`
}

// ToRender converts BunRender to Render
func (br *BunRender) ToRender() (*Render, error) {
	parsedULID, err := ulid.Parse(br.ID)
	if err != nil {
		return nil, err
	}

	return &Render{
		ID:          parsedULID,
		Handle:      br.Handle,
		Op:          br.Op,
		FirstPage:   br.FirstPage,
		LastPage:    br.LastPage,
		Region:      br.Region,
		HDPI:        br.HDPI,
		VDPI:        br.VDPI,
		Rotate:      br.Rotate,
		UseMediaBox: br.UseMediaBox,
		Crop:        br.Crop,
		Status:      br.Status,
		Error:       br.Error,
		DurationMs:  br.DurationMs,
		StartedAt:   br.StartedAt,
	}, nil
}

// FromRenderEvent converts a binding render event to BunRender with a fresh ID
func FromRenderEvent(ev binding.RenderEvent) *BunRender {
	return &BunRender{
		ID:          ulid.Make().String(),
		Handle:      ev.Handle.String(),
		Op:          string(ev.Op),
		FirstPage:   ev.FirstPage,
		LastPage:    ev.LastPage,
		Region:      ev.Region,
		HDPI:        ev.Config.HDPI,
		VDPI:        ev.Config.VDPI,
		Rotate:      ev.Config.Rotate,
		UseMediaBox: ev.Config.UseMediaBox,
		Crop:        ev.Config.Crop,
		Status:      string(ev.Status),
		Error:       ev.Err,
		DurationMs:  ev.Duration.Milliseconds(),
		StartedAt:   ev.StartedAt,
	}
}

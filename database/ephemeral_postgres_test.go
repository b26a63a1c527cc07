package database

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/drummonds/pdfbridge/binding"
	"github.com/oklog/ulid/v2"
)

func TestEphemeralPostgresJournal(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping ephemeral PostgreSQL test in short mode")
	}
	Logger = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	repo, err := newEphemeralRepository(ctx)
	if err != nil {
		// postgrestest needs initdb and postgres on PATH
		t.Skipf("Ephemeral postgres unavailable: %v", err)
	}
	defer repo.Close()

	t.Log("Ephemeral database setup successfully!")

	handle := binding.Handle(ulid.Make())
	if err := repo.RecordOpen(binding.OpenEvent{Handle: handle, Name: "pg.pdf", Pages: 2, Valid: true, OpenedAt: time.Now()}); err != nil {
		t.Fatalf("Failed to record open: %v", err)
	}
	if err := repo.RecordRender(binding.RenderEvent{Handle: handle, Op: binding.OpPage, Status: binding.RenderCompleted, Config: binding.DefaultRenderConfig(), StartedAt: time.Now()}); err != nil {
		t.Fatalf("Failed to record render: %v", err)
	}
	if err := repo.RecordClose(handle, time.Now()); err != nil {
		t.Fatalf("Failed to record close: %v", err)
	}

	session, err := repo.GetSession(handle.String())
	if err != nil {
		t.Fatalf("Failed to get session: %v", err)
	}
	if session.Renders != 1 || session.ClosedAt == nil {
		t.Fatalf("Unexpected session: %+v", session)
	}

	if err := repo.Ping(ctx); err != nil {
		t.Fatalf("Failed to ping: %v", err)
	}
	t.Log("Successfully journaled a session in the ephemeral database!")
}

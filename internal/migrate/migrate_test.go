package migrate

import (
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGooseLogger_Printf(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.InfoLevel)
	l := gooseLogger{s: zap.New(core).Sugar()}
	l.Printf("OK   %s (%d)", "00001_create_my_books.sql", 12)

	entries := logs.All()
	if len(entries) != 1 || entries[0].Message != "OK   00001_create_my_books.sql (12)" {
		t.Fatalf("unexpected entries: %+v", entries)
	}
}

func TestPrepare_CollectsEmbeddedMigrations(t *testing.T) {
	t.Cleanup(func() { goose.SetBaseFS(nil) })

	if err := prepare(zap.NewNop()); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	ms, err := goose.CollectMigrations(".", 0, goose.MaxVersion)
	if err != nil {
		t.Fatalf("CollectMigrations: %v", err)
	}
	if len(ms) != 1 {
		t.Fatalf("want 1 migration, got %d", len(ms))
	}
	if ms[0].Version != 1 || !strings.HasSuffix(ms[0].Source, "00001_create_my_books.sql") {
		t.Fatalf("unexpected migration: version=%d source=%s", ms[0].Version, ms[0].Source)
	}
}

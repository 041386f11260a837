package database

import (
	"context"
	"database/sql"
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/pressly/goose/v3"
	"go.uber.org/zap/zaptest"

	"github.com/danielolamide0/WurldMarket-sub001/internal/infra/database/migrations"
)

func TestEmbeddedMigrationsAreGooseAnnotated(t *testing.T) {
	files, err := fs.Glob(migrations.FS, "*.sql")
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(files) == 0 {
		t.Fatal("expected embedded migrations")
	}

	for _, name := range files {
		body, err := fs.ReadFile(migrations.FS, name)
		if err != nil {
			t.Fatalf("read %s: %v", name, err)
		}
		text := string(body)
		if !strings.Contains(text, "-- +goose Up") || !strings.Contains(text, "-- +goose Down") {
			t.Fatalf("migration %s missing goose annotations", name)
		}
	}
}

func TestRunMigrationsUsesEmbeddedRoot(t *testing.T) {
	original := gooseUpContext
	t.Cleanup(func() { gooseUpContext = original })

	var gotDir string
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		gotDir = dir
		return nil
	}

	if err := runMigrations(context.Background(), nil, zaptest.NewLogger(t)); err != nil {
		t.Fatalf("runMigrations returned error: %v", err)
	}
	if gotDir != "." {
		t.Fatalf("expected migrations from embed root, got %q", gotDir)
	}
}

func TestRunMigrationsWrapsFailure(t *testing.T) {
	original := gooseUpContext
	t.Cleanup(func() { gooseUpContext = original })

	boom := errors.New("boom")
	gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
		return boom
	}

	err := runMigrations(context.Background(), nil, zaptest.NewLogger(t))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped goose error, got %v", err)
	}
}

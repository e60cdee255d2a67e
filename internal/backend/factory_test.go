package backend

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"

	"mealplan/internal/config"
	"mealplan/internal/core"
)

func quietFactory() Factory {
	return NewFactory(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"sqlite", Config{Type: SQLiteBackend, SQLiteDBPath: "plan.db"}, ""},
		{"sqlite without path", Config{Type: SQLiteBackend}, "database path is required"},
		{"unknown", Config{Type: "sheets"}, "invalid backend type"},
		{"memory with amqp", Config{Type: MemoryBackend, AMQPURL: "amqp://x"}, "require the sqlite backend"},
		{"amqp without queue", Config{Type: SQLiteBackend, SQLiteDBPath: "p", AMQPURL: "amqp://x", AMQPExchange: "e"}, "exchange and queue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestFromAppConfig(t *testing.T) {
	cfg, err := FromAppConfig(&config.Config{DataBackend: "sqlite", SQLiteDBPath: "x.db", WeekStartsOn: "monday"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if cfg.Type != SQLiteBackend || cfg.SQLiteDBPath != "x.db" || cfg.WeekStartsOn != core.WeekStartsMonday {
		t.Errorf("unexpected config %+v", cfg)
	}
	if _, err := FromAppConfig(&config.Config{DataBackend: "postgres"}); err == nil {
		t.Errorf("expected error for unknown backend")
	}
	if _, err := FromAppConfig(nil); err == nil {
		t.Errorf("expected error for nil config")
	}
}

func TestCreateMemoryBackendWithSample(t *testing.T) {
	ctx := context.Background()
	res, err := quietFactory().CreateBackend(ctx, Config{Type: MemoryBackend, SeedSample: true})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	defer res.Cleanup()

	meals, err := res.Store.ListMeals(ctx)
	if err != nil || len(meals) != 7 {
		t.Fatalf("expected 7 sample meals, got %d (%v)", len(meals), err)
	}
	if res.Publisher != nil {
		t.Errorf("memory backend must not publish")
	}
}

func TestCreateSQLiteBackend(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "plan.db")
	res, err := quietFactory().CreateBackend(ctx, Config{Type: SQLiteBackend, SQLiteDBPath: path})
	if err != nil {
		t.Fatalf("CreateBackend: %v", err)
	}
	if rev, err := res.Store.Revision(ctx); err != nil || rev != 0 {
		t.Fatalf("Revision = %d, %v", rev, err)
	}
	if err := res.Cleanup(); err != nil {
		t.Fatalf("Cleanup: %v", err)
	}
}

func TestGetBackendTypeStrings(t *testing.T) {
	got := GetBackendTypeStrings()
	if len(got) != 2 || got[0] != "sqlite" || got[1] != "memory" {
		t.Errorf("GetBackendTypeStrings() = %v", got)
	}
}

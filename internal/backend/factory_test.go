package backend

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"taxiledger/internal/config"
	"taxiledger/internal/ledger/memory"
	"taxiledger/internal/storage"
)

func TestFromAppConfig(t *testing.T) {
	if _, err := FromAppConfig(nil); err == nil {
		t.Error("expected error for nil config")
	}
	_, err := FromAppConfig(&config.Config{DataBackend: "sheets"})
	if err == nil {
		t.Fatal("expected error for unknown backend")
	}
	if !strings.Contains(err.Error(), "valid: sqlite, memory") {
		t.Errorf("error should list the backend types, got %v", err)
	}
	got, err := FromAppConfig(&config.Config{DataBackend: "memory", DataFile: "ledger.json", AMQPQueue: "q"})
	if err != nil {
		t.Fatalf("FromAppConfig: %v", err)
	}
	if got.Type != MemoryBackend || got.DataFile != "ledger.json" || got.AMQPQueue != "q" {
		t.Errorf("unexpected backend config %+v", got)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr string
	}{
		{"memory", Config{Type: MemoryBackend}, ""},
		{"sqlite with path", Config{Type: SQLiteBackend, SQLiteDBPath: "ledger.db"}, ""},
		{"sqlite without path", Config{Type: SQLiteBackend}, "path is required"},
		{"unknown", Config{Type: "postgres"}, "valid: sqlite, memory"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestCreateBackend(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	tests := []struct {
		name    string
		config  Config
		wantErr bool
		check   func(t *testing.T, r *BackendResult)
	}{
		{
			name:   "memory without file",
			config: Config{Type: MemoryBackend},
			check: func(t *testing.T, r *BackendResult) {
				if _, ok := r.Store.(*memory.Store); !ok {
					t.Errorf("store type %T", r.Store)
				}
			},
		},
		{
			name:   "memory with file",
			config: Config{Type: MemoryBackend, DataFile: filepath.Join(dir, "ledger.json")},
		},
		{
			name:   "sqlite",
			config: Config{Type: SQLiteBackend, SQLiteDBPath: filepath.Join(dir, "db", "ledger.db")},
			check: func(t *testing.T, r *BackendResult) {
				if _, ok := r.Store.(*storage.SQLiteRepository); !ok {
					t.Errorf("store type %T", r.Store)
				}
			},
		},
		{name: "sqlite without path", config: Config{Type: SQLiteBackend}, wantErr: true},
		{name: "unknown type", config: Config{Type: "sheets"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := NewFactory(nil).CreateBackend(ctx, tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CreateBackend() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if r.Events != nil {
				t.Error("no AMQP URL should leave Events nil")
			}
			if tt.check != nil {
				tt.check(t, r)
			}
			if err := r.Cleanup(); err != nil {
				t.Errorf("Cleanup: %v", err)
			}
		})
	}
}

package store_test

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/tailored-agentic-units/agentbook/store"
)

func TestNew_DefaultDriverIsFile(t *testing.T) {
	cfg := store.DefaultConfig()
	if cfg.Driver != store.DriverFile {
		t.Errorf("Driver = %q, want %q", cfg.Driver, store.DriverFile)
	}

	s, err := store.New(&cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s == nil {
		t.Fatal("New() returned nil store")
	}
}

func TestNew_SQLiteDriver(t *testing.T) {
	cfg := store.Config{Driver: store.DriverSQLite, Path: filepath.Join(t.TempDir(), "a.db")}
	s, err := store.New(&cfg)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if s == nil {
		t.Fatal("New() returned nil store")
	}
}

func TestNew_UnknownDriver(t *testing.T) {
	cfg := store.Config{Driver: "etcd"}
	if _, err := store.New(&cfg); !errors.Is(err, store.ErrUnknownDriver) {
		t.Errorf("New() error = %v, want ErrUnknownDriver", err)
	}
}

func TestConfig_Merge(t *testing.T) {
	cfg := store.DefaultConfig()
	cfg.Merge(&store.Config{Driver: store.DriverRedis, URL: "redis://localhost:6379", Prefix: "x:"})

	if cfg.Driver != store.DriverRedis {
		t.Errorf("Driver = %q, want redis", cfg.Driver)
	}
	if cfg.Path != "state" {
		t.Errorf("Path = %q, merge must not clear unset fields", cfg.Path)
	}
	if cfg.URL != "redis://localhost:6379" || cfg.Prefix != "x:" {
		t.Errorf("URL/Prefix not merged: %+v", cfg)
	}
}

package config

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

func resetSingleton() {
	once = sync.Once{}
	instance = nil
}

func TestLoadConfigCreatesDefaults(t *testing.T) {
	resetSingleton()
	path := filepath.Join(t.TempDir(), "config.json")
	cfg := LoadConfig(path)
	if *cfg != Default() {
		t.Fatalf("got %+v, want defaults", *cfg)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not written: %v", err)
	}
	if got := GetConfigValue("blocksize").(int); got != 20 {
		t.Errorf("blocksize = %d", got)
	}
	if got := Snapshot().TickInterval(); got != 100*time.Millisecond {
		t.Errorf("tick interval = %v", got)
	}
}

func TestReload(t *testing.T) {
	resetSingleton()
	path := filepath.Join(t.TempDir(), "config.json")
	LoadConfig(path)

	if err := os.WriteFile(path, []byte(`{"width": 20, "height": 10}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Reload(path); err != nil {
		t.Fatalf("Reload: %v", err)
	}
	got := Snapshot()
	if got.Width != 20 || got.Height != 10 || got.TickMs != 100 {
		t.Fatalf("got %+v", got)
	}

	if err := os.WriteFile(path, []byte(`{"width": 1}`), 0644); err != nil {
		t.Fatal(err)
	}
	if err := Reload(path); err == nil {
		t.Fatal("invalid board accepted")
	}
	if Snapshot().Width != 20 {
		t.Fatalf("failed reload changed width to %d", Snapshot().Width)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		desc   string
		modify func(*AppConfig)
	}{
		{"tiny board", func(c *AppConfig) { c.Width = 1 }},
		{"zero tick", func(c *AppConfig) { c.TickMs = 0 }},
		{"no growth", func(c *AppConfig) { c.Growth = 0 }},
		{"start outside", func(c *AppConfig) { c.StartX = c.Width }},
		{"zero block", func(c *AppConfig) { c.Blocksize = 0 }},
	}
	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			cfg := Default()
			tc.modify(&cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate accepted bad config")
			}
		})
	}
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults rejected: %v", err)
	}
}

func TestWatchReloadsOnWrite(t *testing.T) {
	resetSingleton()
	path := filepath.Join(t.TempDir(), "config.json")
	LoadConfig(path)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	changed := make(chan AppConfig, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, func(c AppConfig) {
			select {
			case changed <- c:
			default:
			}
		})
	}()

	// Give the watcher a moment to register the directory.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(path, []byte(`{"width": 24, "height": 16}`), 0644); err != nil {
		t.Fatal(err)
	}

	select {
	case c := <-changed:
		if c.Width != 24 || c.Height != 16 {
			t.Fatalf("got %+v", c)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("Watch: %v", err)
	}
}

package app

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func TestNewWithAddrRequiresAddress(t *testing.T) {
	if _, err := NewWithAddr("  "); err == nil {
		t.Fatal("expected error for empty address")
	}
}

func TestServerStopsOnContextCancel(t *testing.T) {
	t.Setenv("CHEESE_ISLAND_DB_PATH", filepath.Join(t.TempDir(), "engine.db"))

	server, err := NewWithAddr("127.0.0.1:0")
	if err != nil {
		t.Fatalf("new server: %v", err)
	}
	if server.Addr() != "127.0.0.1:0" {
		t.Fatalf("addr = %q, want 127.0.0.1:0", server.Addr())
	}

	ctx, cancel := context.WithCancel(context.Background())
	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.ListenAndServe(ctx)
	}()

	cancel()
	select {
	case err := <-serveErr:
		if err != nil {
			t.Fatalf("serve returned error: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not stop after context cancel")
	}
}

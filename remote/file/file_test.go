package file

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yacchi/kasane/format"
	"github.com/yacchi/kasane/layer"
	"github.com/yacchi/kasane/remote"
)

func TestNew(t *testing.T) {
	if _, err := New("config.ini"); err == nil {
		t.Error("New() should reject an unknown extension")
	}

	orig := userHomeDir
	t.Cleanup(func() { userHomeDir = orig })
	userHomeDir = func() (string, error) { return "/home/test", nil }

	f, err := New("~/app/remote.yaml")
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if f.Path() != filepath.Join("/home/test", "app/remote.yaml") {
		t.Errorf("Path() = %q", f.Path())
	}

	userHomeDir = func() (string, error) { return "", errors.New("no home") }
	if _, err := New("~/remote.yaml"); err == nil {
		t.Error("New() should fail when the home directory is unknown")
	}
}

func TestExpandTilde(t *testing.T) {
	orig := userHomeDir
	t.Cleanup(func() { userHomeDir = orig })
	userHomeDir = func() (string, error) { return "/home/test", nil }

	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"/abs/path", "/abs/path"},
		{"~", "/home/test"},
		{"~/a", filepath.Join("/home/test", "a")},
		{"~other/a", "~other/a"},
	}
	for _, tt := range tests {
		got, err := expandTilde(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("expandTilde(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
}

func TestFetcher_Fetch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remote.properties")
	f, err := New(path)
	if err != nil {
		t.Fatal(err)
	}

	bag, err := f.Fetch(context.Background())
	if err != nil || len(bag) != 0 {
		t.Fatalf("Fetch() of missing file = %v, %v; want empty bag", bag, err)
	}

	if err := os.WriteFile(path, []byte("a=1\nb.c=2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	bag, err = f.Fetch(context.Background())
	if err != nil {
		t.Fatalf("Fetch() error = %v", err)
	}
	if bag["a"] != "1" || bag["b.c"] != "2" {
		t.Errorf("Fetch() = %v", bag)
	}
}

func TestFetcher_FetchInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "remote.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := New(path)
	if err != nil {
		t.Fatal(err)
	}

	var invalid *format.InvalidSourceError
	if _, err := f.Fetch(context.Background()); !errors.As(err, &invalid) {
		t.Errorf("Fetch() error = %v, want InvalidSourceError", err)
	}
}

func TestFetcher_Watch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remote.yaml")
	f, err := New(path)
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	var notified atomic.Int32
	done := make(chan error, 1)
	go func() { done <- f.Watch(ctx, func() { notified.Add(1) }) }()

	// Events for other files in the directory are ignored; give the watcher
	// time to register before writing.
	time.Sleep(100 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "other.yaml"), []byte("x: 1"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("a: 1"), 0o600); err != nil {
		t.Fatal(err)
	}

	deadline := time.Now().Add(2 * time.Second)
	for notified.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if notified.Load() == 0 {
		t.Fatal("Watch did not notify after the file was written")
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Watch() error = %v, want context.Canceled", err)
	}
}

func TestFetcher_WithPoller(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "remote.toml")
	if err := os.WriteFile(path, []byte("a = 1\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	f, err := New(path)
	if err != nil {
		t.Fatal(err)
	}

	target := layer.NewSettable()
	p := remote.NewPoller("file", f, target, remote.WithInterval(time.Hour))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go p.Run(ctx)

	waitFor := func(key string, want any) {
		t.Helper()
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if v, ok := target.Lookup(key); ok && v == want {
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Fatalf("target never held %s=%v; snapshot = %v", key, want, target.Snapshot())
	}

	waitFor("a", int64(1))
	time.Sleep(100 * time.Millisecond) // let the watcher register

	if err := os.WriteFile(path, []byte("a = 2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	waitFor("a", int64(2))
}

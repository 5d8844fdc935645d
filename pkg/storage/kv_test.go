package storage

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// kvContract exercises the behaviour every backend must share.
func kvContract(t *testing.T, kv KV) {
	t.Helper()
	ctx := context.Background()

	if _, hit, err := kv.Get(ctx, "missing"); err != nil || hit {
		t.Fatalf("Get(missing) = hit %v, err %v", hit, err)
	}

	if err := kv.Set(ctx, "k", []byte("v1")); err != nil {
		t.Fatalf("Set error: %v", err)
	}
	data, hit, err := kv.Get(ctx, "k")
	if err != nil || !hit || string(data) != "v1" {
		t.Fatalf("Get = %q, %v, %v", data, hit, err)
	}

	if err := kv.Set(ctx, "k", []byte("v2")); err != nil {
		t.Fatalf("overwrite error: %v", err)
	}
	if data, _, _ := kv.Get(ctx, "k"); string(data) != "v2" {
		t.Errorf("after overwrite Get = %q", data)
	}

	if err := kv.Delete(ctx, "k"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
	if _, hit, _ := kv.Get(ctx, "k"); hit {
		t.Error("key should be gone after Delete")
	}
	if err := kv.Delete(ctx, "k"); err != nil {
		t.Errorf("Delete of missing key error: %v", err)
	}
}

func TestMemoryKV(t *testing.T) {
	kv := NewMemoryKV()
	kvContract(t, kv)

	// Returned slices are copies.
	ctx := context.Background()
	_ = kv.Set(ctx, "k", []byte("abc"))
	data, _, _ := kv.Get(ctx, "k")
	data[0] = 'x'
	if again, _, _ := kv.Get(ctx, "k"); string(again) != "abc" {
		t.Error("MemoryKV leaked internal buffer")
	}

	_ = kv.Close()
	if _, _, err := kv.Get(ctx, "k"); !errors.Is(err, ErrClosed) {
		t.Errorf("Get after Close err = %v, want ErrClosed", err)
	}
}

func TestNullKV(t *testing.T) {
	ctx := context.Background()
	kv := NewNullKV()
	defer kv.Close()

	if err := kv.Set(ctx, "k", []byte("v")); err != nil {
		t.Errorf("Set error: %v", err)
	}
	if _, hit, _ := kv.Get(ctx, "k"); hit {
		t.Error("NullKV should not store data")
	}
}

func TestFileKV(t *testing.T) {
	dir := t.TempDir()
	kv, err := NewFileKV(dir)
	if err != nil {
		t.Fatal(err)
	}
	kvContract(t, kv)

	t.Run("hashed layout", func(t *testing.T) {
		ctx := context.Background()
		if err := kv.Set(ctx, "mindmaps", []byte("{}")); err != nil {
			t.Fatal(err)
		}
		h := Hash([]byte("mindmaps"))
		if _, err := os.Stat(filepath.Join(dir, h[:2], h[2:]+".json")); err != nil {
			t.Errorf("expected hashed file: %v", err)
		}
	})

	t.Run("persists across instances", func(t *testing.T) {
		ctx := context.Background()
		_ = kv.Set(ctx, "clip", []byte(`{"label":"x"}`))
		other, _ := NewFileKV(dir)
		data, hit, err := other.Get(ctx, "clip")
		if err != nil || !hit || string(data) != `{"label":"x"}` {
			t.Errorf("Get = %q, %v, %v", data, hit, err)
		}
	})

	t.Run("corrupt file", func(t *testing.T) {
		ctx := context.Background()
		h := Hash([]byte("bad"))
		p := filepath.Join(dir, h[:2], h[2:]+".json")
		_ = os.MkdirAll(filepath.Dir(p), 0o755)
		_ = os.WriteFile(p, []byte("not json"), 0o644)
		if _, _, err := kv.Get(ctx, "bad"); err == nil {
			t.Error("corrupt entry should be an error")
		}
	})
}

func TestSQLiteKV(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "store.sqlite")
	kv, err := NewSQLiteKV(ctx, path)
	if err != nil {
		t.Fatalf("NewSQLiteKV: %v", err)
	}
	kvContract(t, kv)

	if err := kv.Set(ctx, "blob", []byte{0, 1, 2}); err != nil {
		t.Fatal(err)
	}
	_ = kv.Close()

	reopened, err := NewSQLiteKV(ctx, path)
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()
	data, hit, err := reopened.Get(ctx, "blob")
	if err != nil || !hit || !bytes.Equal(data, []byte{0, 1, 2}) {
		t.Errorf("Get after reopen = %v, %v, %v", data, hit, err)
	}
}

func TestHash(t *testing.T) {
	h1 := Hash([]byte("hello"))
	if h1 != Hash([]byte("hello")) {
		t.Error("Hash should be deterministic")
	}
	if h1 == Hash([]byte("world")) {
		t.Error("Different inputs should produce different hashes")
	}
	if len(h1) != 64 {
		t.Errorf("Hash length should be 64, got %d", len(h1))
	}
}

func TestRetryableError(t *testing.T) {
	if Retryable(nil) != nil {
		t.Error("Retryable(nil) should be nil")
	}
	base := errors.New("conn reset")
	err := Retryable(base)
	if !IsRetryable(err) {
		t.Error("IsRetryable should detect wrapped error")
	}
	if !errors.Is(err, base) {
		t.Error("Retryable should unwrap to the cause")
	}
	if IsRetryable(base) {
		t.Error("plain error is not retryable")
	}
}

func TestRetryWithBackoff(t *testing.T) {
	old := retryDelay
	retryDelay = time.Millisecond
	defer func() { retryDelay = old }()
	ctx := context.Background()

	t.Run("succeeds after transient failures", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			if calls < 3 {
				return Retryable(errors.New("timeout"))
			}
			return nil
		})
		if err != nil || calls != 3 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("permanent error stops", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return errors.New("bad request")
		})
		if err == nil || calls != 1 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})

	t.Run("gives up after three", func(t *testing.T) {
		calls := 0
		err := RetryWithBackoff(ctx, func() error {
			calls++
			return Retryable(errors.New("timeout"))
		})
		if err == nil || calls != 3 {
			t.Errorf("err = %v, calls = %d", err, calls)
		}
	})
}

// failingKV fails every call with err.
type failingKV struct {
	err   error
	calls int
}

func (f *failingKV) Get(context.Context, string) ([]byte, bool, error) {
	f.calls++
	return nil, false, f.err
}
func (f *failingKV) Set(context.Context, string, []byte) error { f.calls++; return f.err }
func (f *failingKV) Delete(context.Context, string) error      { f.calls++; return f.err }
func (f *failingKV) Close() error                              { return nil }

func TestBreakerKV(t *testing.T) {
	ctx := context.Background()
	inner := &failingKV{err: errors.New("connection refused")}
	cfg := DefaultBreakerConfig("test")
	cfg.Timeout = time.Hour
	b := NewBreakerKV(inner, cfg, nil)

	for i := 0; i < int(cfg.MinRequests); i++ {
		if err := b.Set(ctx, "k", nil); err == nil {
			t.Fatal("expected inner failure")
		}
	}
	if b.State() != "open" {
		t.Fatalf("State = %s, want open", b.State())
	}

	before := inner.calls
	if _, _, err := b.Get(ctx, "k"); err == nil {
		t.Error("open breaker should fail fast")
	}
	if inner.calls != before {
		t.Error("open breaker should not call the backend")
	}
}

func TestBreakerKVPassesThrough(t *testing.T) {
	b := NewBreakerKV(NewMemoryKV(), DefaultBreakerConfig("mem"), nil)
	kvContract(t, b)
	if b.State() != "closed" {
		t.Errorf("State = %s, want closed", b.State())
	}
}

func TestOpen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	for _, backend := range []string{BackendMemory, BackendFile, BackendSQLite, ""} {
		t.Run("backend "+backend, func(t *testing.T) {
			kv, err := Open(ctx, Options{Backend: backend, Dir: dir})
			if err != nil {
				t.Fatalf("Open(%q): %v", backend, err)
			}
			defer kv.Close()
			kvContract(t, kv)
		})
	}

	if _, err := Open(ctx, Options{Backend: "etcd"}); !errors.Is(err, ErrUnknownBackend) {
		t.Errorf("Open(etcd) err = %v, want ErrUnknownBackend", err)
	}
}

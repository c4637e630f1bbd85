package provider

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
)

func TestRotation_AdvancesOnSignalThenSucceeds(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var keysSeen []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		keysSeen = append(keysSeen, r.URL.Query().Get("apiKey"))
		n := len(keysSeen)
		mu.Unlock()

		// First key is unauthorized, second is rate-limited, third works.
		switch n {
		case 1:
			w.WriteHeader(http.StatusUnauthorized)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte(`{"ok":true}`))
		}
	}))
	defer srv.Close()

	client := newTestClient(t, Config{
		BaseURL: srv.URL,
		Keys:    []string{"k1", "k2", "k3"},
	}, nil)

	resp, err := client.getWithRotation(context.Background(), "/recipes/complexSearch", url.Values{})
	if err != nil {
		t.Fatalf("getWithRotation: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body, _ := io.ReadAll(resp.Body)
	if string(body) != `{"ok":true}` {
		t.Fatalf("unexpected payload: %s", body)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []string{"k1", "k2", "k3"}
	if len(keysSeen) != len(want) {
		t.Fatalf("expected %d attempts, got %d", len(want), len(keysSeen))
	}
	for i := range want {
		if keysSeen[i] != want[i] {
			t.Fatalf("attempt %d used key %q, want %q", i+1, keysSeen[i], want[i])
		}
	}

	// Success leaves the pool pointing at the key that worked.
	if idx := client.Keys().Index(); idx != 2 {
		t.Fatalf("expected pool index 2 after success on third key, got %d", idx)
	}
}

func TestRotation_PoolExhaustedReturnsSentinel(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	attempts := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		attempts++
		mu.Unlock()
		w.WriteHeader(http.StatusPaymentRequired)
	}))
	defer srv.Close()

	client := newTestClient(t, Config{
		BaseURL: srv.URL,
		Keys:    []string{"k1", "k2", "k3"},
	}, nil)

	_, err := client.getWithRotation(context.Background(), "/recipes/complexSearch", url.Values{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}

	mu.Lock()
	if attempts != 3 {
		t.Fatalf("retry budget is one full pass: expected 3 attempts, got %d", attempts)
	}
	mu.Unlock()

	// Index advanced by exactly len(pool), i.e. back where it started.
	if idx := client.Keys().Index(); idx != 0 {
		t.Fatalf("expected pool index back at 0 after full pass, got %d", idx)
	}
}

func TestRotation_NetworkErrorConsumesBudget(t *testing.T) {
	t.Parallel()

	// A server that is already closed produces connection errors.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	client := newTestClient(t, Config{
		BaseURL: srv.URL,
		Keys:    []string{"k1", "k2"},
	}, nil)

	_, err := client.getWithRotation(context.Background(), "/recipes/complexSearch", url.Values{})
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable after network failures, got %v", err)
	}
	if idx := client.Keys().Index(); idx != 0 {
		t.Fatalf("expected pool index wrapped to 0, got %d", idx)
	}
}

func TestRotation_CallerCancellationStopsRotation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(t, Config{
		BaseURL: srv.URL,
		Keys:    []string{"k1", "k2", "k3"},
	}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.getWithRotation(ctx, "/recipes/complexSearch", url.Values{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if idx := client.Keys().Index(); idx != 0 {
		t.Fatalf("cancelled call must not rotate, index moved to %d", idx)
	}
}

func TestKeyPool_CircularAdvance(t *testing.T) {
	t.Parallel()

	pool := NewKeyPool([]string{"a", "b"})

	if pool.Current() != "a" {
		t.Fatalf("expected first key, got %q", pool.Current())
	}
	pool.Advance()
	if pool.Current() != "b" {
		t.Fatalf("expected second key, got %q", pool.Current())
	}
	pool.Advance()
	if pool.Current() != "a" || pool.Index() != 0 {
		t.Fatalf("expected wrap-around to first key, got %q at %d", pool.Current(), pool.Index())
	}

	empty := NewKeyPool(nil)
	empty.Advance() // must not panic
	if empty.Current() != "" {
		t.Fatalf("empty pool must return blank key")
	}
}

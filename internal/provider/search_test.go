package provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Harshas66/smart-grocery-assistant/internal/cache"
	"github.com/Harshas66/smart-grocery-assistant/internal/recipe"
)

func TestSearch_OfflineModeServesCatalog(t *testing.T) {
	t.Parallel()

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer srv.Close()

	client := newTestClient(t, Config{
		BaseURL: srv.URL,
		Offline: true,
	}, nil)

	results, source := client.Search(context.Background(), SearchRequest{
		Ingredients: []string{"tomato"},
	})

	if source != SourceOffline {
		t.Fatalf("expected offline source, got %q", source)
	}
	if len(results) < 3 {
		t.Fatalf("expected at least 3 built-in recipes, got %d", len(results))
	}
	for _, r := range results {
		if r.Title == "" {
			t.Fatalf("built-in recipe %d has empty title", r.ID)
		}
	}
	if requests != 0 {
		t.Fatalf("offline mode must not touch the network, saw %d requests", requests)
	}
}

func TestSearch_FreshCacheHitSkipsNetwork(t *testing.T) {
	t.Parallel()

	var requests int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"results":[]}`))
	}))
	defer srv.Close()

	store := cache.NewMemoryStore()
	client := newTestClient(t, Config{
		BaseURL: srv.URL,
		Keys:    []string{"k1"},
	}, store)

	cached := []recipe.Summary{{ID: 42, Title: "Cached Stew"}}
	key := listKey([]string{"egg", "milk"}, "vegan", 10)
	seedListEntry(t, store, key, time.Hour, cached)

	results, source := client.Search(context.Background(), SearchRequest{
		Ingredients: []string{"Milk", "Egg"},
		Diet:        "Vegan",
	})

	if source != SourceCache {
		t.Fatalf("expected cache source, got %q", source)
	}
	if len(results) != 1 || results[0].ID != 42 {
		t.Fatalf("expected cached payload, got %+v", results)
	}
	if requests != 0 {
		t.Fatalf("fresh cache hit must not reach the provider, saw %d requests", requests)
	}
}

func TestSearch_StaleServedWhenUpstreamFails(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Rotate-signal on every key so the pool exhausts.
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	store := cache.NewMemoryStore()
	client := newTestClient(t, Config{
		BaseURL: srv.URL,
		Keys:    []string{"k1", "k2"},
	}, store)

	stale := []recipe.Summary{{ID: 7, Title: "Yesterday's Curry"}}
	key := listKey([]string{"rice"}, "none", 10)
	seedListEntry(t, store, key, 100*time.Hour, stale)

	results, source := client.Search(context.Background(), SearchRequest{
		Ingredients: []string{"rice"},
	})

	if source != SourceStale {
		t.Fatalf("expected stale source, got %q", source)
	}
	if len(results) != 1 || results[0].ID != 7 {
		t.Fatalf("expected stale payload, got %+v", results)
	}
}

func TestSearch_AllFailNoCacheFallsToOffline(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client := newTestClient(t, Config{
		BaseURL: srv.URL,
		Keys:    []string{"k1"},
	}, nil)

	results, source := client.Search(context.Background(), SearchRequest{
		Ingredients: []string{"dragonfruit"},
	})

	if source != SourceOffline {
		t.Fatalf("expected offline source, got %q", source)
	}
	if len(results) == 0 {
		t.Fatalf("offline catalog must never be empty")
	}
}

func TestSearch_PrimarySuccessIsCached(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	requests := 0

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		requests++
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"results":[{"id":101,"title":"Tomato Soup","readyInMinutes":25,"servings":2}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, Config{
		BaseURL: srv.URL,
		Keys:    []string{"k1"},
	}, nil)

	ctx := context.Background()
	req := SearchRequest{Ingredients: []string{"tomato"}, Number: 5}

	results, source := client.Search(ctx, req)
	if source != SourceLive {
		t.Fatalf("expected live source, got %q", source)
	}
	if len(results) != 1 || results[0].Title != "Tomato Soup" {
		t.Fatalf("unexpected live payload: %+v", results)
	}
	if results[0].ReadyInMinutes == nil || *results[0].ReadyInMinutes != 25 {
		t.Fatalf("expected readyInMinutes 25, got %+v", results[0].ReadyInMinutes)
	}

	// An identical query is now answered from the cache.
	results, source = client.Search(ctx, req)
	if source != SourceCache {
		t.Fatalf("expected cache source on repeat, got %q", source)
	}
	if len(results) != 1 || results[0].ID != 101 {
		t.Fatalf("cached payload diverged: %+v", results)
	}

	mu.Lock()
	defer mu.Unlock()
	if requests != 1 {
		t.Fatalf("expected a single upstream call, got %d", requests)
	}
}

func TestSearch_SecondaryStrategyCoversEmptyPrimary(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	paths := []string{}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		paths = append(paths, r.URL.Path)
		mu.Unlock()

		w.WriteHeader(http.StatusOK)
		switch r.URL.Path {
		case "/recipes/complexSearch":
			_, _ = w.Write([]byte(`{"results":[]}`))
		case "/recipes/findByIngredients":
			_, _ = w.Write([]byte(`[{"id":202,"title":"Bean Bowl","usedIngredientCount":2,"missedIngredientCount":1}]`))
		}
	}))
	defer srv.Close()

	client := newTestClient(t, Config{
		BaseURL: srv.URL,
		Keys:    []string{"k1"},
	}, nil)

	results, source := client.Search(context.Background(), SearchRequest{
		Ingredients: []string{"beans", "rice"},
	})

	if source != SourceLive {
		t.Fatalf("expected live source via secondary strategy, got %q", source)
	}
	if len(results) != 1 || results[0].ID != 202 {
		t.Fatalf("unexpected secondary payload: %+v", results)
	}
	if results[0].UsedIngredientCount != 2 || results[0].MissedIngredientCount != 1 {
		t.Fatalf("ingredient counts lost: %+v", results[0])
	}
	if results[0].ReadyInMinutes != nil || results[0].Servings != nil || results[0].SourceURL != nil {
		t.Fatalf("secondary summaries must not carry rich fields: %+v", results[0])
	}

	mu.Lock()
	defer mu.Unlock()
	if len(paths) != 2 || paths[0] != "/recipes/complexSearch" || paths[1] != "/recipes/findByIngredients" {
		t.Fatalf("unexpected strategy order: %v", paths)
	}
}

func TestSearch_EmptyPantryUsesStaples(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotIngredients string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotIngredients = r.URL.Query().Get("includeIngredients")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"Staples Scramble"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, Config{
		BaseURL: srv.URL,
		Keys:    []string{"k1"},
	}, nil)

	_, source := client.Search(context.Background(), SearchRequest{})
	if source != SourceLive {
		t.Fatalf("expected live source, got %q", source)
	}

	mu.Lock()
	defer mu.Unlock()
	if gotIngredients != "egg,milk,bread" {
		t.Fatalf("expected staple ingredients, got %q", gotIngredients)
	}
}

func TestSearch_NumberClamped(t *testing.T) {
	t.Parallel()

	var mu sync.Mutex
	var gotNumber string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		gotNumber = r.URL.Query().Get("number")
		mu.Unlock()
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"results":[{"id":1,"title":"x"}]}`))
	}))
	defer srv.Close()

	client := newTestClient(t, Config{
		BaseURL: srv.URL,
		Keys:    []string{"k1"},
	}, nil)

	client.Search(context.Background(), SearchRequest{
		Ingredients: []string{"egg"},
		Number:      5000,
	})

	mu.Lock()
	defer mu.Unlock()
	if gotNumber != "100" {
		t.Fatalf("expected number clamped to 100, got %q", gotNumber)
	}
}

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/Harshas66/smart-grocery-assistant/internal/cache"
	"github.com/Harshas66/smart-grocery-assistant/internal/metrics"
	"github.com/Harshas66/smart-grocery-assistant/internal/recipe"

	"go.uber.org/zap"
)

// Source names the tier that ultimately served a search. Exposed so the
// presentation layer can annotate degraded results.
type Source string

const (
	SourceLive    Source = "live"    // fresh provider response
	SourceCache   Source = "cache"   // fresh cache entry
	SourceStale   Source = "stale"   // expired cache entry, served because every upstream attempt failed
	SourceOffline Source = "offline" // offline catalog defaults
)

// maxNumber is the provider's per-request result bound.
const maxNumber = 100

type SearchRequest struct {
	Ingredients []string
	Diet        string
	Number      int
}

// listEnvelope is the cached form of a list result.
type listEnvelope struct {
	Timestamp time.Time        `json:"ts"`
	Payload   []recipe.Summary `json:"data"`
}

// Search produces an ordered list of recipe summaries for the request,
// tolerating upstream unavailability. It never fails: the worst case is the
// offline catalog. The returned Source names the tier that served.
//
// Tier order: fresh cache, then the primary search strategy, then the
// secondary one, then a stale cache entry if any exists, then the offline
// catalog. A cache write only happens after a successful non-empty
// normalization. In offline mode no network I/O is attempted at all.
func (c *Client) Search(ctx context.Context, req SearchRequest) ([]recipe.Summary, Source) {
	number := req.Number
	if number <= 0 {
		number = c.cfg.DefaultNumber
	}
	if number > maxNumber {
		number = maxNumber
	}

	ingredients := cleanIngredients(req.Ingredients)

	if c.cfg.Offline {
		diet := strings.ToLower(strings.TrimSpace(req.Diet))
		if diet == "" {
			diet = "none"
		}
		key := listKey(ingredients, diet, number)
		if env, ok := c.readListEntry(ctx, key); ok && cache.Fresh(env.Timestamp, time.Now(), c.cfg.ListTTL) {
			return c.serve(ctx, env.Payload, SourceCache)
		}
		return c.serve(ctx, c.catalog.ListDefaults(), SourceOffline)
	}

	dietNorm := normalizeDiet(req.Diet)

	// Searching with zero ingredients is not a valid provider request, but a
	// key-less first visit should still show something.
	if len(ingredients) == 0 {
		ingredients = []string{"egg", "milk", "bread"}
	}

	key := listKey(ingredients, dietOrNone(dietNorm), number)
	env, hasEntry := c.readListEntry(ctx, key)
	if hasEntry && cache.Fresh(env.Timestamp, time.Now(), c.cfg.ListTTL) {
		return c.serve(ctx, env.Payload, SourceCache)
	}

	fallback := func() ([]recipe.Summary, Source) {
		if hasEntry {
			return c.serve(ctx, env.Payload, SourceStale)
		}
		return c.serve(ctx, c.catalog.ListDefaults(), SourceOffline)
	}

	// Primary strategy: ingredient-inclusive metadata search, richer summaries.
	summaries, err := c.complexSearch(ctx, ingredients, dietNorm, number)
	if errors.Is(err, ErrUnavailable) {
		return fallback()
	}
	if err == nil && len(summaries) > 0 {
		c.writeListEntry(ctx, key, summaries)
		return c.serve(ctx, summaries, SourceLive)
	}
	if err != nil {
		c.logger.Debug("primary search strategy failed", zap.Error(err))
	}

	// Secondary strategy: ranked-by-ingredient-match search, leaner summaries.
	summaries, err = c.findByIngredients(ctx, ingredients, number)
	if errors.Is(err, ErrUnavailable) {
		return fallback()
	}
	if err == nil && len(summaries) > 0 {
		c.writeListEntry(ctx, key, summaries)
		return c.serve(ctx, summaries, SourceLive)
	}
	if err != nil {
		c.logger.Debug("secondary search strategy failed", zap.Error(err))
	}

	return fallback()
}

func (c *Client) serve(ctx context.Context, payload []recipe.Summary, source Source) ([]recipe.Summary, Source) {
	metrics.SearchServesTotal.WithLabelValues(string(source)).Inc()
	if source != SourceLive {
		c.logger.Info("search served from fallback tier",
			zap.String("source", string(source)),
			zap.Int("results", len(payload)),
		)
	}
	return payload, source
}

// complexSearch calls the provider's full-text/metadata search endpoint.
// A 200 with zero results is returned as an empty list with no error; the
// caller decides whether to fall through.
func (c *Client) complexSearch(ctx context.Context, ingredients []string, diet string, number int) ([]recipe.Summary, error) {
	params := url.Values{}
	params.Set("includeIngredients", strings.Join(c.clampIngredients(ingredients), ","))
	params.Set("fillIngredients", "true")
	params.Set("addRecipeInformation", "true")
	params.Set("instructionsRequired", "true")
	params.Set("number", strconv.Itoa(number))
	params.Set("sort", "meta-score")
	if diet != "" {
		params.Set("diet", diet)
	}

	resp, err := c.getWithRotation(ctx, "/recipes/complexSearch", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("complexSearch: upstream status %d", resp.StatusCode)
	}

	var wire wireSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("complexSearch: decode response: %w", err)
	}

	summaries := make([]recipe.Summary, 0, len(wire.Results))
	for _, rec := range wire.Results {
		summaries = append(summaries, c.summaryFromWire(rec))
	}
	return summaries, nil
}

// findByIngredients calls the provider's ranked-by-ingredient-match
// endpoint. Its records are leaner: no timing, servings or source URL.
func (c *Client) findByIngredients(ctx context.Context, ingredients []string, number int) ([]recipe.Summary, error) {
	params := url.Values{}
	params.Set("ingredients", strings.Join(c.clampIngredients(ingredients), ","))
	params.Set("number", strconv.Itoa(number))
	params.Set("ranking", "1")
	params.Set("ignorePantry", "true")

	resp, err := c.getWithRotation(ctx, "/recipes/findByIngredients", params)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		return nil, fmt.Errorf("findByIngredients: upstream status %d", resp.StatusCode)
	}

	var wire []wireRecipe
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		return nil, fmt.Errorf("findByIngredients: decode response: %w", err)
	}

	summaries := make([]recipe.Summary, 0, len(wire))
	for _, rec := range wire {
		s := c.summaryFromWire(rec)
		// This endpoint never carries the richer fields.
		s.ReadyInMinutes = nil
		s.Servings = nil
		s.SourceURL = nil
		summaries = append(summaries, s)
	}
	return summaries, nil
}

func (c *Client) readListEntry(ctx context.Context, key string) (listEnvelope, bool) {
	var env listEnvelope

	raw, ok, err := c.store.Get(ctx, key)
	if err != nil {
		// Cache is best-effort; an unreadable entry is a miss.
		c.logger.Warn("list cache read failed", zap.Error(err))
		return env, false
	}
	if !ok {
		return env, false
	}
	if err := json.Unmarshal(raw, &env); err != nil {
		c.logger.Warn("list cache entry malformed", zap.String("key", key), zap.Error(err))
		return listEnvelope{}, false
	}
	return env, true
}

func (c *Client) writeListEntry(ctx context.Context, key string, payload []recipe.Summary) {
	env := listEnvelope{
		Timestamp: time.Now().UTC(),
		Payload:   payload,
	}
	raw, err := json.Marshal(env)
	if err != nil {
		c.logger.Warn("list cache entry marshal failed", zap.Error(err))
		return
	}
	if err := c.store.Set(ctx, key, raw); err != nil {
		c.logger.Warn("list cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// clampIngredients bounds how many ingredient names go into one query.
func (c *Client) clampIngredients(ingredients []string) []string {
	if len(ingredients) > c.cfg.MaxIngredients {
		return ingredients[:c.cfg.MaxIngredients]
	}
	return ingredients
}

func cleanIngredients(raw []string) []string {
	out := make([]string, 0, len(raw))
	for _, ing := range raw {
		ing = strings.TrimSpace(ing)
		if ing != "" {
			out = append(out, ing)
		}
	}
	return out
}

func dietOrNone(diet string) string {
	if diet == "" {
		return "none"
	}
	return diet
}

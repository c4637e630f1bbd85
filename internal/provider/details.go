package provider

import (
	"context"
	"fmt"
	"net/url"

	json "github.com/goccy/go-json"

	"github.com/Harshas66/smart-grocery-assistant/internal/recipe"

	"go.uber.org/zap"
)

// Details returns the full record for one recipe id, or (nil, false) when
// every source is exhausted. Callers render absence as an informational
// state, never an error.
//
// Lookup order: the per-id detail cache (no TTL - detail content is treated
// as immutable once fetched), the offline catalog, then the provider's
// single-recipe endpoint through the rotating credential pool.
func (c *Client) Details(ctx context.Context, id int64) (*recipe.Detail, bool) {
	if id <= 0 {
		return nil, false
	}

	key := detailKey(id)

	if raw, ok, err := c.store.Get(ctx, key); err == nil && ok {
		var detail recipe.Detail
		if err := json.Unmarshal(raw, &detail); err == nil {
			return &detail, true
		}
		c.logger.Warn("detail cache entry malformed", zap.Int64("recipe_id", id))
	} else if err != nil {
		c.logger.Warn("detail cache read failed", zap.Int64("recipe_id", id), zap.Error(err))
	}

	if detail, ok := c.catalog.DetailsFor(id); ok {
		return detail, true
	}

	if c.cfg.Offline {
		return nil, false
	}

	params := url.Values{}
	params.Set("includeNutrition", "false")

	resp, err := c.getWithRotation(ctx, fmt.Sprintf("/recipes/%d/information", id), params)
	if err != nil {
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != 200 {
		c.logger.Debug("detail fetch failed",
			zap.Int64("recipe_id", id),
			zap.Int("status", resp.StatusCode),
		)
		return nil, false
	}

	var wire wireDetail
	if err := json.NewDecoder(resp.Body).Decode(&wire); err != nil {
		c.logger.Warn("detail response malformed", zap.Int64("recipe_id", id), zap.Error(err))
		return nil, false
	}

	detail := c.detailFromWire(wire)

	if raw, err := json.Marshal(detail); err == nil {
		if err := c.store.Set(ctx, key, raw); err != nil {
			c.logger.Warn("detail cache write failed", zap.Int64("recipe_id", id), zap.Error(err))
		}
	}

	return detail, true
}

package offline

import (
	"fmt"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"

	"github.com/Harshas66/smart-grocery-assistant/internal/recipe"

	"go.uber.org/zap"
)

// Catalog is the last-resort recipe source used when neither the live
// provider nor the cache can serve a request. It reads a configured dataset
// file plus one detail document per recipe id, and falls back to a built-in
// sample when those files are missing or unreadable. ListDefaults never
// fails and never returns an empty list.
type Catalog struct {
	datasetPath string
	detailsDir  string
	logger      *zap.Logger
}

func NewCatalog(datasetPath, detailsDir string, logger *zap.Logger) *Catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Catalog{
		datasetPath: datasetPath,
		detailsDir:  detailsDir,
		logger:      logger.Named("offline"),
	}
}

// ListDefaults returns the offline recipe list: the configured dataset file
// when present and valid, otherwise the built-in sample.
func (c *Catalog) ListDefaults() []recipe.Summary {
	if c.datasetPath != "" {
		data, err := os.ReadFile(c.datasetPath)
		if err == nil {
			var list []recipe.Summary
			if err := json.Unmarshal(data, &list); err == nil && len(list) > 0 {
				return list
			}
			c.logger.Warn("offline dataset malformed, using built-in sample",
				zap.String("path", c.datasetPath),
			)
		} else if !os.IsNotExist(err) {
			c.logger.Warn("offline dataset unreadable, using built-in sample",
				zap.String("path", c.datasetPath),
				zap.Error(err),
			)
		}
	}
	return builtinSummaries()
}

// DetailsFor returns the offline detail record for id, if one exists either
// on disk or in the built-in sample.
func (c *Catalog) DetailsFor(id int64) (*recipe.Detail, bool) {
	if c.detailsDir != "" {
		path := filepath.Join(c.detailsDir, fmt.Sprintf("%d.json", id))
		if data, err := os.ReadFile(path); err == nil {
			var detail recipe.Detail
			if err := json.Unmarshal(data, &detail); err == nil {
				return &detail, true
			}
			c.logger.Warn("offline detail document malformed",
				zap.String("path", path),
			)
		}
	}

	if detail, ok := builtinDetails()[id]; ok {
		return detail, true
	}
	return nil, false
}

// Built-in sample ids are in a range the provider never assigns.
const (
	sampleKhichdiID = 910001
	sampleWrapID    = 910002
	samplePastaID   = 910003
)

func builtinSummaries() []recipe.Summary {
	return []recipe.Summary{
		{
			ID:                    sampleKhichdiID,
			Title:                 "Masala Khichdi",
			UsedIngredientCount:   4,
			MissedIngredientCount: 0,
			ReadyInMinutes:        recipe.IntPtr(28),
			Servings:              recipe.IntPtr(2),
		},
		{
			ID:                    sampleWrapID,
			Title:                 "Paneer Bhurji Wrap",
			UsedIngredientCount:   5,
			MissedIngredientCount: 0,
			ReadyInMinutes:        recipe.IntPtr(20),
			Servings:              recipe.IntPtr(2),
		},
		{
			ID:                    samplePastaID,
			Title:                 "Garlic Butter Pasta",
			UsedIngredientCount:   3,
			MissedIngredientCount: 1,
			ReadyInMinutes:        recipe.IntPtr(18),
			Servings:              recipe.IntPtr(2),
		},
	}
}

func builtinDetails() map[int64]*recipe.Detail {
	return map[int64]*recipe.Detail{
		sampleKhichdiID: {
			ID:             sampleKhichdiID,
			Title:          "Masala Khichdi",
			ReadyInMinutes: recipe.IntPtr(28),
			Servings:       recipe.IntPtr(2),
			Ingredients: []recipe.Ingredient{
				{Name: "rice", Amount: 0.5, Unit: "cup", Original: "1/2 cup rice, rinsed"},
				{Name: "moong dal", Amount: 0.5, Unit: "cup", Original: "1/2 cup split moong dal"},
				{Name: "onion", Amount: 1, Unit: "", Original: "1 onion, chopped"},
				{Name: "garam masala", Amount: 1, Unit: "tsp", Original: "1 tsp garam masala"},
			},
			Steps: []string{
				"Rinse the rice and dal together until the water runs clear.",
				"Saute the onion with garam masala until soft.",
				"Add rice, dal and 3 cups of water; simmer covered for 20 minutes.",
				"Rest 5 minutes, then fluff and serve.",
			},
		},
		sampleWrapID: {
			ID:             sampleWrapID,
			Title:          "Paneer Bhurji Wrap",
			ReadyInMinutes: recipe.IntPtr(20),
			Servings:       recipe.IntPtr(2),
			Ingredients: []recipe.Ingredient{
				{Name: "paneer", Amount: 200, Unit: "g", Original: "200g paneer, crumbled"},
				{Name: "tortilla", Amount: 2, Unit: "", Original: "2 large tortillas"},
				{Name: "tomato", Amount: 1, Unit: "", Original: "1 tomato, diced"},
				{Name: "onion", Amount: 1, Unit: "", Original: "1 small onion, diced"},
				{Name: "turmeric", Amount: 0.5, Unit: "tsp", Original: "1/2 tsp turmeric"},
			},
			Steps: []string{
				"Saute onion and tomato until soft, then stir in turmeric.",
				"Add crumbled paneer and cook 3-4 minutes.",
				"Warm the tortillas, fill with the bhurji, roll and serve.",
			},
		},
		samplePastaID: {
			ID:             samplePastaID,
			Title:          "Garlic Butter Pasta",
			ReadyInMinutes: recipe.IntPtr(18),
			Servings:       recipe.IntPtr(2),
			Ingredients: []recipe.Ingredient{
				{Name: "pasta", Amount: 200, Unit: "g", Original: "200g spaghetti"},
				{Name: "butter", Amount: 3, Unit: "tbsp", Original: "3 tbsp butter"},
				{Name: "garlic", Amount: 4, Unit: "cloves", Original: "4 garlic cloves, sliced"},
			},
			Steps: []string{
				"Cook the pasta in salted water until al dente; reserve a cup of pasta water.",
				"Melt butter over low heat and soften the garlic without browning.",
				"Toss the pasta with the garlic butter, loosening with pasta water as needed.",
			},
		},
	}
}

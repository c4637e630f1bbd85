package provider

import "github.com/Harshas66/smart-grocery-assistant/internal/recipe"

// Response shapes the upstream recipe API sends back. Fields the API may
// omit are pointers so absence survives decoding.

type wireSearchResponse struct {
	Results []wireRecipe `json:"results"`
}

type wireRecipe struct {
	ID                    int64   `json:"id"`
	Title                 string  `json:"title"`
	Image                 string  `json:"image"`
	ImageType             string  `json:"imageType"`
	UsedIngredientCount   int     `json:"usedIngredientCount"`
	MissedIngredientCount int     `json:"missedIngredientCount"`
	ReadyInMinutes        *int    `json:"readyInMinutes"`
	Servings              *int    `json:"servings"`
	SourceURL             *string `json:"sourceUrl"`
	SpoonacularSourceURL  *string `json:"spoonacularSourceUrl"`
}

type wireIngredient struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Original string  `json:"original"`
}

type wireInstructionStep struct {
	Number int    `json:"number"`
	Step   string `json:"step"`
}

type wireInstructionGroup struct {
	Name  string                `json:"name"`
	Steps []wireInstructionStep `json:"steps"`
}

type wireDetail struct {
	ID                   int64                  `json:"id"`
	Title                string                 `json:"title"`
	Image                string                 `json:"image"`
	ImageType            string                 `json:"imageType"`
	ReadyInMinutes       *int                   `json:"readyInMinutes"`
	Servings             *int                   `json:"servings"`
	SourceURL            *string                `json:"sourceUrl"`
	SpoonacularSourceURL *string                `json:"spoonacularSourceUrl"`
	ExtendedIngredients  []wireIngredient       `json:"extendedIngredients"`
	AnalyzedInstructions []wireInstructionGroup `json:"analyzedInstructions"`
	Instructions         string                 `json:"instructions"`
}

// summaryFromWire normalizes one upstream listing record.
func (c *Client) summaryFromWire(rec wireRecipe) recipe.Summary {
	return recipe.Summary{
		ID:                    rec.ID,
		Title:                 rec.Title,
		Image:                 resolveImageURL(rec.Image, rec.ID, rec.ImageType, c.cfg.CDNBaseURL),
		UsedIngredientCount:   rec.UsedIngredientCount,
		MissedIngredientCount: rec.MissedIngredientCount,
		ReadyInMinutes:        rec.ReadyInMinutes,
		Servings:              rec.Servings,
		SourceURL:             firstNonNil(rec.SourceURL, rec.SpoonacularSourceURL),
	}
}

// detailFromWire normalizes one upstream detail record. Structured steps
// win; a flat instructions string becomes a single-entry list; ingredients
// default to an empty (not nil) list.
func (c *Client) detailFromWire(data wireDetail) *recipe.Detail {
	ingredients := make([]recipe.Ingredient, 0, len(data.ExtendedIngredients))
	for _, ing := range data.ExtendedIngredients {
		ingredients = append(ingredients, recipe.Ingredient{
			Name:     ing.Name,
			Amount:   ing.Amount,
			Unit:     ing.Unit,
			Original: ing.Original,
		})
	}

	var steps []string
	for _, group := range data.AnalyzedInstructions {
		for _, step := range group.Steps {
			if step.Step != "" {
				steps = append(steps, step.Step)
			}
		}
	}
	if len(steps) == 0 && data.Instructions != "" {
		steps = []string{data.Instructions}
	}
	if steps == nil {
		steps = []string{}
	}

	return &recipe.Detail{
		ID:             data.ID,
		Title:          data.Title,
		Image:          resolveImageURL(data.Image, data.ID, data.ImageType, c.cfg.CDNBaseURL),
		ReadyInMinutes: data.ReadyInMinutes,
		Servings:       data.Servings,
		SourceURL:      firstNonNil(data.SourceURL, data.SpoonacularSourceURL),
		Ingredients:    ingredients,
		Steps:          steps,
	}
}

func firstNonNil(vals ...*string) *string {
	for _, v := range vals {
		if v != nil && *v != "" {
			return v
		}
	}
	return nil
}

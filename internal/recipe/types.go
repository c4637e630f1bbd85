package recipe

// Summary is the lightweight listing record produced by both the provider
// client and the offline catalog. Optional fields are pointers so that
// "absent" and "zero" stay distinguishable after a JSON round trip: a recipe
// with no image must never render a broken reference.
type Summary struct {
	ID                    int64   `json:"id"`
	Title                 string  `json:"title"`
	Image                 *string `json:"image"`
	UsedIngredientCount   int     `json:"usedIngredientCount"`
	MissedIngredientCount int     `json:"missedIngredientCount"`
	ReadyInMinutes        *int    `json:"readyInMinutes"`
	Servings              *int    `json:"servings"`
	SourceURL             *string `json:"sourceUrl"`
}

// Ingredient is one line of a recipe's ingredient list.
type Ingredient struct {
	Name     string  `json:"name"`
	Amount   float64 `json:"amount"`
	Unit     string  `json:"unit"`
	Original string  `json:"original"`
}

// Detail is the full record for one recipe. Once fetched it is treated as
// immutable for its id, so callers may cache it indefinitely.
type Detail struct {
	ID             int64        `json:"id"`
	Title          string       `json:"title"`
	Image          *string      `json:"image"`
	ReadyInMinutes *int         `json:"readyInMinutes"`
	Servings       *int         `json:"servings"`
	SourceURL      *string      `json:"sourceUrl"`
	Ingredients    []Ingredient `json:"ingredients"`
	Steps          []string     `json:"steps"`
}

// StringPtr returns a pointer to s. Convenience for optional fields.
func StringPtr(s string) *string { return &s }

// IntPtr returns a pointer to i.
func IntPtr(i int) *int { return &i }

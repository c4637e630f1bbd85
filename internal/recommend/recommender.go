package recommend

import (
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

const defaultTopK = 10

// Recommendation is one scored catalog recipe.
type Recommendation struct {
	RecipeID    string  `json:"recipe_id"`
	Title       string  `json:"title"`
	Ingredients string  `json:"ingredients"`
	DietTag     string  `json:"diet_tag,omitempty"`
	Score       float64 `json:"score"`
}

// Recommender ranks the trained catalog against a pantry's ingredient
// names. The index is loaded lazily on first use and reused until Reload
// is called (after retraining).
type Recommender struct {
	artifactsDir string
	logger       *zap.Logger

	mu  sync.RWMutex
	idx *Index
}

func NewRecommender(artifactsDir string, logger *zap.Logger) *Recommender {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recommender{
		artifactsDir: artifactsDir,
		logger:       logger.Named("recommender"),
	}
}

// Reload forces the index to be re-read from disk, e.g. after training.
func (r *Recommender) Reload() error {
	idx, err := LoadIndex(r.artifactsDir)
	if err != nil {
		return err
	}

	r.mu.Lock()
	r.idx = idx
	r.mu.Unlock()

	r.logger.Info("recommendation index loaded",
		zap.String("artifacts_dir", r.artifactsDir),
		zap.Int("recipes", idx.Size()),
	)
	return nil
}

func (r *Recommender) index() (*Index, error) {
	r.mu.RLock()
	idx := r.idx
	r.mu.RUnlock()
	if idx != nil {
		return idx, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.idx == nil {
		idx, err := LoadIndex(r.artifactsDir)
		if err != nil {
			return nil, err
		}
		r.idx = idx
		r.logger.Info("recommendation index loaded",
			zap.String("artifacts_dir", r.artifactsDir),
			zap.Int("recipes", idx.Size()),
		)
	}
	return r.idx, nil
}

// Recommend scores every catalog recipe against the pantry item names and
// returns the topK best matches in descending score order. An optional diet
// filter restricts results to rows whose diet tag matches case-insensitively;
// it only applies when the training corpus had a diet_tag column, otherwise
// the full ranking is returned untouched.
//
// An empty pantry is a documented degenerate case, not an error: the first
// topK catalog rows are returned in stored order, each scored 0. When the
// artifacts are missing the distinct ErrNotTrained condition is returned so
// the caller can trigger training.
func (r *Recommender) Recommend(pantry []string, topK int, diet string) ([]Recommendation, error) {
	idx, err := r.index()
	if err != nil {
		return nil, err
	}

	if topK <= 0 {
		topK = defaultTopK
	}

	query := NormalizeIngredients(pantry)
	if query == "" {
		out := make([]Recommendation, 0, topK)
		for i := 0; i < len(idx.catalog) && i < topK; i++ {
			out = append(out, recommendationFor(idx.catalog[i], 0))
		}
		return out, nil
	}

	qv := idx.queryVector(query)
	filterDiet := diet != "" && idx.hasDietColumn

	out := make([]Recommendation, 0, len(idx.catalog))
	for i, entry := range idx.catalog {
		if filterDiet && !strings.EqualFold(entry.DietTag, diet) {
			continue
		}
		out = append(out, recommendationFor(entry, idx.score(qv, idx.rows[i])))
	}

	// Stable sort keeps catalog order for equal scores, so results are
	// deterministic for a fixed index and pantry.
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Score > out[b].Score
	})

	if len(out) > topK {
		out = out[:topK]
	}
	return out, nil
}

func recommendationFor(entry CatalogEntry, score float64) Recommendation {
	return Recommendation{
		RecipeID:    entry.RecipeID,
		Title:       entry.Title,
		Ingredients: entry.Ingredients,
		DietTag:     entry.DietTag,
		Score:       score,
	}
}

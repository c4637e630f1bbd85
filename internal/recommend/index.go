package recommend

import (
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"

	json "github.com/goccy/go-json"
)

// Artifact file names inside the artifacts directory. All three are
// required together; presence of only some is equivalent to "not trained".
const (
	vectorizerFile = "recipe_vectorizer.json"
	matrixFile     = "recipe_matrix.json"
	catalogFile    = "recipes_index.json"
)

// ErrNotTrained is returned when the persisted artifacts are missing. It is
// a recoverable condition: the caller can trigger training and retry.
var ErrNotTrained = errors.New("recommendation model not trained")

// CatalogEntry is one row of the trained catalog, aligned by position with
// the term matrix.
type CatalogEntry struct {
	RecipeID    string `json:"recipe_id"`
	Title       string `json:"title"`
	Ingredients string `json:"ingredients"`
	DietTag     string `json:"diet_tag,omitempty"`
}

// sparseRow is one L2-normalized row of the weighted term matrix.
type sparseRow struct {
	Indices []int     `json:"i"`
	Values  []float64 `json:"v"`
}

type vectorizerDoc struct {
	Vocabulary map[string]int `json:"vocabulary"`
	IDF        []float64      `json:"idf"`
}

type matrixDoc struct {
	Rows []sparseRow `json:"rows"`
}

// catalogDoc wraps the catalog table with corpus-level facts. HasDietColumn
// records whether the training corpus carried a diet_tag column at all: a
// diet filter only applies when it did, since an empty tag on a row is
// otherwise indistinguishable from the column being absent.
type catalogDoc struct {
	HasDietColumn bool           `json:"has_diet_column"`
	Recipes       []CatalogEntry `json:"recipes"`
}

// Index is the offline-trained artifact: vocabulary + inverse document
// frequencies, the weighted term matrix, and the parallel catalog table.
// Read-only at inference time.
type Index struct {
	vocabulary    map[string]int
	idf           []float64
	rows          []sparseRow
	catalog       []CatalogEntry
	hasDietColumn bool
}

// LoadIndex reads the three artifacts from dir. Missing artifacts yield
// ErrNotTrained; malformed ones yield a descriptive error.
func LoadIndex(dir string) (*Index, error) {
	paths := []string{
		filepath.Join(dir, vectorizerFile),
		filepath.Join(dir, matrixFile),
		filepath.Join(dir, catalogFile),
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			if os.IsNotExist(err) {
				return nil, ErrNotTrained
			}
			return nil, fmt.Errorf("stat artifact %s: %w", p, err)
		}
	}

	var vec vectorizerDoc
	if err := readJSON(paths[0], &vec); err != nil {
		return nil, err
	}
	var mat matrixDoc
	if err := readJSON(paths[1], &mat); err != nil {
		return nil, err
	}
	var cat catalogDoc
	if err := readJSON(paths[2], &cat); err != nil {
		return nil, err
	}

	if len(mat.Rows) != len(cat.Recipes) {
		return nil, fmt.Errorf("artifact mismatch: %d matrix rows vs %d catalog entries",
			len(mat.Rows), len(cat.Recipes))
	}
	if len(vec.IDF) != len(vec.Vocabulary) {
		return nil, fmt.Errorf("artifact mismatch: %d idf weights vs %d vocabulary terms",
			len(vec.IDF), len(vec.Vocabulary))
	}

	return &Index{
		vocabulary:    vec.Vocabulary,
		idf:           vec.IDF,
		rows:          mat.Rows,
		catalog:       cat.Recipes,
		hasDietColumn: cat.HasDietColumn,
	}, nil
}

// Size returns the number of catalog recipes in the index.
func (ix *Index) Size() int {
	return len(ix.catalog)
}

// queryVector transforms normalized pantry text into an L2-normalized
// TF-IDF vector over the trained vocabulary. Unseen terms are ignored.
func (ix *Index) queryVector(normalized string) map[int]float64 {
	weights := make(map[int]float64)
	for _, term := range extractTerms(normalized) {
		if col, ok := ix.vocabulary[term]; ok {
			weights[col]++
		}
	}
	if len(weights) == 0 {
		return weights
	}

	var sumSq float64
	for col := range weights {
		weights[col] *= ix.idf[col]
		sumSq += weights[col] * weights[col]
	}
	if sumSq > 0 {
		norm := math.Sqrt(sumSq)
		for col := range weights {
			weights[col] /= norm
		}
	}
	return weights
}

// score is the inner product of the query vector with one matrix row.
// Both sides are L2-normalized, so this is cosine similarity.
func (ix *Index) score(query map[int]float64, row sparseRow) float64 {
	var dot float64
	for i, col := range row.Indices {
		if qw, ok := query[col]; ok {
			dot += qw * row.Values[i]
		}
	}
	return dot
}

func readJSON(path string, v any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read artifact %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse artifact %s: %w", path, err)
	}
	return nil
}

package recommend

import (
	"encoding/csv"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	json "github.com/goccy/go-json"

	"go.uber.org/zap"
)

// minDocFrequency drops terms that appear in fewer recipes than this.
// Singleton terms are noise for similarity scoring.
const minDocFrequency = 2

// TrainStats summarizes one training run.
type TrainStats struct {
	NumRecipes int `json:"n_recipes"`
	VocabSize  int `json:"vocab_size"`
}

// Train fits a TF-IDF model (unigrams + bigrams, minimum document frequency
// 2, smooth inverse document frequency, L2-normalized rows) over the recipe
// corpus at corpusPath and persists the three artifacts to artifactsDir.
// This is an explicit batch step, invoked separately from request serving.
//
// The corpus is a CSV with at least recipe_id, title and ingredients
// columns; diet_tag is optional. The ingredients cell may be a delimited
// string or a bracketed list literal.
func Train(corpusPath, artifactsDir string, logger *zap.Logger) (TrainStats, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	catalog, docs, hasDiet, err := readCorpus(corpusPath)
	if err != nil {
		return TrainStats{}, err
	}

	// Document frequency over unique terms per document.
	df := make(map[string]int)
	for _, terms := range docs {
		seen := make(map[string]struct{}, len(terms))
		for _, t := range terms {
			if _, dup := seen[t]; dup {
				continue
			}
			seen[t] = struct{}{}
			df[t]++
		}
	}

	// Vocabulary: surviving terms in sorted order, columns by that order.
	kept := make([]string, 0, len(df))
	for term, n := range df {
		if n >= minDocFrequency {
			kept = append(kept, term)
		}
	}
	sort.Strings(kept)

	vocabulary := make(map[string]int, len(kept))
	idf := make([]float64, len(kept))
	n := float64(len(docs))
	for col, term := range kept {
		vocabulary[term] = col
		// Smooth idf: ln((1+n)/(1+df)) + 1.
		idf[col] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}

	rows := make([]sparseRow, len(docs))
	for i, terms := range docs {
		counts := make(map[int]float64)
		for _, t := range terms {
			if col, ok := vocabulary[t]; ok {
				counts[col]++
			}
		}

		cols := make([]int, 0, len(counts))
		for col := range counts {
			cols = append(cols, col)
		}
		sort.Ints(cols)

		values := make([]float64, len(cols))
		var sumSq float64
		for j, col := range cols {
			w := counts[col] * idf[col]
			values[j] = w
			sumSq += w * w
		}
		if sumSq > 0 {
			norm := math.Sqrt(sumSq)
			for j := range values {
				values[j] /= norm
			}
		}

		rows[i] = sparseRow{Indices: cols, Values: values}
	}

	if err := os.MkdirAll(artifactsDir, 0o755); err != nil {
		return TrainStats{}, fmt.Errorf("create artifacts dir: %w", err)
	}
	if err := writeJSON(filepath.Join(artifactsDir, vectorizerFile), vectorizerDoc{Vocabulary: vocabulary, IDF: idf}); err != nil {
		return TrainStats{}, err
	}
	if err := writeJSON(filepath.Join(artifactsDir, matrixFile), matrixDoc{Rows: rows}); err != nil {
		return TrainStats{}, err
	}
	if err := writeJSON(filepath.Join(artifactsDir, catalogFile), catalogDoc{HasDietColumn: hasDiet, Recipes: catalog}); err != nil {
		return TrainStats{}, err
	}

	stats := TrainStats{NumRecipes: len(docs), VocabSize: len(vocabulary)}
	logger.Info("recipe model trained",
		zap.String("corpus", corpusPath),
		zap.Int("recipes", stats.NumRecipes),
		zap.Int("vocab_size", stats.VocabSize),
	)
	return stats, nil
}

// readCorpus parses the corpus CSV into the catalog table and, in parallel,
// the per-recipe term lists. The returned flag reports whether the corpus
// carried a diet_tag column.
func readCorpus(corpusPath string) ([]CatalogEntry, [][]string, bool, error) {
	f, err := os.Open(corpusPath)
	if err != nil {
		return nil, nil, false, fmt.Errorf("open corpus: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, false, fmt.Errorf("read corpus: %w", err)
	}
	if len(records) < 2 {
		return nil, nil, false, fmt.Errorf("corpus %s has no data rows", corpusPath)
	}

	cols := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		cols[strings.TrimSpace(strings.ToLower(name))] = i
	}
	for _, required := range []string{"recipe_id", "title", "ingredients"} {
		if _, ok := cols[required]; !ok {
			return nil, nil, false, fmt.Errorf("%s column not found in %s", required, corpusPath)
		}
	}
	dietCol, hasDiet := cols["diet_tag"]

	catalog := make([]CatalogEntry, 0, len(records)-1)
	docs := make([][]string, 0, len(records)-1)

	for _, rec := range records[1:] {
		entry := CatalogEntry{
			RecipeID:    field(rec, cols["recipe_id"]),
			Title:       field(rec, cols["title"]),
			Ingredients: field(rec, cols["ingredients"]),
		}
		if hasDiet {
			entry.DietTag = field(rec, dietCol)
		}
		catalog = append(catalog, entry)

		normalized := NormalizeIngredients(splitIngredientsField(entry.Ingredients))
		docs = append(docs, extractTerms(normalized))
	}

	return catalog, docs, hasDiet, nil
}

func field(rec []string, i int) string {
	if i < 0 || i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func writeJSON(path string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal artifact %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write artifact %s: %w", path, err)
	}
	return nil
}

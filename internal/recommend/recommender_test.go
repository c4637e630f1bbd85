package recommend

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const testCorpus = `recipe_id,title,ingredients,diet_tag
r1,Tomato Basil Pasta,"tomato, basil, pasta",vegan
r2,Caprese Pasta,"tomato, mozzarella, pasta",vegetarian
r3,Chicken Rice,"chicken, rice",
r4,Rice and Beans,"rice, beans",vegan
`

// trainFixture trains the test corpus into a temp artifacts dir and returns
// a recommender over it plus the training stats.
func trainFixture(t *testing.T) (*Recommender, TrainStats) {
	t.Helper()

	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "recipes.csv")
	require.NoError(t, os.WriteFile(corpusPath, []byte(testCorpus), 0o644))

	artifactsDir := filepath.Join(dir, "artifacts")
	stats, err := Train(corpusPath, artifactsDir, zaptest.NewLogger(t))
	require.NoError(t, err)

	return NewRecommender(artifactsDir, zaptest.NewLogger(t)), stats
}

func TestTrain_StatsAndVocabulary(t *testing.T) {
	_, stats := trainFixture(t)

	assert.Equal(t, 4, stats.NumRecipes)
	// Only tomato, pasta and rice appear in 2+ recipes; every other unigram
	// and every bigram is a singleton and gets dropped.
	assert.Equal(t, 3, stats.VocabSize)
}

func TestTrain_MissingColumnFails(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "bad.csv")
	require.NoError(t, os.WriteFile(corpusPath, []byte("recipe_id,title\nr1,No Ingredients\n"), 0o644))

	_, err := Train(corpusPath, filepath.Join(dir, "artifacts"), zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ingredients")
}

func TestRecommend_RanksByIngredientOverlap(t *testing.T) {
	rec, _ := trainFixture(t)

	got, err := rec.Recommend([]string{"tomato", "pasta"}, 4, "")
	require.NoError(t, err)
	require.Len(t, got, 4)

	// The two tomato-pasta recipes outrank the rice-based ones; ties keep
	// catalog order.
	assert.Equal(t, "r1", got[0].RecipeID)
	assert.Equal(t, "r2", got[1].RecipeID)
	assert.Greater(t, got[0].Score, got[2].Score)
	assert.Equal(t, 0.0, got[2].Score)
	assert.Equal(t, 0.0, got[3].Score)
}

func TestRecommend_Deterministic(t *testing.T) {
	rec, _ := trainFixture(t)

	first, err := rec.Recommend([]string{"rice"}, 4, "")
	require.NoError(t, err)
	second, err := rec.Recommend([]string{"rice"}, 4, "")
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRecommend_EmptyPantryServesCatalogHead(t *testing.T) {
	rec, _ := trainFixture(t)

	got, err := rec.Recommend(nil, 2, "")
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "r1", got[0].RecipeID)
	assert.Equal(t, "r2", got[1].RecipeID)
	assert.Equal(t, 0.0, got[0].Score)
	assert.Equal(t, 0.0, got[1].Score)
}

func TestRecommend_DietFilter(t *testing.T) {
	rec, _ := trainFixture(t)

	got, err := rec.Recommend([]string{"tomato"}, 10, "Vegan")
	require.NoError(t, err)
	require.NotEmpty(t, got)

	for _, r := range got {
		assert.Equal(t, "vegan", r.DietTag)
	}
	// The tomato recipe ranks above the rice-and-beans one.
	assert.Equal(t, "r1", got[0].RecipeID)
}

func TestRecommend_DietFilterIgnoredWithoutDietColumn(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "recipes.csv")
	noDietCorpus := `recipe_id,title,ingredients
r1,Tomato Pasta,"tomato, pasta"
r2,Tomato Soup,"tomato, onion"
`
	require.NoError(t, os.WriteFile(corpusPath, []byte(noDietCorpus), 0o644))

	artifactsDir := filepath.Join(dir, "artifacts")
	_, err := Train(corpusPath, artifactsDir, zaptest.NewLogger(t))
	require.NoError(t, err)

	rec := NewRecommender(artifactsDir, zaptest.NewLogger(t))

	// Without a diet_tag column in the corpus the filter cannot apply; the
	// full ranking comes back instead of an empty list.
	got, err := rec.Recommend([]string{"tomato"}, 5, "vegan")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Greater(t, got[0].Score, 0.0)
	assert.Greater(t, got[1].Score, 0.0)
}

func TestRecommend_TopKBounds(t *testing.T) {
	rec, _ := trainFixture(t)

	got, err := rec.Recommend([]string{"rice"}, 1, "")
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Non-positive topK falls back to the default.
	got, err = rec.Recommend([]string{"rice"}, 0, "")
	require.NoError(t, err)
	assert.Len(t, got, 4)
}

func TestRecommend_NotTrained(t *testing.T) {
	rec := NewRecommender(t.TempDir(), zaptest.NewLogger(t))

	_, err := rec.Recommend([]string{"tomato"}, 5, "")
	require.ErrorIs(t, err, ErrNotTrained)
}

func TestReload_PicksUpRetrainedArtifacts(t *testing.T) {
	dir := t.TempDir()
	corpusPath := filepath.Join(dir, "recipes.csv")
	artifactsDir := filepath.Join(dir, "artifacts")
	require.NoError(t, os.WriteFile(corpusPath, []byte(testCorpus), 0o644))

	_, err := Train(corpusPath, artifactsDir, zaptest.NewLogger(t))
	require.NoError(t, err)

	rec := NewRecommender(artifactsDir, zaptest.NewLogger(t))
	got, err := rec.Recommend(nil, 10, "")
	require.NoError(t, err)
	require.Len(t, got, 4)

	// Retrain on a smaller corpus and reload.
	smaller := `recipe_id,title,ingredients
r1,Tomato Pasta,"tomato, pasta"
r2,Tomato Soup,"tomato, onion"
`
	require.NoError(t, os.WriteFile(corpusPath, []byte(smaller), 0o644))
	_, err = Train(corpusPath, artifactsDir, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.NoError(t, rec.Reload())

	got, err = rec.Recommend(nil, 10, "")
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

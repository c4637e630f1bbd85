package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	json "github.com/goccy/go-json"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Harshas66/smart-grocery-assistant/internal/provider"
	"github.com/Harshas66/smart-grocery-assistant/internal/recipe"
	"github.com/Harshas66/smart-grocery-assistant/internal/recommend"
	"github.com/Harshas66/smart-grocery-assistant/pkg/logging/logging"
)

// RecipeSearcher is the provider-client surface the handlers need.
type RecipeSearcher interface {
	Search(ctx context.Context, req provider.SearchRequest) ([]recipe.Summary, provider.Source)
	Details(ctx context.Context, id int64) (*recipe.Detail, bool)
}

// PantryRecommender is the recommender surface the handlers need.
type PantryRecommender interface {
	Recommend(pantry []string, topK int, diet string) ([]recommend.Recommendation, error)
	Reload() error
}

// TrainFunc runs one offline training pass. Injected so handler tests do
// not touch the filesystem.
type TrainFunc func(corpusPath, artifactsDir string, logger *zap.Logger) (recommend.TrainStats, error)

// RecipeHandler holds dependencies for the recipe-discovery endpoints.
type RecipeHandler struct {
	Searcher     RecipeSearcher
	Recommender  PantryRecommender
	Train        TrainFunc
	CorpusPath   string
	ArtifactsDir string
}

func NewRecipeHandler(searcher RecipeSearcher, rec PantryRecommender, corpusPath, artifactsDir string) *RecipeHandler {
	return &RecipeHandler{
		Searcher:     searcher,
		Recommender:  rec,
		Train:        recommend.Train,
		CorpusPath:   corpusPath,
		ArtifactsDir: artifactsDir,
	}
}

type searchRequest struct {
	Ingredients []string `json:"ingredients"`
	Diet        string   `json:"diet"`
	Number      int      `json:"number"`
}

type searchResponse struct {
	Results []recipe.Summary `json:"results"`
	Count   int              `json:"count"`
	Source  string           `json:"source"`
}

// SearchRecipes handles POST /v1/recipes/search. It never hard-fails: the
// provider client degrades through cache and offline tiers, and the tier
// that served is annotated in the response and the X-Recipes-Source header.
func (h *RecipeHandler) SearchRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)
	start := time.Now()

	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid search request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	results, source := h.Searcher.Search(ctx, provider.SearchRequest{
		Ingredients: req.Ingredients,
		Diet:        req.Diet,
		Number:      req.Number,
	})

	logger.Info("recipe_search",
		zap.Int("ingredients", len(req.Ingredients)),
		zap.String("diet", req.Diet),
		zap.String("source", string(source)),
		zap.Int("results", len(results)),
		zap.Duration("total_latency", time.Since(start)),
	)

	w.Header().Set("X-Recipes-Source", string(source))
	writeJSON(w, http.StatusOK, searchResponse{
		Results: results,
		Count:   len(results),
		Source:  string(source),
	})
}

// RecipeDetails handles GET /v1/recipes/{id}. A recipe whose detail cannot
// be fetched from any source is an informational 404, not a failure.
func (h *RecipeHandler) RecipeDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_recipe_id")
		return
	}

	detail, ok := h.Searcher.Details(ctx, id)
	if !ok {
		logger.Info("recipe_detail_unavailable", zap.Int64("recipe_id", id))
		writeError(w, http.StatusNotFound, "detail_unavailable")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

type recommendRequest struct {
	Pantry []string `json:"pantry"`
	TopK   int      `json:"top_k"`
	Diet   string   `json:"diet"`
}

type recommendResponse struct {
	Recommendations []recommend.Recommendation `json:"recommendations"`
}

// RecommendRecipes handles POST /v1/recommendations. The one error that
// must reach the caller explicitly is the untrained-model condition; there
// is no meaningful fallback for it.
func (h *RecipeHandler) RecommendRecipes(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	var req recommendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.Warn("invalid recommend request", zap.Error(err))
		writeError(w, http.StatusBadRequest, "invalid_json")
		return
	}

	recs, err := h.Recommender.Recommend(req.Pantry, req.TopK, req.Diet)
	if err != nil {
		if errors.Is(err, recommend.ErrNotTrained) {
			logger.Warn("recommendation requested before training")
			writeError(w, http.StatusConflict, "model_not_trained")
			return
		}
		logger.Error("recommendation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "recommendation_failed")
		return
	}

	logger.Info("pantry_recommend",
		zap.Int("pantry_items", len(req.Pantry)),
		zap.String("diet", req.Diet),
		zap.Int("results", len(recs)),
	)

	writeJSON(w, http.StatusOK, recommendResponse{Recommendations: recs})
}

type trainRequest struct {
	CorpusPath string `json:"corpus_path"`
}

type trainResponse struct {
	Trained    bool `json:"trained"`
	NumRecipes int  `json:"n_recipes"`
	VocabSize  int  `json:"vocab_size"`
}

// TrainModel handles POST /v1/admin/train: runs the offline training step
// synchronously and reloads the recommendation index.
func (h *RecipeHandler) TrainModel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := logging.L(ctx)

	var req trainRequest
	if r.Body != nil {
		// An empty body means "train on the configured corpus".
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	corpus := req.CorpusPath
	if corpus == "" {
		corpus = h.CorpusPath
	}

	stats, err := h.Train(corpus, h.ArtifactsDir, logger)
	if err != nil {
		logger.Error("training failed", zap.String("corpus", corpus), zap.Error(err))
		writeError(w, http.StatusUnprocessableEntity, "training_failed")
		return
	}

	if err := h.Recommender.Reload(); err != nil {
		logger.Error("index reload failed after training", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "reload_failed")
		return
	}

	writeJSON(w, http.StatusOK, trainResponse{
		Trained:    true,
		NumRecipes: stats.NumRecipes,
		VocabSize:  stats.VocabSize,
	})
}

// writeJSON sends JSON responses consistently.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string) {
	writeJSON(w, status, map[string]string{"error": code})
}

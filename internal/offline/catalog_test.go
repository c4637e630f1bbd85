package offline

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap/zaptest"
)

func TestListDefaults_BuiltInSample(t *testing.T) {
	c := NewCatalog("", "", zaptest.NewLogger(t))

	list := c.ListDefaults()
	if len(list) < 3 {
		t.Fatalf("built-in sample must hold at least 3 recipes, got %d", len(list))
	}
	for _, r := range list {
		if r.ID == 0 || r.Title == "" {
			t.Fatalf("built-in recipe incomplete: %+v", r)
		}
	}
}

func TestListDefaults_DatasetFileWins(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo_recipes.json")

	doc := `[{"id": 12, "title": "File Curry"}, {"id": 13, "title": "File Soup"}]`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	c := NewCatalog(path, "", zaptest.NewLogger(t))

	list := c.ListDefaults()
	if len(list) != 2 || list[0].Title != "File Curry" {
		t.Fatalf("expected dataset file contents, got %+v", list)
	}
}

func TestListDefaults_MalformedDatasetFallsBack(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "demo_recipes.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("write dataset: %v", err)
	}

	c := NewCatalog(path, "", zaptest.NewLogger(t))

	list := c.ListDefaults()
	if len(list) < 3 {
		t.Fatalf("malformed dataset must fall back to built-in sample, got %d entries", len(list))
	}
}

func TestDetailsFor_BuiltIn(t *testing.T) {
	c := NewCatalog("", "", zaptest.NewLogger(t))

	detail, ok := c.DetailsFor(sampleKhichdiID)
	if !ok {
		t.Fatalf("expected built-in detail for sample id")
	}
	if detail.Title == "" || len(detail.Ingredients) == 0 || len(detail.Steps) == 0 {
		t.Fatalf("built-in detail incomplete: %+v", detail)
	}

	if _, ok := c.DetailsFor(424242); ok {
		t.Fatalf("unknown id must report absence")
	}
}

func TestDetailsFor_DiskDocumentWins(t *testing.T) {
	dir := t.TempDir()
	doc := `{"id": 31, "title": "Disk Dal", "ingredients": [{"name": "lentils"}], "steps": ["Boil the lentils."]}`
	if err := os.WriteFile(filepath.Join(dir, "31.json"), []byte(doc), 0o644); err != nil {
		t.Fatalf("write detail document: %v", err)
	}

	c := NewCatalog("", dir, zaptest.NewLogger(t))

	detail, ok := c.DetailsFor(31)
	if !ok {
		t.Fatalf("expected detail from disk")
	}
	if detail.Title != "Disk Dal" || len(detail.Steps) != 1 {
		t.Fatalf("disk detail not loaded: %+v", detail)
	}
}

package mapping

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/sbenjam1n/eldesc/internal/catalog"
)

var testVars = []catalog.Variable{
	{ID: 1, Name: "material"},
	{ID: 2, Name: "thickness"},
	{ID: 3, Name: "width"},
	{ID: 4, Name: "diameter"},
}

func TestBindExact(t *testing.T) {
	res := Bind([]string{"material", "WIDTH"}, testVars, DefaultSynonyms())
	if len(res.Bindings) != 2 {
		t.Fatalf("expected 2 bindings, got %+v", res)
	}
	if res.Bindings[0].VariableID != 1 || res.Bindings[0].Strategy != "exact" {
		t.Errorf("material binding = %+v", res.Bindings[0])
	}
	if res.Bindings[1].VariableID != 3 || res.Bindings[1].Strategy != "exact" {
		t.Errorf("case-insensitive exact binding = %+v", res.Bindings[1])
	}
}

func TestBindSynonym(t *testing.T) {
	res := Bind([]string{"espesor"}, testVars, DefaultSynonyms())
	if len(res.Bindings) != 1 {
		t.Fatalf("expected 1 binding, got %+v", res)
	}
	b := res.Bindings[0]
	if b.VariableName != "thickness" || b.Strategy != "synonym" {
		t.Errorf("espesor should bind to thickness via synonym, got %+v", b)
	}
}

func TestBindSynonymBothDirections(t *testing.T) {
	vars := []catalog.Variable{{ID: 9, Name: "espesor"}}
	res := Bind([]string{"thickness"}, vars, DefaultSynonyms())
	if len(res.Bindings) != 1 || res.Bindings[0].VariableID != 9 {
		t.Errorf("reverse synonym lookup failed: %+v", res)
	}
}

func TestBindSubstring(t *testing.T) {
	res := Bind([]string{"diam"}, testVars, DefaultSynonyms())
	if len(res.Bindings) != 1 {
		t.Fatalf("expected 1 binding, got %+v", res)
	}
	b := res.Bindings[0]
	if b.VariableName != "diameter" || b.Strategy != "substring" {
		t.Errorf("diam should bind to diameter via substring, got %+v", b)
	}
}

func TestBindSubstringTooShort(t *testing.T) {
	vars := []catalog.Variable{{ID: 1, Name: "wi"}}
	res := Bind([]string{"width"}, vars, nil)
	if len(res.Bindings) != 0 {
		t.Errorf("two-character fragment must not bind, got %+v", res.Bindings)
	}
	if !reflect.DeepEqual(res.Unmatched, []string{"width"}) {
		t.Errorf("unmatched = %v", res.Unmatched)
	}
}

func TestBindStrategyRanking(t *testing.T) {
	// "material" matches vars[0] exactly and is also a substring of
	// "material_grade"; exact must win.
	vars := []catalog.Variable{
		{ID: 2, Name: "material_grade"},
		{ID: 1, Name: "material"},
	}
	res := Bind([]string{"material"}, vars, DefaultSynonyms())
	if len(res.Bindings) != 1 || res.Bindings[0].VariableID != 1 {
		t.Errorf("exact match should outrank substring, got %+v", res)
	}
	if res.Bindings[0].Strategy != "exact" {
		t.Errorf("strategy = %s, want exact", res.Bindings[0].Strategy)
	}
}

func TestBindUnmatched(t *testing.T) {
	res := Bind([]string{"material", "mystery"}, testVars, DefaultSynonyms())
	if len(res.Bindings) != 1 {
		t.Errorf("expected 1 binding, got %+v", res.Bindings)
	}
	if !reflect.DeepEqual(res.Unmatched, []string{"mystery"}) {
		t.Errorf("unmatched = %v, want [mystery]", res.Unmatched)
	}
}

func TestBindDuplicatesCollapse(t *testing.T) {
	res := Bind([]string{"material", "width", "material"}, testVars, DefaultSynonyms())
	if len(res.Bindings) != 2 {
		t.Fatalf("duplicates should collapse, got %+v", res.Bindings)
	}
	if res.Bindings[0].Position != 1 || res.Bindings[1].Position != 2 {
		t.Errorf("positions = %d, %d; want 1, 2", res.Bindings[0].Position, res.Bindings[1].Position)
	}
}

func TestLoadSynonymsFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "syn.yaml")
	content := `synonyms:
  depth: [profundidad, fondo]
`
	os.WriteFile(path, []byte(content), 0644)

	table, err := LoadSynonyms(path)
	if err != nil {
		t.Fatalf("LoadSynonyms: %v", err)
	}
	if !table.Synonymous("depth", "profundidad") {
		t.Error("loaded table should relate depth and profundidad")
	}
	if !table.Synonymous("fondo", "depth") {
		t.Error("loaded table should relate in both directions")
	}
	if table.Synonymous("depth", "width") {
		t.Error("unrelated terms must not be synonymous")
	}
}

func TestLoadSynonymsEmptyPath(t *testing.T) {
	table, err := LoadSynonyms("")
	if err != nil {
		t.Fatalf("LoadSynonyms(\"\"): %v", err)
	}
	if !table.Synonymous("strength", "resistencia") {
		t.Error("empty path should yield the built-in table")
	}
}

func TestLoadSynonymsBadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	os.WriteFile(path, []byte("synonyms: [not, a, map]"), 0644)

	if _, err := LoadSynonyms(path); err == nil {
		t.Error("expected parse error for malformed synonym file")
	}
}

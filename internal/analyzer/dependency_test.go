package analyzer

import "testing"

func TestDetectDependenciesLinear(t *testing.T) {
	// Bar weight grows with diameter; the weight token is never a direct
	// placeholder but correlates strongly.
	samples := []Sample{
		{Combination: map[string]string{"diameter": "10"}, Description: "Corrugated bar 10 mm, weight 0.62 kg/m"},
		{Combination: map[string]string{"diameter": "12"}, Description: "Corrugated bar 12 mm, weight 0.89 kg/m"},
		{Combination: map[string]string{"diameter": "16"}, Description: "Corrugated bar 16 mm, weight 1.58 kg/m"},
	}

	deps := DetectDependencies(samples)
	if len(deps) == 0 {
		t.Fatal("expected a numeric dependency, got none")
	}

	var found *Dependency
	for i := range deps {
		if deps[i].Variable == "diameter" && deps[i].Kind != "conditional" {
			found = &deps[i]
		}
	}
	if found == nil {
		t.Fatalf("no numeric dependency on diameter in %v", deps)
	}
	if found.Confidence <= 0.7 {
		t.Errorf("confidence = %v, want > 0.7", found.Confidence)
	}
	if found.Observations != 3 {
		t.Errorf("observations = %d, want 3", found.Observations)
	}
}

func TestDetectDependenciesExcludesDirectSpan(t *testing.T) {
	samples := []Sample{
		{Combination: map[string]string{"diameter": "10"}, Description: "Bar 10 mm, weight 0.62 kg/m"},
		{Combination: map[string]string{"diameter": "12"}, Description: "Bar 12 mm, weight 0.89 kg/m"},
		{Combination: map[string]string{"diameter": "16"}, Description: "Bar 16 mm, weight 1.58 kg/m"},
	}

	for _, d := range DetectDependencies(samples) {
		if d.Kind == "conditional" {
			continue
		}
		// The diameter token itself is a direct placeholder span, so the
		// only reported dependency must target the weight token.
		if d.Coefficient == 1.0 {
			t.Errorf("dependency points at the variable's own span: %+v", d)
		}
	}
}

func TestDetectDependenciesConditional(t *testing.T) {
	samples := []Sample{
		{Combination: map[string]string{"material": "steel", "finish": "galvanized"}, Description: "Steel post, galvanized"},
		{Combination: map[string]string{"material": "steel", "finish": "galvanized"}, Description: "Steel brace, galvanized"},
		{Combination: map[string]string{"material": "wood", "finish": "varnished"}, Description: "Wood post, varnished"},
	}

	deps := DetectDependencies(samples)
	var found bool
	for _, d := range deps {
		if d.Kind == "conditional" && d.Variable == "material=steel" && d.Context == "finish=galvanized" {
			found = true
			if d.Confidence <= 0.8 {
				t.Errorf("conditional confidence = %v, want > 0.8", d.Confidence)
			}
			if d.Observations != 2 {
				t.Errorf("observations = %d, want 2", d.Observations)
			}
		}
	}
	if !found {
		t.Errorf("expected conditional rule material=steel -> finish=galvanized, got %v", deps)
	}
}

func TestDetectDependenciesNeedsThreeSamples(t *testing.T) {
	samples := []Sample{
		{Combination: map[string]string{"diameter": "10"}, Description: "Bar 10 mm, weight 0.62 kg/m"},
		{Combination: map[string]string{"diameter": "12"}, Description: "Bar 12 mm, weight 0.89 kg/m"},
	}

	if deps := DetectDependencies(samples); deps != nil {
		t.Errorf("expected no dependencies below three samples, got %v", deps)
	}
}

func TestDetectDependenciesMultiChangeSkipped(t *testing.T) {
	// Comparisons differing in two variables are causally ambiguous and
	// must not feed the numeric analysis.
	samples := []Sample{
		{Combination: map[string]string{"diameter": "10", "length": "6"}, Description: "Bar 10 mm x 6 m, weight 0.62 kg/m"},
		{Combination: map[string]string{"diameter": "12", "length": "12"}, Description: "Bar 12 mm x 12 m, weight 0.89 kg/m"},
		{Combination: map[string]string{"diameter": "16", "length": "14"}, Description: "Bar 16 mm x 14 m, weight 1.58 kg/m"},
	}

	for _, d := range DetectDependencies(samples) {
		if d.Kind != "conditional" {
			t.Errorf("multi-variable changes should yield no numeric dependency, got %+v", d)
		}
	}
}

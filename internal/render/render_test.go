package render

import (
	"strings"
	"testing"
)

func TestRenderBasic(t *testing.T) {
	got := Render(
		"Wall {width} x {height} painted {color}",
		map[string]string{"width": "width", "height": "height", "color": "color"},
		map[string]string{"width": "3.0", "height": "2.5", "color": "white"},
		nil,
	)
	want := "Wall 3.0 x 2.5 painted white"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}
}

func TestRenderIdempotent(t *testing.T) {
	tmpl := "Beam {section} of {material}"
	binds := map[string]string{"section": "section", "material": "material"}
	values := map[string]string{"section": "IPE 200", "material": "S275"}

	first := Render(tmpl, binds, values, nil)
	second := Render(tmpl, binds, values, nil)
	if first != second {
		t.Errorf("rendering is not deterministic: %q vs %q", first, second)
	}
}

func TestRenderDefaultFallback(t *testing.T) {
	got := Render(
		"Door finish {finish}",
		map[string]string{"finish": "finish"},
		map[string]string{},
		map[string]string{"finish": "lacquered"},
	)
	if got != "Door finish lacquered" {
		t.Errorf("Render = %q, want default applied", got)
	}
}

func TestRenderValueBeatsDefault(t *testing.T) {
	got := Render(
		"Door finish {finish}",
		map[string]string{"finish": "finish"},
		map[string]string{"finish": "raw"},
		map[string]string{"finish": "lacquered"},
	)
	if got != "Door finish raw" {
		t.Errorf("Render = %q, instance value must beat default", got)
	}
}

func TestRenderUnsetValueEmptyString(t *testing.T) {
	// No value and no default: empty string, never the raw placeholder.
	got := Render(
		"Wall of {width} m",
		map[string]string{"width": "width"},
		nil,
		nil,
	)
	if got != "Wall of  m" {
		t.Errorf("Render = %q, want empty substitution", got)
	}
	if strings.Contains(got, "{width}") {
		t.Error("raw placeholder must not survive rendering")
	}
}

func TestRenderSuffixFallback(t *testing.T) {
	// material_1 has no direct binding; the digit-suffix strip resolves
	// it via material.
	got := Render(
		"Made of {material_1}",
		map[string]string{"material": "material"},
		map[string]string{"material": "oak"},
		nil,
	)
	if got != "Made of oak" {
		t.Errorf("Render = %q, want suffix fallback to material", got)
	}
}

func TestRenderMultiDigitSuffixFallback(t *testing.T) {
	got := Render(
		"Made of {material_12}",
		map[string]string{"material": "material"},
		map[string]string{"material": "pine"},
		nil,
	)
	if got != "Made of pine" {
		t.Errorf("Render = %q, want _12 suffix stripped", got)
	}
}

func TestRenderNoBindingAtAll(t *testing.T) {
	got := Render(
		"Value: {mystery}",
		map[string]string{},
		map[string]string{"mystery": "ignored"},
		nil,
	)
	// Without a binding the placeholder cannot reach any variable.
	if got != "Value: " {
		t.Errorf("Render = %q, want empty substitution", got)
	}
}

func TestRenderDuplicatePlaceholders(t *testing.T) {
	got := Render(
		"{color} frame with {color} panel",
		map[string]string{"color": "color"},
		map[string]string{"color": "gray"},
		nil,
	)
	if got != "gray frame with gray panel" {
		t.Errorf("Render = %q, every occurrence must substitute", got)
	}
}

func TestRenderStaticTemplate(t *testing.T) {
	tmpl := "Fixed description without parameters"
	if got := Render(tmpl, nil, nil, nil); got != tmpl {
		t.Errorf("Render = %q, static template must pass through", got)
	}
}

func TestRenderEmptyValuePresent(t *testing.T) {
	// An explicitly empty instance value is a value; the default does
	// not apply.
	got := Render(
		"Note: {note}",
		map[string]string{"note": "note"},
		map[string]string{"note": ""},
		map[string]string{"note": "n/a"},
	)
	if got != "Note: " {
		t.Errorf("Render = %q, explicit empty value must win", got)
	}
}

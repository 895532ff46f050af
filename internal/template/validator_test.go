package template

import (
	"reflect"
	"testing"

	"github.com/sbenjam1n/eldesc/internal/catalog"
)

func TestPlaceholders(t *testing.T) {
	tests := []struct {
		tmpl string
		want []string
	}{
		{"Wall painted {color}", []string{"color"}},
		{"{width} x {height} x {width}", []string{"width", "height"}},
		{"no placeholders here", nil},
		{"{_leading} and {name_2}", []string{"_leading", "name_2"}},
		{"{1bad} {also-bad} { spaced }", nil},
		{"", nil},
	}

	for _, tt := range tests {
		got := Placeholders(tt.tmpl)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("Placeholders(%q) = %v, want %v", tt.tmpl, got, tt.want)
		}
	}
}

func TestValidate(t *testing.T) {
	vars := []catalog.Variable{
		{Name: "width", Required: true},
		{Name: "height", Required: true},
		{Name: "finish", Required: false},
	}

	tests := []struct {
		name          string
		tmpl          string
		wantValid     bool
		wantMissing   []string
		wantUndefined []string
	}{
		{
			name:      "all required present",
			tmpl:      "Wall {width} x {height}",
			wantValid: true,
		},
		{
			name:      "optional included",
			tmpl:      "Wall {width} x {height}, finish {finish}",
			wantValid: true,
		},
		{
			name:          "missing required and undefined placeholder",
			tmpl:          "Wall {width} x {unknown}",
			wantValid:     false,
			wantMissing:   []string{"height"},
			wantUndefined: []string{"unknown"},
		},
		{
			name:        "static template with required vars",
			tmpl:        "Plain wall",
			wantValid:   false,
			wantMissing: []string{"width", "height"},
		},
		{
			name:          "undefined only",
			tmpl:          "Wall {width} x {height} in {color}",
			wantValid:     false,
			wantUndefined: []string{"color"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Validate(vars, tt.tmpl)
			if got.IsValid != tt.wantValid {
				t.Errorf("IsValid = %v, want %v", got.IsValid, tt.wantValid)
			}
			if !reflect.DeepEqual(got.MissingRequired, tt.wantMissing) {
				t.Errorf("MissingRequired = %v, want %v", got.MissingRequired, tt.wantMissing)
			}
			if !reflect.DeepEqual(got.UndefinedPlaceholders, tt.wantUndefined) {
				t.Errorf("UndefinedPlaceholders = %v, want %v", got.UndefinedPlaceholders, tt.wantUndefined)
			}
		})
	}
}

func TestValidateEmptyCatalog(t *testing.T) {
	got := Validate(nil, "static text")
	if !got.IsValid {
		t.Errorf("static template against empty catalog should be valid, got %+v", got)
	}

	got = Validate(nil, "has {placeholder}")
	if got.IsValid {
		t.Error("placeholder against empty catalog should be invalid")
	}
}

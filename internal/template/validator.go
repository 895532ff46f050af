package template

import (
	"regexp"

	"github.com/sbenjam1n/eldesc/internal/catalog"
)

var placeholderRe = regexp.MustCompile(`\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// Placeholders returns the distinct placeholder names in a template,
// in order of first appearance. Duplicate occurrences collapse.
func Placeholders(tmpl string) []string {
	seen := make(map[string]bool)
	var names []string
	for _, m := range placeholderRe.FindAllStringSubmatch(tmpl, -1) {
		name := m[1]
		if seen[name] {
			continue
		}
		seen[name] = true
		names = append(names, name)
	}
	return names
}

// Result is the outcome of validating a template against a variable catalog.
type Result struct {
	IsValid               bool
	MissingRequired       []string
	UndefinedPlaceholders []string
}

// Validate checks a template against an element's variables. The template
// is valid iff every placeholder names an existing variable and every
// required variable appears as a placeholder at least once. Both failure
// lists are reported; they are not mutually exclusive.
func Validate(vars []catalog.Variable, tmpl string) Result {
	byName := make(map[string]bool, len(vars))
	for _, v := range vars {
		byName[v.Name] = true
	}

	placeholders := Placeholders(tmpl)
	used := make(map[string]bool, len(placeholders))

	var undefined []string
	for _, p := range placeholders {
		used[p] = true
		if !byName[p] {
			undefined = append(undefined, p)
		}
	}

	var missing []string
	for _, v := range vars {
		if v.Required && !used[v.Name] {
			missing = append(missing, v.Name)
		}
	}

	return Result{
		IsValid:               len(missing) == 0 && len(undefined) == 0,
		MissingRequired:       missing,
		UndefinedPlaceholders: undefined,
	}
}

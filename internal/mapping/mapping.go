package mapping

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/sbenjam1n/eldesc/internal/catalog"
)

//go:embed synonyms.yaml
var defaultSynonymsYAML []byte

// SynonymTable maps a term to its interchangeable spellings. Lookup is
// case-insensitive and symmetric.
type SynonymTable map[string][]string

type synonymFile struct {
	Synonyms map[string][]string `yaml:"synonyms"`
}

// DefaultSynonyms returns the built-in domain table.
func DefaultSynonyms() SynonymTable {
	table, err := parseSynonyms(defaultSynonymsYAML)
	if err != nil {
		// The embedded table is fixed at build time.
		panic(fmt.Sprintf("embedded synonym table invalid: %v", err))
	}
	return table
}

// LoadSynonyms reads a synonym table from a YAML file. An empty path
// returns the built-in table.
func LoadSynonyms(path string) (SynonymTable, error) {
	if path == "" {
		return DefaultSynonyms(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read synonym table: %w", err)
	}
	table, err := parseSynonyms(data)
	if err != nil {
		return nil, fmt.Errorf("parse synonym table %s: %w", path, err)
	}
	return table, nil
}

func parseSynonyms(data []byte) (SynonymTable, error) {
	var f synonymFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	table := make(SynonymTable, len(f.Synonyms))
	for key, values := range f.Synonyms {
		table[strings.ToLower(key)] = lowerAll(values)
	}
	return table, nil
}

func lowerAll(values []string) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = strings.ToLower(v)
	}
	return out
}

// Synonymous reports whether two names are interchangeable per the table,
// in either direction.
func (t SynonymTable) Synonymous(a, b string) bool {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if contains(t[a], b) || contains(t[b], a) {
		return true
	}
	return false
}

func contains(values []string, s string) bool {
	for _, v := range values {
		if v == s {
			return true
		}
	}
	return false
}

// Binding ties one placeholder to a catalog variable.
type Binding struct {
	Placeholder  string
	VariableID   int64
	VariableName string
	Position     int
	Strategy     string
}

// BindResult carries the successful bindings plus the placeholders no
// strategy could match. Unmatched placeholders are a partial-success
// condition for the caller, not a failure.
type BindResult struct {
	Bindings  []Binding
	Unmatched []string
}

// minimum length of the shorter name for a substring match, so trivial
// fragments do not bind
const minSubstringLen = 3

// Bind matches each placeholder to a variable, trying strategies in rank
// order: exact case-insensitive, synonym table, then substring
// containment in either direction. Placeholders arrive in order of first
// appearance; position is 1-based over that order. Duplicates collapse
// to the first occurrence.
func Bind(placeholders []string, vars []catalog.Variable, syn SynonymTable) BindResult {
	var result BindResult
	seen := make(map[string]bool)
	position := 0

	for _, p := range placeholders {
		if seen[p] {
			continue
		}
		seen[p] = true
		position++

		v, strategy := match(p, vars, syn)
		if v == nil {
			result.Unmatched = append(result.Unmatched, p)
			continue
		}
		result.Bindings = append(result.Bindings, Binding{
			Placeholder:  p,
			VariableID:   v.ID,
			VariableName: v.Name,
			Position:     position,
			Strategy:     strategy,
		})
	}
	return result
}

func match(placeholder string, vars []catalog.Variable, syn SynonymTable) (*catalog.Variable, string) {
	p := strings.ToLower(placeholder)

	for i := range vars {
		if strings.ToLower(vars[i].Name) == p {
			return &vars[i], "exact"
		}
	}

	if syn != nil {
		for i := range vars {
			if syn.Synonymous(p, vars[i].Name) {
				return &vars[i], "synonym"
			}
		}
	}

	for i := range vars {
		name := strings.ToLower(vars[i].Name)
		shorter := len(p)
		if len(name) < shorter {
			shorter = len(name)
		}
		if shorter < minSubstringLen {
			continue
		}
		if strings.Contains(p, name) || strings.Contains(name, p) {
			return &vars[i], "substring"
		}
	}

	return nil, ""
}

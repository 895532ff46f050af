package analyzer

import (
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Sample is one observed description together with the variable
// combination it was rendered under.
type Sample struct {
	Combination map[string]string `json:"combination"`
	Description string            `json:"description"`
}

// Config tunes the difference analysis. The defaults mirror observed
// behavior on construction-catalog data; the acceptance threshold is a
// majority heuristic, not a semantically meaningful constant.
type Config struct {
	// AcceptThreshold is the minimum found/attempted ratio for a variable
	// to become a placeholder candidate.
	AcceptThreshold float64
	// MinValueLen excludes short non-numeric values that would match
	// inside unrelated words.
	MinValueLen int
	// UnitSuffixes are unit tokens tried after a numeric value when the
	// bare value is not found verbatim.
	UnitSuffixes []string
	// ExtraPatterns are additional regex templates tried last; the token
	// {value} is replaced by the quoted value before compiling.
	ExtraPatterns []string
}

// DefaultConfig returns the standard analysis configuration.
func DefaultConfig() Config {
	return Config{
		AcceptThreshold: 2.0 / 3.0,
		MinValueLen:     3,
		UnitSuffixes:    []string{"mm", "cm", "m"},
	}
}

// Candidate is a variable accepted as a placeholder, with the literal
// span of the base description it will replace.
type Candidate struct {
	Variable   string
	Value      string
	Span       string
	Confidence float64
	Found      int
	Attempted  int
}

// Analysis is the outcome of comparing samples against the base.
type Analysis struct {
	Base        Sample
	Candidates  []Candidate
	SampleCount int
}

// spanMatcher locates a value inside a description, returning the byte
// span of the matched text.
type spanMatcher func(text, value string) (start, end int, ok bool)

// spanMatchers returns the ranked matcher strategies: exact
// case-insensitive substring, unit-suffixed numeric, then the configured
// regex list.
func spanMatchers(cfg Config) []spanMatcher {
	matchers := []spanMatcher{matchExact}
	if len(cfg.UnitSuffixes) > 0 {
		matchers = append(matchers, matchUnitSuffixed(cfg.UnitSuffixes))
	}
	for _, pattern := range cfg.ExtraPatterns {
		matchers = append(matchers, matchPattern(pattern))
	}
	return matchers
}

func matchExact(text, value string) (int, int, bool) {
	idx := strings.Index(strings.ToLower(text), strings.ToLower(value))
	if idx < 0 {
		return 0, 0, false
	}
	return idx, idx + len(value), true
}

func matchUnitSuffixed(units []string) spanMatcher {
	return func(text, value string) (int, int, bool) {
		if !isNumeric(value) {
			return 0, 0, false
		}
		// Tolerate decimal-separator drift between the combination value
		// and the description ("40.5" written as "40,5 mm"). The span is
		// trimmed to the numeric portion so the unit stays literal in the
		// template.
		pat := regexp.QuoteMeta(value)
		pat = strings.ReplaceAll(pat, `\.`, `[.,]`)
		pat = strings.ReplaceAll(pat, `,`, `[.,]`)
		re, err := regexp.Compile(`(?i)(` + pat + `)\s*(?:` + strings.Join(units, "|") + `)\b`)
		if err != nil {
			return 0, 0, false
		}
		loc := re.FindStringSubmatchIndex(text)
		if loc == nil {
			return 0, 0, false
		}
		return loc[2], loc[3], true
	}
}

func matchPattern(pattern string) spanMatcher {
	return func(text, value string) (int, int, bool) {
		re, err := regexp.Compile(strings.ReplaceAll(pattern, "{value}", regexp.QuoteMeta(value)))
		if err != nil {
			return 0, 0, false
		}
		loc := re.FindStringIndex(text)
		if loc == nil {
			return 0, 0, false
		}
		return loc[0], loc[1], true
	}
}

func findSpan(matchers []spanMatcher, text, value string) (int, int, bool) {
	for _, m := range matchers {
		if start, end, ok := m(text, value); ok {
			return start, end, true
		}
	}
	return 0, 0, false
}

func isNumeric(s string) bool {
	_, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", "."), 64)
	return err == nil
}

// Analyze compares the base sample (the first) against the rest and
// reports the variables whose values can be located in the sample texts.
// Fewer than two samples yields no candidates.
func Analyze(samples []Sample, cfg Config) Analysis {
	a := Analysis{SampleCount: len(samples)}
	if len(samples) == 0 {
		return a
	}
	a.Base = samples[0]
	if len(samples) < 2 {
		return a
	}

	matchers := spanMatchers(cfg)

	names := make([]string, 0, len(a.Base.Combination))
	for name := range a.Base.Combination {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		baseVal := strings.TrimSpace(a.Base.Combination[name])
		if !usableValue(baseVal, cfg.MinValueLen) {
			continue
		}
		if !differsAcross(samples, name) {
			continue
		}

		found, attempted := 0, 0
		for _, s := range samples {
			val, ok := s.Combination[name]
			if !ok {
				continue
			}
			val = strings.TrimSpace(val)
			if !usableValue(val, cfg.MinValueLen) {
				continue
			}
			attempted++
			if _, _, ok := findSpan(matchers, s.Description, val); ok {
				found++
			}
		}
		if attempted == 0 {
			continue
		}

		need := int(math.Ceil(cfg.AcceptThreshold * float64(attempted)))
		if found < need {
			continue
		}

		start, end, ok := findSpan(matchers, a.Base.Description, baseVal)
		if !ok {
			continue
		}
		a.Candidates = append(a.Candidates, Candidate{
			Variable:   name,
			Value:      baseVal,
			Span:       a.Base.Description[start:end],
			Confidence: float64(found) / float64(attempted),
			Found:      found,
			Attempted:  attempted,
		})
	}
	return a
}

// usableValue rejects empty and short values. Numeric values bypass the
// length floor since they are matched with a unit suffix.
func usableValue(v string, minLen int) bool {
	if v == "" {
		return false
	}
	if isNumeric(v) {
		return true
	}
	return len([]rune(v)) >= minLen
}

func differsAcross(samples []Sample, name string) bool {
	base := samples[0].Combination[name]
	for _, s := range samples[1:] {
		if v, ok := s.Combination[name]; ok && v != base {
			return true
		}
	}
	return false
}

package analyzer

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Dependency is an advisory relationship between a variable and a value
// in the description text that was not captured as a direct placeholder.
// Hints for a reviewer; nothing downstream gates on them.
type Dependency struct {
	Variable     string
	Kind         string // "linear", "ratio", "conditional"
	Context      string
	Coefficient  float64
	Confidence   float64
	Observations int
}

func (d Dependency) String() string {
	switch d.Kind {
	case "conditional":
		return fmt.Sprintf("%s implies %s (p=%.2f, n=%d)", d.Variable, d.Context, d.Confidence, d.Observations)
	case "ratio":
		return fmt.Sprintf("%s scales value near %q by %.4g (confidence %.2f)", d.Variable, d.Context, d.Coefficient, d.Confidence)
	default:
		return fmt.Sprintf("%s correlates with value near %q (r=%.2f)", d.Variable, d.Context, d.Confidence)
	}
}

const (
	numericAcceptConfidence = 0.7
	conditionalAcceptProb   = 0.8
	contextBefore           = 30
	contextAfter            = 50
)

var numTokenRe = regexp.MustCompile(`-?\d+(?:[.,]\d+)?`)

type numToken struct {
	value   float64
	context string
}

// DetectDependencies looks for numeric scaling and categorical
// co-occurrence between variable values and description content. Needs
// at least three samples; groups comparisons that differ from the base
// in exactly one variable.
func DetectDependencies(samples []Sample) []Dependency {
	if len(samples) < 3 {
		return nil
	}

	var deps []Dependency
	deps = append(deps, detectNumeric(samples)...)
	deps = append(deps, detectConditional(samples)...)
	return deps
}

func detectNumeric(samples []Sample) []Dependency {
	base := samples[0]

	groups := make(map[string][]Sample)
	for _, s := range samples[1:] {
		if name, ok := singleChange(base, s); ok {
			groups[name] = append(groups[name], s)
		}
	}

	names := make([]string, 0, len(groups))
	for name := range groups {
		names = append(names, name)
	}
	sort.Strings(names)

	var deps []Dependency
	for _, name := range names {
		series := append([]Sample{base}, groups[name]...)
		if len(series) < 3 {
			continue
		}

		xs := make([]float64, 0, len(series))
		ok := true
		for _, s := range series {
			x, err := parseNumber(s.Combination[name])
			if err != nil {
				ok = false
				break
			}
			xs = append(xs, x)
		}
		if !ok || constant(xs) {
			continue
		}

		tokenSets := make([][]numToken, len(series))
		for i, s := range series {
			tokenSets[i] = extractTokens(s.Description)
		}

		baseTokens := tokenSets[0]
		for pos, bt := range baseTokens {
			ys := alignTokens(tokenSets, pos, bt)
			if ys == nil || constant(ys) {
				continue
			}
			// The variable's own span is a direct placeholder, not a
			// dependency.
			if sameSeries(xs, ys) {
				continue
			}

			kind, coeff, conf := bestFit(xs, ys)
			if conf > numericAcceptConfidence {
				deps = append(deps, Dependency{
					Variable:     name,
					Kind:         kind,
					Context:      bt.context,
					Coefficient:  coeff,
					Confidence:   conf,
					Observations: len(series),
				})
			}
		}
	}
	return deps
}

// alignTokens produces the y series for one base token position, pairing
// positionally when every sample has the same token count, otherwise by
// context similarity.
func alignTokens(tokenSets [][]numToken, pos int, bt numToken) []float64 {
	equalCounts := true
	for _, ts := range tokenSets[1:] {
		if len(ts) != len(tokenSets[0]) {
			equalCounts = false
			break
		}
	}

	ys := make([]float64, 0, len(tokenSets))
	ys = append(ys, bt.value)
	for _, ts := range tokenSets[1:] {
		if equalCounts {
			ys = append(ys, ts[pos].value)
			continue
		}
		best, bestSim := -1, 0.0
		for i, t := range ts {
			if sim := jaccard(bt.context, t.context); sim > bestSim {
				best, bestSim = i, sim
			}
		}
		if best < 0 || bestSim <= 0.6 {
			return nil
		}
		ys = append(ys, ts[best].value)
	}
	return ys
}

func detectConditional(samples []Sample) []Dependency {
	varNames := make(map[string]bool)
	for _, s := range samples {
		for name := range s.Combination {
			varNames[name] = true
		}
	}
	names := make([]string, 0, len(varNames))
	for name := range varNames {
		names = append(names, name)
	}
	sort.Strings(names)

	var deps []Dependency
	for _, v1 := range names {
		for _, v2 := range names {
			if v1 == v2 {
				continue
			}
			deps = append(deps, conditionalRules(samples, v1, v2)...)
		}
	}
	return deps
}

// conditionalRules accepts "v1=a implies v2=b" when the empirical
// conditional probability exceeds the threshold over at least two
// observations.
func conditionalRules(samples []Sample, v1, v2 string) []Dependency {
	counts := make(map[string]int)
	pairCounts := make(map[string]map[string]int)
	for _, s := range samples {
		a, ok1 := s.Combination[v1]
		b, ok2 := s.Combination[v2]
		if !ok1 || !ok2 || a == "" || b == "" {
			continue
		}
		counts[a]++
		if pairCounts[a] == nil {
			pairCounts[a] = make(map[string]int)
		}
		pairCounts[a][b]++
	}

	values := make([]string, 0, len(counts))
	for a := range counts {
		values = append(values, a)
	}
	sort.Strings(values)

	var deps []Dependency
	for _, a := range values {
		if counts[a] < 2 {
			continue
		}
		for b, n := range pairCounts[a] {
			p := float64(n) / float64(counts[a])
			if p > conditionalAcceptProb {
				deps = append(deps, Dependency{
					Variable:     fmt.Sprintf("%s=%s", v1, a),
					Kind:         "conditional",
					Context:      fmt.Sprintf("%s=%s", v2, b),
					Confidence:   p,
					Observations: counts[a],
				})
			}
		}
	}
	return deps
}

func singleChange(base, s Sample) (string, bool) {
	changed := ""
	for name, v := range s.Combination {
		if base.Combination[name] != v {
			if changed != "" {
				return "", false
			}
			changed = name
		}
	}
	return changed, changed != ""
}

func extractTokens(text string) []numToken {
	runes := []rune(text)
	var tokens []numToken
	for _, loc := range numTokenRe.FindAllStringIndex(text, -1) {
		v, err := parseNumber(text[loc[0]:loc[1]])
		if err != nil {
			continue
		}
		// byte offsets -> rune offsets for the context window
		start := len([]rune(text[:loc[0]]))
		end := len([]rune(text[:loc[1]]))
		from := max(0, start-contextBefore)
		to := min(len(runes), end+contextAfter)
		tokens = append(tokens, numToken{value: v, context: string(runes[from:to])})
	}
	return tokens
}

func parseNumber(s string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(s), ",", "."), 64)
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}

func sameSeries(xs, ys []float64) bool {
	for i := range xs {
		if math.Abs(xs[i]-ys[i]) > 1e-9 {
			return false
		}
	}
	return true
}

// bestFit scores Pearson correlation, a multiplicative ratio fit, and a
// least-squares line, keeping the strongest.
func bestFit(xs, ys []float64) (kind string, coeff, conf float64) {
	kind, conf = "linear", math.Abs(pearson(xs, ys))
	_, coeff = leastSquares(xs, ys)

	if ratioMean, ratioConf, ok := ratioFit(xs, ys); ok && ratioConf > conf {
		return "ratio", ratioMean, ratioConf
	}
	if r2 := rSquared(xs, ys); r2 > conf {
		conf = r2
	}
	return kind, coeff, conf
}

func pearson(xs, ys []float64) float64 {
	n := float64(len(xs))
	mx, my := mean(xs), mean(ys)
	var cov, vx, vy float64
	for i := range xs {
		cov += (xs[i] - mx) * (ys[i] - my)
		vx += (xs[i] - mx) * (xs[i] - mx)
		vy += (ys[i] - my) * (ys[i] - my)
	}
	if vx == 0 || vy == 0 || n < 2 {
		return 0
	}
	return cov / math.Sqrt(vx*vy)
}

// ratioFit models y = k*x; confidence falls off with the coefficient of
// variation of the per-sample ratios.
func ratioFit(xs, ys []float64) (meanRatio, confidence float64, ok bool) {
	ratios := make([]float64, 0, len(xs))
	for i := range xs {
		if xs[i] == 0 {
			return 0, 0, false
		}
		ratios = append(ratios, ys[i]/xs[i])
	}
	m := mean(ratios)
	if m == 0 {
		return 0, 0, false
	}
	var variance float64
	for _, r := range ratios {
		variance += (r - m) * (r - m)
	}
	cv := math.Sqrt(variance/float64(len(ratios))) / math.Abs(m)
	return m, math.Max(0, 1-cv/0.2), true
}

func leastSquares(xs, ys []float64) (intercept, slope float64) {
	mx, my := mean(xs), mean(ys)
	var num, den float64
	for i := range xs {
		num += (xs[i] - mx) * (ys[i] - my)
		den += (xs[i] - mx) * (xs[i] - mx)
	}
	if den == 0 {
		return my, 0
	}
	slope = num / den
	return my - slope*mx, slope
}

func rSquared(xs, ys []float64) float64 {
	intercept, slope := leastSquares(xs, ys)
	my := mean(ys)
	var ssRes, ssTot float64
	for i := range xs {
		pred := intercept + slope*xs[i]
		ssRes += (ys[i] - pred) * (ys[i] - pred)
		ssTot += (ys[i] - my) * (ys[i] - my)
	}
	if ssTot == 0 {
		return 0
	}
	return 1 - ssRes/ssTot
}

func mean(xs []float64) float64 {
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

func jaccard(a, b string) float64 {
	wa := wordSet(a)
	wb := wordSet(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	inter := 0
	for w := range wa {
		if wb[w] {
			inter++
		}
	}
	return float64(inter) / float64(len(wa)+len(wb)-inter)
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(strings.ToLower(s)) {
		w = strings.Trim(w, ".,;:()")
		if w != "" && !numTokenRe.MatchString(w) {
			set[w] = true
		}
	}
	return set
}

package analyzer

import (
	"fmt"
	"sort"
	"strings"

	"github.com/sbenjam1n/eldesc/internal/template"
)

// Template is a synthesized description template with placeholders.
type Template struct {
	TemplateText string
	Placeholders []string
	Confidence   float64
	SampleCount  int
	// Static marks a template with no placeholders. A valid outcome,
	// just a lower-value one.
	Static bool
}

// Synthesize runs the difference analysis and folds the accepted
// candidates into the base sample text, replacing the first occurrence
// of each span with its placeholder. Longer spans go first so that a
// value contained in another value does not clobber it.
func Synthesize(samples []Sample, cfg Config) (*Template, error) {
	if len(samples) == 0 {
		return nil, fmt.Errorf("cannot synthesize from zero samples")
	}

	analysis := Analyze(samples, cfg)
	text := samples[0].Description

	if len(analysis.Candidates) == 0 {
		return &Template{
			TemplateText: text,
			SampleCount:  len(samples),
			Static:       true,
		}, nil
	}

	candidates := make([]Candidate, len(analysis.Candidates))
	copy(candidates, analysis.Candidates)
	sort.SliceStable(candidates, func(i, j int) bool {
		return len(candidates[i].Span) > len(candidates[j].Span)
	})

	var sum float64
	for _, c := range candidates {
		text = strings.Replace(text, c.Span, "{"+c.Variable+"}", 1)
		sum += c.Confidence
	}

	return &Template{
		TemplateText: text,
		Placeholders: template.Placeholders(text),
		Confidence:   sum / float64(len(candidates)),
		SampleCount:  len(samples),
	}, nil
}

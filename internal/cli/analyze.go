package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sbenjam1n/eldesc/internal/analyzer"
	"github.com/spf13/cobra"
)

var (
	analyzeThreshold float64
	analyzeMinLen    int
	analyzeDeps      bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <samples.json>",
	Short: "Synthesize a template from description samples",
	Long: `Synthesize a {placeholder} template from a JSON file of samples:

  [
    {"combination": {"color": "red"}, "description": "Wall painted red"},
    {"combination": {"color": "blue"}, "description": "Wall painted blue"}
  ]

The first sample is the base; the rest are compared against it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		samples, err := readSamples(args[0])
		if err != nil {
			return err
		}

		cfg := analyzer.DefaultConfig()
		if analyzeThreshold > 0 {
			cfg.AcceptThreshold = analyzeThreshold
		}
		if analyzeMinLen > 0 {
			cfg.MinValueLen = analyzeMinLen
		}

		tmpl, err := analyzer.Synthesize(samples, cfg)
		if err != nil {
			return err
		}

		fmt.Printf("Template: %s\n", tmpl.TemplateText)
		if tmpl.Static {
			fmt.Println("Static template: no variable-bearing spans found.")
		} else {
			fmt.Printf("Placeholders: %v\n", tmpl.Placeholders)
			fmt.Printf("Confidence: %.2f over %d samples\n", tmpl.Confidence, tmpl.SampleCount)

			analysis := analyzer.Analyze(samples, cfg)
			for _, c := range analysis.Candidates {
				fmt.Printf("  {%s}  %q found %d/%d (%.2f)\n",
					c.Variable, c.Span, c.Found, c.Attempted, c.Confidence)
			}
		}

		if analyzeDeps {
			deps := analyzer.DetectDependencies(samples)
			if len(deps) == 0 {
				fmt.Println("\nNo advisory dependencies detected.")
			} else {
				fmt.Printf("\nAdvisory dependencies (%d):\n", len(deps))
				for _, d := range deps {
					fmt.Printf("  %s\n", d)
				}
			}
		}
		return nil
	},
}

func readSamples(path string) ([]analyzer.Sample, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read samples: %w", err)
	}
	var samples []analyzer.Sample
	if err := json.Unmarshal(data, &samples); err != nil {
		return nil, fmt.Errorf("parse samples %s: %w", path, err)
	}
	return samples, nil
}

func init() {
	analyzeCmd.Flags().Float64Var(&analyzeThreshold, "threshold", 0, "Acceptance threshold (default 2/3)")
	analyzeCmd.Flags().IntVar(&analyzeMinLen, "min-len", 0, "Minimum value length (default 3)")
	analyzeCmd.Flags().BoolVar(&analyzeDeps, "deps", false, "Also report advisory dependencies")
}

package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sbenjam1n/eldesc/internal/analyzer"
	"github.com/sbenjam1n/eldesc/internal/catalog"
	"github.com/sbenjam1n/eldesc/internal/version"
	"github.com/spf13/cobra"
)

var (
	proposeFromSamples string
	proposeBy          string
	approveBy          string
	approveComment     string
	rejectBy           string
	rejectReason       string
	versionsPending    bool
)

var proposeCmd = &cobra.Command{
	Use:   "propose <element-code> [template]",
	Short: "Propose a description template for an element",
	Long: `Propose a template, either given inline or synthesized from a
samples file with --from-samples. The template is validated against the
element's variables before anything is persisted.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var tmpl string
		switch {
		case len(args) == 2 && proposeFromSamples != "":
			return fmt.Errorf("give either an inline template or --from-samples, not both")
		case len(args) == 2:
			tmpl = args[1]
		case proposeFromSamples != "":
			samples, err := readSamples(proposeFromSamples)
			if err != nil {
				return err
			}
			synth, err := analyzer.Synthesize(samples, analyzer.DefaultConfig())
			if err != nil {
				return err
			}
			tmpl = synth.TemplateText
			fmt.Printf("Synthesized template (confidence %.2f): %s\n", synth.Confidence, tmpl)
		default:
			return fmt.Errorf("a template or --from-samples is required")
		}

		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		e, err := catalog.NewStore(pool).ElementByCode(ctx, args[0])
		if err != nil {
			return err
		}

		synonyms, err := loadSynonyms()
		if err != nil {
			return err
		}

		store := version.NewStore(pool, synonyms)
		result, err := store.CreateProposal(ctx, e.ID, tmpl, proposeBy)
		if err != nil {
			return err
		}

		v := result.Version
		fmt.Printf("Created version %d for %s (id %d, state %s)\n",
			v.Number, e.Code, v.ID, v.State.Label())
		for _, b := range result.Bindings {
			fmt.Printf("  {%s} -> %s (%s)\n", b.Placeholder, b.VariableName, b.Strategy)
		}
		for _, p := range result.Unmatched {
			fmt.Printf("  warning: placeholder {%s} matched no variable\n", p)
		}
		return nil
	},
}

var approveCmd = &cobra.Command{
	Use:   "approve <version-id>",
	Short: "Advance a version one approval step",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if approveBy == "" {
			return fmt.Errorf("--by is required")
		}
		versionID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version id %q", args[0])
		}

		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := version.NewStore(pool, nil)
		result, err := store.Approve(ctx, versionID, approveBy, approveComment)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		if result.Success && result.NewState == version.StateActive {
			fmt.Println("Version is now active; existing instances keep their bound version.")
		}
		return nil
	},
}

var rejectCmd = &cobra.Command{
	Use:   "reject <version-id>",
	Short: "Reject a version in review",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if rejectBy == "" {
			return fmt.Errorf("--by is required")
		}
		versionID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid version id %q", args[0])
		}

		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := version.NewStore(pool, nil)
		result, err := store.Reject(ctx, versionID, rejectBy, rejectReason)
		if err != nil {
			return err
		}
		fmt.Println(result.Message)
		return nil
	},
}

var versionsCmd = &cobra.Command{
	Use:   "versions [element-code]",
	Short: "List an element's versions, or all pending proposals",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := version.NewStore(pool, nil)

		if versionsPending {
			pending, err := store.PendingProposals(ctx)
			if err != nil {
				return err
			}
			if len(pending) == 0 {
				fmt.Println("No pending proposals.")
				return nil
			}
			for _, v := range pending {
				fmt.Printf("version %d (element %d, v%d, %s): %s\n",
					v.ID, v.ElementID, v.Number, v.State.Label(), v.Template)
			}
			return nil
		}

		if len(args) == 0 {
			return fmt.Errorf("an element code or --pending is required")
		}
		e, err := catalog.NewStore(pool).ElementByCode(ctx, args[0])
		if err != nil {
			return err
		}
		versions, err := store.ListVersions(ctx, e.ID)
		if err != nil {
			return err
		}
		if len(versions) == 0 {
			fmt.Println("No versions.")
			return nil
		}
		for _, v := range versions {
			marker := " "
			if v.Active {
				marker = "*"
			}
			fmt.Printf("%s v%-3d id %-5d %-9s %s\n", marker, v.Number, v.ID, v.State.Label(), v.Template)

			approvals, err := store.Approvals(ctx, v.ID)
			if err != nil {
				return err
			}
			for _, a := range approvals {
				line := fmt.Sprintf("      %s -> %s by %s", a.From.Label(), a.To.Label(), a.ApprovedBy)
				if a.Comments != "" {
					line += ": " + a.Comments
				}
				fmt.Println(line)
			}
		}
		return nil
	},
}

func init() {
	proposeCmd.Flags().StringVar(&proposeFromSamples, "from-samples", "", "Synthesize the template from a samples JSON file")
	proposeCmd.Flags().StringVar(&proposeBy, "by", "", "Author")

	approveCmd.Flags().StringVar(&approveBy, "by", "", "Approver")
	approveCmd.Flags().StringVar(&approveComment, "comment", "", "Approval comment")

	rejectCmd.Flags().StringVar(&rejectBy, "by", "", "Reviewer")
	rejectCmd.Flags().StringVar(&rejectReason, "reason", "", "Rejection reason")

	versionsCmd.Flags().BoolVar(&versionsPending, "pending", false, "List all versions still in review")
}

package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/sbenjam1n/eldesc/internal/render"
	"github.com/spf13/cobra"
)

var renderCmd = &cobra.Command{
	Use:   "render <instance-id>",
	Short: "Render an instance's description now",
	Long: `Render one instance synchronously, refresh its cached text, and print
the result. Unresolved variables degrade to their default value or the
empty string; rendering never fails on a missing value.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		instanceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid instance id %q", args[0])
		}

		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		text, err := render.NewService(pool, nil).RenderInstance(ctx, instanceID)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	},
}

package cli

import (
	"context"
	"fmt"

	"github.com/sbenjam1n/eldesc/internal/queue"
	"github.com/spf13/cobra"
)

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Inspect the invalidation queue",
}

var queueStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the invalidation stream length",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		rdb, err := connectRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		n, err := queue.New(rdb).Status(ctx)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d messages\n", queue.StreamInvalidations, n)
		return nil
	},
}

func init() {
	queueCmd.AddCommand(queueStatusCmd)
}

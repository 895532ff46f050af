package cli

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/sbenjam1n/eldesc/internal/renderer"
	"github.com/spf13/cobra"
)

var rendererConsumer string

var rendererCmd = &cobra.Command{
	Use:   "renderer",
	Short: "Run a renderer worker consuming invalidation events",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		rdb, err := connectRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		fmt.Printf("Renderer worker %s started; waiting for invalidations...\n", rendererConsumer)
		err = renderer.New(pool, rdb, rendererConsumer).Run(ctx)
		if err == context.Canceled {
			fmt.Println("Renderer worker stopped.")
			return nil
		}
		return err
	},
}

func init() {
	rendererCmd.Flags().StringVar(&rendererConsumer, "consumer", "renderer_1", "Consumer name within the renderer pool")
}

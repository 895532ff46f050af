package cli

import (
	"context"
	"fmt"

	"github.com/sbenjam1n/eldesc/internal/db"
	"github.com/sbenjam1n/eldesc/internal/queue"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize the PostgreSQL schema and Redis streams",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		fmt.Println("Connecting to PostgreSQL...")
		pool, err := connectDB(ctx)
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pool.Close()

		fmt.Println("Running migrations...")
		if err := db.Migrate(ctx, pool, migrationsDir()); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("PostgreSQL schema created")

		fmt.Println("Connecting to Redis...")
		rdb, err := connectRedis()
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer rdb.Close()

		q := queue.New(rdb)
		if err := q.EnsureStreams(ctx); err != nil {
			return fmt.Errorf("redis stream setup failed: %w", err)
		}
		fmt.Println("Redis streams created")

		fmt.Println("\neldesc initialized successfully.")
		fmt.Println("Next steps:")
		fmt.Println("  1. Run: eldesc element add --code <code> --name <name>")
		fmt.Println("  2. Run: eldesc variable add <element-code> <name> --type <type>")
		fmt.Println("  3. Run: eldesc propose <element-code> <template> --by <author>")
		return nil
	},
}

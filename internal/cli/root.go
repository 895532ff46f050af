package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sbenjam1n/eldesc/internal/config"
	"github.com/sbenjam1n/eldesc/internal/db"
	"github.com/sbenjam1n/eldesc/internal/mapping"
	"github.com/spf13/cobra"
)

var (
	cfg     *config.Config
	rootCmd = &cobra.Command{
		Use:   "eldesc",
		Short: "Parametric element descriptions: infer templates from samples, approve, render",
		Long: `eldesc manages parametric textual descriptions for catalog elements.

It infers {placeholder} templates from rendered description samples,
validates them against the element's variable catalog, carries each
template through a multi-stage approval pipeline, and renders concrete
descriptions for project instances.

Typical flow:
  eldesc init
  eldesc element add --code W01 --name "Partition wall"
  eldesc variable add W01 width --type numeric --required
  eldesc analyze samples.json
  eldesc propose W01 --from-samples samples.json --by alice
  eldesc approve <version-id> --by bob
  eldesc instance add --project P1 --element W01 --code W01-001
  eldesc render <instance-id>`,
	}
)

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(elementCmd)
	rootCmd.AddCommand(variableCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(proposeCmd)
	rootCmd.AddCommand(approveCmd)
	rootCmd.AddCommand(rejectCmd)
	rootCmd.AddCommand(versionsCmd)
	rootCmd.AddCommand(instanceCmd)
	rootCmd.AddCommand(renderCmd)
	rootCmd.AddCommand(rendererCmd)
	rootCmd.AddCommand(queueCmd)
}

func initConfig() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
}

func connectDB(ctx context.Context) (*pgxpool.Pool, error) {
	pool, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w\nSet ELDESC_DATABASE_URL environment variable", err)
	}
	return pool, nil
}

func connectRedis() (*redis.Client, error) {
	opts, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w\nSet ELDESC_REDIS_URL environment variable", err)
	}
	return redis.NewClient(opts), nil
}

func loadSynonyms() (mapping.SynonymTable, error) {
	return mapping.LoadSynonyms(cfg.SynonymsPath)
}

func migrationsDir() string {
	return filepath.Join(cfg.ProjectRoot, "migrations")
}

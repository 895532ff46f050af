package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/sbenjam1n/eldesc/internal/catalog"
	"github.com/sbenjam1n/eldesc/internal/queue"
	"github.com/sbenjam1n/eldesc/internal/render"
	"github.com/sbenjam1n/eldesc/internal/version"
	"github.com/spf13/cobra"
)

var instanceCmd = &cobra.Command{
	Use:   "instance",
	Short: "Manage project element instances",
}

var (
	instProject  string
	instElement  string
	instCode     string
	instName     string
	instLocation string
	instBy       string
)

var instanceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Place an element in a project, bound to its active version",
	RunE: func(cmd *cobra.Command, args []string) error {
		if instProject == "" || instElement == "" || instCode == "" {
			return fmt.Errorf("--project, --element and --code are required")
		}

		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := catalog.NewStore(pool)
		e, err := store.ElementByCode(ctx, instElement)
		if err != nil {
			return err
		}

		active, err := version.NewStore(pool, nil).ActiveVersion(ctx, e.ID)
		if err != nil {
			return err
		}
		if active == nil {
			return fmt.Errorf("element %s has no active description version", e.Code)
		}

		project, err := store.EnsureProject(ctx, instProject, "", instBy)
		if err != nil {
			return err
		}

		inst := &catalog.Instance{
			ProjectID: project.ID,
			ElementID: e.ID,
			VersionID: active.ID,
			Code:      instCode,
			Name:      instName,
			Location:  instLocation,
			CreatedBy: instBy,
		}
		if err := store.AddInstance(ctx, inst); err != nil {
			return err
		}
		fmt.Printf("Created instance %s (id %d) of %s in project %s, bound to version %d\n",
			inst.Code, inst.ID, e.Code, project.Code, active.Number)
		return nil
	},
}

var instanceSetCmd = &cobra.Command{
	Use:   "set <instance-id> <name>=<value> [<name>=<value>...]",
	Short: "Set instance variable values",
	Long: `Set one or more variable values on an instance. The cached rendered
description is marked stale and an invalidation is queued for the
renderer workers.`,
	Args: cobra.MinimumNArgs(2),
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

		store := catalog.NewStore(pool)
		inst, err := store.Instance(ctx, instanceID)
		if err != nil {
			return err
		}

		for _, pair := range args[1:] {
			name, value, ok := strings.Cut(pair, "=")
			if !ok {
				return fmt.Errorf("expected <name>=<value>, got %q", pair)
			}
			if err := store.SetInstanceValue(ctx, instanceID, name, value, instBy); err != nil {
				return err
			}
			fmt.Printf("Set %s = %s\n", name, value)
		}

		rdb, err := connectRedis()
		if err != nil {
			return err
		}
		defer rdb.Close()

		svc := render.NewService(pool, queue.New(rdb))
		if err := svc.MarkStale(ctx, inst.ID, "value_changed"); err != nil {
			return err
		}
		fmt.Printf("Instance %s marked stale; invalidation queued.\n", inst.Code)
		return nil
	},
}

func init() {
	instanceAddCmd.Flags().StringVar(&instProject, "project", "", "Project code (created if missing)")
	instanceAddCmd.Flags().StringVar(&instElement, "element", "", "Element code")
	instanceAddCmd.Flags().StringVar(&instCode, "code", "", "Instance code, unique within the project")
	instanceAddCmd.Flags().StringVar(&instName, "name", "", "Instance name")
	instanceAddCmd.Flags().StringVar(&instLocation, "location", "", "Location within the project")
	instanceAddCmd.Flags().StringVar(&instBy, "by", "", "Creator")

	instanceSetCmd.Flags().StringVar(&instBy, "by", "", "Editor")

	instanceCmd.AddCommand(instanceAddCmd)
	instanceCmd.AddCommand(instanceSetCmd)
}

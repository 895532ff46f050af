package cli

import (
	"context"
	"fmt"

	"github.com/sbenjam1n/eldesc/internal/catalog"
	"github.com/sbenjam1n/eldesc/internal/version"
	"github.com/spf13/cobra"
)

var elementCmd = &cobra.Command{
	Use:   "element",
	Short: "Manage catalog elements",
}

var (
	elementCode     string
	elementName     string
	elementCategory string
	elementBy       string
)

var elementAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a catalog element",
	RunE: func(cmd *cobra.Command, args []string) error {
		if elementCode == "" || elementName == "" {
			return fmt.Errorf("--code and --name are required")
		}

		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := catalog.NewStore(pool)
		e, err := store.CreateElement(ctx, elementCode, elementName, elementCategory, elementBy)
		if err != nil {
			return err
		}
		fmt.Printf("Created element %s (id %d): %s\n", e.Code, e.ID, e.Name)
		return nil
	},
}

var elementListCmd = &cobra.Command{
	Use:   "list",
	Short: "List catalog elements",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		elements, err := catalog.NewStore(pool).ListElements(ctx)
		if err != nil {
			return err
		}
		if len(elements) == 0 {
			fmt.Println("No elements.")
			return nil
		}
		for _, e := range elements {
			line := fmt.Sprintf("%-12s %s", e.Code, e.Name)
			if e.Category != "" {
				line += fmt.Sprintf("  [%s]", e.Category)
			}
			fmt.Println(line)
		}
		return nil
	},
}

var elementShowCmd = &cobra.Command{
	Use:   "show <element-code>",
	Short: "Show an element's variables and active version",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		pool, err := connectDB(ctx)
		if err != nil {
			return err
		}
		defer pool.Close()

		store := catalog.NewStore(pool)
		e, err := store.ElementByCode(ctx, args[0])
		if err != nil {
			return err
		}

		fmt.Printf("Element %s (id %d): %s\n", e.Code, e.ID, e.Name)
		if e.Category != "" {
			fmt.Printf("Category: %s\n", e.Category)
		}

		vars, err := store.Variables(ctx, e.ID)
		if err != nil {
			return err
		}
		fmt.Printf("\nVariables (%d):\n", len(vars))
		for _, v := range vars {
			printVariable(v)
		}

		versions := version.NewStore(pool, nil)
		active, err := versions.ActiveVersion(ctx, e.ID)
		if err != nil {
			return err
		}
		if active == nil {
			fmt.Println("\nNo active description version.")
			return nil
		}
		fmt.Printf("\nActive version %d (state %s):\n  %s\n",
			active.Number, active.State.Label(), active.Template)

		binds, err := versions.Mappings(ctx, active.ID)
		if err != nil {
			return err
		}
		for _, b := range binds {
			fmt.Printf("  %d. {%s} -> %s\n", b.Position, b.Placeholder, b.VariableName)
		}
		return nil
	},
}

func printVariable(v catalog.Variable) {
	flags := ""
	if v.Required {
		flags += " required"
	}
	if v.Unit != "" {
		flags += " unit=" + v.Unit
	}
	if v.DefaultValue != "" {
		flags += " default=" + v.DefaultValue
	}
	fmt.Printf("  %-20s %-12s%s\n", v.Name, v.Type, flags)
	for _, o := range v.Options {
		marker := " "
		if o.IsDefault {
			marker = "*"
		}
		label := o.Value
		if o.Label != "" {
			label += " (" + o.Label + ")"
		}
		fmt.Printf("    %s %s\n", marker, label)
	}
}

func init() {
	elementAddCmd.Flags().StringVar(&elementCode, "code", "", "Unique element code")
	elementAddCmd.Flags().StringVar(&elementName, "name", "", "Display name")
	elementAddCmd.Flags().StringVar(&elementCategory, "category", "", "Category label")
	elementAddCmd.Flags().StringVar(&elementBy, "by", "", "Creator")

	elementCmd.AddCommand(elementAddCmd)
	elementCmd.AddCommand(elementListCmd)
	elementCmd.AddCommand(elementShowCmd)
}

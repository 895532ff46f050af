package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/sbenjam1n/eldesc/internal/catalog"
	"github.com/spf13/cobra"
)

var variableCmd = &cobra.Command{
	Use:   "variable",
	Short: "Manage element variables",
}

var (
	varType          string
	varUnit          string
	varDefault       string
	varRequired      bool
	varOrder         int
	varOptions       []string
	varDefaultOption string
)

var variableAddCmd = &cobra.Command{
	Use:   "add <element-code> <variable-name>",
	Short: "Add a variable to an element",
	Long: `Add a variable to an element.

Options for categorical variables are given as repeated --option flags,
each "value" or "value:label". Example:

  eldesc variable add W01 finish --type categorical \
      --option matte:Matte --option gloss:Gloss --default-option matte`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		vt, err := catalog.ParseVariableType(varType)
		if err != nil {
			return err
		}
		if len(varOptions) > 0 && !vt.HasOptions() {
			return fmt.Errorf("--option only applies to categorical variables")
		}

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

		v := &catalog.Variable{
			ElementID:    e.ID,
			Name:         args[1],
			Type:         vt,
			Unit:         varUnit,
			DefaultValue: varDefault,
			Required:     varRequired,
			DisplayOrder: varOrder,
		}
		if err := store.AddVariable(ctx, v); err != nil {
			return err
		}
		fmt.Printf("Added variable %s (%s) to %s\n", v.Name, v.Type, e.Code)

		for i, spec := range varOptions {
			value, label, _ := strings.Cut(spec, ":")
			o := &catalog.Option{
				VariableID:   v.ID,
				Value:        value,
				Label:        label,
				DisplayOrder: i,
			}
			if err := store.AddOption(ctx, o); err != nil {
				return err
			}
		}
		if varDefaultOption != "" {
			if err := store.SetDefaultOption(ctx, v.ID, varDefaultOption); err != nil {
				return err
			}
		}
		if len(varOptions) > 0 {
			fmt.Printf("Added %d options\n", len(varOptions))
		}
		return nil
	},
}

var variableListCmd = &cobra.Command{
	Use:   "list <element-code>",
	Short: "List an element's variables",
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
		vars, err := store.Variables(ctx, e.ID)
		if err != nil {
			return err
		}
		if len(vars) == 0 {
			fmt.Println("No variables.")
			return nil
		}
		for _, v := range vars {
			printVariable(v)
		}
		return nil
	},
}

func init() {
	variableAddCmd.Flags().StringVar(&varType, "type", "text", "Variable type: text, numeric, date, categorical")
	variableAddCmd.Flags().StringVar(&varUnit, "unit", "", "Unit (mm, cm, m, ...)")
	variableAddCmd.Flags().StringVar(&varDefault, "default", "", "Default value")
	variableAddCmd.Flags().BoolVar(&varRequired, "required", false, "Required in templates")
	variableAddCmd.Flags().IntVar(&varOrder, "order", 0, "Display order")
	variableAddCmd.Flags().StringArrayVar(&varOptions, "option", nil, "Option as value or value:label (repeatable)")
	variableAddCmd.Flags().StringVar(&varDefaultOption, "default-option", "", "Option value to mark as default")

	variableCmd.AddCommand(variableAddCmd)
	variableCmd.AddCommand(variableListCmd)
}

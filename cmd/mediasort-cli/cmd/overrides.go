package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"mediasort/internal/adapters/jsonfile"
	"mediasort/internal/application/commands"
)

var overridesCmd = &cobra.Command{
	Use:   "overrides",
	Short: "Manage classification overrides",
}

var overridesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored overrides",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		overrides, err := commands.NewListOverridesCommand(GetWorkspace().Store).Execute(cmd.Context())
		if err != nil {
			return err
		}
		if len(overrides) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No overrides.")
			return nil
		}

		rows := make([][]string, len(overrides))
		for i, o := range overrides {
			rows[i] = []string{
				o.Key,
				o.Category,
				valueOr(o.Subcategory, "-"),
				valueOr(string(o.Stage), "-"),
				o.Notes,
				formatAge(o.CreatedAt),
			}
		}
		printTable(cmd.OutOrStdout(), []string{"Key", "Category", "Subcategory", "Stage", "Notes", "Created"}, rows, nil)
		return nil
	},
}

var overridesImportCmd = &cobra.Command{
	Use:   "import <plan.json>",
	Short: "Import a prior-run plan as overrides",
	Long: `Import a plan produced by an earlier tool run. The file is a JSON array
of entries, or an object with an "overrides" array. Each entry carries a
path or fileName plus category, and optionally subcategory, stage and notes.

Examples:
  mediasort-cli overrides import ./plan.json`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open plan: %w", err)
		}
		defer f.Close()

		overrides, err := jsonfile.DecodePlan(f, time.Now())
		if err != nil {
			return err
		}

		ws := GetWorkspace()
		importCmd := commands.NewImportPlanCommand(ws.Store, ws.Config.StageVocabulary(), overrides)
		if err := importCmd.Validate(); err != nil {
			return err
		}
		result, err := importCmd.Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(overridesCmd)
	overridesCmd.AddCommand(overridesListCmd)
	overridesCmd.AddCommand(overridesImportCmd)
}

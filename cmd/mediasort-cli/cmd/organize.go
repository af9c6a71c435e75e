package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"mediasort/internal/application"
	"mediasort/internal/application/commands"
	"mediasort/internal/domain"
)

var organizeMode string

var organizeCmd = &cobra.Command{
	Use:   "organize",
	Short: "Organize the media root",
	Long: `Classify every file and move it into the library layout.

The default mode is a dry run: files stay where they are, the review queue
is refreshed and the plan is printed. Commit mode backs every file up
before moving it and records the run for restore.

Examples:
  mediasort-cli organize
  mediasort-cli organize --mode commit`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		organize := commands.NewOrganizeCommand(GetWorkspace().Engine, organizeMode)
		if err := organize.Validate(); err != nil {
			return err
		}

		result, err := organize.Execute(cmd.Context())
		if result == nil {
			if errors.Is(err, application.ErrRunLocked) {
				return fmt.Errorf("%w: another organize or restore is running on this root", err)
			}
			return err
		}

		run := result.Run
		out := cmd.OutOrStdout()
		printTable(out, []string{"File", "Target", "Category", "Stage", "Confidence", "Size"},
			moveRows(run.Moves, false),
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight})
		printBreakdown(cmd, "Category", run.Summary.CategoryBreakdown)
		printWarnings(cmd, run.Warnings)
		for _, e := range run.Errors {
			fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %s\n", e.File, e.Reason)
		}
		fmt.Fprintln(out, result.Message)
		if run.Mode == domain.RunModeCommit && run.BackupLocation != "" {
			fmt.Fprintf(out, "Backup: %s\n", run.BackupLocation)
		}
		return err
	},
}

func init() {
	rootCmd.AddCommand(organizeCmd)
	organizeCmd.Flags().StringVarP(&organizeMode, "mode", "m", string(domain.RunModeDryRun), "run mode: dry-run or commit")
}

package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"mediasort/internal/adapters/jsonfile"
	"mediasort/internal/application/commands"
	"mediasort/internal/domain"
)

var (
	runsLimit int
	runsJSON  bool
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List recorded runs, or show one",
	Long: `Without arguments, list the most recent runs. With a run id, show its
moves and errors. --json prints the run in the run log format.

Examples:
  mediasort-cli runs
  mediasort-cli runs 3f2a9c1e-...
  mediasort-cli runs 3f2a9c1e-... --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store := GetWorkspace().Store
		if len(args) == 1 {
			run, err := commands.NewShowRunCommand(store, args[0]).Execute(cmd.Context())
			if err != nil {
				return err
			}
			if runsJSON {
				return jsonfile.EncodeRunLog(cmd.OutOrStdout(), run)
			}
			printRun(cmd, run)
			return nil
		}

		runs, err := commands.NewListRunsCommand(store, runsLimit).Execute(cmd.Context())
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No runs recorded.")
			return nil
		}

		rows := make([][]string, len(runs))
		for i, run := range runs {
			rows[i] = []string{
				run.ID,
				string(run.Mode),
				run.Timestamp.Local().Format("2006-01-02 15:04"),
				formatAge(run.Timestamp),
				strconv.Itoa(run.TotalFiles),
				strconv.Itoa(run.Summary.Moved),
				strconv.Itoa(run.Summary.Failed),
			}
		}
		printTable(cmd.OutOrStdout(), []string{"ID", "Mode", "Started", "Age", "Files", "Moved", "Failed"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignRight})
		return nil
	},
}

func printRun(cmd *cobra.Command, run *domain.OrganizationRun) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Run %s (%s) %s\n", run.ID, run.Mode, run.Timestamp.Local().Format("2006-01-02 15:04:05"))
	if run.BackupLocation != "" {
		fmt.Fprintf(out, "Backup: %s\n", run.BackupLocation)
	}

	rows := make([][]string, 0, len(run.Moves))
	for _, op := range run.Moves {
		rows = append(rows, []string{
			op.File.RelativePath,
			valueOr(op.TargetPath, "-"),
			string(op.Status),
			strconv.Itoa(op.SequenceNumber),
		})
	}
	printTable(out, []string{"From", "To", "Status", "Seq"}, rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
	for _, e := range run.Errors {
		fmt.Fprintf(cmd.ErrOrStderr(), "error: %s: %s\n", e.File, e.Reason)
	}
}

var restoreCmd = &cobra.Command{
	Use:   "restore <run-id>",
	Short: "Roll back a committed run",
	Long: `Move every file of a committed run back to where it was. Files that
are no longer at their organized path are copied back from the run's
backup. A file whose original path is occupied is left alone and reported.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewRestoreCommand(GetWorkspace().Engine, args[0]).Execute(cmd.Context())
		if err != nil {
			return err
		}
		for _, f := range result.Failures {
			fmt.Fprintf(cmd.ErrOrStderr(), "failed: %s: %s\n", f.File, f.Reason)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(runsCmd)
	rootCmd.AddCommand(restoreCmd)
	runsCmd.Flags().IntVarP(&runsLimit, "limit", "n", 20, "number of runs to list (0 for all)")
	runsCmd.Flags().BoolVar(&runsJSON, "json", false, "print a single run as its JSON run log")
}

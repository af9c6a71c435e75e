package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"mediasort/internal/adapters/jsonfile"
	"mediasort/internal/application/commands"
	"mediasort/internal/domain"
)

var (
	reviewState     string
	reviewOutDir    string
	reviewBatchSize int
	flagReason      string
	flagClear       bool
)

var reviewCmd = &cobra.Command{
	Use:   "review",
	Short: "Work with the review queue",
	Long: `List, export and answer the files waiting for a human decision.

Examples:
  mediasort-cli review list
  mediasort-cli review export --out ./review
  mediasort-cli review import ./review/corrections.json
  mediasort-cli review flag nature/IMG_2056.jpg --reason "wrong species"`,
}

var reviewListCmd = &cobra.Command{
	Use:   "list",
	Short: "List review items",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		var states []domain.ReviewState
		if reviewState != "all" {
			state, err := domain.ParseReviewState(reviewState)
			if err != nil {
				return err
			}
			states = append(states, state)
		}

		items, err := commands.NewListReviewCommand(GetWorkspace().Store, states...).Execute(cmd.Context())
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No review items.")
			return nil
		}

		rows := make([][]string, len(items))
		for i, item := range items {
			flag := ""
			if item.Flagged {
				flag = valueOr(item.FlagReason, "yes")
			}
			rows[i] = []string{
				item.FileID,
				item.ProposedCategory + "/" + item.ProposedSubcategory,
				string(item.ProposedStage),
				formatConfidence(item.Confidence),
				string(item.State),
				flag,
				formatAge(item.UpdatedAt),
			}
		}
		printTable(cmd.OutOrStdout(), []string{"File", "Proposal", "Stage", "Confidence", "State", "Flag", "Updated"}, rows,
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight})
		return nil
	},
}

var reviewExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write pending review items as JSON batches",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := GetWorkspace()
		batchSize := reviewBatchSize
		if batchSize == 0 {
			batchSize = w.Config.Review.BatchSize
		}
		dir, err := filepath.Abs(reviewOutDir)
		if err != nil {
			return err
		}

		export := commands.NewExportReviewCommand(w.Store, jsonfile.NewReviewDir(dir), batchSize)
		if err := export.Validate(); err != nil {
			return err
		}
		result, err := export.Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, path := range result.Paths {
			fmt.Fprintln(out, path)
		}
		fmt.Fprintln(out, result.Message)
		return nil
	},
}

var reviewImportCmd = &cobra.Command{
	Use:   "import <corrections.json>",
	Short: "Apply reviewer corrections",
	Long: `Apply a JSON file of corrections. Each entry names a file id and the
correct category, with an optional subcategory, stage and notes. Entries
become overrides and take effect on the next run.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("open corrections: %w", err)
		}
		defer f.Close()

		corrections, err := jsonfile.DecodeCorrections(f)
		if err != nil {
			return err
		}

		w := GetWorkspace()
		result, err := commands.NewImportCorrectionsCommand(w.Store, w.Config.StageVocabulary(), corrections).Execute(cmd.Context())
		if err != nil {
			return err
		}

		for _, reason := range result.Rejected {
			fmt.Fprintf(cmd.ErrOrStderr(), "rejected: %s\n", reason)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

var reviewFlagCmd = &cobra.Command{
	Use:   "flag <file-id>",
	Short: "Flag a file for review, or clear its flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewFlagFileCommand(GetWorkspace().Store, filepath.ToSlash(args[0]), flagReason, flagClear).Execute(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reviewCmd)
	reviewCmd.AddCommand(reviewListCmd)
	reviewCmd.AddCommand(reviewExportCmd)
	reviewCmd.AddCommand(reviewImportCmd)
	reviewCmd.AddCommand(reviewFlagCmd)

	reviewListCmd.Flags().StringVarP(&reviewState, "state", "s", string(domain.ReviewPending), "review state to list, or all")
	reviewExportCmd.Flags().StringVarP(&reviewOutDir, "out", "o", "review", "directory for the batch files")
	reviewExportCmd.Flags().IntVarP(&reviewBatchSize, "batch-size", "b", 0, "items per batch (default from config)")
	reviewFlagCmd.Flags().StringVar(&flagReason, "reason", "", "why the file needs review")
	reviewFlagCmd.Flags().BoolVar(&flagClear, "clear", false, "clear the flag instead of setting it")
}

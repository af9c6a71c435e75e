package cmd

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/spf13/cobra"

	"mediasort/internal/application/commands"
	"mediasort/internal/domain"
)

var scanAll bool

var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Preview how the media root would be organized",
	Long: `Scan the media root and classify every file without moving anything
or touching pipeline state.

Examples:
  mediasort-cli scan --root ~/Pictures/studio
  mediasort-cli scan --all`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		result, err := commands.NewScanCommand(GetWorkspace().Engine).Execute(cmd.Context())
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printTable(out, []string{"File", "Target", "Category", "Stage", "Confidence", "Size"},
			moveRows(result.Moves, scanAll),
			[]columnAlignment{alignLeft, alignLeft, alignLeft, alignLeft, alignRight, alignRight})
		printProjects(cmd, result.Projects)
		printWarnings(cmd, result.Warnings)
		fmt.Fprintln(out, result.Message)
		return nil
	},
}

func moveRows(moves []*domain.MoveOperation, all bool) [][]string {
	rows := make([][]string, 0, len(moves))
	for _, op := range moves {
		if op.Status == domain.MoveStatusSkipped && !all {
			continue
		}
		target := valueOr(op.TargetPath, "-")
		if op.Status == domain.MoveStatusFailed {
			target = "failed: " + op.Reason
		}
		category := op.TargetCategory
		if op.TargetSubcategory != "" && op.TargetSubcategory != domain.DefaultSubcategory {
			category += "/" + op.TargetSubcategory
		}
		rows = append(rows, []string{
			op.File.RelativePath,
			target,
			category,
			string(op.TargetStage),
			formatConfidence(op.Classification.Confidence),
			formatSize(op.File.SizeBytes),
		})
	}
	return rows
}

func printProjects(cmd *cobra.Command, projects []*domain.Project) {
	rows := make([][]string, 0, len(projects))
	for _, p := range projects {
		if p.Kind != domain.CategoryKindProject {
			continue
		}
		cover := "-"
		if p.Cover != nil {
			cover = p.Cover.Path
		}
		rows = append(rows, []string{
			p.Name,
			strconv.Itoa(p.Stats.Total),
			valueOr(string(p.Stats.CompletionLevel), "-"),
			fmt.Sprintf("%.0f%%", p.Stats.Completion*100),
			cover,
		})
	}
	printTable(cmd.OutOrStdout(), []string{"Project", "Files", "Stage", "Complete", "Cover"}, rows,
		[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignLeft})
}

func printWarnings(cmd *cobra.Command, warnings []domain.ScanWarning) {
	for _, w := range warnings {
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", w.Path, w.Reason)
	}
}

func printBreakdown(cmd *cobra.Command, title string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Strings(names)

	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, strconv.Itoa(counts[name])}
	}
	printTable(cmd.OutOrStdout(), []string{title, "Files"}, rows, []columnAlignment{alignLeft, alignRight})
}

func init() {
	rootCmd.AddCommand(scanCmd)
	scanCmd.Flags().BoolVarP(&scanAll, "all", "a", false, "include files already in place")
}

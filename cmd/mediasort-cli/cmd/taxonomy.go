package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"mediasort/internal/adapters/editor"
	"mediasort/internal/config"
	"mediasort/internal/workspace"
)

var taxonomyTOML bool

var taxonomyCmd = &cobra.Command{
	Use:         "taxonomy",
	Short:       "Inspect or edit the category taxonomy",
	Annotations: map[string]string{"skipWorkspace": "true"},
}

var taxonomyShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the compiled taxonomy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := workspace.LoadConfig(configPath)
		if err != nil {
			return err
		}
		tax := cfg.CompiledTaxonomy()

		if taxonomyTOML {
			data, err := config.EncodeTaxonomy(tax)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		}

		rows := make([][]string, 0, len(tax.Categories()))
		for _, rule := range tax.Categories() {
			subs := make([]string, len(rule.Subcategories))
			for i, s := range rule.Subcategories {
				subs[i] = s.Name
			}
			name := rule.Name
			if tax.IsFallback(rule.Name) {
				name += " (fallback)"
			}
			rows = append(rows, []string{
				name,
				string(rule.Kind),
				strings.Join(rule.Keywords, ", "),
				strings.Join(rule.Folders, ", "),
				strings.Join(subs, ", "),
			})
		}
		printTable(cmd.OutOrStdout(), []string{"Category", "Kind", "Keywords", "Folders", "Subcategories"}, rows, nil)

		stages := cfg.StageVocabulary()
		names := make([]string, 0, len(stages.Stages))
		for _, s := range stages.Names() {
			names = append(names, string(s))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Stages: %s (default %s)\n", strings.Join(names, " → "), stages.Default)
		return nil
	},
}

var taxonomyEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the taxonomy in your editor",
	Long: `Open the external taxonomy file, or the configuration file when the
taxonomy is declared inline, in the configured editor. The result is
validated when the editor exits.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, cfgPath, err := workspace.LoadConfig(configPath)
		if err != nil {
			return err
		}

		target := cfg.TaxonomyFile()
		if target == "" {
			target = cfgPath
		}
		if _, err := os.Stat(target); err != nil {
			return fmt.Errorf("%s does not exist; run `mediasort-cli config init` first", target)
		}

		if err := editor.NewOpener(cfg.Editor.Command).OpenFile(target); err != nil {
			return fmt.Errorf("run editor: %w", err)
		}

		if _, _, err := workspace.LoadConfig(configPath); err != nil {
			return fmt.Errorf("taxonomy is invalid after editing: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Taxonomy in %s is valid\n", target)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(taxonomyCmd)
	taxonomyCmd.AddCommand(taxonomyShowCmd)
	taxonomyCmd.AddCommand(taxonomyEditCmd)
	taxonomyShowCmd.Flags().BoolVar(&taxonomyTOML, "toml", false, "print as a taxonomy file")
}

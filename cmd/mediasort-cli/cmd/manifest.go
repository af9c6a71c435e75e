package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"mediasort/internal/adapters/jsonfile"
	"mediasort/internal/application/commands"
)

var manifestOut string

var manifestCmd = &cobra.Command{
	Use:   "manifest",
	Short: "Write the presentation manifest for the organized library",
	Long: `Read the organized library and write manifest.json: every project with
its stages, cover image and completion, and every topic category with its
items. Nothing is written if any referenced file is missing.

Examples:
  mediasort-cli manifest
  mediasort-cli manifest --out ./site/manifest.json`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := GetWorkspace()
		out := manifestOut
		if out == "" {
			out = w.ManifestPath()
		}

		result, err := commands.NewWriteManifestCommand(w.Library, jsonfile.NewManifestFile(out), w.ManifestSettings()).Execute(cmd.Context())
		if err != nil {
			return err
		}

		for _, f := range result.Stray {
			fmt.Fprintf(cmd.ErrOrStderr(), "outside layout: %s\n", f.RelativePath)
		}
		fmt.Fprintln(cmd.OutOrStdout(), result.Message)
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", result.Path)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(manifestCmd)
	manifestCmd.Flags().StringVarP(&manifestOut, "out", "o", "", "manifest path (default <library>/manifest.json)")
}

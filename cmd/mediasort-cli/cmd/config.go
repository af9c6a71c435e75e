package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"mediasort/internal/config"
	"mediasort/internal/workspace"
)

var (
	configTarget    string
	configOverwrite bool
)

var configCmd = &cobra.Command{
	Use:         "config",
	Short:       "Configuration utilities",
	Annotations: map[string]string{"skipWorkspace": "true"},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a sample configuration file",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		target := strings.TrimSpace(configTarget)
		if target == "" {
			defaultPath, err := config.DefaultConfigPath()
			if err != nil {
				return fmt.Errorf("determine default config path: %w", err)
			}
			target = defaultPath
		} else {
			expanded, err := config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve config path: %w", err)
			}
			target = expanded
		}

		if !configOverwrite {
			if _, err := os.Stat(target); err == nil {
				return fmt.Errorf("config file already exists at %s (use --overwrite to replace it)", target)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("check config path: %w", err)
			}
		}

		if err := config.CreateSample(target); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Wrote sample configuration to %s\n", target)
		fmt.Fprintf(out, "Set paths.media_root (or pass --root) before running %s.\n", filepath.Base(os.Args[0]))
		return nil
	},
}

var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Check the configuration and taxonomy",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, err := workspace.LoadConfig(configPath)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Configuration %s is valid\n", path)
		fmt.Fprintf(out, "Categories: %d, stages: %d\n", len(cfg.CompiledTaxonomy().Categories()), len(cfg.StageVocabulary().Stages))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configValidateCmd)
	configInitCmd.Flags().StringVarP(&configTarget, "path", "p", "", "destination for the configuration file")
	configInitCmd.Flags().BoolVar(&configOverwrite, "overwrite", false, "overwrite an existing file")
}

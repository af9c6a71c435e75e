package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"mediasort/internal/workspace"
)

var (
	configPath string
	rootPath   string
	verbose    bool
	ws         *workspace.Workspace
)

var rootCmd = &cobra.Command{
	Use:   "mediasort-cli",
	Short: "Classify and organize a media library",
	Long: `mediasort-cli scans a media root, classifies every image and video into
a category, subcategory and workflow stage, and moves files into a
canonical library layout with a backup and an audit log.

Files the classifier is unsure about are queued for review; decisions are
stored as overrides and win on the next run.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip initialization for help and setup commands
		if cmd.Name() == "help" || cmd.Name() == "completion" || skipWorkspace(cmd) {
			return nil
		}
		opts := workspace.Options{ConfigPath: configPath, Root: rootPath}
		if verbose {
			opts.LogLevel = "debug"
		}
		opened, err := workspace.Open(opts)
		if err != nil {
			return err
		}
		ws = opened
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return ws.Close()
	},
}

// Execute runs the root command
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	if ws != nil {
		ws.Close()
	}
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "configuration file path")
	rootCmd.PersistentFlags().StringVarP(&rootPath, "root", "r", "", "media root to organize")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// skipWorkspace reports whether cmd or a parent opts out of opening the media root
func skipWorkspace(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipWorkspace"] == "true" {
			return true
		}
	}
	return false
}

// GetWorkspace returns the opened workspace
func GetWorkspace() *workspace.Workspace {
	return ws
}

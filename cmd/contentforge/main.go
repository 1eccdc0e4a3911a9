package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

var (
	configPath  string
	envFile     string
	verbose     bool
	requestPath string
	sessionName string
	entityID    string
	workbook    bool
	force       bool
	assumeYes   bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "contentforge",
		Short: "contentforge - AI study content generator",
		Long: `contentforge generates a summary plus objective and subjective question
sets for a book, chapter, topic or subtopic with an AI model, lets you
review the result, and saves it to the content backend.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildTime),
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "config.toml", "Path to configuration file")
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to environment file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	generateCmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a draft for review",
		Long: `Generate content for a request and write it to a new session directory:
  draft.json       parsed content, ready for persist
  preview.txt      human-readable rendering
  raw_output.txt   the model's final raw answer`,
		Args: cobra.NoArgs,
		RunE: runGenerate,
	}
	generateCmd.Flags().StringVarP(&requestPath, "request", "r", "request.toml", "Path to generation request file")

	persistCmd := &cobra.Command{
		Use:   "persist [draft.json]",
		Short: "Save a reviewed draft to the backend",
		Long: `Save a draft to the backend: the summary first, then every objective and
subjective question set per level with its questions. Failed steps are
reported and do not stop the remaining ones.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runPersist,
	}
	persistCmd.Flags().StringVar(&sessionName, "session", "", "Session directory name under the output dir (instead of a draft path)")
	addTargetFlags(persistCmd)
	persistCmd.Flags().BoolVar(&force, "force", false, "Persist truncated or malformed drafts")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "Generate, review and persist in one go",
		Args:  cobra.NoArgs,
		RunE:  runPipeline,
	}
	runCmd.Flags().StringVarP(&requestPath, "request", "r", "request.toml", "Path to generation request file")
	addTargetFlags(runCmd)
	runCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Skip the review prompt")
	runCmd.Flags().BoolVar(&force, "force", false, "Persist truncated or malformed drafts")

	previewCmd := &cobra.Command{
		Use:   "preview [draft.json]",
		Short: "Show a draft's content",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runPreview,
	}
	previewCmd.Flags().StringVar(&sessionName, "session", "", "Session directory name under the output dir (instead of a draft path)")

	rootCmd.AddCommand(generateCmd, persistCmd, runCmd, previewCmd)
	return rootCmd
}

func addTargetFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&entityID, "entity-id", "", "Backend id of the entity the content belongs to")
	cmd.Flags().BoolVar(&workbook, "workbook", false, "Save into the entity's workbook")
	_ = cmd.MarkFlagRequired("entity-id")
}

package cmd

import (
	"os"

	"apptest/internal/color"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "apptest",
	Short: "Run Selenium tests against an AiiDAlab application",
	Long: `apptest starts a throwaway AiiDAlab environment with a Selenium grid,
runs the application's notebook tests against it and tears everything
down again.

In CI the environment is left in place after the run; call
'apptest cleanup' from a post-job step to remove it.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. failed tests, a missing docker daemon)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "apptest version %s\n" .Version}}`)
	color.Initialize(true, color.Enabled(os.LookupEnv))

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(newRunCmd())
	rootCmd.AddCommand(newCleanupCmd())
	rootCmd.AddCommand(newPlanCmd())
	rootCmd.AddCommand(newVersionCmd())
}

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"apptest/internal/color"

	"github.com/spf13/cobra"
)

func newRunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run [flags] [-- test-runner-args...]",
		Short: "Start the test environment and run the Selenium tests",
		Long: `Starts an AiiDAlab container with the application mounted, a Selenium
hub and one node per browser, then runs the test-runner container against
them. Arguments after -- are passed to the test runner unchanged.

Every flag can also be set through the environment or .apptest/config.yaml;
flags win over the environment, which wins over the file.`,
		Args: cobra.ArbitraryArgs,
		RunE: runTests,
	}
	addCommonFlags(cmd.Flags())
	addRunFlags(cmd.Flags())
	return cmd
}

func runTests(cmd *cobra.Command, args []string) error {
	application, err := newApplication(cmd, args)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), color.FailureStyle.Render("Selenium tests failed."))
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), color.SuccessStyle.Render("Completed selenium tests."))
	return nil
}

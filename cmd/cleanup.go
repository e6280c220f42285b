package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

func newCleanupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cleanup",
		Short: "Tear down the test environment of an earlier run",
		Long: `Stops the compose project of an earlier 'apptest run' and removes its
work directory. The project is taken from --project or AIIDALAB_TESTS_WORKDIR.
This is the post-job step in CI, where 'run' leaves the environment in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := newApplication(cmd, nil)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return application.Cleanup(ctx, changedString(cmd, "project"))
		},
	}
	addCommonFlags(cmd.Flags())
	cmd.Flags().String("project", "", "Compose project to tear down")
	return cmd
}

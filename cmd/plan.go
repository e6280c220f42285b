package cmd

import (
	"apptest/internal/cli"

	"github.com/spf13/cobra"
)

func newPlanCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the resolved configuration and the services a run would start",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			format, err := cli.ParseOutputFormat(output)
			if err != nil {
				return err
			}
			application, err := newApplication(cmd, nil)
			if err != nil {
				return err
			}
			return application.Plan(cmd.OutOrStdout(), format)
		},
	}
	addCommonFlags(cmd.Flags())
	addRunFlags(cmd.Flags())
	cmd.Flags().StringP("output", "o", string(cli.OutputFormatYAML), "Output format: yaml or table")
	return cmd
}

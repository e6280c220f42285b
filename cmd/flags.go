package cmd

import (
	"fmt"

	"apptest/internal/app"
	"apptest/internal/config"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// addCommonFlags registers the flags every environment command understands.
func addCommonFlags(f *pflag.FlagSet) {
	f.Bool("debug", false, "Enable debug logging")
	f.String("log-level", "info", "Log level: debug, info, warn or error")
	f.String("config", "", "Configuration file (default .apptest/config.yaml)")
	f.String("work-root", "", "Directory the per-run work directories are created in (default: current directory)")
}

// addRunFlags registers the flags that shape a test run.
func addRunFlags(f *pflag.FlagSet) {
	f.String("image", config.DefaultImage, "AiiDAlab image the application is served from")
	f.String("runner-image", config.DefaultRunnerImage, "Selenium test-runner image")
	f.String("app-path", "", "Path of the application under test (default: $"+config.EnvWorkspace+")")
	f.String("name", config.DefaultAppName, "Directory name of the application inside the container")
	f.Bool("bundled", false, "The application is pre-installed in the image and is not mounted")
	f.String("browser", string(config.DefaultBrowser), "Browser to test with: chrome, firefox or opera")
	f.String("notebooks", config.DefaultNotebooks, "Glob of the notebooks to test")
	f.String("screenshots", "", "Directory to store screenshots in (default: disabled)")
	f.String("token", config.DefaultJupyterToken, "Jupyter token shared by the server and the test runner")
	f.String("engine", string(config.DefaultEngine), "How the test runner is executed: cli or api")
	f.Duration("teardown-timeout", 0, "Upper bound for stopping the environment after the tests (default 2m)")
}

// changedString returns the flag value only when it was passed.
func changedString(cmd *cobra.Command, name string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetString(name)
	return &v
}

func changedBool(cmd *cobra.Command, name string) *bool {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	v, _ := cmd.Flags().GetBool(name)
	return &v
}

// runFlags collects the passed flags and the arguments after "--".
func runFlags(cmd *cobra.Command, args []string) (config.Flags, error) {
	flags := config.Flags{
		WorkRoot: changedString(cmd, "work-root"),
	}
	if cmd.Flags().Lookup("image") != nil {
		flags.Image = changedString(cmd, "image")
		flags.RunnerImage = changedString(cmd, "runner-image")
		flags.AppPath = changedString(cmd, "app-path")
		flags.Name = changedString(cmd, "name")
		flags.Bundled = changedBool(cmd, "bundled")
		flags.Browser = changedString(cmd, "browser")
		flags.Notebooks = changedString(cmd, "notebooks")
		flags.Screenshots = changedString(cmd, "screenshots")
		flags.Token = changedString(cmd, "token")
		flags.Engine = changedString(cmd, "engine")
	}

	if len(args) > 0 {
		dash := cmd.Flags().ArgsLenAtDash()
		if dash != 0 {
			return config.Flags{}, fmt.Errorf("unexpected arguments %q, pass test-runner arguments after --", args)
		}
		flags.PassThrough = append([]string(nil), args...)
	}
	return flags, nil
}

// newApplication builds the application from the command's flags.
func newApplication(cmd *cobra.Command, args []string) (*app.Application, error) {
	flags, err := runFlags(cmd, args)
	if err != nil {
		return nil, err
	}
	debug, _ := cmd.Flags().GetBool("debug")
	configPath, _ := cmd.Flags().GetString("config")

	cfg := app.NewConfig(debug, configPath, flags)
	cfg.LogLevel, _ = cmd.Flags().GetString("log-level")
	if cmd.Flags().Lookup("teardown-timeout") != nil {
		cfg.TeardownTimeout, _ = cmd.Flags().GetDuration("teardown-timeout")
	}
	cfg.LogOutput = cmd.ErrOrStderr()
	application, err := app.NewApplication(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize application: %w", err)
	}
	return application, nil
}

// Package config resolves the configuration of a test run.
//
// Every field of a RunConfig is resolved independently from four layers, the
// first one that is set wins:
//
//  1. Command-line flags (only flags the user actually passed)
//  2. Environment variables, read through an injected Source
//  3. The optional project file (./.apptest/config.yaml or --config)
//  4. Built-in defaults
//
// # Configuration File
//
//	image: aiidalab/aiidalab-docker-stack:latest
//	name: my-app
//	browser: firefox
//	notebooks: "notebooks/*.ipynb"
//	screenshots: ./screenshots
//	engine: api
//
// Relative paths are resolved against the tool directory. Unknown keys are
// rejected.
//
// # Safety
//
// The application path must not be the tool directory itself. Outside CI this
// is an error; inside CI (GITHUB_ACTIONS=true or CI=true) an empty placeholder
// directory below the run's work directory is mounted instead and a warning is
// returned with the Resolution.
//
// # Usage Example
//
//	file, err := config.LoadFile(configPath, toolDir)
//	if err != nil {
//	    return err
//	}
//	res, err := config.NewResolver(config.OSSource{}).Resolve(flags, file)
//	if err != nil {
//	    return err // wraps config.ErrConfiguration
//	}
//	for _, w := range res.Warnings {
//	    logging.Warn("Config", "%s", w)
//	}
package config

package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// CleanupTarget identifies an earlier run to tear down.
type CleanupTarget struct {
	Project        string
	WorkDir        string
	ComposeCommand []string
}

// ManifestPath is where the run wrote its compose file.
func (t CleanupTarget) ManifestPath(fileName string) string {
	return filepath.Join(t.WorkDir, fileName)
}

// ResolveCleanup finds the project to tear down. Unlike Resolve it never
// generates a project name: without --project, AIIDALAB_TESTS_WORKDIR or a
// project in the file there is nothing to clean up.
func (r *Resolver) ResolveCleanup(project, workRoot *string, file FileConfig) (CleanupTarget, error) {
	toolDir, err := r.Source.WorkingDir()
	if err != nil {
		return CleanupTarget{}, fmt.Errorf("%w: cannot determine tool directory: %v", ErrConfiguration, err)
	}
	toolDir = filepath.Clean(toolDir)

	name := r.pick(project, EnvProject, file.Project, "")
	if name == "" {
		return CleanupTarget{}, fmt.Errorf("%w; pass --project or set %s", ErrMissingProject, EnvProject)
	}
	if err := ValidateProjectName(name); err != nil {
		return CleanupTarget{}, err
	}

	root := absFrom(toolDir, r.pick(workRoot, EnvWorkRoot, file.WorkRoot, toolDir))
	compose := strings.Fields(r.pick(nil, EnvComposeCommand, file.ComposeCommand, DefaultCompose))
	if len(compose) == 0 {
		compose = strings.Fields(DefaultCompose)
	}

	return CleanupTarget{
		Project:        name,
		WorkDir:        filepath.Join(root, name),
		ComposeCommand: compose,
	}, nil
}

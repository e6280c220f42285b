package config

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

// projectSuffixLen is the number of hex characters appended to ProjectPrefix.
const projectSuffixLen = 16

// NewProjectName returns ProjectPrefix followed by a random hex suffix, so
// parallel runs on one host never share containers or networks.
func NewProjectName() string {
	id := strings.ReplaceAll(uuid.NewString(), "-", "")
	return ProjectPrefix + id[:projectSuffixLen]
}

// NetworkName is the default network docker compose creates for project.
func NetworkName(project string) string {
	return project + "_default"
}

// projectNamePattern is what docker compose accepts as a project name. It also
// keeps the work directory a direct child of the work root.
var projectNamePattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateProjectName rejects names compose would refuse or that would move
// the work directory outside the work root.
func ValidateProjectName(name string) error {
	if !projectNamePattern.MatchString(name) {
		return fmt.Errorf("%w: project %q must match %s", ErrInvalidValue, name, projectNamePattern)
	}
	return nil
}

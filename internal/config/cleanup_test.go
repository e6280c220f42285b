package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveCleanup(t *testing.T) {
	tests := []struct {
		name        string
		env         map[string]string
		project     *string
		workRoot    *string
		file        FileConfig
		wantProject string
		wantWorkDir string
		wantErr     error
	}{
		{
			name:        "project from environment",
			env:         map[string]string{EnvProject: "aiidalabtests00"},
			wantProject: "aiidalabtests00",
			wantWorkDir: "/opt/apptest/aiidalabtests00",
		},
		{
			name:        "flag beats environment",
			env:         map[string]string{EnvProject: "aiidalabtests00"},
			project:     strPtr("aiidalabtests11"),
			wantProject: "aiidalabtests11",
			wantWorkDir: "/opt/apptest/aiidalabtests11",
		},
		{
			name:        "work root from flag",
			project:     strPtr("p"),
			workRoot:    strPtr("runs"),
			wantProject: "p",
			wantWorkDir: "/opt/apptest/runs/p",
		},
		{
			name:        "project and work root from file",
			file:        FileConfig{Project: "p", WorkRoot: "/tmp/w"},
			wantProject: "p",
			wantWorkDir: "/tmp/w/p",
		},
		{
			name:    "nothing to clean up",
			wantErr: ErrMissingProject,
		},
		{
			name:    "project with separator",
			project: strPtr("../etc"),
			wantErr: ErrInvalidValue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(tt.env)
			target, err := r.ResolveCleanup(tt.project, tt.workRoot, tt.file)
			if tt.wantErr != nil {
				require.Error(t, err)
				assert.True(t, errors.Is(err, tt.wantErr))
				assert.True(t, errors.Is(err, ErrConfiguration))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantProject, target.Project)
			assert.Equal(t, tt.wantWorkDir, target.WorkDir)
			assert.Equal(t, []string{"docker", "compose"}, target.ComposeCommand)
		})
	}
}

func TestCleanupTarget_ManifestPath(t *testing.T) {
	target := CleanupTarget{WorkDir: "/w/p"}
	assert.Equal(t, "/w/p/docker-compose.yml", target.ManifestPath("docker-compose.yml"))
}

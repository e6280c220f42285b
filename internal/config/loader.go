package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	projectConfigDir = ".apptest"
	configFileName   = "config.yaml"
)

// For mocking in tests
var osReadFile = os.ReadFile

// DefaultFilePath returns the project configuration file inside toolDir.
func DefaultFilePath(toolDir string) string {
	return filepath.Join(toolDir, projectConfigDir, configFileName)
}

// LoadFile reads the optional configuration file. When path is empty the
// default location under toolDir is used and a missing file yields an empty
// FileConfig. An explicitly named file must exist.
func LoadFile(path, toolDir string) (FileConfig, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultFilePath(toolDir)
	}

	data, err := osReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return FileConfig{}, nil
		}
		return FileConfig{}, fmt.Errorf("error loading config from %s: %w", path, err)
	}

	cfg, err := parseFile(data)
	if err != nil {
		return FileConfig{}, fmt.Errorf("error parsing config %s: %w", path, err)
	}
	return cfg, nil
}

// parseFile decodes YAML strictly: unknown keys are rejected.
func parseFile(data []byte) (FileConfig, error) {
	var cfg FileConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return FileConfig{}, nil
		}
		return FileConfig{}, err
	}
	return cfg, nil
}

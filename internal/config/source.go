package config

import (
	"os"
	"strconv"
)

// Source gives the resolver access to process state.
type Source interface {
	LookupEnv(key string) (string, bool)
	// WorkingDir is the tool's own directory, used as the base of relative paths.
	WorkingDir() (string, error)
}

// OSSource reads the real process environment.
type OSSource struct{}

func (OSSource) LookupEnv(key string) (string, bool) { return os.LookupEnv(key) }

func (OSSource) WorkingDir() (string, error) { return os.Getwd() }

// MapSource is a fixed environment, mainly for tests.
type MapSource struct {
	Env map[string]string
	Dir string
}

func (m MapSource) LookupEnv(key string) (string, bool) {
	v, ok := m.Env[key]
	return v, ok
}

func (m MapSource) WorkingDir() (string, error) { return m.Dir, nil }

// lookupNonEmpty treats an empty variable like an unset one.
func lookupNonEmpty(src Source, key string) (string, bool) {
	v, ok := src.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}

// InCI reports whether src describes a recognized CI environment.
func InCI(src Source) bool {
	if v, ok := src.LookupEnv(EnvGitHubActions); ok && v == "true" {
		return true
	}
	if v, ok := lookupNonEmpty(src, EnvCI); ok {
		ci, err := strconv.ParseBool(v)
		return err == nil && ci
	}
	return false
}

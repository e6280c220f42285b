package config

import "errors"

// ErrConfiguration is wrapped by every error the resolver returns, so callers
// can tell a misconfiguration apart from a runtime failure.
var ErrConfiguration = errors.New("configuration error")

var (
	ErrUnsafeAppPath  = configError("application path points to the tool directory")
	ErrInvalidBrowser = configError("invalid browser")
	ErrInvalidAppName = configError("invalid application name")
	ErrInvalidEngine  = configError("invalid engine")
	ErrInvalidValue   = configError("invalid value")
	ErrMissingProject = configError("no test project given")
)

type categorized struct {
	msg string
}

func configError(msg string) error {
	return &categorized{msg: msg}
}

func (e *categorized) Error() string { return e.msg }

func (e *categorized) Unwrap() error { return ErrConfiguration }

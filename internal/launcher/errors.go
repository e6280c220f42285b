package launcher

// StartError means the topology could not be prepared or started; the test
// runner was never invoked.
type StartError struct {
	// Stage is StateComposing when the manifest could not be written,
	// StateStarting when compose up failed.
	Stage State
	Err   error
}

func (e *StartError) Error() string {
	if e.Stage == StateComposing {
		return "unable to prepare docker-compose project: " + e.Err.Error()
	}
	return "unable to start docker-compose: " + e.Err.Error()
}

func (e *StartError) Unwrap() error { return e.Err }

// TestError means the test runner failed or could not be run.
type TestError struct {
	Err error
}

func (e *TestError) Error() string {
	return "failed to execute selenium tests: " + e.Err.Error()
}

func (e *TestError) Unwrap() error { return e.Err }

// TeardownError means the topology or its work directory could not be removed.
type TeardownError struct {
	Err error
}

func (e *TeardownError) Error() string {
	return "failed to tear down test environment: " + e.Err.Error()
}

func (e *TeardownError) Unwrap() error { return e.Err }

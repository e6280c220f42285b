package launcher

// State is a stage of a test run.
type State string

const (
	StateIdle        State = "Idle"
	StateComposing   State = "Composing"
	StateStarting    State = "Starting"
	StateTestRunning State = "TestRunning"
	StateTearingDown State = "TearingDown"
	StateDone        State = "Done"
	StateFailed      State = "Failed"
)

// Terminal reports whether no further transition can happen from s.
func (s State) Terminal() bool {
	return s == StateDone || s == StateFailed
}

// StateObserver is called on every transition. err is the failure that caused
// the transition, nil for regular progress.
type StateObserver func(from, to State, err error)

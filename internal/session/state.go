package session

// State is the credential lifecycle state.
type State int32

const (
	StateValid State = iota
	StateRecovering
	StateFullyExpired
)

// String returns the string representation of the state
func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateRecovering:
		return "recovering"
	case StateFullyExpired:
		return "fully_expired"
	default:
		return "unknown"
	}
}

// Stage names a recovery step, tried in order.
type Stage int

const (
	// StageCSRF refetches the landing page for a fresh token.
	StageCSRF Stage = iota
	// StageDisk reloads the whole bundle from the credential store.
	StageDisk
)

// String returns the string representation of the stage
func (s Stage) String() string {
	switch s {
	case StageCSRF:
		return "csrf"
	case StageDisk:
		return "disk"
	default:
		return "unknown"
	}
}

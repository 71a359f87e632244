package domain

// ManagerState is the lifecycle state of a RAG manager.
//
//	uninitialized -> processing -> ready
//	processing -> failed -> uninitialized
type ManagerState string

// Available manager states.
const (
	StateUninitialized ManagerState = "uninitialized"
	StateProcessing    ManagerState = "processing"
	StateReady         ManagerState = "ready"
	StateFailed        ManagerState = "failed"
)

// IsValid returns true if the state is recognised.
func (s ManagerState) IsValid() bool {
	switch s {
	case StateUninitialized, StateProcessing, StateReady, StateFailed:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving from s to next is a legal transition.
// A ready manager may start processing again to rebuild its index or load a
// saved one, and a failed build returns to ready when a previous index exists.
func (s ManagerState) CanTransitionTo(next ManagerState) bool {
	switch s {
	case StateUninitialized:
		return next == StateProcessing || next == StateReady
	case StateProcessing:
		return next == StateReady || next == StateFailed
	case StateReady:
		return next == StateProcessing || next == StateReady
	case StateFailed:
		return next == StateUninitialized || next == StateReady
	default:
		return false
	}
}

// String returns the string representation.
func (s ManagerState) String() string {
	return string(s)
}

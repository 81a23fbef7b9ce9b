package service

// State is the connection lifecycle state of a Manager.
type State int

// Lifecycle states. A Manager starts Disconnected and returns there on
// Stop or when the broker drops the connection.
const (
	StateDisconnected State = iota
	StateConnecting
	StateConnected
	StateSubscribed
)

// String returns the lowercase state name used in logs and the health endpoint.
func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateSubscribed:
		return "subscribed"
	default:
		return "unknown"
	}
}

// IsConnected reports whether the broker session is up.
func (s State) IsConnected() bool {
	return s == StateConnected || s == StateSubscribed
}

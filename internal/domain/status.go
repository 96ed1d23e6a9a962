package domain

type StatusKind string

const (
	StatusInfo    StatusKind = "info"
	StatusSuccess StatusKind = "success"
	StatusError   StatusKind = "error"
)

// StatusEvent is a transient progress notification for whoever drives a
// load or an answer (a terminal, a log).
type StatusEvent struct {
	Kind    StatusKind `json:"kind"`
	Message string     `json:"message"`
}

type StatusListener func(StatusEvent)

// Emit is safe to call on a nil listener.
func (l StatusListener) Emit(kind StatusKind, msg string) {
	if l == nil {
		return
	}
	l(StatusEvent{Kind: kind, Message: msg})
}

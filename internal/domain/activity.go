package domain

import "time"

type SessionState string

const (
	SessionActive   SessionState = "active"
	SessionPaused   SessionState = "paused"
	SessionInactive SessionState = "inactive"
)

// Session is one audio session as seen at refresh time. Err is set when the
// session's state could not be read.
type Session struct {
	ID          string
	Application string
	State       SessionState
	Err         error
}

// ActivitySnapshot is replaced wholesale on every refresh.
type ActivitySnapshot struct {
	Sessions    []Session
	RefreshedAt time.Time
}

package domain

// Status is the lifecycle state of a download task. Transitions only move
// forward: pending -> downloading -> completed|failed -> sent|notified.
type Status string

const (
	StatusPending     Status = "pending"
	StatusDownloading Status = "downloading"
	StatusCompleted   Status = "completed"
	StatusFailed      Status = "failed"
	StatusSent        Status = "sent"
	StatusNotified    Status = "notified"
)

var transitions = map[Status][]Status{
	StatusPending:     {StatusDownloading},
	StatusDownloading: {StatusCompleted, StatusFailed},
	StatusCompleted:   {StatusSent},
	StatusFailed:      {StatusNotified},
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// CanTransition reports whether moving from s to next is a legal edge.
func (s Status) CanTransition(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal returns true once a task needs no further processing.
func (s Status) IsTerminal() bool {
	return s == StatusSent || s == StatusNotified
}

// AllStatuses lists every status in lifecycle order.
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusDownloading,
		StatusCompleted,
		StatusFailed,
		StatusSent,
		StatusNotified,
	}
}

// Package history keeps past recommendation results for display.
//
// The history belongs to the presentation layer: the recommendation
// service never reads or writes it.
package history

import (
	"time"

	"animerec/internal/domain"
)

// Entry is one past query and the results shown for it.
type Entry struct {
	Query   string                  `json:"query"`
	Results []domain.Recommendation `json:"results"`
	At      time.Time               `json:"at"`
}

// Log is a bounded history. When full, the oldest entry is evicted.
// A Log is not safe for concurrent use.
type Log struct {
	capacity int
	entries  []Entry
}

// New returns an empty log that holds at most capacity entries.
func New(capacity int) *Log {
	if capacity <= 0 {
		capacity = 1
	}
	return &Log{capacity: capacity}
}

// Append records e, evicting the oldest entry when the log is full.
func (l *Log) Append(e Entry) {
	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, e)
}

// Entries returns a copy of the entries, newest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, len(l.entries))
	for i, e := range l.entries {
		out[len(l.entries)-1-i] = e
	}
	return out
}

// Len returns the number of stored entries.
func (l *Log) Len() int { return len(l.entries) }

// Cap returns the maximum number of entries.
func (l *Log) Cap() int { return l.capacity }

package core

import (
	"sort"
	"sync"
	"time"
)

// DefaultInvalidLogCapacity is the number of invalid-code entries retained.
const DefaultInvalidLogCapacity = 10000

// InvalidEntry is one code that failed validation.
type InvalidEntry struct {
	Code   string    `json:"code"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
}

// CodeCount is a code with the number of times it failed validation.
type CodeCount struct {
	Code  string `json:"code"`
	Count int    `json:"count"`
}

// InvalidCodeLog collects codes that failed validation.
// Only the most recent entries up to the capacity are kept; the total count
// covers everything recorded since the last Reset.
type InvalidCodeLog struct {
	mu       sync.Mutex
	entries  []InvalidEntry
	capacity int
	total    int
	now      func() time.Time
}

// NewInvalidCodeLog creates a log that retains at most capacity entries.
func NewInvalidCodeLog(capacity int) *InvalidCodeLog {
	if capacity <= 0 {
		capacity = DefaultInvalidLogCapacity
	}
	return &InvalidCodeLog{
		capacity: capacity,
		now:      time.Now,
	}
}

// RecordInvalid appends an entry, dropping the oldest when full.
func (l *InvalidCodeLog) RecordInvalid(code, reason string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == l.capacity {
		copy(l.entries, l.entries[1:])
		l.entries = l.entries[:len(l.entries)-1]
	}
	l.entries = append(l.entries, InvalidEntry{Code: code, Reason: reason, At: l.now()})
	l.total++
}

// Total returns the number of entries recorded since the last Reset.
func (l *InvalidCodeLog) Total() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.total
}

// Entries returns a copy of the retained entries, oldest first.
func (l *InvalidCodeLog) Entries() []InvalidEntry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]InvalidEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Top returns the n most frequent codes among the retained entries.
// Codes with equal counts keep the order in which they were first seen.
func (l *InvalidCodeLog) Top(n int) []CodeCount {
	if n <= 0 {
		return nil
	}

	l.mu.Lock()
	counts := make(map[string]int)
	var order []string
	for _, e := range l.entries {
		if _, seen := counts[e.Code]; !seen {
			order = append(order, e.Code)
		}
		counts[e.Code]++
	}
	l.mu.Unlock()

	out := make([]CodeCount, 0, len(order))
	for _, code := range order {
		out = append(out, CodeCount{Code: code, Count: counts[code]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})

	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Reset discards every entry.
func (l *InvalidCodeLog) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = nil
	l.total = 0
}

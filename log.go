package querybuilder

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// Entry records one compiled statement. Executed and Elapsed are filled in
// when the statement is run.
type Entry struct {
	SQL      string
	Args     []any
	Executed bool
	Elapsed  time.Duration
}

// Log is the append-only history of compiled statements. It is safe for
// concurrent use, so several builders may share one.
type Log struct {
	mu      sync.Mutex
	entries []Entry
}

func NewLog() *Log {
	return &Log{}
}

// Append records a statement and returns its position in the log.
func (l *Log) Append(sql string, args []any) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.entries = append(l.entries, Entry{SQL: sql, Args: slices.Clone(args)})
	return len(l.entries) - 1
}

func (l *Log) MarkExecuted(id int, elapsed time.Duration) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id < 0 || id >= len(l.entries) {
		return fmt.Errorf("%w: %d", ErrUnknownEntry, id)
	}
	l.entries[id].Executed = true
	l.entries[id].Elapsed = elapsed
	return nil
}

func (l *Log) Last() (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.entries) == 0 {
		return Entry{}, false
	}
	return l.copyEntry(len(l.entries) - 1), true
}

func (l *Log) Entry(id int) (Entry, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if id < 0 || id >= len(l.entries) {
		return Entry{}, false
	}
	return l.copyEntry(id), true
}

func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Entries returns a copy of the log in compile order.
func (l *Log) Entries() []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]Entry, len(l.entries))
	for i := range l.entries {
		out[i] = l.copyEntry(i)
	}
	return out
}

func (l *Log) copyEntry(i int) Entry {
	e := l.entries[i]
	e.Args = slices.Clone(e.Args)
	return e
}

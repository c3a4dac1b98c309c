package memory

import (
	"context"
	"fmt"
	"sync"

	"gnomeshade/internal/sheets"
)

// Journal keeps entries in memory. Used when no spreadsheet is configured
// and in tests.
type Journal struct {
	mu      sync.Mutex
	entries []sheets.JournalEntry
}

var _ sheets.JournalWriter = (*Journal)(nil)

func New() *Journal {
	return &Journal{}
}

// AppendEntry stores the entry and returns a synthetic row reference.
func (j *Journal) AppendEntry(_ context.Context, e sheets.JournalEntry) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	j.mu.Lock()
	defer j.mu.Unlock()
	j.entries = append(j.entries, e)
	return fmt.Sprintf("mem:%d", len(j.entries)), nil
}

// Entries returns a copy of everything appended so far.
func (j *Journal) Entries() []sheets.JournalEntry {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]sheets.JournalEntry(nil), j.entries...)
}

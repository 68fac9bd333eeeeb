package validate

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Entry is one recorded check on the audit trail.
type Entry struct {
	ID       string    `json:"id"`
	Result   Result    `json:"result"`
	Recorded time.Time `json:"recorded"`
}

// Trail is an append-only record of every check performed for one request.
// Entries are never mutated or removed, only appended and read. Safe for
// concurrent use, so parallel field validations can share one trail.
type Trail struct {
	mu      sync.Mutex
	entries []Entry
}

// NewTrail returns an empty audit trail.
func NewTrail() *Trail {
	return &Trail{}
}

// Record appends one result with a fresh entry ID.
func (t *Trail) Record(res Result) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.entries = append(t.entries, Entry{
		ID:       uuid.NewString(),
		Result:   res,
		Recorded: time.Now().UTC(),
	})
}

// Append copies every entry of other onto t, preserving IDs and order.
// Merging per-form trails into a request-wide one keeps the append-only
// contract: nothing is rewritten, only concatenated.
func (t *Trail) Append(other *Trail) {
	if other == nil {
		return
	}
	for _, entry := range other.Snapshot() {
		t.mu.Lock()
		t.entries = append(t.entries, entry)
		t.mu.Unlock()
	}
}

// Len reports the number of recorded entries.
func (t *Trail) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.entries)
}

// Snapshot returns a copy of the entries in recording order. The trail
// itself is never handed out, so callers cannot mutate history.
func (t *Trail) Snapshot() []Entry {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

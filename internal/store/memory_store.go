package store

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps loan records in-process. It is the default archive when
// no database is configured.
type MemoryStore struct {
	mu     sync.RWMutex
	byLoan map[string]*LoanRecord
	order  []string
}

// NewMemoryStore initializes an empty in-memory archive.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byLoan: make(map[string]*LoanRecord)}
}

// RecordLoan stores a new record, assigning an id when absent.
func (m *MemoryStore) RecordLoan(rec LoanRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if _, exists := m.byLoan[rec.LoanID]; !exists {
		m.order = append(m.order, rec.LoanID)
	}
	m.byLoan[rec.LoanID] = &rec
	return nil
}

// RecordReturn marks the record settled.
func (m *MemoryStore) RecordReturn(loanID string, returnedAt time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.byLoan[loanID]
	if !ok {
		return nil
	}
	t := returnedAt
	rec.ReturnedAt = &t
	rec.Status = "returned"
	return nil
}

// RecordStatus updates the archived status.
func (m *MemoryStore) RecordStatus(loanID, status string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if rec, ok := m.byLoan[loanID]; ok {
		rec.Status = status
	}
	return nil
}

// ListLoans returns matching records in insertion order.
func (m *MemoryStore) ListLoans(f Filter) ([]LoanRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]LoanRecord, 0, len(m.order))
	for _, loanID := range m.order {
		rec := m.byLoan[loanID]
		if f.PatronID != "" && rec.PatronID != f.PatronID {
			continue
		}
		if f.ISBN != "" && rec.ISBN != f.ISBN {
			continue
		}
		if f.Status != "" && rec.Status != f.Status {
			continue
		}
		out = append(out, *rec)
	}
	return out, nil
}

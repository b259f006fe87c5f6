package store

import "time"

// LoanRecord is the archived view of one lending event. The in-memory domain
// graph stays the authority for availability; records exist for listing and
// audit only.
type LoanRecord struct {
	ID         string     `json:"id"`
	LoanID     string     `json:"loanId"`
	ISBN       string     `json:"isbn"`
	Title      string     `json:"title,omitempty"`
	PatronID   string     `json:"patronId"`
	EmployeeID string     `json:"employeeId"`
	BorrowedAt time.Time  `json:"borrowedAt"`
	DueAt      time.Time  `json:"dueAt"`
	ReturnedAt *time.Time `json:"returnedAt,omitempty"`
	Status     string     `json:"status"`
}

// Filter narrows ListLoans results; zero values match everything.
type Filter struct {
	PatronID string
	ISBN     string
	Status   string
}

// Store archives loan records. Implementations are write-through sinks:
// failures are reported but never roll back a completed domain operation.
type Store interface {
	RecordLoan(rec LoanRecord) error
	RecordReturn(loanID string, returnedAt time.Time) error
	RecordStatus(loanID, status string) error
	ListLoans(f Filter) ([]LoanRecord, error)
}

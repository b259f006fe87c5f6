package domain

import (
	"fmt"
	"time"
)

// LoanStatus tracks one borrowing event through its lifecycle. The only legal
// transitions are active→returned and active→overdue; both end states are
// terminal for the normal lend/return path.
type LoanStatus string

const (
	LoanActive   LoanStatus = "active"
	LoanReturned LoanStatus = "returned"
	LoanOverdue  LoanStatus = "overdue"
)

// DefaultLoanDays is the lending period granted when a loan is created.
const DefaultLoanDays = 14

// LoanSequence mints loan ids of the form P0001, P0002, … It is owned by the
// orchestration root rather than living in process-wide state so tests stay
// isolated and repeatable. Not safe for concurrent use.
type LoanSequence struct {
	n int
}

// NewLoanSequence starts a sequence at P0001.
func NewLoanSequence() *LoanSequence { return &LoanSequence{} }

// Next returns the next id in the sequence.
func (s *LoanSequence) Next() string {
	s.n++
	return fmt.Sprintf("P%04d", s.n)
}

// Loan binds a patron and a book for one borrowing event.
type Loan struct {
	id         string
	patron     *Patron
	book       *Book
	borrowedAt time.Time
	dueAt      time.Time
	returnedAt *time.Time
	status     LoanStatus

	now func() time.Time
}

// NewLoan creates an active loan due DefaultLoanDays from now.
func NewLoan(id string, patron *Patron, book *Book) *Loan {
	return newLoanAt(id, patron, book, time.Now)
}

func newLoanAt(id string, patron *Patron, book *Book, now func() time.Time) *Loan {
	t := now().UTC()
	return &Loan{
		id:         id,
		patron:     patron,
		book:       book,
		borrowedAt: t,
		dueAt:      t.AddDate(0, 0, DefaultLoanDays),
		status:     LoanActive,
		now:        now,
	}
}

func (l *Loan) ID() string            { return l.id }
func (l *Loan) Patron() *Patron       { return l.patron }
func (l *Loan) Book() *Book           { return l.book }
func (l *Loan) BorrowedAt() time.Time { return l.borrowedAt }
func (l *Loan) DueAt() time.Time      { return l.dueAt }
func (l *Loan) Status() LoanStatus    { return l.status }

// ReturnedAt reports when the book came back; ok is false while the loan is
// unsettled.
func (l *Loan) ReturnedAt() (time.Time, bool) {
	if l.returnedAt == nil {
		return time.Time{}, false
	}
	return *l.returnedAt, true
}

// CheckStatus materializes the overdue state: an active loan past its due
// date becomes overdue. Nothing runs this in the background; callers decide
// when to re-check. Once overdue, the loan can no longer be extended or
// returned through the normal path.
func (l *Loan) CheckStatus() LoanStatus {
	if l.status == LoanActive && l.now().UTC().After(l.dueAt) {
		l.status = LoanOverdue
	}
	return l.status
}

// Extend pushes the due date forward by days. It refuses when the loan is not
// active or is already past due, even if CheckStatus has not yet materialized
// the overdue state. Negative days shrink the window; the value is not
// validated.
func (l *Loan) Extend(days int) bool {
	if l.status != LoanActive || l.now().UTC().After(l.dueAt) {
		return false
	}
	l.dueAt = l.dueAt.AddDate(0, 0, days)
	return true
}

// ProcessReturn settles an active loan: the book's flag is cleared first,
// then the patron drops the book from their borrowed collection. If the
// patron-side drop fails the book's flag is restored and the loan stays
// active. The actual-return date is set exactly once, on the successful
// transition.
func (l *Loan) ProcessReturn() bool {
	if l.status != LoanActive {
		return false
	}
	l.book.Return()
	if !l.patron.ReturnBook(l.book) {
		l.book.onLoan = true
		return false
	}
	t := l.now().UTC()
	l.returnedAt = &t
	l.status = LoanReturned
	return true
}

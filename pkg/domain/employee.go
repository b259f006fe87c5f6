package domain

import (
	"errors"
	"time"
)

var (
	// ErrNoLoansInFlight indicates the employee has nothing queued to settle.
	ErrNoLoansInFlight = errors.New("no loans in flight")
	// ErrLoanMismatch indicates the returned book matches none of the loans
	// the employee is responsible for.
	ErrLoanMismatch = errors.New("returned book matches no loan in flight")
	// ErrLoanNotReturnable indicates the matched loan refused the return
	// transition (already settled, overdue, or the patron-side drop failed).
	ErrLoanNotReturnable = errors.New("loan could not be returned")
)

// Employee processes loan requests and returns on behalf of the library.
// Loans it is actively responsible for sit in a FIFO queue; everything it
// ever processed stays in the history.
type Employee struct {
	Person
	position string
	salary   float64
	shift    Shift
	inFlight []*Loan
	history  []*Loan
	ids      *LoanSequence
	now      func() time.Time
}

// NewEmployee creates an employee with its own loan-id sequence. Registering
// the employee with a Library replaces the sequence with the library-owned
// one so ids stay monotonic across all employees.
func NewEmployee(name, id string, salary float64, position string) *Employee {
	e := &Employee{
		Person:   newPerson(name, id),
		position: position,
		shift:    ShiftMorning,
		ids:      NewLoanSequence(),
		now:      time.Now,
	}
	e.SetSalary(salary)
	return e
}

// Role identifies the employee side of the person hierarchy.
func (e *Employee) Role() Role { return RoleEmployee }

func (e *Employee) Position() string { return e.position }
func (e *Employee) Salary() float64  { return e.salary }
func (e *Employee) Shift() Shift     { return e.shift }

func (e *Employee) SetPosition(position string) { e.position = position }
func (e *Employee) SetShift(shift Shift)        { e.shift = shift }

// SetSalary clamps negative salaries to zero.
func (e *Employee) SetSalary(salary float64) {
	if salary > 0 {
		e.salary = salary
	} else {
		e.salary = 0
	}
}

// ProcessLoan runs the lend workflow for one book and patron. The patron-side
// flag flip happens first; only when it succeeds does the employee mint a
// loan, enqueue it, and record it in the history. A failure at the patron
// stage leaves no employee-side trace.
func (e *Employee) ProcessLoan(book *Book, patron *Patron) bool {
	return e.processLoan(book, patron) != nil
}

func (e *Employee) processLoan(book *Book, patron *Patron) *Loan {
	if book == nil || patron == nil || book.OnLoan() {
		return nil
	}
	if !patron.RequestLoan(book) {
		return nil
	}
	loan := newLoanAt(e.ids.Next(), patron, book, e.now)
	e.inFlight = append(e.inFlight, loan)
	e.history = append(e.history, loan)
	return loan
}

// ProcessReturn dequeues the oldest in-flight loan without matching it
// against any particular book, preserving the historical blind-FIFO
// behavior. It reports whether a loan existed to dequeue; the caller remains
// responsible for the book's flag.
func (e *Employee) ProcessReturn() bool {
	if len(e.inFlight) == 0 {
		return false
	}
	e.inFlight = e.inFlight[1:]
	return true
}

// ProcessReturnFor settles the in-flight loan for the given book. The loan is
// dequeued only after its return transition succeeds, so a failed return
// leaves the queue untouched. A book that matches no queued loan is reported
// as ErrLoanMismatch rather than silently popping the wrong loan.
func (e *Employee) ProcessReturnFor(book *Book) (*Loan, error) {
	if len(e.inFlight) == 0 {
		return nil, ErrNoLoansInFlight
	}
	for i, loan := range e.inFlight {
		if loan.Book() != book {
			continue
		}
		if !loan.ProcessReturn() {
			return nil, ErrLoanNotReturnable
		}
		e.inFlight = append(e.inFlight[:i], e.inFlight[i+1:]...)
		return loan, nil
	}
	return nil, ErrLoanMismatch
}

// InFlight returns the queued loans, oldest first.
func (e *Employee) InFlight() []*Loan {
	out := make([]*Loan, len(e.inFlight))
	copy(out, e.inFlight)
	return out
}

// History returns every loan this employee ever processed.
func (e *Employee) History() []*Loan {
	out := make([]*Loan, len(e.history))
	copy(out, e.history)
	return out
}

package domain

import (
	"fmt"
	"strings"
	"time"
)

// Library composes the catalog, the patron registry, and the employee
// registry, and exposes the end-to-end lend/return operations. The book list
// allows duplicate entries; patrons and employees are unique by id. Removing
// an entity never cascades: a removed patron keeps their outstanding loans.
//
// A Library is not safe for concurrent use; callers serialize access.
type Library struct {
	name      string
	location  string
	books     []*Book
	patrons   map[string]*Patron
	employees map[string]*Employee
	seq       *LoanSequence
	now       func() time.Time
}

// NewLibrary creates an empty library.
func NewLibrary(name, location string) *Library {
	return NewLibraryAt(name, location, time.Now)
}

// NewLibraryAt creates an empty library whose loans read the given clock. Due
// dates and overdue checks of every loan minted through this library follow
// it, which lets callers age loans deterministically.
func NewLibraryAt(name, location string, now func() time.Time) *Library {
	if now == nil {
		now = time.Now
	}
	return &Library{
		name:      name,
		location:  location,
		patrons:   make(map[string]*Patron),
		employees: make(map[string]*Employee),
		seq:       NewLoanSequence(),
		now:       now,
	}
}

func (l *Library) Name() string     { return l.name }
func (l *Library) Location() string { return l.location }

// AddBook appends a book to the catalog.
func (l *Library) AddBook(book *Book) {
	if book == nil {
		return
	}
	l.books = append(l.books, book)
}

// RemoveBook drops the first catalog entry that is this exact book.
func (l *Library) RemoveBook(book *Book) {
	for i, b := range l.books {
		if b == book {
			l.books = append(l.books[:i], l.books[i+1:]...)
			return
		}
	}
}

// AddPatron registers a patron, replacing any previous one with the same id.
func (l *Library) AddPatron(p *Patron) {
	if p == nil {
		return
	}
	l.patrons[p.ID()] = p
}

// RemovePatron unregisters a patron. Outstanding loans are not retracted.
func (l *Library) RemovePatron(id string) {
	delete(l.patrons, id)
}

// PatronByID returns the registered patron, or nil.
func (l *Library) PatronByID(id string) *Patron {
	return l.patrons[id]
}

// AddEmployee registers an employee and hands it the library-owned loan-id
// sequence, so ids stay monotonic across every employee, and the library's
// clock.
func (l *Library) AddEmployee(e *Employee) {
	if e == nil {
		return
	}
	e.ids = l.seq
	e.now = l.now
	l.employees[e.ID()] = e
}

// RemoveEmployee unregisters an employee.
func (l *Library) RemoveEmployee(id string) {
	delete(l.employees, id)
}

// EmployeeByID returns the registered employee, or nil.
func (l *Library) EmployeeByID(id string) *Employee {
	return l.employees[id]
}

// FindByISBN returns the first catalog entry with the given ISBN, or nil.
func (l *Library) FindByISBN(isbn string) *Book {
	for _, b := range l.books {
		if b.ISBN() == isbn {
			return b
		}
	}
	return nil
}

// SearchByTitle returns every book whose title contains the query,
// case-insensitively.
func (l *Library) SearchByTitle(query string) []*Book {
	query = strings.ToLower(query)
	var out []*Book
	for _, b := range l.books {
		if strings.Contains(strings.ToLower(b.Title()), query) {
			out = append(out, b)
		}
	}
	return out
}

// Books returns the whole catalog in registration order.
func (l *Library) Books() []*Book {
	out := make([]*Book, len(l.books))
	copy(out, l.books)
	return out
}

// AvailableBooks returns the catalog entries not currently on loan.
func (l *Library) AvailableBooks() []*Book {
	var out []*Book
	for _, b := range l.books {
		if b.Available() {
			out = append(out, b)
		}
	}
	return out
}

// LoanedBooks returns the catalog entries currently on loan.
func (l *Library) LoanedBooks() []*Book {
	var out []*Book
	for _, b := range l.books {
		if b.OnLoan() {
			out = append(out, b)
		}
	}
	return out
}

// Lend runs the full lend workflow: the book, patron, and employee must all
// resolve and the book must show available, otherwise the result is a silent
// failure. On success the minted loan is returned.
func (l *Library) Lend(isbn, patronID, employeeID string) (*Loan, bool) {
	book := l.FindByISBN(isbn)
	patron := l.patrons[patronID]
	employee := l.employees[employeeID]
	if book == nil || patron == nil || employee == nil || book.OnLoan() {
		return nil, false
	}
	loan := employee.processLoan(book, patron)
	if loan == nil {
		return nil, false
	}
	return loan, true
}

// LendBook reports whether the lend workflow succeeded.
func (l *Library) LendBook(isbn, patronID, employeeID string) bool {
	_, ok := l.Lend(isbn, patronID, employeeID)
	return ok
}

// Return settles the loan for the book with the given ISBN through the
// employee's queue. The book must resolve and currently show on-loan. The
// return runs the loan's compensating transition, so a failure at any stage
// leaves the book, patron, and queue untouched.
func (l *Library) Return(isbn, employeeID string) (*Loan, bool) {
	book := l.FindByISBN(isbn)
	employee := l.employees[employeeID]
	if book == nil || employee == nil || !book.OnLoan() {
		return nil, false
	}
	loan, err := employee.ProcessReturnFor(book)
	if err != nil {
		return nil, false
	}
	return loan, true
}

// ReturnBook reports whether the return workflow succeeded.
func (l *Library) ReturnBook(isbn, employeeID string) bool {
	_, ok := l.Return(isbn, employeeID)
	return ok
}

// InFlightLoans collects the queued loans of every employee.
func (l *Library) InFlightLoans() []*Loan {
	var out []*Loan
	for _, e := range l.employees {
		out = append(out, e.inFlight...)
	}
	return out
}

// Summary renders a textual report of the library's current state.
func (l *Library) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Library: %s\n", l.name)
	fmt.Fprintf(&b, "Location: %s\n", l.location)
	fmt.Fprintf(&b, "Total books: %d\n", len(l.books))
	fmt.Fprintf(&b, "Available books: %d\n", len(l.AvailableBooks()))
	fmt.Fprintf(&b, "Books on loan: %d\n", len(l.LoanedBooks()))
	fmt.Fprintf(&b, "Registered patrons: %d\n", len(l.patrons))
	fmt.Fprintf(&b, "Employees: %d\n", len(l.employees))
	b.WriteString("\nCurrently on loan:\n")
	for _, book := range l.LoanedBooks() {
		fmt.Fprintf(&b, "- %s\n", book.Title())
	}
	return b.String()
}

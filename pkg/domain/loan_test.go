package domain

import (
	"regexp"
	"testing"
	"time"
)

func activeLoan(t *testing.T) (*Loan, *Patron, *Book) {
	t.Helper()
	patron := NewPatron("Ana López", "U001")
	book := NewBook("Don Quijote de la Mancha", "Miguel de Cervantes", "9788424922498", 863)
	if !patron.RequestLoan(book) {
		t.Fatalf("patron should be able to take an available book")
	}
	return NewLoan("P0001", patron, book), patron, book
}

func TestNewLoanDefaults(t *testing.T) {
	loan, patron, book := activeLoan(t)
	if loan.ID() != "P0001" {
		t.Fatalf("id = %q", loan.ID())
	}
	if loan.Patron() != patron || loan.Book() != book {
		t.Fatalf("loan should reference the live patron and book")
	}
	if loan.Status() != LoanActive {
		t.Fatalf("status = %q, want active", loan.Status())
	}
	wantDue := loan.BorrowedAt().AddDate(0, 0, DefaultLoanDays)
	if !loan.DueAt().Equal(wantDue) {
		t.Fatalf("dueAt = %v, want %v", loan.DueAt(), wantDue)
	}
	if _, ok := loan.ReturnedAt(); ok {
		t.Fatalf("returnedAt should be unset on a fresh loan")
	}
}

func TestProcessReturnOnce(t *testing.T) {
	loan, patron, book := activeLoan(t)
	if !loan.ProcessReturn() {
		t.Fatalf("first return should succeed")
	}
	if loan.Status() != LoanReturned {
		t.Fatalf("status = %q, want returned", loan.Status())
	}
	if _, ok := loan.ReturnedAt(); !ok {
		t.Fatalf("returnedAt should be set after a successful return")
	}
	if !book.Available() {
		t.Fatalf("book should be available after return")
	}
	if len(patron.Borrowed()) != 0 {
		t.Fatalf("patron should no longer hold the book")
	}
	if loan.ProcessReturn() {
		t.Fatalf("second return should fail")
	}
	if loan.Status() != LoanReturned {
		t.Fatalf("status changed by failed second return: %q", loan.Status())
	}
}

func TestProcessReturnCompensatesOnPatronFailure(t *testing.T) {
	patron := NewPatron("Ana López", "U001")
	book := NewBook("La Odisea", "Homero", "9788467028621", 448)
	book.AttemptLoan()
	// The patron never took the book, so the drop must fail.
	loan := NewLoan("P0001", patron, book)

	if loan.ProcessReturn() {
		t.Fatalf("return should fail when the patron does not hold the book")
	}
	if loan.Status() != LoanActive {
		t.Fatalf("status = %q, want active after rollback", loan.Status())
	}
	if !book.OnLoan() {
		t.Fatalf("book flag should be restored by the compensating action")
	}
	if _, ok := loan.ReturnedAt(); ok {
		t.Fatalf("returnedAt must stay unset after a failed return")
	}
}

func TestExtendAdvancesDueDate(t *testing.T) {
	loan, _, _ := activeLoan(t)
	due := loan.DueAt()
	if !loan.Extend(7) {
		t.Fatalf("extend should succeed on an active loan within its window")
	}
	if got, want := loan.DueAt(), due.AddDate(0, 0, 7); !got.Equal(want) {
		t.Fatalf("dueAt = %v, want %v", got, want)
	}
}

func TestOverdueTransitionAndHardStop(t *testing.T) {
	patron := NewPatron("Carlos Ruiz", "U002")
	book := NewBook("Cien años de soledad", "Gabriel García Márquez", "9780307474728", 417)
	patron.RequestLoan(book)

	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	loan := newLoanAt("P0002", patron, book, func() time.Time { return current })

	if got := loan.CheckStatus(); got != LoanActive {
		t.Fatalf("status = %q before due date, want active", got)
	}

	current = current.AddDate(0, 0, DefaultLoanDays+1)
	if got := loan.CheckStatus(); got != LoanOverdue {
		t.Fatalf("status = %q past due date, want overdue", got)
	}
	if loan.Extend(7) {
		t.Fatalf("extend must fail once the loan is overdue")
	}
	if loan.ProcessReturn() {
		t.Fatalf("the normal return path must refuse an overdue loan")
	}
}

func TestExtendRefusedPastDueEvenBeforeCheck(t *testing.T) {
	patron := NewPatron("Carlos Ruiz", "U002")
	book := NewBook("Orgullo y Prejuicio", "Jane Austen", "9788491052050", 424)
	patron.RequestLoan(book)

	current := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	loan := newLoanAt("P0003", patron, book, func() time.Time { return current })
	current = current.AddDate(0, 0, DefaultLoanDays+1)

	// Status has not been refreshed, but the date alone gates the extension.
	if loan.Status() != LoanActive {
		t.Fatalf("precondition: status should still read active")
	}
	if loan.Extend(7) {
		t.Fatalf("extend must fail for a loan already past due by date")
	}
}

func TestExtendAcceptsNegativeDays(t *testing.T) {
	loan, _, _ := activeLoan(t)
	due := loan.DueAt()
	if !loan.Extend(-3) {
		t.Fatalf("negative days are not validated and should be applied")
	}
	if got, want := loan.DueAt(), due.AddDate(0, 0, -3); !got.Equal(want) {
		t.Fatalf("dueAt = %v, want %v", got, want)
	}
}

func TestLoanSequenceFormat(t *testing.T) {
	seq := NewLoanSequence()
	pattern := regexp.MustCompile(`^P\d{4}$`)
	prev := ""
	seen := make(map[string]struct{})
	for i := 0; i < 25; i++ {
		id := seq.Next()
		if !pattern.MatchString(id) {
			t.Fatalf("id %q does not match P#### pattern", id)
		}
		if _, dup := seen[id]; dup {
			t.Fatalf("duplicate id %q", id)
		}
		seen[id] = struct{}{}
		if prev != "" && id <= prev {
			t.Fatalf("ids not strictly increasing: %q after %q", id, prev)
		}
		prev = id
	}
	if prev != "P0025" {
		t.Fatalf("last id = %q, want P0025", prev)
	}
}

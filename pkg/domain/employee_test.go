package domain

import (
	"errors"
	"testing"
)

func TestProcessLoanGuards(t *testing.T) {
	e := NewEmployee("Juan Pérez", "E001", 16000, "Librarian")
	patron := NewPatron("Ana López", "U001")
	book := NewBook("El Principito", "Antoine de Saint-Exupéry", "9788498381498", 96)

	if e.ProcessLoan(nil, patron) {
		t.Fatalf("nil book must be rejected")
	}
	if e.ProcessLoan(book, nil) {
		t.Fatalf("nil patron must be rejected")
	}
	book.AttemptLoan()
	if e.ProcessLoan(book, patron) {
		t.Fatalf("a book already on loan must be rejected")
	}
	if len(e.InFlight()) != 0 || len(e.History()) != 0 {
		t.Fatalf("failed loans must leave no employee-side trace")
	}
}

func TestProcessLoanEnqueuesAndRecords(t *testing.T) {
	e := NewEmployee("Juan Pérez", "E001", 16000, "Librarian")
	patron := NewPatron("Ana López", "U001")
	book := NewBook("El Principito", "Antoine de Saint-Exupéry", "9788498381498", 96)

	if !e.ProcessLoan(book, patron) {
		t.Fatalf("loan should succeed")
	}
	if !book.OnLoan() {
		t.Fatalf("book should be on loan")
	}
	inFlight, history := e.InFlight(), e.History()
	if len(inFlight) != 1 || len(history) != 1 {
		t.Fatalf("inFlight=%d history=%d, want 1 and 1", len(inFlight), len(history))
	}
	if inFlight[0].ID() != "P0001" {
		t.Fatalf("loan id = %q, want P0001", inFlight[0].ID())
	}
}

func TestProcessReturnIsFIFOBlind(t *testing.T) {
	e := NewEmployee("Juan Pérez", "E001", 16000, "Librarian")
	patron := NewPatron("Ana López", "U001")
	first := NewBook("El Principito", "Antoine de Saint-Exupéry", "9788498381498", 96)
	second := NewBook("Fahrenheit 451", "Ray Bradbury", "9788445073192", 192)
	e.ProcessLoan(first, patron)
	e.ProcessLoan(second, patron)

	if !e.ProcessReturn() {
		t.Fatalf("return should pop a queued loan")
	}
	remaining := e.InFlight()
	if len(remaining) != 1 || remaining[0].Book() != second {
		t.Fatalf("FIFO return should pop the oldest loan regardless of book")
	}
	e.ProcessReturn()
	if e.ProcessReturn() {
		t.Fatalf("return with an empty queue should report false")
	}
}

func TestProcessReturnForMatchesByBook(t *testing.T) {
	e := NewEmployee("Juan Pérez", "E001", 16000, "Librarian")
	patron := NewPatron("Ana López", "U001")
	first := NewBook("El Principito", "Antoine de Saint-Exupéry", "9788498381498", 96)
	second := NewBook("Fahrenheit 451", "Ray Bradbury", "9788445073192", 192)
	e.ProcessLoan(first, patron)
	e.ProcessLoan(second, patron)

	loan, err := e.ProcessReturnFor(second)
	if err != nil {
		t.Fatalf("matched return failed: %v", err)
	}
	if loan.Book() != second || loan.Status() != LoanReturned {
		t.Fatalf("wrong loan settled: %v / %v", loan.Book().Title(), loan.Status())
	}
	if !second.Available() {
		t.Fatalf("returned book should be available")
	}
	if remaining := e.InFlight(); len(remaining) != 1 || remaining[0].Book() != first {
		t.Fatalf("unrelated loan must stay queued")
	}
}

func TestProcessReturnForMismatch(t *testing.T) {
	e := NewEmployee("Juan Pérez", "E001", 16000, "Librarian")
	patron := NewPatron("Ana López", "U001")
	queued := NewBook("El Principito", "Antoine de Saint-Exupéry", "9788498381498", 96)
	stranger := NewBook("Moby Dick", "Herman Melville", "9788491051322", 752)
	e.ProcessLoan(queued, patron)

	if _, err := e.ProcessReturnFor(stranger); !errors.Is(err, ErrLoanMismatch) {
		t.Fatalf("err = %v, want ErrLoanMismatch", err)
	}
	if len(e.InFlight()) != 1 {
		t.Fatalf("mismatch must leave the queue untouched")
	}
}

func TestProcessReturnForEmptyQueue(t *testing.T) {
	e := NewEmployee("Juan Pérez", "E001", 16000, "Librarian")
	book := NewBook("Moby Dick", "Herman Melville", "9788491051322", 752)
	if _, err := e.ProcessReturnFor(book); !errors.Is(err, ErrNoLoansInFlight) {
		t.Fatalf("err = %v, want ErrNoLoansInFlight", err)
	}
}

func TestSalaryClamped(t *testing.T) {
	e := NewEmployee("María García", "E002", -100, "Assistant")
	if e.Salary() != 0 {
		t.Fatalf("salary = %v, want 0 for negative input", e.Salary())
	}
	e.SetSalary(8000)
	if e.Salary() != 8000 {
		t.Fatalf("salary = %v, want 8000", e.Salary())
	}
	e.SetSalary(-1)
	if e.Salary() != 0 {
		t.Fatalf("salary = %v, want clamped 0", e.Salary())
	}
}

func TestRoleDiscriminators(t *testing.T) {
	e := NewEmployee("Juan Pérez", "E001", 16000, "Librarian")
	p := NewPatron("Ana López", "U001")
	if e.Role() != RoleEmployee {
		t.Fatalf("employee role = %q", e.Role())
	}
	if p.Role() != RolePatron {
		t.Fatalf("patron role = %q", p.Role())
	}
}

package domain

import "sort"

// Patron is a library member who can hold books. The borrowed collection
// keeps live references in borrow order; the history records every ISBN the
// patron ever borrowed and is never pruned.
type Patron struct {
	Person
	borrowed []*Book
	history  map[string]struct{}
}

// NewPatron creates a patron with the given externally assigned id.
func NewPatron(name, id string) *Patron {
	return &Patron{
		Person:  newPerson(name, id),
		history: make(map[string]struct{}),
	}
}

// Role identifies the patron side of the person hierarchy.
func (p *Patron) Role() Role { return RolePatron }

// RequestLoan tries to take the book. It fails fast when the book is already
// out; otherwise it flips the book's availability and, on success, records
// the book in the borrowed collection and its ISBN in the history.
func (p *Patron) RequestLoan(book *Book) bool {
	if book == nil || book.OnLoan() {
		return false
	}
	if !book.AttemptLoan() {
		return false
	}
	p.borrowed = append(p.borrowed, book)
	p.history[book.ISBN()] = struct{}{}
	return true
}

// ReturnBook gives the book back. It succeeds only when this patron actually
// holds the book; on success the book becomes available again and leaves the
// borrowed collection.
func (p *Patron) ReturnBook(book *Book) bool {
	for i, held := range p.borrowed {
		if held == book {
			book.Return()
			p.borrowed = append(p.borrowed[:i], p.borrowed[i+1:]...)
			return true
		}
	}
	return false
}

// Borrowed returns the books currently held, in borrow order.
func (p *Patron) Borrowed() []*Book {
	out := make([]*Book, len(p.borrowed))
	copy(out, p.borrowed)
	return out
}

// History returns every ISBN the patron has ever borrowed, sorted.
func (p *Patron) History() []string {
	out := make([]string, 0, len(p.history))
	for isbn := range p.history {
		out = append(out, isbn)
	}
	sort.Strings(out)
	return out
}

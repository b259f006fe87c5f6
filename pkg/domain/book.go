package domain

import (
	"regexp"
	"strings"
)

// isbnPattern matches the 13-digit identifiers used as catalog lookup keys.
var isbnPattern = regexp.MustCompile(`^\d{13}$`)

const (
	defaultTitle  = "Untitled"
	defaultAuthor = "Unknown"
	defaultISBN   = "0000000000000"
)

// Book is one catalog entry. Its on-loan flag is the sole authority for
// availability; who currently holds the book is tracked by Patron and Loan
// records, never by the book itself.
type Book struct {
	title   string
	author  string
	isbn    string
	pages   int
	onLoan  bool
	digital *DigitalEdition
}

// NewBook creates a catalog entry. Invalid arguments are ignored and the
// corresponding field keeps its default, matching the setter policy.
func NewBook(title, author, isbn string, pages int) *Book {
	b := &Book{title: defaultTitle, author: defaultAuthor, isbn: defaultISBN}
	b.SetTitle(title)
	b.SetAuthor(author)
	b.SetISBN(isbn)
	b.SetPages(pages)
	return b
}

// NewDigitalBook creates a catalog entry with a download-quota extension.
// The storage key locates the book content in object storage.
func NewDigitalBook(title, author, isbn string, pages int, format string, sizeMB float64, storageKey string) *Book {
	b := NewBook(title, author, isbn, pages)
	b.digital = &DigitalEdition{
		format:     format,
		sizeMB:     sizeMB,
		storageKey: storageKey,
		quota:      DefaultDownloadQuota,
	}
	return b
}

func (b *Book) Title() string  { return b.title }
func (b *Book) Author() string { return b.author }
func (b *Book) ISBN() string   { return b.isbn }
func (b *Book) Pages() int     { return b.pages }

// SetTitle ignores blank titles, keeping the prior value.
func (b *Book) SetTitle(title string) {
	if strings.TrimSpace(title) != "" {
		b.title = title
	}
}

// SetAuthor ignores blank authors, keeping the prior value.
func (b *Book) SetAuthor(author string) {
	if strings.TrimSpace(author) != "" {
		b.author = author
	}
}

// SetISBN ignores anything that is not exactly 13 digits.
func (b *Book) SetISBN(isbn string) {
	if isbnPattern.MatchString(isbn) {
		b.isbn = isbn
	}
}

// SetPages ignores non-positive page counts.
func (b *Book) SetPages(pages int) {
	if pages > 0 {
		b.pages = pages
	}
}

// OnLoan reports whether the book is currently lent out.
func (b *Book) OnLoan() bool { return b.onLoan }

// Available reports whether the book can be requested right now.
func (b *Book) Available() bool { return !b.onLoan }

// Digital returns the download-quota extension, or nil for print books.
func (b *Book) Digital() *DigitalEdition { return b.digital }

// AttemptLoan flips the book to on-loan. It fails when the book is already
// out, or when a digital edition has exhausted its download quota: borrowing
// is blocked once the quota is spent even though lending itself never
// consumes a download.
func (b *Book) AttemptLoan() bool {
	if b.onLoan {
		return false
	}
	if b.digital != nil && b.digital.exhausted() {
		return false
	}
	b.onLoan = true
	return true
}

// Return clears the on-loan flag. Returning a book that is not out is a no-op.
func (b *Book) Return() {
	b.onLoan = false
}

// DefaultDownloadQuota is the number of downloads a digital edition allows
// before a reset.
const DefaultDownloadQuota = 3

// DigitalEdition is the optional per-book download extension. Downloads are
// tracked independently of lending.
type DigitalEdition struct {
	format     string
	sizeMB     float64
	storageKey string
	quota      int
	downloads  int
}

func (d *DigitalEdition) Format() string     { return d.format }
func (d *DigitalEdition) SizeMB() float64    { return d.sizeMB }
func (d *DigitalEdition) StorageKey() string { return d.storageKey }
func (d *DigitalEdition) Quota() int         { return d.quota }
func (d *DigitalEdition) Downloads() int     { return d.downloads }

// Download consumes one unit of quota, failing once the quota is exhausted.
func (d *DigitalEdition) Download() bool {
	if d.exhausted() {
		return false
	}
	d.downloads++
	return true
}

// ResetDownloads restores the full quota.
func (d *DigitalEdition) ResetDownloads() {
	d.downloads = 0
}

func (d *DigitalEdition) exhausted() bool {
	return d.downloads >= d.quota
}

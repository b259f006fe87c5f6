package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"openshelf/internal/events"
	"openshelf/internal/storage"
	"openshelf/internal/store"
	"openshelf/pkg/domain"
)

// Config holds runtime configuration for the core application. Clock is the
// time source for loan due dates and overdue checks; nil means time.Now.
type Config struct {
	LibraryName     string
	LibraryLocation string
	Store           store.Store
	Events          events.Publisher
	Objects         storage.ObjectStore
	PresignExpiry   time.Duration
	Clock           func() time.Time
}

// App is the application facade. It owns the in-memory domain graph, which is
// the sole authority for availability, and wires the loan archive, the event
// publisher, and object storage around it. The domain itself is
// single-threaded; the facade serializes all access behind one mutex.
type App struct {
	mu            sync.Mutex
	library       *domain.Library
	archive       store.Store
	events        events.Publisher
	objects       storage.ObjectStore
	presignExpiry time.Duration
}

// New constructs the application. The archive defaults to the in-memory
// store and events to the nop publisher; object storage stays nil unless
// configured, which disables downloads.
func New(cfg Config) *App {
	archive := cfg.Store
	if archive == nil {
		archive = store.NewMemoryStore()
	}
	publisher := cfg.Events
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	expiry := cfg.PresignExpiry
	if expiry <= 0 {
		expiry = 15 * time.Minute
	}
	name := cfg.LibraryName
	if name == "" {
		name = "Central Library"
	}
	return &App{
		library:       domain.NewLibraryAt(name, cfg.LibraryLocation, cfg.Clock),
		archive:       archive,
		events:        publisher,
		objects:       cfg.Objects,
		presignExpiry: expiry,
	}
}

// BookView is the read-only JSON projection of a catalog entry.
type BookView struct {
	Title     string       `json:"title"`
	Author    string       `json:"author"`
	ISBN      string       `json:"isbn"`
	Pages     int          `json:"pages"`
	Available bool         `json:"available"`
	Digital   *DigitalView `json:"digital,omitempty"`
}

// DigitalView is the read-only projection of a digital edition.
type DigitalView struct {
	Format    string  `json:"format"`
	SizeMB    float64 `json:"sizeMB"`
	Quota     int     `json:"quota"`
	Downloads int     `json:"downloads"`
}

func viewOf(b *domain.Book) BookView {
	v := BookView{
		Title:     b.Title(),
		Author:    b.Author(),
		ISBN:      b.ISBN(),
		Pages:     b.Pages(),
		Available: b.Available(),
	}
	if d := b.Digital(); d != nil {
		v.Digital = &DigitalView{
			Format:    d.Format(),
			SizeMB:    d.SizeMB(),
			Quota:     d.Quota(),
			Downloads: d.Downloads(),
		}
	}
	return v
}

// RegisterBook adds a print book to the catalog.
func (a *App) RegisterBook(title, author, isbn string, pages int) BookView {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := domain.NewBook(title, author, isbn, pages)
	a.library.AddBook(b)
	return viewOf(b)
}

// RegisterDigitalBook adds a quota-limited digital book to the catalog.
func (a *App) RegisterDigitalBook(title, author, isbn string, pages int, format string, sizeMB float64, storageKey string) BookView {
	a.mu.Lock()
	defer a.mu.Unlock()
	b := domain.NewDigitalBook(title, author, isbn, pages, format, sizeMB, storageKey)
	a.library.AddBook(b)
	return viewOf(b)
}

// RegisterPatron adds a patron, replacing any previous one with the same id.
func (a *App) RegisterPatron(name, id string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.library.AddPatron(domain.NewPatron(name, id))
}

// RegisterEmployee adds an employee, replacing any previous one with the
// same id.
func (a *App) RegisterEmployee(name, id string, salary float64, position string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.library.AddEmployee(domain.NewEmployee(name, id, salary, position))
}

// Catalog returns the whole catalog with current availability.
func (a *App) Catalog() []BookView {
	a.mu.Lock()
	defer a.mu.Unlock()
	books := a.library.Books()
	out := make([]BookView, 0, len(books))
	for _, b := range books {
		out = append(out, viewOf(b))
	}
	return out
}

// Search returns books whose titles contain the query, case-insensitively.
func (a *App) Search(title string) []BookView {
	a.mu.Lock()
	defer a.mu.Unlock()
	books := a.library.SearchByTitle(title)
	out := make([]BookView, 0, len(books))
	for _, b := range books {
		out = append(out, viewOf(b))
	}
	return out
}

// Lend runs the lend workflow. On success the loan is archived and a
// loan.created event is published; neither can veto the completed domain
// operation, failures are only logged.
func (a *App) Lend(ctx context.Context, isbn, patronID, employeeID string) (store.LoanRecord, bool) {
	a.mu.Lock()
	loan, ok := a.library.Lend(isbn, patronID, employeeID)
	var rec store.LoanRecord
	if ok {
		rec = recordOf(loan, patronID, employeeID)
	}
	a.mu.Unlock()
	if !ok {
		return store.LoanRecord{}, false
	}
	if err := a.archive.RecordLoan(rec); err != nil {
		slog.Warn("archive loan", "loan", rec.LoanID, "err", err)
	}
	a.publish(ctx, events.LoanCreated, rec)
	return rec, true
}

// Return settles the loan for the book through the employee's queue.
func (a *App) Return(ctx context.Context, isbn, employeeID string) (store.LoanRecord, bool) {
	a.mu.Lock()
	loan, ok := a.library.Return(isbn, employeeID)
	var rec store.LoanRecord
	if ok {
		rec = recordOf(loan, loan.Patron().ID(), employeeID)
	}
	a.mu.Unlock()
	if !ok {
		return store.LoanRecord{}, false
	}
	if rec.ReturnedAt != nil {
		if err := a.archive.RecordReturn(rec.LoanID, *rec.ReturnedAt); err != nil {
			slog.Warn("archive return", "loan", rec.LoanID, "err", err)
		}
	}
	a.publish(ctx, events.LoanReturned, rec)
	return rec, true
}

// Loans lists archived loan records.
func (a *App) Loans(f store.Filter) ([]store.LoanRecord, error) {
	return a.archive.ListLoans(f)
}

// SweepOverdue re-checks every in-flight loan and materializes the overdue
// state for those past due, publishing a loan.overdue event per transition.
// Nothing runs this on a timer; it is an explicit operation.
func (a *App) SweepOverdue(ctx context.Context) int {
	a.mu.Lock()
	var flipped []store.LoanRecord
	for _, loan := range a.library.InFlightLoans() {
		if loan.Status() != domain.LoanActive {
			continue
		}
		if loan.CheckStatus() == domain.LoanOverdue {
			flipped = append(flipped, recordOf(loan, loan.Patron().ID(), ""))
		}
	}
	a.mu.Unlock()
	for _, rec := range flipped {
		if err := a.archive.RecordStatus(rec.LoanID, string(domain.LoanOverdue)); err != nil {
			slog.Warn("archive overdue", "loan", rec.LoanID, "err", err)
		}
		a.publish(ctx, events.LoanOverdue, rec)
	}
	return len(flipped)
}

// DownloadURL consumes one download of the book's digital quota and returns
// a pre-signed URL for its content.
func (a *App) DownloadURL(ctx context.Context, isbn string) (string, error) {
	if a.objects == nil {
		return "", ErrDownloadsUnavailable
	}
	a.mu.Lock()
	book := a.library.FindByISBN(isbn)
	if book == nil {
		a.mu.Unlock()
		return "", ErrBookNotFound
	}
	digital := book.Digital()
	if digital == nil {
		a.mu.Unlock()
		return "", ErrNotDigital
	}
	if !digital.Download() {
		a.mu.Unlock()
		return "", ErrQuotaExhausted
	}
	key := digital.StorageKey()
	a.mu.Unlock()
	return a.objects.PresignGet(ctx, key, a.presignExpiry)
}

// Summary renders the library's current state report.
func (a *App) Summary() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.library.Summary()
}

func (a *App) publish(ctx context.Context, typ events.Type, rec store.LoanRecord) {
	ev := events.Event{
		Type:       typ,
		LoanID:     rec.LoanID,
		ISBN:       rec.ISBN,
		PatronID:   rec.PatronID,
		EmployeeID: rec.EmployeeID,
		OccurredAt: time.Now().UTC(),
	}
	if err := a.events.Publish(ctx, ev); err != nil {
		slog.Warn("publish event", "type", typ, "loan", rec.LoanID, "err", err)
	}
}

func recordOf(loan *domain.Loan, patronID, employeeID string) store.LoanRecord {
	rec := store.LoanRecord{
		LoanID:     loan.ID(),
		ISBN:       loan.Book().ISBN(),
		Title:      loan.Book().Title(),
		PatronID:   patronID,
		EmployeeID: employeeID,
		BorrowedAt: loan.BorrowedAt(),
		DueAt:      loan.DueAt(),
		Status:     string(loan.Status()),
	}
	if t, ok := loan.ReturnedAt(); ok {
		rec.ReturnedAt = &t
	}
	return rec
}

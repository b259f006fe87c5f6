package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// LoanModel is the archive row for one lending event.
type LoanModel struct {
	ID         string    `gorm:"type:uuid;primaryKey"`
	LoanID     string    `gorm:"size:16;uniqueIndex;not null"`
	ISBN       string    `gorm:"size:13;index;not null"`
	PatronID   string    `gorm:"size:64;index;not null"`
	EmployeeID string    `gorm:"size:64;index;not null"`
	BorrowedAt time.Time `gorm:"index;not null"`
	DueAt      time.Time `gorm:"not null"`
	ReturnedAt *time.Time
	Status     string `gorm:"size:16;index;not null"`
	Meta       datatypes.JSON
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName places the archive under its own prefix.
func (LoanModel) TableName() string { return "shelf_loans" }

type loanMeta struct {
	Title string `json:"title,omitempty"`
}

// GormStore implements Store on GORM + Postgres.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore opens the DB and runs auto-migrations.
func NewGormStore(dsn string) (*GormStore, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := db.AutoMigrate(&LoanModel{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	return &GormStore{db: db}, nil
}

// RecordLoan inserts a new archive row.
func (s *GormStore) RecordLoan(rec LoanRecord) error {
	model, err := loanToModel(rec)
	if err != nil {
		return err
	}
	return s.db.Create(&model).Error
}

// RecordReturn marks the row settled.
func (s *GormStore) RecordReturn(loanID string, returnedAt time.Time) error {
	return s.db.Model(&LoanModel{}).
		Where("loan_id = ?", loanID).
		Updates(map[string]any{"returned_at": returnedAt, "status": "returned"}).Error
}

// RecordStatus updates the archived status.
func (s *GormStore) RecordStatus(loanID, status string) error {
	return s.db.Model(&LoanModel{}).
		Where("loan_id = ?", loanID).
		Update("status", status).Error
}

// ListLoans returns matching rows, most recent borrow first.
func (s *GormStore) ListLoans(f Filter) ([]LoanRecord, error) {
	q := s.db.Model(&LoanModel{}).Order("borrowed_at DESC")
	if f.PatronID != "" {
		q = q.Where("patron_id = ?", f.PatronID)
	}
	if f.ISBN != "" {
		q = q.Where("isbn = ?", f.ISBN)
	}
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	var models []LoanModel
	if err := q.Find(&models).Error; err != nil {
		return nil, err
	}
	out := make([]LoanRecord, 0, len(models))
	for _, m := range models {
		out = append(out, loanFromModel(m))
	}
	return out, nil
}

func loanToModel(rec LoanRecord) (LoanModel, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	meta, err := json.Marshal(loanMeta{Title: rec.Title})
	if err != nil {
		return LoanModel{}, fmt.Errorf("marshal loan meta: %w", err)
	}
	return LoanModel{
		ID:         rec.ID,
		LoanID:     rec.LoanID,
		ISBN:       rec.ISBN,
		PatronID:   rec.PatronID,
		EmployeeID: rec.EmployeeID,
		BorrowedAt: rec.BorrowedAt,
		DueAt:      rec.DueAt,
		ReturnedAt: rec.ReturnedAt,
		Status:     rec.Status,
		Meta:       datatypes.JSON(meta),
	}, nil
}

func loanFromModel(m LoanModel) LoanRecord {
	var meta loanMeta
	_ = json.Unmarshal(m.Meta, &meta)
	return LoanRecord{
		ID:         m.ID,
		LoanID:     m.LoanID,
		ISBN:       m.ISBN,
		Title:      meta.Title,
		PatronID:   m.PatronID,
		EmployeeID: m.EmployeeID,
		BorrowedAt: m.BorrowedAt,
		DueAt:      m.DueAt,
		ReturnedAt: m.ReturnedAt,
		Status:     m.Status,
	}
}

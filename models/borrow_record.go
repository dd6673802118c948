// models/borrow_record.go
package models

import (
	"encoding/json"
	"time"
)

const BorrowRecordTable = "lib_borrow_records"

const (
	LoanPeriodDays = 14
	FinePerDay     = 10.0

	DateLayout = "2006-01-02"
)

// BorrowRecord 一次借阅；ReturnDate 为空表示尚未归还
type BorrowRecord struct {
	ID         string     `gorm:"type:uuid;primaryKey" json:"id"`
	BookID     string     `gorm:"type:uuid;index;not null" json:"bookId"`
	BorrowerID string     `gorm:"type:uuid;index;not null" json:"borrowerId"`
	BorrowDate time.Time  `gorm:"not null" json:"borrowDate"`
	DueDate    time.Time  `gorm:"not null" json:"dueDate"`
	ReturnDate *time.Time `gorm:"index" json:"returnDate"`
	FineAmount float64    `gorm:"not null;default:0" json:"fineAmount"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`

	Book     *Book     `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
	Borrower *Borrower `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}

func (BorrowRecord) TableName() string { return BorrowRecordTable }

func (r BorrowRecord) IsActive() bool { return r.ReturnDate == nil }

// MarshalJSON renders the loan dates as plain calendar dates (2024-01-01).
func (r BorrowRecord) MarshalJSON() ([]byte, error) {
	type record BorrowRecord
	var returned *string
	if r.ReturnDate != nil {
		s := r.ReturnDate.Format(DateLayout)
		returned = &s
	}
	return json.Marshal(struct {
		record
		BorrowDate string  `json:"borrowDate"`
		DueDate    string  `json:"dueDate"`
		ReturnDate *string `json:"returnDate"`
	}{
		record:     record(r),
		BorrowDate: r.BorrowDate.Format(DateLayout),
		DueDate:    r.DueDate.Format(DateLayout),
		ReturnDate: returned,
	})
}

// Day truncates t to midnight UTC. Loan dates are calendar days.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// DueDateFor returns the due date of a loan started on borrowed.
func DueDateFor(borrowed time.Time) time.Time {
	return Day(borrowed).AddDate(0, 0, LoanPeriodDays)
}

// DaysLate is the whole number of days between due and returned; zero or negative
// when the book came back on time.
func DaysLate(due, returned time.Time) int {
	return int(Day(returned).Sub(Day(due)).Hours() / 24)
}

// FineFor computes the late fee owed when a book due on due is returned on returned.
func FineFor(due, returned time.Time) float64 {
	if late := DaysLate(due, returned); late > 0 {
		return float64(late) * FinePerDay
	}
	return 0
}

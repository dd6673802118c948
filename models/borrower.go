// models/borrower.go
package models

import (
	"strings"
	"time"
)

const BorrowerTable = "lib_borrowers"

type MembershipType string

const (
	MembershipBasic   MembershipType = "BASIC"
	MembershipPremium MembershipType = "PREMIUM"
)

const (
	basicBorrowLimit   = 2
	premiumBorrowLimit = 5
)

// BorrowLimit is the number of loans a member of this tier may hold at once.
func (m MembershipType) BorrowLimit() int {
	switch m {
	case MembershipPremium:
		return premiumBorrowLimit
	default:
		return basicBorrowLimit
	}
}

// ParseMembershipType accepts BASIC/PREMIUM in any case. Empty input means BASIC.
func ParseMembershipType(s string) (MembershipType, bool) {
	switch MembershipType(strings.ToUpper(strings.TrimSpace(s))) {
	case "", MembershipBasic:
		return MembershipBasic, true
	case MembershipPremium:
		return MembershipPremium, true
	}
	return "", false
}

// Borrower 注册后不可修改
type Borrower struct {
	ID             string         `gorm:"type:uuid;primaryKey" json:"id"`
	Name           string         `gorm:"size:255;not null" json:"name"`
	Email          string         `gorm:"size:255;index" json:"email"`
	MembershipType MembershipType `gorm:"size:20;not null;default:'BASIC'" json:"membershipType"`
	CreatedAt      time.Time      `json:"createdAt"`

	BorrowRecords []BorrowRecord `gorm:"foreignKey:BorrowerID" json:"-"`
}

func (Borrower) TableName() string { return BorrowerTable }

type BorrowerView struct {
	Borrower
	MaxBorrowLimit int `json:"maxBorrowLimit"`
}

func (b Borrower) View() BorrowerView {
	return BorrowerView{Borrower: b, MaxBorrowLimit: b.MembershipType.BorrowLimit()}
}

// models/book.go
package models

import "time"

const BookTable = "lib_books"

// Book 一个书目（按 title 合并入库），副本数量用计数表示，不追踪具体哪一本
type Book struct {
	ID              string    `gorm:"type:uuid;primaryKey" json:"id"`
	Title           string    `gorm:"size:255;not null" json:"title"`
	Author          string    `gorm:"size:255" json:"author"`
	Category        string    `gorm:"size:120;index" json:"category"`
	TotalCopies     int       `gorm:"not null;default:0" json:"totalCopies"`
	AvailableCopies int       `gorm:"not null;default:0" json:"availableCopies"`
	Deleted         bool      `gorm:"not null;default:false;index" json:"-"` // 软删除标记
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`

	BorrowRecords []BorrowRecord `gorm:"foreignKey:BookID" json:"-"`
}

func (Book) TableName() string { return BookTable }

// IsAvailable reports whether at least one copy can be lent out.
func (b Book) IsAvailable() bool { return b.AvailableCopies > 0 }

// BookView 返回给前端的结构（多一个 isAvailable）
type BookView struct {
	Book
	IsAvailable bool `json:"isAvailable"`
}

func (b Book) View() BookView { return BookView{Book: b, IsAvailable: b.IsAvailable()} }

// db/repo_book.go
package db

import (
	"Gin_postgres_redis_library/models"
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// books is the only entry point for reading books: soft deleted rows are never visible.
func books(tx *gorm.DB) *gorm.DB {
	return tx.Model(&models.Book{}).Where("deleted = ?", false)
}

func findBookForUpdate(tx *gorm.DB, id string) (*models.Book, error) {
	var b models.Book
	if err := books(tx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

type BookIntake struct {
	Title           string
	Author          string
	Category        string
	TotalCopies     int
	AvailableCopies int
}

// CreateOrIncreaseBook 按 title 入库：已存在（未删除）则累加副本数，否则新建
func (r *Repo) CreateOrIncreaseBook(ctx context.Context, in BookIntake) (*models.Book, error) {
	in.Title = strings.TrimSpace(in.Title)
	if in.Title == "" {
		return nil, ErrTitleRequired
	}
	if in.TotalCopies < 0 || in.AvailableCopies < 0 {
		return nil, Validationf("copy counts must not be negative")
	}

	b, err := r.createOrIncrease(ctx, in)
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// 并发入库同名书：对方先插入了，重试一次走合并分支
		b, err = r.createOrIncrease(ctx, in)
	}
	return b, err
}

func (r *Repo) createOrIncrease(ctx context.Context, in BookIntake) (*models.Book, error) {
	var out models.Book
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.Book
		err := books(tx).Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("title = ?", in.Title).
			First(&existing).Error
		switch {
		case err == nil:
			existing.TotalCopies += in.TotalCopies
			existing.AvailableCopies += in.AvailableCopies
			if err := tx.Model(&existing).Updates(map[string]any{
				"total_copies":     existing.TotalCopies,
				"available_copies": existing.AvailableCopies,
			}).Error; err != nil {
				return err
			}
			out = existing
			return nil
		case errors.Is(err, gorm.ErrRecordNotFound):
			out = models.Book{
				ID:              uuid.NewString(),
				Title:           in.Title,
				Author:          in.Author,
				Category:        in.Category,
				TotalCopies:     in.TotalCopies,
				AvailableCopies: in.AvailableCopies,
			}
			return tx.Create(&out).Error
		default:
			return err
		}
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (r *Repo) FindBookByID(ctx context.Context, id string) (*models.Book, error) {
	var b models.Book
	if err := books(r.DB.WithContext(ctx)).First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookNotFound
		}
		return nil, err
	}
	return &b, nil
}

// 列表（分页 + 分类 + 是否可借）
type BooksQuery struct {
	Category      string
	AvailableOnly bool
	Page          int // 从 0 开始
	Size          int
	SortBy        string
	Dir           string
}

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var bookSortColumns = map[string]string{
	"title":           "title",
	"author":          "author",
	"category":        "category",
	"totalCopies":     "total_copies",
	"availableCopies": "available_copies",
	"createdAt":       "created_at",
}

type PagedBooks struct {
	Content       []models.BookView `json:"content"`
	Page          int               `json:"page"`
	Size          int               `json:"size"`
	TotalElements int64             `json:"totalElements"`
	TotalPages    int               `json:"totalPages"`
}

func (r *Repo) ListBooks(ctx context.Context, q BooksQuery) (*PagedBooks, error) {
	if q.Page < 0 {
		return nil, Validationf("page must be zero or greater")
	}
	if q.Size == 0 {
		q.Size = DefaultPageSize
	}
	if q.Size < 1 || q.Size > MaxPageSize {
		return nil, Validationf("size must be between 1 and %d", MaxPageSize)
	}
	if q.SortBy == "" {
		q.SortBy = "title"
	}
	col, ok := bookSortColumns[q.SortBy]
	if !ok {
		return nil, Validationf("cannot sort by %q", q.SortBy)
	}

	tx := books(r.DB.WithContext(ctx))
	if q.Category != "" {
		tx = tx.Where("category = ?", q.Category)
	}
	if q.AvailableOnly {
		tx = tx.Where("available_copies > 0")
	}
	// Count 和 Find 共用条件，各自拿一份拷贝
	tx = tx.Session(&gorm.Session{})

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		return nil, err
	}

	var rows []models.Book
	if err := tx.
		Order(clause.OrderByColumn{Column: clause.Column{Name: col}, Desc: strings.EqualFold(q.Dir, "desc")}).
		Order("id").
		Offset(q.Page * q.Size).
		Limit(q.Size).
		Find(&rows).Error; err != nil {
		return nil, err
	}

	content := make([]models.BookView, 0, len(rows))
	for _, b := range rows {
		content = append(content, b.View())
	}
	return &PagedBooks{
		Content:       content,
		Page:          q.Page,
		Size:          q.Size,
		TotalElements: total,
		TotalPages:    int((total + int64(q.Size) - 1) / int64(q.Size)),
	}, nil
}

// BookPatch 只更新提供的字段；AvailableCopies 提供即覆盖，不做区间校正
type BookPatch struct {
	Title           *string
	Author          *string
	Category        *string
	TotalCopies     *int
	AvailableCopies *int
}

func (r *Repo) UpdateBook(ctx context.Context, id string, p BookPatch) (*models.Book, error) {
	var out *models.Book
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := findBookForUpdate(tx, id)
		if err != nil {
			return err
		}
		if p.Title != nil && strings.TrimSpace(*p.Title) != "" {
			b.Title = strings.TrimSpace(*p.Title)
		}
		if p.Author != nil && *p.Author != "" {
			b.Author = *p.Author
		}
		if p.Category != nil && *p.Category != "" {
			b.Category = *p.Category
		}
		if p.TotalCopies != nil && *p.TotalCopies > 0 {
			b.TotalCopies = *p.TotalCopies
		}
		if p.AvailableCopies != nil {
			b.AvailableCopies = *p.AvailableCopies
		}
		if err := tx.Save(b).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateTitle
			}
			return err
		}
		out = b
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SoftDeleteBook 有未归还记录时拒绝删除
func (r *Repo) SoftDeleteBook(ctx context.Context, id string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := findBookForUpdate(tx, id)
		if err != nil {
			return err
		}
		var n int64
		if err := tx.Model(&models.BorrowRecord{}).
			Where("book_id = ? AND return_date IS NULL", b.ID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrBookHasActiveRecords
		}
		return tx.Model(b).Update("deleted", true).Error
	})
}

package db

import (
	"context"
	"errors"

	"Gin_postgres_redis_library/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// 借出：原子操作 = 锁住 book → 检查库存/借阅上限 → 库存 -1 → 新建记录
func (r *Repo) Borrow(ctx context.Context, bookID, borrowerID string) (*models.BorrowRecord, error) {
	var rec *models.BorrowRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1) 锁住该书
		b, err := findBookForUpdate(tx, bookID)
		if err != nil {
			return err
		}
		borrower, err := findBorrower(tx, borrowerID)
		if err != nil {
			return err
		}
		// 2) 先查库存，再查上限
		if b.AvailableCopies <= 0 {
			return ErrBookNotAvailable
		}
		var active int64
		if err := tx.Model(&models.BorrowRecord{}).
			Where("borrower_id = ? AND return_date IS NULL", borrower.ID).
			Count(&active).Error; err != nil {
			return err
		}
		if active >= int64(borrower.MembershipType.BorrowLimit()) {
			return ErrBorrowLimitReached
		}
		// 3) 扣库存（条件更新，行锁不可用时也不会扣成负数）
		res := tx.Model(&models.Book{}).
			Where("id = ? AND available_copies > 0", b.ID).
			Update("available_copies", gorm.Expr("available_copies - 1"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrBookNotAvailable
		}
		// 4) 新建记录
		today := r.today()
		rec = &models.BorrowRecord{
			ID:         uuid.NewString(),
			BookID:     b.ID,
			BorrowerID: borrower.ID,
			BorrowDate: today,
			DueDate:    models.DueDateFor(today),
			FineAmount: 0,
		}
		return tx.Create(rec).Error
	})
	if err != nil {
		return nil, err
	}
	return rec, nil
}

// 归还：原子操作 = 完成记录（计算罚金）→ 库存 +1
func (r *Repo) ReturnBook(ctx context.Context, recordID string) (*models.BorrowRecord, error) {
	var rec models.BorrowRecord
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&rec, "id = ?", recordID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrRecordNotFound
			}
			return err
		}
		if !rec.IsActive() {
			return ErrAlreadyReturned
		}
		today := r.today()
		rec.ReturnDate = &today
		rec.FineAmount = models.FineFor(rec.DueDate, today)
		if err := tx.Model(&rec).Updates(map[string]any{
			"return_date": rec.ReturnDate,
			"fine_amount": rec.FineAmount,
		}).Error; err != nil {
			return err
		}
		// 归还时不看 deleted：有未归还记录的书不可能已被删除
		return tx.Model(&models.Book{}).
			Where("id = ?", rec.BookID).
			Update("available_copies", gorm.Expr("available_copies + 1")).Error
	})
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ActiveRecords 所有未归还记录
func (r *Repo) ActiveRecords(ctx context.Context) ([]models.BorrowRecord, error) {
	ls := []models.BorrowRecord{}
	if err := r.DB.WithContext(ctx).
		Where("return_date IS NULL").
		Order("borrow_date ASC").
		Order("created_at ASC").
		Find(&ls).Error; err != nil {
		return nil, err
	}
	return ls, nil
}

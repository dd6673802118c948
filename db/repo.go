package db

import (
	"Gin_postgres_redis_library/models"
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Repo struct {
	DB *gorm.DB
	// Now 返回当前时间，测试里可替换
	Now func() time.Time
}

func NewRepo(db *gorm.DB) *Repo { return &Repo{DB: db, Now: time.Now} }

func (r *Repo) today() time.Time { return models.Day(r.Now()) }

// Borrowers

type RegisterBorrowerInput struct {
	Name           string
	Email          string
	MembershipType string // 为空时默认 BASIC
}

func (r *Repo) RegisterBorrower(ctx context.Context, in RegisterBorrowerInput) (*models.Borrower, error) {
	tier, ok := models.ParseMembershipType(in.MembershipType)
	if !ok {
		return nil, Validationf("unknown membership type %q", in.MembershipType)
	}
	b := &models.Borrower{
		ID:             uuid.NewString(),
		Name:           strings.TrimSpace(in.Name),
		Email:          strings.TrimSpace(in.Email),
		MembershipType: tier,
	}
	if err := r.DB.WithContext(ctx).Create(b).Error; err != nil {
		return nil, err
	}
	return b, nil
}

func (r *Repo) FindBorrowerByID(ctx context.Context, id string) (*models.Borrower, error) {
	return findBorrower(r.DB.WithContext(ctx), id)
}

func findBorrower(tx *gorm.DB, id string) (*models.Borrower, error) {
	var b models.Borrower
	if err := tx.First(&b, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBorrowerNotFound
		}
		return nil, err
	}
	return &b, nil
}

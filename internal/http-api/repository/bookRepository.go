package repository

import (
	"context"
	"fmt"

	"bookex/internal/http-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// BookFilter narrows List. The zero value lists every book.
type BookFilter struct {
	FavoritesOnly bool
	OwnerID       string
}

type BookRepository interface {
	Create(ctx context.Context, book *models.Book) error
	GetByID(ctx context.Context, id int64) (*models.Book, error)
	List(ctx context.Context, filter BookFilter) ([]models.Book, error)
	ToggleFavorite(ctx context.Context, id int64) (bool, error)
	Delete(ctx context.Context, id int64) error
}

type bookRepository struct {
	db *gorm.DB
}

func NewBookRepository(db *gorm.DB) BookRepository {
	return &bookRepository{db: db}
}

func (r *bookRepository) Create(ctx context.Context, book *models.Book) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(book).Error; err != nil {
		return fmt.Errorf("create book: %w", err)
	}
	// GORM will populate book.ID and book.CreatedAt
	return nil
}

func (r *bookRepository) GetByID(ctx context.Context, id int64) (*models.Book, error) {
	var b models.Book
	if err := r.db.WithContext(ctx).Preload("Owner").First(&b, id).Error; err != nil {
		return nil, err
	}
	return &b, nil
}

// List returns books newest first.
func (r *bookRepository) List(ctx context.Context, filter BookFilter) ([]models.Book, error) {
	var list []models.Book
	q := r.db.WithContext(ctx).Preload("Owner")
	if filter.FavoritesOnly {
		q = q.Where("is_favorite = ?", true)
	}
	if filter.OwnerID != "" {
		q = q.Where("owner_id = ?", filter.OwnerID)
	}
	if err := q.Order("created_at desc").Order("id desc").Find(&list).Error; err != nil {
		return nil, fmt.Errorf("list books: %w", err)
	}
	return list, nil
}

// ToggleFavorite flips is_favorite in one statement and returns the new value.
func (r *bookRepository) ToggleFavorite(ctx context.Context, id int64) (bool, error) {
	var favorite bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Book{}).
			Where("id = ?", id).
			Update("is_favorite", gorm.Expr("NOT is_favorite"))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return tx.Model(&models.Book{}).Where("id = ?", id).Pluck("is_favorite", &favorite).Error
	})
	if err != nil {
		return false, err
	}
	return favorite, nil
}

// Delete removes the book with its ratings and comments in one transaction.
// The foreign keys cascade too; deleting children first keeps this independent of the driver.
func (r *bookRepository) Delete(ctx context.Context, id int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("book_id = ?", id).Delete(&models.Rating{}).Error; err != nil {
			return fmt.Errorf("delete ratings: %w", err)
		}
		if err := tx.Where("book_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return fmt.Errorf("delete comments: %w", err)
		}
		res := tx.Delete(&models.Book{}, id)
		if res.Error != nil {
			return fmt.Errorf("delete book: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

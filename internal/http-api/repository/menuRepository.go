package repository

import (
	"context"
	"fmt"

	"bookex/internal/http-api/models"

	"gorm.io/gorm"
)

type MenuRepository interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	Create(ctx context.Context, item *models.MenuItem) error
}

type menuRepository struct {
	db *gorm.DB
}

func NewMenuRepository(db *gorm.DB) MenuRepository {
	return &menuRepository{db: db}
}

func (r *menuRepository) List(ctx context.Context) ([]models.MenuItem, error) {
	var items []models.MenuItem
	if err := r.db.WithContext(ctx).Order("id asc").Find(&items).Error; err != nil {
		return nil, fmt.Errorf("list menu: %w", err)
	}
	return items, nil
}

func (r *menuRepository) Create(ctx context.Context, item *models.MenuItem) error {
	if err := r.db.WithContext(ctx).Create(item).Error; err != nil {
		return fmt.Errorf("create menu item: %w", err)
	}
	return nil
}

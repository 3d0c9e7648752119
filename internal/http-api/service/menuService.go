package service

import (
	"context"
	"strings"

	"bookex/internal/http-api/dto"
	"bookex/internal/http-api/models"
	"bookex/internal/http-api/repository"
)

// MenuService feeds the navigation shown on every page.
type MenuService interface {
	List(ctx context.Context) ([]models.MenuItem, error)
	Add(ctx context.Context, item, link string) (*models.MenuItem, error)
}

type menuService struct {
	repo repository.MenuRepository
}

func NewMenuService(repo repository.MenuRepository) MenuService {
	return &menuService{repo: repo}
}

func (s *menuService) List(ctx context.Context) ([]models.MenuItem, error) {
	return s.repo.List(ctx)
}

func (s *menuService) Add(ctx context.Context, item, link string) (*models.MenuItem, error) {
	item, link = strings.TrimSpace(item), strings.TrimSpace(link)
	verr := &dto.ValidationError{}
	if item == "" {
		verr.Add("item", "This field is required.")
	}
	if link == "" {
		verr.Add("link", "This field is required.")
	}
	if len(item) > 300 {
		verr.Add("item", "Ensure this value has at most 300 characters.")
	}
	if len(link) > 300 {
		verr.Add("link", "Ensure this value has at most 300 characters.")
	}
	if len(verr.Fields) > 0 {
		return nil, verr
	}

	m := &models.MenuItem{Item: item, Link: link}
	if err := s.repo.Create(ctx, m); err != nil {
		if repository.IsUniqueViolation(err) {
			return nil, dto.NewValidationError("item", "A menu item with this name or link already exists.")
		}
		return nil, err
	}
	return m, nil
}

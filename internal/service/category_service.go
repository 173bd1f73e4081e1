package service

import (
	"context"
	"fmt"
	"strings"

	"plan-tracker/internal/model"
	"plan-tracker/internal/repository"
)

// CategoryService provides helpers around categories.
type CategoryService struct {
	repo *repository.CategoryRepository
}

func NewCategoryService(repo *repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// Create stores a category under the slug of name. A second category with
// the same slug replaces the first one's display name.
func (s *CategoryService) Create(ctx context.Context, user *model.User, name string) (*model.Category, error) {
	category := model.Category{
		ID:     model.CategorySlug(name),
		UserID: user.ID,
		Name:   strings.TrimSpace(name),
	}
	if err := category.Validate(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(ctx, &category); err != nil {
		return nil, fmt.Errorf("create category %q: %w", category.ID, err)
	}
	return &category, nil
}

func (s *CategoryService) List(ctx context.Context, user *model.User) ([]model.Category, error) {
	return s.repo.ListByUser(ctx, user.ID)
}

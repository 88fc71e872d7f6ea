package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"tienda/internal/models"
	"tienda/internal/repositories"
)

// CategoryService handles category administration.
type CategoryService struct {
	repo repositories.CategoryRepository
}

// NewCategoryService creates a new CategoryService.
func NewCategoryService(repo repositories.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

func (s *CategoryService) checkName(ctx context.Context, name string, selfID uint) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("category name is required")
	}
	existing, err := s.repo.GetByName(ctx, name)
	switch {
	case err == nil && existing.ID != selfID:
		return "", fmt.Errorf("category '%s': %w", name, ErrDuplicate)
	case err != nil && !errors.Is(err, ErrNotFound):
		return "", err
	}
	return name, nil
}

// Create stores a new category.
func (s *CategoryService) Create(ctx context.Context, name string) (*models.Category, error) {
	name, err := s.checkName(ctx, name, 0)
	if err != nil {
		return nil, err
	}
	category := &models.Category{Name: name}
	if err := s.repo.Create(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Rename changes a category's name.
func (s *CategoryService) Rename(ctx context.Context, id uint, name string) (*models.Category, error) {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}
	name, err := s.checkName(ctx, name, id)
	if err != nil {
		return nil, err
	}
	category := &models.Category{ID: id, Name: name}
	if err := s.repo.Update(ctx, category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete removes a category.
func (s *CategoryService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

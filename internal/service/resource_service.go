package service

import (
	"context"

	"mindwell/internal/model"
	"mindwell/internal/pkg"
	"mindwell/internal/repository/mysql"

	"gorm.io/gorm"
)

type ResourceService struct {
	repo *mysql.ResourceRepository
}

func NewResourceService(db *gorm.DB) *ResourceService {
	return &ResourceService{
		repo: &mysql.ResourceRepository{DB: db},
	}
}

func (s *ResourceService) Create(ctx context.Context, title, category, summary, url string) (*model.Resource, error) {
	if title == "" || url == "" {
		return nil, pkg.Validationf("title and url required")
	}
	if category == "" {
		category = "article"
	}
	res := &model.Resource{Title: title, Category: category, Summary: summary, URL: url}
	if err := s.repo.Create(ctx, res); err != nil {
		return nil, pkg.ErrStore.Wrap(err)
	}
	return res, nil
}

func (s *ResourceService) Get(ctx context.Context, id uint64) (*model.Resource, error) {
	res, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if mysql.IsNotFound(err) {
			return nil, pkg.ErrNotFound
		}
		return nil, pkg.ErrStore.Wrap(err)
	}
	return res, nil
}

func (s *ResourceService) List(ctx context.Context, category string, page, size int) ([]model.Resource, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	offset := (page - 1) * size
	list, err := s.repo.List(ctx, category, offset, size)
	if err != nil {
		return nil, pkg.ErrStore.Wrap(err)
	}
	return list, nil
}

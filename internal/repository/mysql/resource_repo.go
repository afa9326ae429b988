package mysql

import (
	"context"

	"mindwell/internal/model"

	"gorm.io/gorm"
)

type ResourceRepository struct {
	DB *gorm.DB
}

func (r *ResourceRepository) Create(ctx context.Context, res *model.Resource) error {
	return r.DB.WithContext(ctx).Create(res).Error
}

func (r *ResourceRepository) FindByID(ctx context.Context, id uint64) (*model.Resource, error) {
	var res model.Resource
	err := r.DB.WithContext(ctx).First(&res, id).Error
	return &res, err
}

// List category 为空时返回全部
func (r *ResourceRepository) List(ctx context.Context, category string, offset, limit int) ([]model.Resource, error) {
	q := r.DB.WithContext(ctx).Model(&model.Resource{})
	if category != "" {
		q = q.Where("category = ?", category)
	}
	var list []model.Resource
	err := q.Order("id DESC").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

package mysql

import (
	"context"
	"time"

	"mindwell/internal/model"

	"gorm.io/gorm"
)

type MoodRepository struct {
	DB *gorm.DB
}

func (r *MoodRepository) Create(ctx context.Context, entry *model.MoodEntry) error {
	return r.DB.WithContext(ctx).Create(entry).Error
}

func (r *MoodRepository) ListRecent(ctx context.Context, userID uint64, limit int) ([]model.MoodEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 30
	}
	var list []model.MoodEntry
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&list).Error
	return list, err
}

// AverageSince 给定时间之后的平均分，没有记录时 ok=false
func (r *MoodRepository) AverageSince(ctx context.Context, userID uint64, since time.Time) (float64, bool, error) {
	var row struct {
		Avg float64
		Cnt int64
	}
	err := r.DB.WithContext(ctx).Model(&model.MoodEntry{}).
		Select("AVG(score) AS avg, COUNT(*) AS cnt").
		Where("user_id = ? AND created_at >= ?", userID, since).
		Scan(&row).Error
	if err != nil {
		return 0, false, err
	}
	return row.Avg, row.Cnt > 0, nil
}

type OnboardingRepository struct {
	DB *gorm.DB
}

// SaveAnswers 整卷保存：先清旧答案再写入，和标记完成放同一事务
func (r *OnboardingRepository) SaveAnswers(ctx context.Context, userID uint64, answers []model.OnboardingAnswer) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("user_id = ?", userID).
			Delete(&model.OnboardingAnswer{}).Error; err != nil {
			return err
		}
		if err := tx.Create(&answers).Error; err != nil {
			return err
		}
		return tx.Model(&model.User{}).Where("id = ?", userID).
			Update("onboarding_done", true).Error
	})
}

func (r *OnboardingRepository) ListByUser(ctx context.Context, userID uint64) ([]model.OnboardingAnswer, error) {
	var list []model.OnboardingAnswer
	err := r.DB.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("id ASC").
		Find(&list).Error
	return list, err
}

package mysql

import (
	"context"

	"mindwell/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

// Insert 通知和 outbox 事件同事务写入，投递由 relayer 异步完成
func (r *NotificationRepository) Insert(ctx context.Context, n *model.Notification) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(n).Error; err != nil {
			return err
		}
		ob := &model.NotificationOutbox{
			Kind:    n.Kind,
			UserID:  n.UserID,
			Payload: n.Payload,
			Status:  0,
		}
		return tx.Create(ob).Error
	})
}

func (r *NotificationRepository) ListByUser(ctx context.Context, userID uint64, onlyUnread bool, limit int) ([]model.Notification, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := r.DB.WithContext(ctx).Where("user_id = ?", userID)
	if onlyUnread {
		q = q.Where("is_read = ?", false)
	}
	var list []model.Notification
	err := q.Order("id DESC").Limit(limit).Find(&list).Error
	return list, err
}

func (r *NotificationRepository) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	return r.DB.WithContext(ctx).Model(&model.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("is_read", true).Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID uint64) error {
	return r.DB.WithContext(ctx).Model(&model.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true).Error
}

type OutboxRepository struct {
	DB *gorm.DB
}

// List 取待投递事件
func (r *OutboxRepository) List(ctx context.Context, batchSize int) ([]model.NotificationOutbox, error) {
	var list []model.NotificationOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = 0").
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate 投递失败计数
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.NotificationOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": 2, "retry": gorm.Expr("retry + 1")}).Error
}

// SuccessUpdate 投递成功
func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.NotificationOutbox{}).Where("id = ?", id).
		Update("status", 1).Error
}

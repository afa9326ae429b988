package mysql

import (
	"mindwell/internal/model"

	"gorm.io/gorm"
)

type ChatMessageRepository struct {
	DB *gorm.DB
}

func (r *ChatMessageRepository) Create(msg *model.ChatMessage) error {
	return r.DB.Create(msg).Error
}

// ListByCommunity id 游标分页，新消息在前；limit+1 探测下一页
func (r *ChatMessageRepository) ListByCommunity(communityID uint64, cursor uint64, limit int) ([]model.ChatMessage, uint64, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	q := r.DB.Where("community_id = ?", communityID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var rows []model.ChatMessage
	if err := q.Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	var next uint64
	if len(rows) > limit {
		next = rows[limit-1].ID
		rows = rows[:limit]
	}
	return rows, next, nil
}

// DeleteByCommunity 级联删除用
func (r *ChatMessageRepository) DeleteByCommunity(communityID uint64) error {
	return r.DB.Where("community_id = ?", communityID).
		Delete(&model.ChatMessage{}).Error
}

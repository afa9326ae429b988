package model

import "time"

// ChatMessage 社区群聊消息，随社区级联删除
type ChatMessage struct {
	ID          uint64    `gorm:"primaryKey"`
	CommunityID uint64    `gorm:"not null;index:idx_chat_comm_time,priority:1"`
	SenderID    uint64    `gorm:"not null;index"`
	Content     string    `gorm:"type:text;not null"`
	CreatedAt   time.Time `gorm:"index:idx_chat_comm_time,priority:2,sort:desc"`
}

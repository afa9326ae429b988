package model

import "time"

// Notification 站内通知，由成员变更等事件派生
type Notification struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;index:idx_notify_user_read,priority:1"`
	Kind      string `gorm:"size:32;not null"` // member_joined / member_removed / role_changed
	Payload   string `gorm:"type:json;not null"`
	IsRead    bool   `gorm:"not null;default:false;index:idx_notify_user_read,priority:2"`
	CreatedAt time.Time
}

// NotificationOutbox 通知事件监控表，由 relayer 异步投递到 kafka
type NotificationOutbox struct {
	ID        uint64 `gorm:"primaryKey"`
	Kind      string `gorm:"size:32;not null"`
	UserID    uint64 `gorm:"not null"`
	Payload   string `gorm:"type:json;not null"`
	Status    int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry     int    `gorm:"not null;default:0"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (NotificationOutbox) TableName() string { return "notification_outbox" }

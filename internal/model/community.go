package model

import "time"

const (
	RoleMember = 0
	RoleAdmin  = 1
)

type Community struct {
	ID          uint64 `gorm:"primaryKey"`
	Name        string `gorm:"uniqueIndex;size:64;not null"`
	Description string `gorm:"type:text"`
	Tags        string `gorm:"size:255"` // 逗号分隔
	Rules       string `gorm:"type:text"`
	IsPublic    bool   `gorm:"not null;default:true"`
	CreatorID   uint64 `gorm:"not null;index"`
	// MemberCount 只是展示用的缓存值，权限判断一律走实时 COUNT
	MemberCount int64 `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type CommunityMember struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	UserID      uint64 `gorm:"not null;index;uniqueIndex:uk_community_user"`
	Role        int    `gorm:"not null;default:0"` // 0=member, 1=admin
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

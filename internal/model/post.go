package model

import "time"

type Post struct {
	ID          uint64    `gorm:"primaryKey"`
	CommunityID uint64    `gorm:"not null;index:idx_comm_time,priority:1"`
	AuthorID    uint64    `gorm:"not null;index"`
	Title       string    `gorm:"size:200;not null"`
	Content     string    `gorm:"type:text"`
	Status      int       `gorm:"not null;default:0"` // 0=normal 1=deleted 2=banned
	LikeCount   int64     `gorm:"not null;default:0"`
	CreatedAt   time.Time `gorm:"index:idx_comm_time,priority:2,sort:desc"`
	UpdatedAt   time.Time
}

type PostLike struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement"`
	UserID    uint64 `gorm:"index;not null"`
	PostID    uint64 `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (PostLike) TableName() string {
	return "post_likes"
}

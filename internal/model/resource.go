package model

import "time"

// Resource 资源库条目（文章、音频、练习等）
type Resource struct {
	ID        uint64 `gorm:"primaryKey"`
	Title     string `gorm:"size:200;not null"`
	Category  string `gorm:"size:32;not null;index"` // article / audio / exercise
	Summary   string `gorm:"type:text"`
	URL       string `gorm:"size:512;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

package model

import "time"

// MoodEntry 心情打卡记录，1-5 分
type MoodEntry struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;index:idx_mood_user_time,priority:1"`
	Score     int    `gorm:"not null"`
	Note      string `gorm:"size:500"`
	CreatedAt time.Time `gorm:"index:idx_mood_user_time,priority:2,sort:desc"`
}

// OnboardingAnswer 新用户问卷答案
type OnboardingAnswer struct {
	ID        uint64 `gorm:"primaryKey"`
	UserID    uint64 `gorm:"not null;index"`
	Question  string `gorm:"size:255;not null"`
	Answer    string `gorm:"size:500"`
	CreatedAt time.Time
}

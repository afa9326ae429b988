package model

import "time"

type User struct {
	ID             uint64 `gorm:"primaryKey"`
	Username       string `gorm:"uniqueIndex;size:32;not null"`
	Password       string `gorm:"size:255;not null"`
	Email          string `gorm:"uniqueIndex;size:64;not null"`
	DisplayName    string `gorm:"size:64"`
	AvatarURL      string `gorm:"size:255"`
	OnboardingDone bool   `gorm:"not null;default:false"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

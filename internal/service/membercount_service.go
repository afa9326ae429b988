package service

import (
	"context"
	"fmt"
	"time"

	"mindwell/internal/repository/mysql"
	"mindwell/internal/repository/redis"

	"gorm.io/gorm"
)

// MemberCountService 成员数的展示读路径：先读缓存，miss 时拿锁回源重建，
// 拿不到锁就短暂退避再读一次，避免全体打库。权限相关逻辑不走这里。
type MemberCountService struct {
	memberRepo *mysql.CommunityMemberRepository
	cache      *redis.MemberCountCache
	lock       *redis.DistLock
}

func NewMemberCountService(db *gorm.DB) *MemberCountService {
	return &MemberCountService{
		memberRepo: &mysql.CommunityMemberRepository{DB: db},
		cache:      redis.NewMemberCountCache(),
		lock:       &redis.DistLock{RDB: redis.Client},
	}
}

// DisplayCount 展示用成员数
func (s *MemberCountService) DisplayCount(ctx context.Context, communityID uint64) (int64, error) {
	// 第一次从缓存读
	if v, ok, err := s.cache.GetCached(ctx, communityID); err == nil && ok {
		return v, nil
	}

	token := fmt.Sprintf("%d-%d", communityID, time.Now().UnixNano())
	got, _ := s.lock.Acquire(ctx, communityID, token)
	if got {
		defer func() {
			_ = s.lock.Release(ctx, communityID, token)
		}()

		// 拿到锁后的第二次检查
		if v, ok, err := s.cache.GetCached(ctx, communityID); err == nil && ok {
			return v, nil
		}

		v, err := s.memberRepo.CountActive(communityID)
		if err != nil {
			return 0, err
		}
		_ = s.cache.SetCount(ctx, communityID, v)
		return v, nil
	}

	// 没拿到锁，退避后再读一次缓存
	time.Sleep(50 * time.Millisecond)
	if v, ok, err := s.cache.GetCached(ctx, communityID); err == nil && ok {
		return v, nil
	}

	// 仍 miss，有限回源一次
	return s.memberRepo.CountActive(communityID)
}

// Invalidate 成员变更后删缓存，带延迟二删
func (s *MemberCountService) Invalidate(ctx context.Context, communityID uint64) {
	_ = s.cache.DeleteCount(ctx, communityID, 500*time.Millisecond)
}

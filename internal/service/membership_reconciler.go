package service

import (
	"context"
	"log"
	"time"

	"mindwell/internal/repository/mysql"

	"gorm.io/gorm"
)

// MemberCountReconciler 定时把社区的展示计数拉回实时 COUNT。
// member_count 缓存列允许短暂漂移，这里保证最终收敛。
type MemberCountReconciler struct {
	repo       *mysql.CommunityRepository
	memberRepo *mysql.CommunityMemberRepository
	batchSize  int
	interval   time.Duration
	lastID     uint64 // 批次游标，走完一轮归零
}

func NewMemberCountReconciler(db *gorm.DB) *MemberCountReconciler {
	return &MemberCountReconciler{
		repo:       &mysql.CommunityRepository{DB: db},
		memberRepo: &mysql.CommunityMemberRepository{DB: db},
		batchSize:  500,
		interval:   5 * time.Minute,
	}
}

// Run 对账定时任务启动器
func (r *MemberCountReconciler) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.ReconcileOnce(ctx)
		}
	}
}

// ReconcileOnce 对账一批：逐个社区比对缓存计数和真实计数，不一致则修正
func (r *MemberCountReconciler) ReconcileOnce(ctx context.Context) {
	pairs, next, err := r.repo.ListCounts(ctx, r.batchSize, r.lastID)
	if err != nil {
		log.Printf("reconcile list err: %v", err)
		return
	}
	if len(pairs) == 0 {
		r.lastID = 0
		return
	}
	r.lastID = next

	for _, p := range pairs {
		real, err := r.memberRepo.CountActive(p.ID)
		if err != nil {
			continue
		}
		if real != p.MemberCount {
			if err := r.repo.SetMemberCount(ctx, p.ID, real); err != nil {
				log.Printf("reconcile set count err: community=%d err=%v", p.ID, err)
			}
		}
	}
}

package service

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"mindwell/internal/model"
	"mindwell/internal/pkg"
	"mindwell/internal/repository/mysql"

	"gorm.io/gorm"
)

// NotificationService 实现 MembershipNotifier：成员事件落库成通知记录，
// 同事务写 outbox，由 relayer 异步投递到 kafka。
type NotificationService struct {
	repo       *mysql.NotificationRepository
	memberRepo *mysql.CommunityMemberRepository
}

func NewNotificationService(db *gorm.DB) *NotificationService {
	return &NotificationService{
		repo:       &mysql.NotificationRepository{DB: db},
		memberRepo: &mysql.CommunityMemberRepository{DB: db},
	}
}

// MemberJoined 通知该社区的所有管理员有新成员
func (s *NotificationService) MemberJoined(ctx context.Context, communityID, userID uint64) error {
	payload := s.payload(map[string]any{
		"community_id": communityID,
		"user_id":      userID,
	})
	members, err := s.memberRepo.ListByCommunity(communityID)
	if err != nil {
		return err
	}
	for _, m := range members {
		if m.Role != model.RoleAdmin || m.UserID == userID {
			continue
		}
		n := &model.Notification{UserID: m.UserID, Kind: "member_joined", Payload: payload}
		if err := s.repo.Insert(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// MemberRemoved 被他人移除时通知当事人；自己退出不通知
func (s *NotificationService) MemberRemoved(ctx context.Context, communityID, userID, actorID uint64) error {
	if userID == actorID {
		return nil
	}
	payload := s.payload(map[string]any{
		"community_id": communityID,
		"user_id":      userID,
		"actor_id":     actorID,
	})
	return s.repo.Insert(ctx, &model.Notification{
		UserID: userID, Kind: "member_removed", Payload: payload,
	})
}

// RoleChanged 通知当事人角色变更
func (s *NotificationService) RoleChanged(ctx context.Context, communityID, userID uint64, newRole int) error {
	payload := s.payload(map[string]any{
		"community_id": communityID,
		"user_id":      userID,
		"new_role":     newRole,
	})
	return s.repo.Insert(ctx, &model.Notification{
		UserID: userID, Kind: "role_changed", Payload: payload,
	})
}

func (s *NotificationService) payload(fields map[string]any) string {
	fields["event_time"] = time.Now().UTC().Format(time.RFC3339Nano)
	b, _ := json.Marshal(fields)
	return string(b)
}

func (s *NotificationService) List(ctx context.Context, userID uint64, onlyUnread bool, limit int) ([]model.Notification, error) {
	list, err := s.repo.ListByUser(ctx, userID, onlyUnread, limit)
	if err != nil {
		return nil, pkg.ErrStore.Wrap(err)
	}
	return list, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, notificationID uint64) error {
	if err := s.repo.MarkRead(ctx, userID, notificationID); err != nil {
		return pkg.ErrStore.Wrap(err)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uint64) error {
	if err := s.repo.MarkAllRead(ctx, userID); err != nil {
		return pkg.ErrStore.Wrap(err)
	}
	return nil
}

// Sender 投递函数，生产环境是 kafka，测试里可以换成记录用的假实现
type Sender func(ctx context.Context, ob *model.NotificationOutbox) error

// OutboxRelayer 定时扫 outbox 表，把待投递事件推给 sender
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	sender    Sender
}

func NewOutboxRelayer(db *gorm.DB, sender Sender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      &mysql.OutboxRepository{DB: db},
		batchSize: 200,
		interval:  time.Second,
		sender:    sender,
	}
}

// Run outbox 启动器
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.DrainOnce(ctx)
		}
	}
}

// DrainOnce 投递一批，失败的标记重试
func (r *OutboxRelayer) DrainOnce(ctx context.Context) {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		log.Printf("outbox query err: %v", err)
		return
	}
	for i := range rows {
		ob := rows[i]
		if err := r.sender(ctx, &ob); err != nil {
			_ = r.repo.RetryUpdate(ctx, ob.ID)
			continue
		}
		_ = r.repo.SuccessUpdate(ctx, ob.ID)
	}
}

// KafkaSender 把 outbox 事件序列化后发往 kafka，按用户 id 分区
func KafkaSender(producer *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.NotificationOutbox) error {
		value, err := json.Marshal(map[string]any{
			"id":      ob.ID,
			"kind":    ob.Kind,
			"user_id": ob.UserID,
			"payload": json.RawMessage(ob.Payload),
		})
		if err != nil {
			return err
		}
		return producer.Send(ctx, pkg.MakeKeyFromID(ob.UserID), value)
	}
}

// LogSender 本地开发用的占位 sender
func LogSender(ctx context.Context, ob *model.NotificationOutbox) error {
	log.Printf("OUTBOX SEND kind=%s user=%d payload=%s", ob.Kind, ob.UserID, ob.Payload)
	return nil
}

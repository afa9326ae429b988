package service

import (
	"context"
	"fmt"
	"testing"

	"mindwell/internal/model"
	"mindwell/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&model.User{},
		&model.Community{},
		&model.CommunityMember{},
		&model.Post{},
		&model.PostLike{},
		&model.ChatMessage{},
		&model.MoodEntry{},
		&model.OnboardingAnswer{},
		&model.Resource{},
		&model.Notification{},
		&model.NotificationOutbox{},
	))
	return db
}

// recordingNotifier 记录触发过的事件，供断言用
type recordingNotifier struct {
	joined  []uint64 // user ids
	removed []uint64
	actors  []uint64
	roles   []int
}

func (n *recordingNotifier) MemberJoined(ctx context.Context, communityID, userID uint64) error {
	n.joined = append(n.joined, userID)
	return nil
}

func (n *recordingNotifier) MemberRemoved(ctx context.Context, communityID, userID, actorID uint64) error {
	n.removed = append(n.removed, userID)
	n.actors = append(n.actors, actorID)
	return nil
}

func (n *recordingNotifier) RoleChanged(ctx context.Context, communityID, userID uint64, newRole int) error {
	n.roles = append(n.roles, newRole)
	return nil
}

func mustCreateCommunity(t *testing.T, svc *MembershipService, creatorID uint64, name string) *model.Community {
	t.Helper()
	c, err := svc.CreateCommunity(context.Background(), creatorID, CommunityInput{
		Name:        name,
		Description: "a calm place to talk about everyday anxiety",
		Tags:        []string{"anxiety"},
		IsPublic:    true,
	})
	require.NoError(t, err)
	return c
}

func TestCreateCommunityValidation(t *testing.T) {
	svc := NewMembershipService(newTestDB(t), nil)
	ctx := context.Background()

	cases := []struct {
		name string
		in   CommunityInput
	}{
		{"short name", CommunityInput{Name: "ab", Description: "long enough description", Tags: []string{"x"}}},
		{"name only spaces", CommunityInput{Name: "   a  ", Description: "long enough description", Tags: []string{"x"}}},
		{"short description", CommunityInput{Name: "sleep", Description: "too short", Tags: []string{"x"}}},
		{"no tags", CommunityInput{Name: "sleep", Description: "long enough description", Tags: nil}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateCommunity(ctx, 1, tc.in)
			assert.Equal(t, pkg.CodeValidation, pkg.GetCode(err))
		})
	}

	_, err := svc.CreateCommunity(ctx, 0, CommunityInput{
		Name: "sleep", Description: "long enough description", Tags: []string{"x"},
	})
	assert.ErrorIs(t, err, pkg.ErrUnauthenticated)

	// 重名
	mustCreateCommunity(t, svc, 1, "taken-name")
	_, err = svc.CreateCommunity(ctx, 1, CommunityInput{
		Name: "taken-name", Description: "long enough description", Tags: []string{"x"},
	})
	assert.Equal(t, pkg.CodeValidation, pkg.GetCode(err))
}

func TestCreateCommunitySetsCreatorAdmin(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, nil)
	ctx := context.Background()

	c := mustCreateCommunity(t, svc, 7, "evening-walks")

	members, err := svc.ListMembers(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, members, 1)
	assert.Equal(t, uint64(7), members[0].UserID)
	assert.Equal(t, model.RoleAdmin, members[0].Role)

	count, err := svc.ActiveMemberCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := svc.GetCommunity(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.MemberCount)
}

func TestJoinCommunityIdempotent(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewMembershipService(db, notifier)
	ctx := context.Background()

	c := mustCreateCommunity(t, svc, 1, "grief-support")

	require.NoError(t, svc.JoinCommunity(ctx, c.ID, 2))
	require.NoError(t, svc.JoinCommunity(ctx, c.ID, 2))
	require.NoError(t, svc.JoinCommunity(ctx, c.ID, 2))

	count, err := svc.ActiveMemberCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	got, err := svc.GetCommunity(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), got.MemberCount)

	// 只有真正插入的那次触发通知
	assert.Equal(t, []uint64{2}, notifier.joined)
}

func TestJoinUnknownCommunity(t *testing.T) {
	svc := NewMembershipService(newTestDB(t), nil)
	err := svc.JoinCommunity(context.Background(), 9999, 1)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestLeaveCommunity(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewMembershipService(db, notifier)
	ctx := context.Background()

	c := mustCreateCommunity(t, svc, 1, "mindful-mornings")
	require.NoError(t, svc.JoinCommunity(ctx, c.ID, 2))

	require.NoError(t, svc.LeaveCommunity(ctx, c.ID, 2))

	count, err := svc.ActiveMemberCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := svc.GetCommunity(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.MemberCount)

	// 自己退出：当事人即操作者
	require.Len(t, notifier.removed, 1)
	assert.Equal(t, uint64(2), notifier.removed[0])
	assert.Equal(t, uint64(2), notifier.actors[0])

	// 再退一次，已不在社区里
	err = svc.LeaveCommunity(ctx, c.ID, 2)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestLastAdminCannotLeave(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, nil)
	ctx := context.Background()

	c := mustCreateCommunity(t, svc, 1, "quiet-space")
	require.NoError(t, svc.JoinCommunity(ctx, c.ID, 2))

	// 唯一管理员不能走
	err := svc.LeaveCommunity(ctx, c.ID, 1)
	assert.ErrorIs(t, err, pkg.ErrLastAdmin)

	count, err := svc.ActiveMemberCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	// 提拔第二名管理员后就可以离开
	var m model.CommunityMember
	require.NoError(t, db.Where("community_id = ? AND user_id = ?", c.ID, uint64(2)).First(&m).Error)
	require.NoError(t, svc.ChangeMemberRole(ctx, c.ID, 1, m.ID, model.RoleAdmin))
	require.NoError(t, svc.LeaveCommunity(ctx, c.ID, 1))

	count, err = svc.ActiveMemberCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestLastAdminCannotBeDemoted(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, nil)
	ctx := context.Background()

	c := mustCreateCommunity(t, svc, 1, "late-night-thoughts")
	require.NoError(t, svc.JoinCommunity(ctx, c.ID, 2))

	var admin model.CommunityMember
	require.NoError(t, db.Where("community_id = ? AND user_id = ?", c.ID, uint64(1)).First(&admin).Error)

	err := svc.ChangeMemberRole(ctx, c.ID, 1, admin.ID, model.RoleMember)
	assert.ErrorIs(t, err, pkg.ErrLastAdmin)

	// 有第二名管理员后降级成功
	var m model.CommunityMember
	require.NoError(t, db.Where("community_id = ? AND user_id = ?", c.ID, uint64(2)).First(&m).Error)
	require.NoError(t, svc.ChangeMemberRole(ctx, c.ID, 1, m.ID, model.RoleAdmin))
	require.NoError(t, svc.ChangeMemberRole(ctx, c.ID, 1, admin.ID, model.RoleMember))

	var reloaded model.CommunityMember
	require.NoError(t, db.First(&reloaded, admin.ID).Error)
	assert.Equal(t, model.RoleMember, reloaded.Role)
}

func TestChangeMemberRole(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewMembershipService(db, notifier)
	ctx := context.Background()

	c := mustCreateCommunity(t, svc, 1, "gentle-check-ins")
	require.NoError(t, svc.JoinCommunity(ctx, c.ID, 2))

	var m model.CommunityMember
	require.NoError(t, db.Where("community_id = ? AND user_id = ?", c.ID, uint64(2)).First(&m).Error)

	// 非管理员不能改角色，角色保持不变
	err := svc.ChangeMemberRole(ctx, c.ID, 2, m.ID, model.RoleAdmin)
	assert.ErrorIs(t, err, pkg.ErrNotAdmin)
	var unchanged model.CommunityMember
	require.NoError(t, db.First(&unchanged, m.ID).Error)
	assert.Equal(t, model.RoleMember, unchanged.Role)

	// 非法角色值
	err = svc.ChangeMemberRole(ctx, c.ID, 1, m.ID, 5)
	assert.Equal(t, pkg.CodeValidation, pkg.GetCode(err))

	require.NoError(t, svc.ChangeMemberRole(ctx, c.ID, 1, m.ID, model.RoleAdmin))
	assert.Equal(t, []int{model.RoleAdmin}, notifier.roles)

	// 已是目标角色：幂等，不再触发通知
	require.NoError(t, svc.ChangeMemberRole(ctx, c.ID, 1, m.ID, model.RoleAdmin))
	assert.Equal(t, []int{model.RoleAdmin}, notifier.roles)
}

func TestChangeRoleAcrossCommunities(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, nil)
	ctx := context.Background()

	c1 := mustCreateCommunity(t, svc, 1, "community-one")
	c2 := mustCreateCommunity(t, svc, 1, "community-two")
	require.NoError(t, svc.JoinCommunity(ctx, c2.ID, 2))

	var m model.CommunityMember
	require.NoError(t, db.Where("community_id = ? AND user_id = ?", c2.ID, uint64(2)).First(&m).Error)

	// membership 属于另一个社区，按不存在处理
	err := svc.ChangeMemberRole(ctx, c1.ID, 1, m.ID, model.RoleAdmin)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestRemoveMember(t *testing.T) {
	db := newTestDB(t)
	notifier := &recordingNotifier{}
	svc := NewMembershipService(db, notifier)
	ctx := context.Background()

	c := mustCreateCommunity(t, svc, 1, "steady-ground")
	require.NoError(t, svc.JoinCommunity(ctx, c.ID, 2))

	var m model.CommunityMember
	require.NoError(t, db.Where("community_id = ? AND user_id = ?", c.ID, uint64(2)).First(&m).Error)

	// 普通成员不能移除别人
	err := svc.RemoveMember(ctx, c.ID, 2, m.ID)
	assert.ErrorIs(t, err, pkg.ErrNotAdmin)

	require.NoError(t, svc.RemoveMember(ctx, c.ID, 1, m.ID))

	count, err := svc.ActiveMemberCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	got, err := svc.GetCommunity(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.MemberCount)

	// 被移除：操作者是管理员
	require.Len(t, notifier.removed, 1)
	assert.Equal(t, uint64(2), notifier.removed[0])
	assert.Equal(t, uint64(1), notifier.actors[0])

	// membership 已不存在
	err = svc.RemoveMember(ctx, c.ID, 1, m.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestRemoveLastAdminRefused(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, nil)
	ctx := context.Background()

	c := mustCreateCommunity(t, svc, 1, "open-door")
	require.NoError(t, svc.JoinCommunity(ctx, c.ID, 2))

	var admin model.CommunityMember
	require.NoError(t, db.Where("community_id = ? AND user_id = ?", c.ID, uint64(1)).First(&admin).Error)

	err := svc.RemoveMember(ctx, c.ID, 1, admin.ID)
	assert.ErrorIs(t, err, pkg.ErrLastAdmin)

	count, err := svc.ActiveMemberCount(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)
}

func TestDeleteCommunityCascade(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, nil)
	ctx := context.Background()

	c := mustCreateCommunity(t, svc, 1, "to-be-closed")
	require.NoError(t, svc.JoinCommunity(ctx, c.ID, 2))

	post := &model.Post{CommunityID: c.ID, AuthorID: 2, Title: "hello"}
	require.NoError(t, db.Create(post).Error)
	require.NoError(t, db.Create(&model.PostLike{UserID: 1, PostID: post.ID}).Error)
	require.NoError(t, db.Create(&model.ChatMessage{CommunityID: c.ID, SenderID: 2, Content: "hi"}).Error)

	// 普通成员删不了
	err := svc.DeleteCommunity(ctx, c.ID, 2)
	assert.ErrorIs(t, err, pkg.ErrNotAdmin)

	require.NoError(t, svc.DeleteCommunity(ctx, c.ID, 1))

	var n int64
	db.Model(&model.CommunityMember{}).Where("community_id = ?", c.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&model.Post{}).Where("community_id = ?", c.ID).Count(&n)
	assert.Zero(t, n)
	db.Model(&model.PostLike{}).Count(&n)
	assert.Zero(t, n)
	db.Model(&model.ChatMessage{}).Where("community_id = ?", c.ID).Count(&n)
	assert.Zero(t, n)

	_, err = svc.GetCommunity(ctx, c.ID)
	assert.ErrorIs(t, err, pkg.ErrNotFound)

	// 已删除的社区再删一次
	err = svc.DeleteCommunity(ctx, c.ID, 1)
	assert.ErrorIs(t, err, pkg.ErrNotFound)
}

func TestDeleteCommunityPartialCascade(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, nil)
	ctx := context.Background()

	c := mustCreateCommunity(t, svc, 1, "half-deleted")
	require.NoError(t, svc.JoinCommunity(ctx, c.ID, 2))

	// 把帖子表弄坏，让级联在中途失败
	require.NoError(t, db.Migrator().DropTable(&model.Post{}))

	err := svc.DeleteCommunity(ctx, c.ID, 1)
	assert.True(t, pkg.Is(err, pkg.ErrPartialCascade))

	// 成员已删，但社区记录必须还在，不能出现悬挂引用
	var n int64
	db.Model(&model.CommunityMember{}).Where("community_id = ?", c.ID).Count(&n)
	assert.Zero(t, n)

	var community model.Community
	assert.NoError(t, db.First(&community, c.ID).Error)
}

func TestReconcilerConvergence(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, nil)
	ctx := context.Background()

	c1 := mustCreateCommunity(t, svc, 1, "drifted-one")
	c2 := mustCreateCommunity(t, svc, 1, "drifted-two")
	require.NoError(t, svc.JoinCommunity(ctx, c1.ID, 2))
	require.NoError(t, svc.JoinCommunity(ctx, c1.ID, 3))

	// 人为制造漂移
	require.NoError(t, db.Model(&model.Community{}).Where("id = ?", c1.ID).
		UpdateColumn("member_count", 99).Error)
	require.NoError(t, db.Model(&model.Community{}).Where("id = ?", c2.ID).
		UpdateColumn("member_count", 0).Error)

	r := NewMemberCountReconciler(db)
	r.ReconcileOnce(ctx)

	var got model.Community
	require.NoError(t, db.First(&got, c1.ID).Error)
	assert.Equal(t, int64(3), got.MemberCount)
	got = model.Community{}
	require.NoError(t, db.First(&got, c2.ID).Error)
	assert.Equal(t, int64(1), got.MemberCount)

	// 走完一轮后游标归零，下一轮重新从头扫
	r.ReconcileOnce(ctx)
	assert.Zero(t, r.lastID)
}

func TestListCommunitiesPaging(t *testing.T) {
	db := newTestDB(t)
	svc := NewMembershipService(db, nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		mustCreateCommunity(t, svc, 1, fmt.Sprintf("community-%d", i))
	}

	list, err := svc.ListCommunities(ctx, 1, 3)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	list, err = svc.ListCommunities(ctx, 2, 3)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	// 非法分页参数回落到默认值
	list, err = svc.ListCommunities(ctx, 0, -1)
	require.NoError(t, err)
	assert.Len(t, list, 5)
}

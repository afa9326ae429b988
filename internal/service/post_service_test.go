package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"mindwell/internal/model"
	"mindwell/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func seedPostCommunity(t *testing.T, db *gorm.DB) *model.Community {
	t.Helper()
	svc := NewMembershipService(db, nil)
	c := mustCreateCommunity(t, svc, 1, "writing-corner")
	require.NoError(t, svc.JoinCommunity(context.Background(), c.ID, 2))
	return c
}

func TestCreatePostMemberOnly(t *testing.T) {
	db := newTestDB(t)
	c := seedPostCommunity(t, db)
	svc := NewPostService(db)

	post, err := svc.CreatePost(2, c.ID, "first night of good sleep", "it finally happened")
	require.NoError(t, err)
	assert.NotZero(t, post.ID)

	// 非成员不能发帖
	_, err = svc.CreatePost(9, c.ID, "hello", "")
	assert.ErrorIs(t, err, pkg.ErrNotMember)

	_, err = svc.CreatePost(2, c.ID, "", "no title")
	assert.Equal(t, pkg.CodeValidation, pkg.GetCode(err))
}

func TestDeletePostPermissions(t *testing.T) {
	db := newTestDB(t)
	c := seedPostCommunity(t, db)
	svc := NewPostService(db)

	post, err := svc.CreatePost(2, c.ID, "to be removed", "")
	require.NoError(t, err)

	// 既不是作者也不是管理员
	require.NoError(t, db.Create(&model.CommunityMember{CommunityID: c.ID, UserID: 3}).Error)
	err = svc.DeletePost(3, post.ID)
	assert.ErrorIs(t, err, pkg.ErrNotAdmin)

	// 作者本人可删
	require.NoError(t, svc.DeletePost(2, post.ID))

	// 再删一次幂等成功
	require.NoError(t, svc.DeletePost(2, post.ID))

	// 管理员可删别人的帖子
	other, err := svc.CreatePost(2, c.ID, "kept a journal today", "")
	require.NoError(t, err)
	require.NoError(t, svc.DeletePost(1, other.ID))
}

func TestListByCommunityCursor(t *testing.T) {
	db := newTestDB(t)
	c := seedPostCommunity(t, db)
	svc := NewPostService(db)

	// 去掉亚秒部分，游标按秒传递
	base := time.Now().Add(-time.Hour).Truncate(time.Second)
	for i := 0; i < 5; i++ {
		post := &model.Post{
			CommunityID: c.ID,
			AuthorID:    2,
			Title:       fmt.Sprintf("post-%d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, db.Create(post).Error)
	}

	// 首页：最新的在前
	list, nextID, nextTS, err := svc.ListByCommunityCursor(c.ID, 0, 0, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "post-4", list[0].Title)
	assert.Equal(t, "post-3", list[1].Title)
	require.NotZero(t, nextID)

	// 翻页不重不漏
	list, _, _, err = svc.ListByCommunityCursor(c.ID, nextID, nextTS, 2)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "post-2", list[0].Title)
	assert.Equal(t, "post-1", list[1].Title)
}

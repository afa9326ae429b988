package mysql

import (
	"time"

	"mindwell/internal/model"

	"gorm.io/gorm"
)

type PostRepository struct {
	DB *gorm.DB
}

func (r *PostRepository) Create(post *model.Post) error {
	return r.DB.Create(post).Error
}

func (r *PostRepository) FindByID(id uint64) (*model.Post, error) {
	var post model.Post
	err := r.DB.First(&post, "id = ? AND status = 0", id).Error
	return &post, err
}

// ListByCommunity 基础分页查询
func (r *PostRepository) ListByCommunity(communityID uint64, offset, limit int) ([]model.Post, error) {
	var list []model.Post
	err := r.DB.
		Where("community_id = ? AND status = 0", communityID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ListByCommunityCursor 时间游标查询：先比时间，同一时间点用 id 打破并列
// lastCreatedAt 为零值表示第一页
func (r *PostRepository) ListByCommunityCursor(communityID uint64, lastID uint64, lastCreatedAt time.Time, limit int) ([]model.Post, error) {
	var list []model.Post
	q := r.DB.Where("community_id = ? AND status = 0", communityID)
	if !lastCreatedAt.IsZero() {
		q = q.Where("(created_at < ? OR (created_at = ? AND id < ?))", lastCreatedAt, lastCreatedAt, lastID)
	}
	err := q.Order("created_at DESC, id DESC").Limit(limit).Find(&list).Error
	return list, err
}

// DeleteWithPermission 带权限的一步软删除：作者或社区管理员方可删除；幂等
func (r *PostRepository) DeleteWithPermission(postID, operatorID uint64) (affected int64, err error) {
	tx := r.DB.Exec(`
		UPDATE posts SET status = 1, updated_at = ?
		WHERE id = ? AND status = 0
		  AND (author_id = ? OR EXISTS (
		       SELECT 1 FROM community_members m
		       WHERE m.community_id = posts.community_id AND m.user_id = ? AND m.role >= ?
		  ))`,
		time.Now(), postID, operatorID, operatorID, model.RoleAdmin,
	)
	return tx.RowsAffected, tx.Error
}

// DeleteByCommunity 级联硬删除，社区删除时调用
func (r *PostRepository) DeleteByCommunity(communityID uint64) error {
	return r.DB.Where("community_id = ?", communityID).
		Delete(&model.Post{}).Error
}

// DeleteLikesByCommunity 清掉被级联删除帖子的点赞记录，避免悬挂行
func (r *PostRepository) DeleteLikesByCommunity(communityID uint64) error {
	return r.DB.Exec(`
		DELETE FROM post_likes
		WHERE post_id IN (SELECT id FROM posts WHERE community_id = ?)`,
		communityID,
	).Error
}

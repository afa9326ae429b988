package mysql

import (
	"context"
	"errors"

	"mindwell/internal/model"

	"gorm.io/gorm"
)

type PostLikeRepository struct {
	DB *gorm.DB
}

// Like 幂等点赞：唯一 (user_id, post_id)，命中已有记录时返回 changed=false
func (r *PostLikeRepository) Like(ctx context.Context, userID, postID uint64) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var pl model.PostLike
		err := tx.Where("user_id = ? AND post_id = ?", userID, postID).First(&pl).Error
		if err == nil {
			// 已存在，幂等
			changed = false
			return nil
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		if err = tx.Create(&model.PostLike{UserID: userID, PostID: postID}).Error; err != nil {
			return err
		}
		changed = true
		return tx.Model(&model.Post{}).
			Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("like_count + 1")).Error
	})
	return changed, err
}

func (r *PostLikeRepository) Unlike(ctx context.Context, userID, postID uint64) (bool, error) {
	var changed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND post_id = ?", userID, postID).
			Delete(&model.PostLike{})
		if res.Error != nil {
			return res.Error
		}
		// 未删除任何行 -> 幂等
		if res.RowsAffected == 0 {
			changed = false
			return nil
		}
		changed = true
		// 计数-1，防止负数
		return tx.Model(&model.Post{}).
			Where("id = ?", postID).
			UpdateColumn("like_count", gorm.Expr("CASE WHEN like_count > 0 THEN like_count - 1 ELSE 0 END")).Error
	})
	return changed, err
}

func (r *PostLikeRepository) IsLiked(ctx context.Context, userID, postID uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).
		Model(&model.PostLike{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error
	return count > 0, err
}

func (r *PostLikeRepository) GetLikeCount(ctx context.Context, postID uint64) (int64, error) {
	var p model.Post
	err := r.DB.WithContext(ctx).Select("id", "like_count").First(&p, postID).Error
	if err != nil {
		return 0, err
	}
	return p.LikeCount, nil
}

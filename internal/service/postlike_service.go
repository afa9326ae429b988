package service

import (
	"context"

	"mindwell/internal/pkg"
	"mindwell/internal/repository/mysql"

	"gorm.io/gorm"
)

type PostLikeService struct {
	repo *mysql.PostLikeRepository
}

func NewPostLikeService(db *gorm.DB) *PostLikeService {
	return &PostLikeService{
		repo: &mysql.PostLikeRepository{DB: db},
	}
}

// Like 幂等点赞，返回本次是否真的点上了
func (s *PostLikeService) Like(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 || postID == 0 {
		return false, pkg.Validationf("invalid id")
	}
	return s.repo.Like(ctx, userID, postID)
}

func (s *PostLikeService) Unlike(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 || postID == 0 {
		return false, pkg.Validationf("invalid id")
	}
	return s.repo.Unlike(ctx, userID, postID)
}

func (s *PostLikeService) IsLiked(ctx context.Context, userID, postID uint64) (bool, error) {
	if userID == 0 || postID == 0 {
		return false, pkg.Validationf("invalid id")
	}
	return s.repo.IsLiked(ctx, userID, postID)
}

func (s *PostLikeService) GetLikeCount(ctx context.Context, postID uint64) (int64, error) {
	return s.repo.GetLikeCount(ctx, postID)
}

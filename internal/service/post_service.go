package service

import (
	"time"

	"mindwell/internal/model"
	"mindwell/internal/pkg"
	"mindwell/internal/repository/mysql"

	"gorm.io/gorm"
)

type PostService struct {
	repo       *mysql.PostRepository
	memberRepo *mysql.CommunityMemberRepository
}

func NewPostService(db *gorm.DB) *PostService {
	return &PostService{
		repo:       &mysql.PostRepository{DB: db},
		memberRepo: &mysql.CommunityMemberRepository{DB: db},
	}
}

// CreatePost 仅社区成员可发帖
func (s *PostService) CreatePost(userID, communityID uint64, title, content string) (*model.Post, error) {
	if userID == 0 {
		return nil, pkg.ErrUnauthenticated
	}
	if title == "" {
		return nil, pkg.Validationf("title required")
	}

	ok, err := s.memberRepo.IsMember(communityID, userID)
	if err != nil {
		return nil, pkg.ErrStore.Wrap(err)
	}
	if !ok {
		return nil, pkg.ErrNotMember
	}

	post := &model.Post{
		CommunityID: communityID,
		AuthorID:    userID,
		Title:       title,
		Content:     content,
	}
	if err := s.repo.Create(post); err != nil {
		return nil, pkg.ErrStore.Wrap(err)
	}
	return post, nil
}

// ListByCommunity 社区帖子列表
func (s *PostService) ListByCommunity(communityID uint64, page, size int) ([]model.Post, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	offset := (page - 1) * size
	return s.repo.ListByCommunity(communityID, offset, size)
}

// ListByCommunityCursor 游标分页：首页不传 lastID/lastCreatedAt（或传 0）
func (s *PostService) ListByCommunityCursor(communityID uint64, lastID uint64, lastCreatedAt int64, size int) ([]model.Post, uint64, int64, error) {
	if size <= 0 || size > 50 {
		size = 20
	}
	var cursor time.Time
	if lastCreatedAt > 0 {
		cursor = time.Unix(lastCreatedAt, 0)
	}
	list, err := s.repo.ListByCommunityCursor(communityID, lastID, cursor, size)
	if err != nil {
		return nil, 0, 0, err
	}
	var nextID uint64
	var nextTS int64
	if len(list) > 0 {
		last := list[len(list)-1]
		nextID = last.ID
		nextTS = last.CreatedAt.Unix()
	}
	return list, nextID, nextTS, nil
}

// DeletePost 幂等删除：成功/已删除均返回 nil；仅无权限时报错
func (s *PostService) DeletePost(userID, postID uint64) error {
	affected, err := s.repo.DeleteWithPermission(postID, userID)
	if err != nil {
		return pkg.ErrStore.Wrap(err)
	}
	if affected == 0 {
		// 帖子已删除或不存在，视为幂等成功
		if _, err := s.repo.FindByID(postID); err != nil {
			return nil
		}
		// 还能读到帖子说明是权限不够
		return pkg.ErrNotAdmin
	}
	return nil
}

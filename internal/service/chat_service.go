package service

import (
	"context"
	"strings"

	"mindwell/internal/model"
	"mindwell/internal/pkg"
	"mindwell/internal/repository/mysql"

	"gorm.io/gorm"
)

type ChatService struct {
	repo       *mysql.ChatMessageRepository
	commRepo   *mysql.CommunityRepository
	memberRepo *mysql.CommunityMemberRepository
}

func NewChatService(db *gorm.DB) *ChatService {
	return &ChatService{
		repo:       &mysql.ChatMessageRepository{DB: db},
		commRepo:   &mysql.CommunityRepository{DB: db},
		memberRepo: &mysql.CommunityMemberRepository{DB: db},
	}
}

// SendMessage 仅社区成员可发群聊消息
func (s *ChatService) SendMessage(ctx context.Context, communityID, userID uint64, content string) (*model.ChatMessage, error) {
	if userID == 0 {
		return nil, pkg.ErrUnauthenticated
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, pkg.Validationf("message content required")
	}

	ok, err := s.memberRepo.IsMember(communityID, userID)
	if err != nil {
		return nil, pkg.ErrStore.Wrap(err)
	}
	if !ok {
		return nil, pkg.ErrNotMember
	}

	msg := &model.ChatMessage{
		CommunityID: communityID,
		SenderID:    userID,
		Content:     content,
	}
	if err := s.repo.Create(msg); err != nil {
		return nil, pkg.ErrStore.Wrap(err)
	}
	return msg, nil
}

// ListMessages 非公开社区只有成员能看历史
func (s *ChatService) ListMessages(ctx context.Context, communityID, userID uint64, cursor uint64, limit int) ([]model.ChatMessage, uint64, error) {
	community, err := s.commRepo.FindByID(communityID)
	if err != nil {
		if mysql.IsNotFound(err) {
			return nil, 0, pkg.ErrNotFound
		}
		return nil, 0, pkg.ErrStore.Wrap(err)
	}
	if !community.IsPublic {
		ok, err := s.memberRepo.IsMember(communityID, userID)
		if err != nil {
			return nil, 0, pkg.ErrStore.Wrap(err)
		}
		if !ok {
			return nil, 0, pkg.ErrNotMember
		}
	}
	return s.repo.ListByCommunity(communityID, cursor, limit)
}

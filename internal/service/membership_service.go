package service

import (
	"context"
	"log"
	"strings"

	"mindwell/internal/model"
	"mindwell/internal/pkg"
	"mindwell/internal/repository/mysql"

	"gorm.io/gorm"
)

// MembershipNotifier 成员变更事件钩子。投递策略由实现决定，
// service 只负责触发，失败不影响主流程。
type MembershipNotifier interface {
	MemberJoined(ctx context.Context, communityID, userID uint64) error
	MemberRemoved(ctx context.Context, communityID, userID, actorID uint64) error
	RoleChanged(ctx context.Context, communityID, userID uint64, newRole int) error
}

type CommunityInput struct {
	Name        string
	Description string
	Tags        []string
	Rules       []string
	IsPublic    bool
}

// MembershipService 社区成员关系的唯一入口：建社区、进出社区、角色变更、
// 删社区级联。所有调用都带显式的操作者 id，不从任何全局态取当前用户。
type MembershipService struct {
	repo       *mysql.CommunityRepository
	memberRepo *mysql.CommunityMemberRepository
	postRepo   *mysql.PostRepository
	chatRepo   *mysql.ChatMessageRepository
	notifier   MembershipNotifier // 可为 nil
}

func NewMembershipService(db *gorm.DB, notifier MembershipNotifier) *MembershipService {
	return &MembershipService{
		repo:       &mysql.CommunityRepository{DB: db},
		memberRepo: &mysql.CommunityMemberRepository{DB: db},
		postRepo:   &mysql.PostRepository{DB: db},
		chatRepo:   &mysql.ChatMessageRepository{DB: db},
		notifier:   notifier,
	}
}

// CreateCommunity 建社区并把创建者设为管理员，同一事务完成
func (s *MembershipService) CreateCommunity(ctx context.Context, creatorID uint64, in CommunityInput) (*model.Community, error) {
	if creatorID == 0 {
		return nil, pkg.ErrUnauthenticated
	}
	name := strings.TrimSpace(in.Name)
	if len([]rune(name)) < 3 {
		return nil, pkg.Validationf("community name must be at least 3 characters")
	}
	if len([]rune(strings.TrimSpace(in.Description))) < 10 {
		return nil, pkg.Validationf("description must be at least 10 characters")
	}
	if len(in.Tags) == 0 {
		return nil, pkg.Validationf("at least one tag required")
	}
	if _, err := s.repo.FindByName(name); err == nil {
		return nil, pkg.Validationf("community name already taken")
	} else if !mysql.IsNotFound(err) {
		return nil, pkg.ErrStore.Wrap(err)
	}

	community := &model.Community{
		Name:        name,
		Description: strings.TrimSpace(in.Description),
		Tags:        strings.Join(in.Tags, ","),
		Rules:       strings.Join(in.Rules, "\n"),
		IsPublic:    in.IsPublic,
		CreatorID:   creatorID,
	}
	if _, err := s.repo.Create(community); err != nil {
		return nil, pkg.ErrStore.Wrap(err)
	}
	return community, nil
}

// JoinCommunity 幂等加入。重复加入直接返回成功，不产生第二条记录。
// 计数增量只在真正插入时执行，并发首次加入导致的计数漂移由对账任务收敛。
func (s *MembershipService) JoinCommunity(ctx context.Context, communityID, userID uint64) error {
	if userID == 0 {
		return pkg.ErrUnauthenticated
	}
	if _, err := s.repo.FindByID(communityID); err != nil {
		if mysql.IsNotFound(err) {
			return pkg.ErrNotFound
		}
		return pkg.ErrStore.Wrap(err)
	}

	created, err := s.memberRepo.Join(&model.CommunityMember{
		CommunityID: communityID,
		UserID:      userID,
		Role:        model.RoleMember,
	})
	if err != nil {
		return pkg.ErrStore.Wrap(err)
	}
	if !created {
		// 已是成员，幂等
		return nil
	}

	// 展示计数尽力而为，失败只记日志
	if err := s.repo.IncrMemberCount(communityID); err != nil {
		log.Printf("incr member count failed: community=%d err=%v", communityID, err)
	}
	if s.notifier != nil {
		if err := s.notifier.MemberJoined(ctx, communityID, userID); err != nil {
			log.Printf("member joined notify failed: community=%d user=%d err=%v", communityID, userID, err)
		}
	}
	return nil
}

// LeaveCommunity 退出社区。最后一名管理员退出会被拒绝（ErrLastAdmin），
// 检查和删除在同一条 SQL 里完成，不存在先查后删的竞态窗口。
func (s *MembershipService) LeaveCommunity(ctx context.Context, communityID, userID uint64) error {
	if userID == 0 {
		return pkg.ErrUnauthenticated
	}
	if _, err := s.memberRepo.FindActive(communityID, userID); err != nil {
		if mysql.IsNotFound(err) {
			// 本来就不在社区里，对幂等调用方这是正常结果
			return pkg.ErrNotFound
		}
		return pkg.ErrStore.Wrap(err)
	}

	affected, err := s.memberRepo.LeaveGuarded(communityID, userID)
	if err != nil {
		return pkg.ErrStore.Wrap(err)
	}
	if affected == 0 {
		// 记录刚才还在：没删掉只可能是并发退出或最后管理员保护
		stillMember, err := s.memberRepo.IsMember(communityID, userID)
		if err != nil {
			return pkg.ErrStore.Wrap(err)
		}
		if !stillMember {
			return nil
		}
		return pkg.ErrLastAdmin
	}

	if err := s.repo.DecrMemberCount(communityID); err != nil {
		log.Printf("decr member count failed: community=%d err=%v", communityID, err)
	}
	if s.notifier != nil {
		if err := s.notifier.MemberRemoved(ctx, communityID, userID, userID); err != nil {
			log.Printf("member removed notify failed: community=%d user=%d err=%v", communityID, userID, err)
		}
	}
	return nil
}

// ChangeMemberRole 改成员角色，仅管理员可操作。
// 把最后一名管理员降为普通成员同样会被拒绝，这里和退出用同一套保护。
func (s *MembershipService) ChangeMemberRole(ctx context.Context, communityID, actingUserID, targetMembershipID uint64, newRole int) error {
	if actingUserID == 0 {
		return pkg.ErrUnauthenticated
	}
	if newRole != model.RoleMember && newRole != model.RoleAdmin {
		return pkg.Validationf("unknown role %d", newRole)
	}
	if err := s.requireAdmin(communityID, actingUserID); err != nil {
		return err
	}

	target, err := s.memberRepo.FindByID(targetMembershipID)
	if err != nil {
		if mysql.IsNotFound(err) {
			return pkg.ErrNotFound
		}
		return pkg.ErrStore.Wrap(err)
	}
	if target.CommunityID != communityID {
		return pkg.ErrNotFound
	}
	if target.Role == newRole {
		// 已是目标角色，幂等
		return nil
	}

	affected, err := s.memberRepo.UpdateRoleGuarded(targetMembershipID, communityID, newRole)
	if err != nil {
		return pkg.ErrStore.Wrap(err)
	}
	if affected == 0 {
		return pkg.ErrLastAdmin
	}

	if s.notifier != nil {
		if err := s.notifier.RoleChanged(ctx, communityID, target.UserID, newRole); err != nil {
			log.Printf("role changed notify failed: community=%d user=%d err=%v", communityID, target.UserID, err)
		}
	}
	return nil
}

// RemoveMember 管理员移除成员。计数处理与 LeaveCommunity 保持同一策略：
// 两条路径都显式递减展示计数，权威值永远是实时 COUNT。
func (s *MembershipService) RemoveMember(ctx context.Context, communityID, actingUserID, targetMembershipID uint64) error {
	if actingUserID == 0 {
		return pkg.ErrUnauthenticated
	}
	if err := s.requireAdmin(communityID, actingUserID); err != nil {
		return err
	}

	target, err := s.memberRepo.FindByID(targetMembershipID)
	if err != nil {
		if mysql.IsNotFound(err) {
			return pkg.ErrNotFound
		}
		return pkg.ErrStore.Wrap(err)
	}
	if target.CommunityID != communityID {
		return pkg.ErrNotFound
	}

	affected, err := s.memberRepo.RemoveByIDGuarded(targetMembershipID, communityID)
	if err != nil {
		return pkg.ErrStore.Wrap(err)
	}
	if affected == 0 {
		return pkg.ErrLastAdmin
	}

	if err := s.repo.DecrMemberCount(communityID); err != nil {
		log.Printf("decr member count failed: community=%d err=%v", communityID, err)
	}
	if s.notifier != nil {
		if err := s.notifier.MemberRemoved(ctx, communityID, target.UserID, actingUserID); err != nil {
			log.Printf("member removed notify failed: community=%d user=%d err=%v", communityID, target.UserID, err)
		}
	}
	return nil
}

// DeleteCommunity 管理员删除社区，按序级联：成员、点赞、帖子、群聊消息，
// 社区记录最后删。中途失败不回滚，返回 ErrPartialCascade，此时社区记录
// 仍在，残留数据可由重试或对账清掉；绝不会出现引用已消失社区的悬挂数据。
func (s *MembershipService) DeleteCommunity(ctx context.Context, communityID, actingUserID uint64) error {
	if actingUserID == 0 {
		return pkg.ErrUnauthenticated
	}
	if _, err := s.repo.FindByID(communityID); err != nil {
		if mysql.IsNotFound(err) {
			return pkg.ErrNotFound
		}
		return pkg.ErrStore.Wrap(err)
	}
	if err := s.requireAdmin(communityID, actingUserID); err != nil {
		return err
	}

	if err := s.memberRepo.DeleteByCommunity(communityID); err != nil {
		return pkg.ErrPartialCascade.Wrap(err)
	}
	if err := s.postRepo.DeleteLikesByCommunity(communityID); err != nil {
		return pkg.ErrPartialCascade.Wrap(err)
	}
	if err := s.postRepo.DeleteByCommunity(communityID); err != nil {
		return pkg.ErrPartialCascade.Wrap(err)
	}
	if err := s.chatRepo.DeleteByCommunity(communityID); err != nil {
		return pkg.ErrPartialCascade.Wrap(err)
	}
	if err := s.repo.DeleteByID(communityID); err != nil {
		return pkg.ErrPartialCascade.Wrap(err)
	}
	return nil
}

// ActiveMemberCount 实时成员数，唯一的权威口径
func (s *MembershipService) ActiveMemberCount(ctx context.Context, communityID uint64) (int64, error) {
	count, err := s.memberRepo.CountActive(communityID)
	if err != nil {
		return 0, pkg.ErrStore.Wrap(err)
	}
	return count, nil
}

func (s *MembershipService) GetCommunity(ctx context.Context, communityID uint64) (*model.Community, error) {
	c, err := s.repo.FindByID(communityID)
	if err != nil {
		if mysql.IsNotFound(err) {
			return nil, pkg.ErrNotFound
		}
		return nil, pkg.ErrStore.Wrap(err)
	}
	return c, nil
}

func (s *MembershipService) ListCommunities(ctx context.Context, page, size int) ([]model.Community, error) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > 50 {
		size = 20
	}
	offset := (page - 1) * size
	list, err := s.repo.List(offset, size)
	if err != nil {
		return nil, pkg.ErrStore.Wrap(err)
	}
	return list, nil
}

func (s *MembershipService) ListMembers(ctx context.Context, communityID uint64) ([]model.CommunityMember, error) {
	list, err := s.memberRepo.ListByCommunity(communityID)
	if err != nil {
		return nil, pkg.ErrStore.Wrap(err)
	}
	return list, nil
}

func (s *MembershipService) requireAdmin(communityID, userID uint64) error {
	ok, err := s.memberRepo.IsAdmin(communityID, userID)
	if err != nil {
		return pkg.ErrStore.Wrap(err)
	}
	if !ok {
		return pkg.ErrNotAdmin
	}
	return nil
}

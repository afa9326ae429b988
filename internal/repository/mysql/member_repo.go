package mysql

import (
	"errors"
	"time"

	"mindwell/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityMemberRepository struct {
	DB *gorm.DB
}

// Join 幂等插入：若已存在 (community_id, user_id) 则不报错也不重复。
// 返回是否真的插入了新行，冲突被吞掉时为 false。
func (r *CommunityMemberRepository) Join(member *model.CommunityMember) (bool, error) {
	tx := r.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
		DoNothing: true,
	}).Create(member)
	return tx.RowsAffected > 0, tx.Error
}

func (r *CommunityMemberRepository) FindActive(communityID, userID uint64) (*model.CommunityMember, error) {
	var m model.CommunityMember
	err := r.DB.Where("community_id = ? AND user_id = ?", communityID, userID).First(&m).Error
	return &m, err
}

func (r *CommunityMemberRepository) FindByID(id uint64) (*model.CommunityMember, error) {
	var m model.CommunityMember
	err := r.DB.First(&m, id).Error
	return &m, err
}

func (r *CommunityMemberRepository) IsMember(communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error
	return count > 0, err
}

func (r *CommunityMemberRepository) IsAdmin(communityID, userID uint64) (bool, error) {
	var count int64
	err := r.DB.Model(&model.CommunityMember{}).
		Where("community_id = ? AND user_id = ? AND role = ?", communityID, userID, model.RoleAdmin).
		Count(&count).Error
	return count > 0, err
}

// CountActive 实时成员数，这是权威值，member_count 缓存列只作展示
func (r *CommunityMemberRepository) CountActive(communityID uint64) (int64, error) {
	var count int64
	err := r.DB.Model(&model.CommunityMember{}).
		Where("community_id = ?", communityID).
		Count(&count).Error
	return count, err
}

func (r *CommunityMemberRepository) ListByCommunity(communityID uint64) ([]model.CommunityMember, error) {
	var list []model.CommunityMember
	err := r.DB.Where("community_id = ?", communityID).
		Order("role DESC, id ASC").
		Find(&list).Error
	return list, err
}

// LeaveGuarded 单条 SQL 完成"最后管理员"检查和删除，消除先查后删的竞态窗口。
// 派生表包一层是 MySQL 不允许 DELETE 的子查询引用目标表的标准绕法。
// 返回 affected==0 表示没删：要么根本不是成员，要么是最后一名管理员。
func (r *CommunityMemberRepository) LeaveGuarded(communityID, userID uint64) (int64, error) {
	tx := r.DB.Exec(`
		DELETE FROM community_members
		WHERE community_id = ? AND user_id = ?
		  AND (role = ? OR (SELECT t.cnt FROM (
		        SELECT COUNT(*) AS cnt FROM community_members
		        WHERE community_id = ? AND role = ?) AS t) > 1)`,
		communityID, userID, model.RoleMember, communityID, model.RoleAdmin,
	)
	return tx.RowsAffected, tx.Error
}

// RemoveByIDGuarded 按 membership id 删除，同样的最后管理员保护
func (r *CommunityMemberRepository) RemoveByIDGuarded(membershipID, communityID uint64) (int64, error) {
	tx := r.DB.Exec(`
		DELETE FROM community_members
		WHERE id = ? AND community_id = ?
		  AND (role = ? OR (SELECT t.cnt FROM (
		        SELECT COUNT(*) AS cnt FROM community_members
		        WHERE community_id = ? AND role = ?) AS t) > 1)`,
		membershipID, communityID, model.RoleMember, communityID, model.RoleAdmin,
	)
	return tx.RowsAffected, tx.Error
}

// UpdateRoleGuarded 改角色。升为管理员总是允许；降级时若目标是最后一名管理员则拒绝。
func (r *CommunityMemberRepository) UpdateRoleGuarded(membershipID, communityID uint64, newRole int) (int64, error) {
	tx := r.DB.Exec(`
		UPDATE community_members SET role = ?, updated_at = ?
		WHERE id = ? AND community_id = ?
		  AND (? = ? OR role = ? OR (SELECT t.cnt FROM (
		        SELECT COUNT(*) AS cnt FROM community_members
		        WHERE community_id = ? AND role = ?) AS t) > 1)`,
		newRole, time.Now(), membershipID, communityID,
		newRole, model.RoleAdmin, model.RoleMember,
		communityID, model.RoleAdmin,
	)
	return tx.RowsAffected, tx.Error
}

// DeleteByCommunity 级联删除用
func (r *CommunityMemberRepository) DeleteByCommunity(communityID uint64) error {
	return r.DB.Where("community_id = ?", communityID).
		Delete(&model.CommunityMember{}).Error
}

func IsNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}

package mysql

import (
	"context"

	"mindwell/internal/model"

	"gorm.io/gorm"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// Create 建社区并让创建者成为管理员，两步放在同一事务里。
// member_count 初始为 1（创建者）。
func (r *CommunityRepository) Create(c *model.Community) (*model.Community, error) {
	err := r.DB.Transaction(func(tx *gorm.DB) error {
		c.MemberCount = 1
		if err := tx.Create(c).Error; err != nil {
			return err
		}

		mRepo := &CommunityMemberRepository{DB: tx}
		// 幂等加入：仓储已 DoNothing
		_, err := mRepo.Join(&model.CommunityMember{
			CommunityID: c.ID,
			UserID:      c.CreatorID,
			Role:        model.RoleAdmin,
		})
		return err
	})
	return c, err
}

func (r *CommunityRepository) FindByID(id uint64) (*model.Community, error) {
	var community model.Community
	err := r.DB.First(&community, id).Error
	return &community, err
}

func (r *CommunityRepository) FindByName(name string) (*model.Community, error) {
	var community model.Community
	err := r.DB.Where("name = ?", name).First(&community).Error
	return &community, err
}

func (r *CommunityRepository) List(offset, limit int) ([]model.Community, error) {
	var list []model.Community
	err := r.DB.Order("id desc").Offset(offset).Limit(limit).Find(&list).Error
	return list, err
}

func (r *CommunityRepository) DeleteByID(id uint64) error {
	// 幂等硬删除：RowsAffected == 0 也视为成功
	return r.DB.Delete(&model.Community{}, id).Error
}

// IncrMemberCount 展示计数 +1，尽力而为；实时计数永远以 COUNT 查询为准
func (r *CommunityRepository) IncrMemberCount(id uint64) error {
	return r.DB.Model(&model.Community{}).
		Where("id = ?", id).
		UpdateColumn("member_count", gorm.Expr("member_count + 1")).Error
}

// DecrMemberCount 展示计数 -1，防负数
func (r *CommunityRepository) DecrMemberCount(id uint64) error {
	return r.DB.Model(&model.Community{}).
		Where("id = ?", id).
		UpdateColumn("member_count", gorm.Expr("CASE WHEN member_count > 0 THEN member_count - 1 ELSE 0 END")).Error
}

func (r *CommunityRepository) SetMemberCount(ctx context.Context, id uint64, count int64) error {
	return r.DB.WithContext(ctx).Model(&model.Community{}).
		Where("id = ?", id).
		UpdateColumn("member_count", count).Error
}

// CountPair 对账用的 (社区, 缓存计数) 批次条目
type CountPair struct {
	ID          uint64
	MemberCount int64
}

// ListCounts 按 id 升序分批拉取社区缓存计数，供对账任务使用
func (r *CommunityRepository) ListCounts(ctx context.Context, batchSize int, lastID uint64) ([]CountPair, uint64, error) {
	var list []CountPair
	if err := r.DB.WithContext(ctx).Model(&model.Community{}).
		Select("id", "member_count").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, lastID, err
	}
	if len(list) == 0 {
		return nil, lastID, nil
	}
	return list, list[len(list)-1].ID, nil
}

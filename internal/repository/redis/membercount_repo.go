package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	MemberCntTTL       = 10 * time.Minute
	LockTTL            = 300 * time.Millisecond
	MemberCntKeyPrefix = "member:cnt:community" // 社区成员数展示缓存
	LockKeyPrefix      = "lock:member:community"
)

// MemberCountCache 成员数展示缓存。权限判断永远不读这里，只走数据库实时 COUNT。
type MemberCountCache struct {
	ttl time.Duration
}

func NewMemberCountCache() *MemberCountCache {
	return &MemberCountCache{ttl: MemberCntTTL}
}

func (r *MemberCountCache) cntKey(communityID uint64) string {
	return fmt.Sprintf("%s:%d", MemberCntKeyPrefix, communityID)
}

// GetCached 缓存命中返回 (值, true)
func (r *MemberCountCache) GetCached(ctx context.Context, communityID uint64) (int64, bool, error) {
	val, err := Client.Get(ctx, r.cntKey(communityID)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	return val, true, err
}

// SetCount 回填
func (r *MemberCountCache) SetCount(ctx context.Context, communityID uint64, cnt int64) error {
	return Client.Set(ctx, r.cntKey(communityID), cnt, r.ttl).Err()
}

// DeleteCount 成员变更后删 Key，交给读侧重建；可选延迟二删抵消并发回填窗口
func (r *MemberCountCache) DeleteCount(ctx context.Context, communityID uint64, delay ...time.Duration) error {
	key := r.cntKey(communityID)
	if err := Client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	if len(delay) > 0 && delay[0] > 0 {
		d := delay[0]
		go func() {
			t := time.NewTimer(d)
			defer t.Stop()
			<-t.C
			_ = Client.Del(context.Background(), key).Err()
		}()
	}
	return nil
}

// DistLock 缓存重建用的分布式锁
type DistLock struct {
	RDB *redis.Client
}

// Acquire 请求加锁
func (l *DistLock) Acquire(ctx context.Context, communityID uint64, token string) (bool, error) {
	key := fmt.Sprintf("%s:%d", LockKeyPrefix, communityID)
	return l.RDB.SetNX(ctx, key, token, LockTTL).Result()
}

// Release 用 lua 保证只释放自己持有的锁
func (l *DistLock) Release(ctx context.Context, communityID uint64, token string) error {
	key := fmt.Sprintf("%s:%d", LockKeyPrefix, communityID)
	_, err := redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`).Run(ctx, l.RDB, []string{key}, token).Result()
	return err
}

package redis

import (
	"context"
	"fmt"
	"time"
)

const (
	ChatHistoryTTL       = 24 * time.Hour
	ChatHistoryKeyPrefix = "chatbot:history"
	// ChatHistoryMax 保留的对话条数（user/model 各算一条）
	ChatHistoryMax = 20
)

// ChatHistoryRepository 聊天机器人的对话上下文，按用户存一个定长列表
type ChatHistoryRepository struct{}

func (r *ChatHistoryRepository) key(userID uint64) string {
	return fmt.Sprintf("%s:%d", ChatHistoryKeyPrefix, userID)
}

// Append 追加一轮对话并裁剪到上限
func (r *ChatHistoryRepository) Append(ctx context.Context, userID uint64, userMsg, botMsg string) error {
	key := r.key(userID)
	pipe := Client.TxPipeline()
	pipe.RPush(ctx, key, userMsg, botMsg)
	pipe.LTrim(ctx, key, -ChatHistoryMax, -1)
	pipe.Expire(ctx, key, ChatHistoryTTL)
	_, err := pipe.Exec(ctx)
	return err
}

// List 返回按时间升序的历史，user/model 交替
func (r *ChatHistoryRepository) List(ctx context.Context, userID uint64) ([]string, error) {
	return Client.LRange(ctx, r.key(userID), 0, -1).Result()
}

// Clear 清空上下文
func (r *ChatHistoryRepository) Clear(ctx context.Context, userID uint64) error {
	return Client.Del(ctx, r.key(userID)).Err()
}

package redis

import (
	"context"
	"errors"
	"fmt"
	"time"
)

const (
	DefaultEmailCodeTTL = 5 * time.Minute
	EmailCodePrefix     = "email:code"

	// 两阶段键：先写 pending，邮件发出后转 confirmed，校验只认 confirmed
	PendingSuffix   = "pending"
	ConfirmedSuffix = "confirmed"
)

var (
	ErrEmailNotFound       = errors.New("email code not found")
	ErrEmailCodeDelFailed  = errors.New("email code delete failed")
	ErrCodePendingFailed   = errors.New("code pending failed")
	ErrCodeConfirmedFailed = errors.New("code confirmed failed")
)

// EmailRepository 验证码存储，scope 区分用途（register / reset）
type EmailRepository struct{}

func (e *EmailRepository) pendingKey(scope, email string) string {
	return fmt.Sprintf("%s:%s:%s:%s", EmailCodePrefix, scope, PendingSuffix, email)
}

func (e *EmailRepository) confirmedKey(scope, email string) string {
	return fmt.Sprintf("%s:%s:%s:%s", EmailCodePrefix, scope, ConfirmedSuffix, email)
}

// SetPending 写入 pending 键
func (e *EmailRepository) SetPending(scope, email, code string) error {
	if err := Client.Set(context.Background(), e.pendingKey(scope, email), code, DefaultEmailCodeTTL).Err(); err != nil {
		return ErrCodePendingFailed
	}
	return nil
}

// ConfirmPending 将 pending 原子转为 confirmed：取值+写目标+设 TTL+删源，lua 保证原子
func (e *EmailRepository) ConfirmPending(scope, email string) error {
	script := `
local val = redis.call("GET", KEYS[1])
if not val then
  return 0
end
redis.call("SET", KEYS[2], val, "PX", ARGV[1])
redis.call("DEL", KEYS[1])
return 1
`
	px := int64(DefaultEmailCodeTTL / time.Millisecond)
	res := Client.Eval(context.Background(), script,
		[]string{e.pendingKey(scope, email), e.confirmedKey(scope, email)}, px)
	if err := res.Err(); err != nil {
		return ErrCodeConfirmedFailed
	}
	ok, _ := res.Int()
	if ok != 1 {
		return ErrCodeConfirmedFailed
	}
	return nil
}

// DeletePending 删除 pending 键（幂等）
func (e *EmailRepository) DeletePending(scope, email string) error {
	if err := Client.Del(context.Background(), e.pendingKey(scope, email)).Err(); err != nil {
		return ErrEmailCodeDelFailed
	}
	return nil
}

// GetConfirmed 校验时取 confirmed 验证码
func (e *EmailRepository) GetConfirmed(scope, email string) (string, error) {
	val, err := Client.Get(context.Background(), e.confirmedKey(scope, email)).Result()
	if err != nil {
		return "", ErrEmailNotFound
	}
	return val, nil
}

// DeleteConfirmed 校验通过后一次性删除
func (e *EmailRepository) DeleteConfirmed(scope, email string) error {
	if err := Client.Del(context.Background(), e.confirmedKey(scope, email)).Err(); err != nil {
		return ErrEmailCodeDelFailed
	}
	return nil
}

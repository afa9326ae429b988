package service

import (
	"context"
	"log"
	"strings"
	"time"

	"mindwell/internal/pkg"
)

// chatbotSystemPrompt 支持型机器人的基础指令
const chatbotSystemPrompt = "You are a warm, supportive companion in a mental-wellness app. " +
	"Listen, validate feelings, and suggest gentle next steps. " +
	"You are not a therapist: for anything that sounds like a crisis, encourage the user to contact local emergency services or a crisis hotline."

// TextGenerator 文本生成后端，生产实现是 pkg.GeminiClient
type TextGenerator interface {
	Generate(ctx context.Context, system string, history []string, userMsg string) (string, error)
}

// ChatHistory 每用户的对话上下文存储
type ChatHistory interface {
	Append(ctx context.Context, userID uint64, userMsg, botMsg string) error
	List(ctx context.Context, userID uint64) ([]string, error)
	Clear(ctx context.Context, userID uint64) error
}

// ChatbotService 支持型聊天机器人。限流/过载时按固定退避重试：
// 第 n 次失败后等 (n+1)*backoffUnit，最多 maxAttempts 次。
// 其他错误不重试，生成回复是幂等的所以重试安全。
type ChatbotService struct {
	gen         TextGenerator
	history     ChatHistory
	maxAttempts int
	backoffUnit time.Duration
}

func NewChatbotService(gen TextGenerator, history ChatHistory) *ChatbotService {
	return &ChatbotService{
		gen:         gen,
		history:     history,
		maxAttempts: 3,
		backoffUnit: 2 * time.Second,
	}
}

// Reply 生成一条回复并把这轮对话写入上下文
func (s *ChatbotService) Reply(ctx context.Context, userID uint64, message string) (string, error) {
	if userID == 0 {
		return "", pkg.ErrUnauthenticated
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return "", pkg.Validationf("message required")
	}

	hist, err := s.history.List(ctx, userID)
	if err != nil {
		// 上下文拿不到就裸问，不阻塞用户
		log.Printf("chat history read failed: user=%d err=%v", userID, err)
		hist = nil
	}

	var lastErr error
	for attempt := 0; attempt < s.maxAttempts; attempt++ {
		reply, err := s.gen.Generate(ctx, chatbotSystemPrompt, hist, message)
		if err == nil {
			if err := s.history.Append(ctx, userID, message, reply); err != nil {
				log.Printf("chat history append failed: user=%d err=%v", userID, err)
			}
			return reply, nil
		}
		if !pkg.Is(err, pkg.ErrGenRateLimited) && !pkg.Is(err, pkg.ErrGenOverloaded) {
			return "", err
		}
		lastErr = err
		if attempt == s.maxAttempts-1 {
			break
		}
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case <-time.After(time.Duration(attempt+1) * s.backoffUnit):
		}
	}
	return "", lastErr
}

// Reset 清空对话上下文
func (s *ChatbotService) Reset(ctx context.Context, userID uint64) error {
	if userID == 0 {
		return pkg.ErrUnauthenticated
	}
	return s.history.Clear(ctx, userID)
}

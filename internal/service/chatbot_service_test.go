package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"mindwell/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeGenerator 按脚本返回，记录每次调用
type fakeGenerator struct {
	replies []string
	errs    []error
	calls   int
	history [][]string
}

func (g *fakeGenerator) Generate(ctx context.Context, system string, history []string, userMsg string) (string, error) {
	i := g.calls
	g.calls++
	g.history = append(g.history, history)
	if i < len(g.errs) && g.errs[i] != nil {
		return "", g.errs[i]
	}
	if i < len(g.replies) {
		return g.replies[i], nil
	}
	return "ok", nil
}

// memHistory 进程内的对话上下文，替代 redis
type memHistory struct {
	entries map[uint64][]string
}

func newMemHistory() *memHistory {
	return &memHistory{entries: map[uint64][]string{}}
}

func (h *memHistory) Append(ctx context.Context, userID uint64, userMsg, botMsg string) error {
	h.entries[userID] = append(h.entries[userID], userMsg, botMsg)
	return nil
}

func (h *memHistory) List(ctx context.Context, userID uint64) ([]string, error) {
	return h.entries[userID], nil
}

func (h *memHistory) Clear(ctx context.Context, userID uint64) error {
	delete(h.entries, userID)
	return nil
}

func newTestChatbot(gen *fakeGenerator, hist ChatHistory) *ChatbotService {
	svc := NewChatbotService(gen, hist)
	svc.backoffUnit = time.Millisecond
	return svc
}

func TestChatbotReply(t *testing.T) {
	gen := &fakeGenerator{replies: []string{"that sounds hard, want to talk more?"}}
	hist := newMemHistory()
	svc := newTestChatbot(gen, hist)

	reply, err := svc.Reply(context.Background(), 1, "I had a rough day")
	require.NoError(t, err)
	assert.Equal(t, "that sounds hard, want to talk more?", reply)
	assert.Equal(t, 1, gen.calls)

	// 这轮对话进了上下文
	assert.Equal(t, []string{"I had a rough day", "that sounds hard, want to talk more?"}, hist.entries[1])

	// 第二轮带上历史
	_, err = svc.Reply(context.Background(), 1, "thanks")
	require.NoError(t, err)
	assert.Equal(t, []string{"I had a rough day", "that sounds hard, want to talk more?"}, gen.history[1])
}

func TestChatbotReplyValidation(t *testing.T) {
	svc := newTestChatbot(&fakeGenerator{}, newMemHistory())

	_, err := svc.Reply(context.Background(), 0, "hello")
	assert.ErrorIs(t, err, pkg.ErrUnauthenticated)

	_, err = svc.Reply(context.Background(), 1, "   ")
	assert.Equal(t, pkg.CodeValidation, pkg.GetCode(err))
}

func TestChatbotRetriesOnRateLimit(t *testing.T) {
	gen := &fakeGenerator{
		errs:    []error{pkg.ErrGenRateLimited, pkg.ErrGenOverloaded, nil},
		replies: []string{"", "", "here now"},
	}
	svc := newTestChatbot(gen, newMemHistory())

	reply, err := svc.Reply(context.Background(), 1, "hi")
	require.NoError(t, err)
	assert.Equal(t, "here now", reply)
	assert.Equal(t, 3, gen.calls)
}

func TestChatbotGivesUpAfterMaxAttempts(t *testing.T) {
	gen := &fakeGenerator{
		errs: []error{pkg.ErrGenRateLimited, pkg.ErrGenRateLimited, pkg.ErrGenRateLimited, pkg.ErrGenRateLimited},
	}
	svc := newTestChatbot(gen, newMemHistory())

	_, err := svc.Reply(context.Background(), 1, "hi")
	assert.ErrorIs(t, err, pkg.ErrGenRateLimited)
	assert.Equal(t, 3, gen.calls)
}

func TestChatbotNoRetryOnOtherErrors(t *testing.T) {
	boom := errors.New("bad request")
	gen := &fakeGenerator{errs: []error{boom}}
	svc := newTestChatbot(gen, newMemHistory())

	_, err := svc.Reply(context.Background(), 1, "hi")
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, gen.calls)
}

func TestChatbotContextCancelDuringBackoff(t *testing.T) {
	gen := &fakeGenerator{
		errs: []error{pkg.ErrGenRateLimited, pkg.ErrGenRateLimited, pkg.ErrGenRateLimited},
	}
	svc := newTestChatbot(gen, newMemHistory())
	svc.backoffUnit = time.Second

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	_, err := svc.Reply(ctx, 1, "hi")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, gen.calls)
}

func TestChatbotReset(t *testing.T) {
	hist := newMemHistory()
	hist.entries[1] = []string{"a", "b"}
	svc := newTestChatbot(&fakeGenerator{}, hist)

	require.NoError(t, svc.Reset(context.Background(), 1))
	assert.Empty(t, hist.entries[1])

	assert.ErrorIs(t, svc.Reset(context.Background(), 0), pkg.ErrUnauthenticated)
}

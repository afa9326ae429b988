package service

import (
	"context"
	"testing"

	"mindwell/internal/model"
	"mindwell/internal/pkg"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogMood(t *testing.T) {
	db := newTestDB(t)
	svc := NewMoodService(db)
	ctx := context.Background()

	entry, err := svc.LogMood(ctx, 1, 4, "walked by the river")
	require.NoError(t, err)
	assert.NotZero(t, entry.ID)

	_, err = svc.LogMood(ctx, 1, 0, "")
	assert.Equal(t, pkg.CodeValidation, pkg.GetCode(err))
	_, err = svc.LogMood(ctx, 1, 6, "")
	assert.Equal(t, pkg.CodeValidation, pkg.GetCode(err))
	_, err = svc.LogMood(ctx, 0, 3, "")
	assert.ErrorIs(t, err, pkg.ErrUnauthenticated)
}

func TestMoodRecentAndSummary(t *testing.T) {
	db := newTestDB(t)
	svc := NewMoodService(db)
	ctx := context.Background()

	for _, score := range []int{2, 3, 4} {
		_, err := svc.LogMood(ctx, 1, score, "")
		require.NoError(t, err)
	}
	// 别人的记录不掺进来
	_, err := svc.LogMood(ctx, 2, 5, "")
	require.NoError(t, err)

	list, err := svc.RecentEntries(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, list, 3)

	avg, hasData, err := svc.WeeklySummary(ctx, 1)
	require.NoError(t, err)
	assert.True(t, hasData)
	assert.InDelta(t, 3.0, avg, 0.001)

	_, hasData, err = svc.WeeklySummary(ctx, 9)
	require.NoError(t, err)
	assert.False(t, hasData)
}

func TestSubmitOnboarding(t *testing.T) {
	db := newTestDB(t)
	svc := NewMoodService(db)
	ctx := context.Background()

	user := &model.User{Username: "sam", Password: "x", Email: "sam@example.com"}
	require.NoError(t, db.Create(user).Error)

	err := svc.SubmitOnboarding(ctx, user.ID, nil)
	assert.Equal(t, pkg.CodeValidation, pkg.GetCode(err))

	err = svc.SubmitOnboarding(ctx, user.ID, []QuestionAnswer{{Question: "", Answer: "x"}})
	assert.Equal(t, pkg.CodeValidation, pkg.GetCode(err))

	require.NoError(t, svc.SubmitOnboarding(ctx, user.ID, []QuestionAnswer{
		{Question: "What brings you here?", Answer: "sleep"},
		{Question: "How often do you feel stressed?", Answer: "often"},
	}))

	var u model.User
	require.NoError(t, db.First(&u, user.ID).Error)
	assert.True(t, u.OnboardingDone)

	// 重新提交覆盖旧答案
	require.NoError(t, svc.SubmitOnboarding(ctx, user.ID, []QuestionAnswer{
		{Question: "What brings you here?", Answer: "anxiety"},
	}))
	list, err := svc.OnboardingAnswers(ctx, user.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "anxiety", list[0].Answer)
}

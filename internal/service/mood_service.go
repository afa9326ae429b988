package service

import (
	"context"
	"time"

	"mindwell/internal/model"
	"mindwell/internal/pkg"
	"mindwell/internal/repository/mysql"

	"gorm.io/gorm"
)

type MoodService struct {
	repo           *mysql.MoodRepository
	onboardingRepo *mysql.OnboardingRepository
}

func NewMoodService(db *gorm.DB) *MoodService {
	return &MoodService{
		repo:           &mysql.MoodRepository{DB: db},
		onboardingRepo: &mysql.OnboardingRepository{DB: db},
	}
}

// LogMood 记录一次心情打卡，score 取 1-5
func (s *MoodService) LogMood(ctx context.Context, userID uint64, score int, note string) (*model.MoodEntry, error) {
	if userID == 0 {
		return nil, pkg.ErrUnauthenticated
	}
	if score < 1 || score > 5 {
		return nil, pkg.Validationf("score must be between 1 and 5")
	}
	entry := &model.MoodEntry{UserID: userID, Score: score, Note: note}
	if err := s.repo.Create(ctx, entry); err != nil {
		return nil, pkg.ErrStore.Wrap(err)
	}
	return entry, nil
}

func (s *MoodService) RecentEntries(ctx context.Context, userID uint64, limit int) ([]model.MoodEntry, error) {
	list, err := s.repo.ListRecent(ctx, userID, limit)
	if err != nil {
		return nil, pkg.ErrStore.Wrap(err)
	}
	return list, nil
}

// WeeklySummary 最近 7 天的平均分，没有记录时 hasData=false
func (s *MoodService) WeeklySummary(ctx context.Context, userID uint64) (avg float64, hasData bool, err error) {
	since := time.Now().AddDate(0, 0, -7)
	avg, hasData, err = s.repo.AverageSince(ctx, userID, since)
	if err != nil {
		return 0, false, pkg.ErrStore.Wrap(err)
	}
	return avg, hasData, nil
}

// QuestionAnswer 问卷提交项
type QuestionAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// SubmitOnboarding 整卷提交问卷并标记用户已完成引导
func (s *MoodService) SubmitOnboarding(ctx context.Context, userID uint64, answers []QuestionAnswer) error {
	if userID == 0 {
		return pkg.ErrUnauthenticated
	}
	if len(answers) == 0 {
		return pkg.Validationf("at least one answer required")
	}
	rows := make([]model.OnboardingAnswer, 0, len(answers))
	for _, a := range answers {
		if a.Question == "" {
			return pkg.Validationf("question text required")
		}
		rows = append(rows, model.OnboardingAnswer{
			UserID:   userID,
			Question: a.Question,
			Answer:   a.Answer,
		})
	}
	if err := s.onboardingRepo.SaveAnswers(ctx, userID, rows); err != nil {
		return pkg.ErrStore.Wrap(err)
	}
	return nil
}

func (s *MoodService) OnboardingAnswers(ctx context.Context, userID uint64) ([]model.OnboardingAnswer, error) {
	list, err := s.onboardingRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkg.ErrStore.Wrap(err)
	}
	return list, nil
}

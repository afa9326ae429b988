package handler

import (
	"net/http"
	"strconv"

	"mindwell/internal/service"

	"github.com/gin-gonic/gin"
)

type MoodHandler struct {
	svc *service.MoodService
}

type MoodLogReq struct {
	Score int    `json:"score" binding:"required"`
	Note  string `json:"note"`
}

type OnboardingReq struct {
	Answers []service.QuestionAnswer `json:"answers" binding:"required"`
}

func NewMoodHandler(svc *service.MoodService) *MoodHandler {
	return &MoodHandler{svc: svc}
}

func (h *MoodHandler) Log(c *gin.Context) {
	var req MoodLogReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	entry, err := h.svc.LogMood(c.Request.Context(), currentUser(c), req.Score, req.Note)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": entry.ID, "score": entry.Score, "created_at": entry.CreatedAt})
}

func (h *MoodHandler) Recent(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	list, err := h.svc.RecentEntries(c.Request.Context(), currentUser(c), limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

// Summary 最近 7 天平均心情分
func (h *MoodHandler) Summary(c *gin.Context) {
	avg, hasData, err := h.svc.WeeklySummary(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"average": avg, "has_data": hasData})
}

func (h *MoodHandler) SubmitOnboarding(c *gin.Context) {
	var req OnboardingReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	if err := h.svc.SubmitOnboarding(c.Request.Context(), currentUser(c), req.Answers); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *MoodHandler) OnboardingAnswers(c *gin.Context) {
	list, err := h.svc.OnboardingAnswers(c.Request.Context(), currentUser(c))
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

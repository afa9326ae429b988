package handler

import (
	"net/http"

	"mindwell/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatbotHandler struct {
	svc *service.ChatbotService
}

type ChatbotMessageReq struct {
	Message string `json:"message" binding:"required"`
}

func NewChatbotHandler(svc *service.ChatbotService) *ChatbotHandler {
	return &ChatbotHandler{svc: svc}
}

func (h *ChatbotHandler) Message(c *gin.Context) {
	var req ChatbotMessageReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	reply, err := h.svc.Reply(c.Request.Context(), currentUser(c), req.Message)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"reply": reply})
}

func (h *ChatbotHandler) Reset(c *gin.Context) {
	if err := h.svc.Reset(c.Request.Context(), currentUser(c)); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

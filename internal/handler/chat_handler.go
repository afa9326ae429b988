package handler

import (
	"net/http"
	"strconv"

	"mindwell/internal/service"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	svc *service.ChatService
}

type ChatSendReq struct {
	Content string `json:"content" binding:"required"`
}

func NewChatHandler(svc *service.ChatService) *ChatHandler {
	return &ChatHandler{svc: svc}
}

func (h *ChatHandler) Send(c *gin.Context) {
	userID := currentUser(c)
	communityID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var req ChatSendReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	msg, err := h.svc.SendMessage(c.Request.Context(), communityID, userID, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": msg.ID, "created_at": msg.CreatedAt})
}

func (h *ChatHandler) List(c *gin.Context) {
	userID := currentUser(c)
	communityID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	cursor, _ := strconv.ParseUint(c.Query("cursor"), 10, 64)
	limit, _ := strconv.Atoi(c.Query("limit"))

	list, next, err := h.svc.ListMessages(c.Request.Context(), communityID, userID, cursor, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list, "next": next})
}

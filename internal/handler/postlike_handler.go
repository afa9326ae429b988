package handler

import (
	"net/http"
	"strconv"

	"mindwell/internal/service"

	"github.com/gin-gonic/gin"
)

type PostLikeHandler struct {
	svc *service.PostLikeService
}

func NewPostLikeHandler(svc *service.PostLikeService) *PostLikeHandler {
	return &PostLikeHandler{svc: svc}
}

func (h *PostLikeHandler) Like(c *gin.Context) {
	userID := currentUser(c)
	postID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	changed, err := h.svc.Like(c.Request.Context(), userID, postID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

func (h *PostLikeHandler) Unlike(c *gin.Context) {
	userID := currentUser(c)
	postID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	changed, err := h.svc.Unlike(c.Request.Context(), userID, postID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"changed": changed})
}

// Status 点赞状态 + 计数
func (h *PostLikeHandler) Status(c *gin.Context) {
	userID := currentUser(c)
	postID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	liked, err := h.svc.IsLiked(c.Request.Context(), userID, postID)
	if err != nil {
		fail(c, err)
		return
	}
	count, err := h.svc.GetLikeCount(c.Request.Context(), postID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"liked": liked, "count": count})
}

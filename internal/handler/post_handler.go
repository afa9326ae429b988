package handler

import (
	"net/http"
	"strconv"

	"mindwell/internal/service"

	"github.com/gin-gonic/gin"
)

type PostHandler struct {
	svc *service.PostService
}

type PostCreateReq struct {
	CommunityID uint64 `json:"community_id" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Content     string `json:"content"`
}

func NewPostHandler(svc *service.PostService) *PostHandler {
	return &PostHandler{svc: svc}
}

func (h *PostHandler) CreatePost(c *gin.Context) {
	userID := currentUser(c)

	var req PostCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	post, err := h.svc.CreatePost(userID, req.CommunityID, req.Title, req.Content)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": post.ID, "title": post.Title})
}

// ListByCommunity 页码分页；传 last_id/last_ts 时切换到游标分页
func (h *PostHandler) ListByCommunity(c *gin.Context) {
	communityID, _ := strconv.ParseUint(c.Param("id"), 10, 64)
	size, _ := strconv.Atoi(c.Query("size"))

	if c.Query("last_ts") != "" || c.Query("last_id") != "" {
		lastID, _ := strconv.ParseUint(c.Query("last_id"), 10, 64)
		lastTS, _ := strconv.ParseInt(c.Query("last_ts"), 10, 64)
		list, nextID, nextTS, err := h.svc.ListByCommunityCursor(communityID, lastID, lastTS, size)
		if err != nil {
			fail(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"list": list, "next_id": nextID, "next_ts": nextTS})
		return
	}

	page, _ := strconv.Atoi(c.Query("page"))
	list, err := h.svc.ListByCommunity(communityID, page, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *PostHandler) DeletePost(c *gin.Context) {
	userID := currentUser(c)
	postID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	if err := h.svc.DeletePost(userID, postID); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

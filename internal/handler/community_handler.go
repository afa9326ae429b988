package handler

import (
	"net/http"
	"strconv"
	"strings"

	"mindwell/internal/service"

	"github.com/gin-gonic/gin"
)

type CommunityHandler struct {
	svc      *service.MembershipService
	countSvc *service.MemberCountService
}

type CommunityCreateReq struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	Rules       []string `json:"rules"`
	IsPublic    *bool    `json:"is_public"`
}

type ChangeRoleReq struct {
	MembershipID uint64 `json:"membership_id" binding:"required"`
	Role         string `json:"role" binding:"required,oneof=member admin"`
}

type RemoveMemberReq struct {
	MembershipID uint64 `json:"membership_id" binding:"required"`
}

func NewCommunityHandler(svc *service.MembershipService, countSvc *service.MemberCountService) *CommunityHandler {
	return &CommunityHandler{svc: svc, countSvc: countSvc}
}

func (h *CommunityHandler) Create(c *gin.Context) {
	userID := currentUser(c)

	var req CommunityCreateReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}
	community, err := h.svc.CreateCommunity(c.Request.Context(), userID, service.CommunityInput{
		Name:        req.Name,
		Description: req.Description,
		Tags:        req.Tags,
		Rules:       req.Rules,
		IsPublic:    isPublic,
	})
	if err != nil {
		fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":          community.ID,
		"name":        community.Name,
		"description": community.Description,
		"tags":        strings.Split(community.Tags, ","),
	})
}

func (h *CommunityHandler) Join(c *gin.Context) {
	userID := currentUser(c)
	communityID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	if err := h.svc.JoinCommunity(c.Request.Context(), communityID, userID); err != nil {
		fail(c, err)
		return
	}
	h.countSvc.Invalidate(c.Request.Context(), communityID)
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) Leave(c *gin.Context) {
	userID := currentUser(c)
	communityID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	if err := h.svc.LeaveCommunity(c.Request.Context(), communityID, userID); err != nil {
		fail(c, err)
		return
	}
	h.countSvc.Invalidate(c.Request.Context(), communityID)
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) List(c *gin.Context) {
	page, _ := strconv.Atoi(c.Query("page"))
	size, _ := strconv.Atoi(c.Query("size"))

	list, err := h.svc.ListCommunities(c.Request.Context(), page, size)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": list})
}

func (h *CommunityHandler) Detail(c *gin.Context) {
	communityID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	community, err := h.svc.GetCommunity(c.Request.Context(), communityID)
	if err != nil {
		fail(c, err)
		return
	}
	// 展示计数走缓存，权威计数由成员接口按需提供
	count, err := h.countSvc.DisplayCount(c.Request.Context(), communityID)
	if err != nil {
		count = community.MemberCount
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           community.ID,
		"name":         community.Name,
		"description":  community.Description,
		"tags":         strings.Split(community.Tags, ","),
		"rules":        community.Rules,
		"is_public":    community.IsPublic,
		"member_count": count,
		"created_at":   community.CreatedAt,
	})
}

func (h *CommunityHandler) Members(c *gin.Context) {
	communityID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	members, err := h.svc.ListMembers(c.Request.Context(), communityID)
	if err != nil {
		fail(c, err)
		return
	}
	count, err := h.svc.ActiveMemberCount(c.Request.Context(), communityID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"list": members, "count": count})
}

func (h *CommunityHandler) Delete(c *gin.Context) {
	userID := currentUser(c)
	communityID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	if err := h.svc.DeleteCommunity(c.Request.Context(), communityID, userID); err != nil {
		fail(c, err)
		return
	}
	h.countSvc.Invalidate(c.Request.Context(), communityID)
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) ChangeRole(c *gin.Context) {
	userID := currentUser(c)
	communityID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var req ChangeRoleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	role := 0
	if req.Role == "admin" {
		role = 1
	}
	if err := h.svc.ChangeMemberRole(c.Request.Context(), communityID, userID, req.MembershipID, role); err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

func (h *CommunityHandler) RemoveMember(c *gin.Context) {
	userID := currentUser(c)
	communityID, _ := strconv.ParseUint(c.Param("id"), 10, 64)

	var req RemoveMemberReq
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"msg": "invalid params"})
		return
	}
	if err := h.svc.RemoveMember(c.Request.Context(), communityID, userID, req.MembershipID); err != nil {
		fail(c, err)
		return
	}
	h.countSvc.Invalidate(c.Request.Context(), communityID)
	c.JSON(http.StatusOK, gin.H{"msg": "ok"})
}

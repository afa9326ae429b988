package handler

import (
	"net/http"

	"mindwell/internal/middleware"
	"mindwell/internal/pkg"

	"github.com/gin-gonic/gin"
)

// currentUser 从 gin 上下文取登录用户 id，auth 中间件负责注入
func currentUser(c *gin.Context) uint64 {
	v, ok := c.Get(middleware.ContextUserIDKey)
	if !ok {
		return 0
	}
	id, _ := v.(uint64)
	return id
}

// fail 按错误码映射 HTTP 状态
func fail(c *gin.Context, err error) {
	code := pkg.GetCode(err)
	status := http.StatusInternalServerError
	switch code {
	case pkg.CodeValidation:
		status = http.StatusBadRequest
	case pkg.CodeUnauthenticated:
		status = http.StatusUnauthorized
	case pkg.CodeNotAdmin, pkg.CodeNotMember:
		status = http.StatusForbidden
	case pkg.CodeNotFound:
		status = http.StatusNotFound
	case pkg.CodeLastAdmin, pkg.CodeAlreadyJoined:
		status = http.StatusConflict
	case pkg.CodeGenRateLimited, pkg.CodeGenOverloaded:
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, gin.H{"code": code, "msg": pkg.GetMessage(err)})
}

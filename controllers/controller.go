package controllers

import (
	"WellnessGo/config"
	"WellnessGo/models"
	"net/http"

	"github.com/gin-gonic/gin"
)

// respondError 按错误分类映射HTTP状态码
// 不变量错误属于程序bug，记Error日志并返回500
func respondError(c *gin.Context, err error) {
	switch models.KindOf(err) {
	case models.KindValidation:
		c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
	case models.KindNotFound:
		c.JSON(http.StatusNotFound, models.Fail(err.Error()))
	case models.KindConflict:
		c.JSON(http.StatusConflict, models.Fail(err.Error()))
	case models.KindUnavailable:
		c.JSON(http.StatusConflict, models.Fail(err.Error()))
	case models.KindInvariant:
		config.Logger.Errorw("不变量被破坏", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, models.Fail("服务器内部错误"))
	default:
		config.Logger.Errorw("请求处理失败", "path", c.Request.URL.Path, "error", err)
		c.JSON(http.StatusInternalServerError, models.Fail("服务器内部错误"))
	}
}

// currentUserID 从认证中间件取用户ID
func currentUserID(c *gin.Context) (string, bool) {
	uid, exists := c.Get("uid")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.Fail("未获取到用户ID"))
		return "", false
	}
	id, ok := uid.(string)
	if !ok {
		c.JSON(http.StatusInternalServerError, models.Fail("用户ID格式错误"))
		return "", false
	}
	return id, true
}

package controllers

import (
	"WellnessGo/config"
	"WellnessGo/models"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type NotificationController struct{}

// List 站内通知列表，过期的不返回
func (nc *NotificationController) List(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit < 1 || limit > 100 {
		limit = 20
	}

	now := time.Now().UTC()
	var notifications []models.Notification
	query := config.DB.Where("user_id = ?", uid).
		Where("expires_at IS NULL OR expires_at > ?", now)
	if c.Query("unread") == "true" {
		query = query.Where("`read` = ?", false)
	}
	if err := query.Order("created_at DESC").Limit(limit).
		Find(&notifications).Error; err != nil {
		config.Logger.Errorw("查询通知失败", "error", err, "uid", uid)
		c.JSON(http.StatusInternalServerError, models.Fail("查询通知失败"))
		return
	}

	c.JSON(http.StatusOK, models.OK("查询成功", notifications))
}

// MarkRead 标记单条已读
func (nc *NotificationController) MarkRead(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	result := config.DB.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", c.Param("id"), uid).
		Update("read", true)
	if result.Error != nil {
		config.Logger.Errorw("标记已读失败", "error", result.Error, "uid", uid)
		c.JSON(http.StatusInternalServerError, models.Fail("标记已读失败"))
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, models.Fail("通知不存在"))
		return
	}

	c.JSON(http.StatusOK, models.OK("已标记为已读", nil))
}

// MarkAllRead 全部已读
func (nc *NotificationController) MarkAllRead(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := config.DB.Model(&models.Notification{}).
		Where("user_id = ? AND `read` = ?", uid, false).
		Update("read", true).Error; err != nil {
		config.Logger.Errorw("全部已读失败", "error", err, "uid", uid)
		c.JSON(http.StatusInternalServerError, models.Fail("操作失败"))
		return
	}

	c.JSON(http.StatusOK, models.OK("已全部标记为已读", nil))
}

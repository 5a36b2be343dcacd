package controllers

import (
	"WellnessGo/config"
	"WellnessGo/models"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type UserController struct{}

// GetProfile 个人资料和wellness快照
func (uc *UserController) GetProfile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var user models.User
	if err := config.DB.Where("id = ?", uid).First(&user).Error; err != nil {
		config.Logger.Errorw("查询用户失败", "error", err, "uid", uid)
		c.JSON(http.StatusNotFound, models.Fail("用户未找到"))
		return
	}

	c.JSON(http.StatusOK, models.OK("查询成功", gin.H{
		"user":     user,
		"wellness": user.WellnessSnapshot(),
	}))
}

// UpdatePreferences 更新通知偏好
func (uc *UserController) UpdatePreferences(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.PreferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("无效的请求: "+err.Error()))
		return
	}

	updates := map[string]interface{}{}
	if req.CheckInReminder != nil {
		updates["check_in_reminder"] = *req.CheckInReminder
	}
	if req.RewardUpdates != nil {
		updates["reward_updates"] = *req.RewardUpdates
	}
	if req.SurveyReminder != nil {
		updates["survey_reminder"] = *req.SurveyReminder
	}
	if req.EmailChannel != nil {
		updates["email_channel"] = *req.EmailChannel
	}
	if req.SlackChannel != nil {
		updates["slack_channel"] = *req.SlackChannel
	}
	if len(updates) == 0 {
		c.JSON(http.StatusBadRequest, models.Fail("没有需要更新的字段"))
		return
	}

	if err := config.DB.Model(&models.User{}).Where("id = ?", uid).
		Updates(updates).Error; err != nil {
		config.Logger.Errorw("更新偏好失败", "error", err, "uid", uid)
		c.JSON(http.StatusInternalServerError, models.Fail("更新失败"))
		return
	}

	c.JSON(http.StatusOK, models.OK("偏好已更新", nil))
}

// CompanyMoodStats 公司级逐日心情统计（内部接口，HR分析用）
func (uc *UserController) CompanyMoodStats(c *gin.Context) {
	days, _ := strconv.Atoi(c.DefaultQuery("days", "30"))
	if days < 1 || days > 365 {
		days = 30
	}
	since := time.Now().UTC().AddDate(0, 0, -(days - 1))

	var stats []models.CompanyMoodStat
	if err := config.DB.Model(&models.CheckIn{}).
		Select("day_bucket AS day, AVG(mood) AS average_mood, COUNT(*) AS check_in_count").
		Where("day_bucket >= ?", since).
		Group("day_bucket").
		Order("day_bucket ASC").
		Scan(&stats).Error; err != nil {
		config.Logger.Errorw("公司心情统计失败", "error", err)
		c.JSON(http.StatusInternalServerError, models.Fail("统计失败"))
		return
	}

	c.JSON(http.StatusOK, models.OK("查询成功", stats))
}

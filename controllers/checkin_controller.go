package controllers

import (
	"WellnessGo/models"
	"WellnessGo/services"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

type CheckInController struct {
	checkins *services.CheckInService
}

func NewCheckInController(checkins *services.CheckInService) *CheckInController {
	return &CheckInController{checkins: checkins}
}

// Submit 提交今日打卡
func (cc *CheckInController) Submit(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.CheckInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("无效的请求: "+err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
		return
	}

	result, err := cc.checkins.SubmitCheckIn(uid, &req)
	if err != nil {
		// 冲突时带回已存在的记录
		if models.KindOf(err) == models.KindConflict && result != nil {
			c.JSON(http.StatusConflict, models.APIResponse{
				Success: false,
				Message: err.Error(),
				Data:    result,
			})
			return
		}
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.OK("打卡成功", result))
}

// Today 今日打卡记录
func (cc *CheckInController) Today(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	checkin, err := cc.checkins.FindToday(uid)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK("查询成功", gin.H{"checkIn": checkin}))
}

// List 打卡历史，支持日期区间与分页
func (cc *CheckInController) List(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var startDate, endDate *time.Time
	if s := c.Query("startDate"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.Fail("startDate格式错误，应为YYYY-MM-DD"))
			return
		}
		startDate = &t
	}
	if s := c.Query("endDate"); s != "" {
		t, err := time.Parse("2006-01-02", s)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.Fail("endDate格式错误，应为YYYY-MM-DD"))
			return
		}
		endDate = &t
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	result, err := cc.checkins.List(uid, startDate, endDate, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK("查询成功", result))
}

// Trend 心情趋势
func (cc *CheckInController) Trend(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	days, _ := strconv.Atoi(c.DefaultQuery("days", "7"))
	result, err := cc.checkins.MoodTrend(uid, days)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK("查询成功", result))
}

// UpdateFeedback 编辑当日打卡反馈
func (cc *CheckInController) UpdateFeedback(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.UpdateFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("无效的请求: "+err.Error()))
		return
	}

	checkin, err := cc.checkins.UpdateFeedback(uid, c.Param("id"), req.Feedback)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK("反馈已更新", checkin))
}

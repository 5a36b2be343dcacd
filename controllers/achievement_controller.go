package controllers

import (
	"WellnessGo/models"
	"WellnessGo/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type AchievementController struct {
	achievements *services.AchievementService
}

func NewAchievementController(achievements *services.AchievementService) *AchievementController {
	return &AchievementController{achievements: achievements}
}

// Catalog 成就目录
func (ac *AchievementController) Catalog(c *gin.Context) {
	items, err := ac.achievements.ListCatalog()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("查询成功", items))
}

// Earned 我获得的成就
func (ac *AchievementController) Earned(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	earned, err := ac.achievements.ListEarned(uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("查询成功", earned))
}

// Upsert 成就目录管理（内部接口）
func (ac *AchievementController) Upsert(c *gin.Context) {
	var req models.AchievementUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("无效的请求: "+err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
		return
	}

	ach, err := ac.achievements.UpsertAchievement(c.Query("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("成就已保存", ach))
}

package controllers

import (
	"WellnessGo/models"
	"WellnessGo/services"
	"net/http"

	"github.com/gin-gonic/gin"
)

type RewardController struct {
	rewards *services.RewardService
}

func NewRewardController(rewards *services.RewardService) *RewardController {
	return &RewardController{rewards: rewards}
}

// List 奖励目录
func (rc *RewardController) List(c *gin.Context) {
	rewards, err := rc.rewards.ListRewards(c.Query("all") != "true")
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("查询成功", rewards))
}

// Redeem 兑换奖励
func (rc *RewardController) Redeem(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	redemption, err := rc.rewards.Redeem(uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.OK("兑换成功", redemption))
}

// ListRedemptions 兑换历史
func (rc *RewardController) ListRedemptions(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	redemptions, err := rc.rewards.ListRedemptions(uid)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("查询成功", redemptions))
}

// Cancel 取消兑换并退款
func (rc *RewardController) Cancel(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	redemption, err := rc.rewards.Cancel(uid, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("已取消，快乐币已退回", redemption))
}

// UpsertReward 奖励目录管理（内部接口）
func (rc *RewardController) UpsertReward(c *gin.Context) {
	var req models.RewardUpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("无效的请求: "+err.Error()))
		return
	}

	reward, err := rc.rewards.UpsertReward(c.Query("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("奖励已保存", reward))
}

// Approve 审核通过（内部接口）
func (rc *RewardController) Approve(c *gin.Context) {
	redemption, err := rc.rewards.Approve(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("已审核", redemption))
}

// Fulfill 发放完成（内部接口）
func (rc *RewardController) Fulfill(c *gin.Context) {
	redemption, err := rc.rewards.Fulfill(c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("已发放", redemption))
}

package routes

import (
	"WellnessGo/config"
	"WellnessGo/controllers"
	"WellnessGo/middleware"
	"WellnessGo/services"

	"github.com/gin-gonic/gin"
)

// Deps 路由需要的服务集合，由main组装后传入
type Deps struct {
	Conf         config.Config
	CheckIns     *services.CheckInService
	Rewards      *services.RewardService
	Recognitions *services.RecognitionService
	Journals     *services.JournalService
	Achievements *services.AchievementService
}

// RegisterRoutes 注册全部路由
func RegisterRoutes(r *gin.Engine, deps Deps) {
	authController := controllers.AuthController{RequireEmailVerification: deps.Conf.RequireEmailVerification}
	checkinController := controllers.NewCheckInController(deps.CheckIns)
	rewardController := controllers.NewRewardController(deps.Rewards)
	recognitionController := controllers.NewRecognitionController(deps.Recognitions)
	journalController := controllers.NewJournalController(deps.Journals)
	achievementController := controllers.NewAchievementController(deps.Achievements)
	notificationController := controllers.NotificationController{}
	userController := controllers.UserController{}

	// 公开路由（无需认证）
	public := r.Group("/api/v1")
	{
		public.POST("/auth/register", authController.Register)
		public.POST("/auth/login", authController.Login)
	}

	// 需要认证的路由
	private := r.Group("/api/v1")
	private.Use(middleware.AuthMiddleware())
	{
		// 打卡
		private.POST("/checkins", checkinController.Submit)
		private.GET("/checkins/today", checkinController.Today)
		private.GET("/checkins", checkinController.List)
		private.GET("/checkins/trend", checkinController.Trend)
		private.PATCH("/checkins/:id", checkinController.UpdateFeedback)

		// 奖励与兑换
		private.GET("/rewards", rewardController.List)
		private.POST("/rewards/:id/redeem", rewardController.Redeem)
		private.GET("/redemptions", rewardController.ListRedemptions)
		private.POST("/redemptions/:id/cancel", rewardController.Cancel)

		// 同事认可
		private.POST("/recognitions", recognitionController.Send)
		private.GET("/recognitions/received", recognitionController.ListReceived)
		private.GET("/recognitions/sent", recognitionController.ListSent)

		// 日记
		private.POST("/journals", journalController.Create)
		private.GET("/journals", journalController.List)
		private.PUT("/journals/:id", journalController.Update)
		private.DELETE("/journals/:id", journalController.Delete)

		// 成就
		private.GET("/achievements", achievementController.Catalog)
		private.GET("/achievements/earned", achievementController.Earned)

		// 通知
		private.GET("/notifications", notificationController.List)
		private.POST("/notifications/:id/read", notificationController.MarkRead)
		private.POST("/notifications/read-all", notificationController.MarkAllRead)

		// 个人资料与偏好
		private.GET("/user", userController.GetProfile)
		private.PUT("/user/preferences", userController.UpdatePreferences)
	}

	// HR分析面板，走JWT角色而不是内部令牌
	hr := r.Group("/api/v1/hr")
	hr.Use(middleware.AuthMiddleware(), middleware.RequireRole("hr", "admin"))
	{
		hr.GET("/analytics/mood", userController.CompanyMoodStats)
	}

	// 内部路由组（仅限服务器内部调用）
	internal := r.Group("/internal")
	internal.Use(middleware.InternalAuthMiddleware(deps.Conf.InternalAuthToken))
	{
		internal.POST("/rewards", rewardController.UpsertReward)
		internal.POST("/redemptions/:id/approve", rewardController.Approve)
		internal.POST("/redemptions/:id/fulfill", rewardController.Fulfill)
		internal.POST("/achievements", achievementController.Upsert)
		internal.GET("/analytics/mood", userController.CompanyMoodStats)
	}

	// 测试路由
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
}

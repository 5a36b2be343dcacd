package main

import (
	"WellnessGo/config"
	"WellnessGo/middleware"
	"WellnessGo/routes"
	"WellnessGo/services"
	"WellnessGo/utils"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
)

func main() {
	// 初始化日志
	if err := config.InitLogger(); err != nil {
		log.Fatalf("无法初始化日志: %v", err)
	}
	defer config.Logger.Sync()

	// 加载配置
	conf, err := config.LoadConfig(".")
	if err != nil {
		log.Fatalf("无法加载配置: %v", err)
		return
	}

	// 初始化数据库
	if err := config.InitDB(conf); err != nil {
		log.Fatalf("无法初始化数据库: %v", err)
		return
	}

	// 初始化Redis
	if err := config.InitRedis(conf); err != nil {
		log.Fatalf("无法初始化Redis: %v", err)
		return
	}

	// 初始化JWT密钥
	utils.InitJWT(conf.JWTSecret)

	// 组装核心服务
	clock := services.NewRealClock()
	agg := services.NewAggregateService(config.DB, clock)
	outbox := services.NewOutboxService(config.DB, clock,
		services.LogEmailSender{}, services.LogSlackSender{}, conf.SlackOutboxEnabled)

	// 风险分类器：开启AI增强时用LLM，否则用启发式
	var risk services.RiskClassifier = services.NewHeuristicClassifier()
	if conf.AIEnrichmentEnabled {
		llmClient, err := services.NewLLMClient(conf.LLMAPIKey, conf.LLMAPIEndpoint)
		if err != nil {
			log.Fatalf("无法初始化LLM客户端: %v", err)
		}
		risk = services.NewLLMClassifier(llmClient)
	}

	checkinService := services.NewCheckInService(config.DB, config.RedisClient, clock, agg, outbox, risk)
	rewardService := services.NewRewardService(config.DB, clock, agg, outbox)
	recognitionService := services.NewRecognitionService(config.DB, clock, agg, outbox)
	journalService := services.NewJournalService(config.DB, clock, agg)
	achievementService := services.NewAchievementService(config.DB, clock, agg, outbox)

	// 成就评估器挂到发件箱分发器上，通知落库后消费事件
	outbox.SetHandler(achievementService)
	outbox.Start()

	// 连续打卡扫描任务
	scanner := services.NewStreakScanner(config.DB, config.RedisClient, clock, agg, outbox)
	if err := scanner.Start(conf.StreakWarnCron, conf.StreakLostCron); err != nil {
		log.Fatalf("无法启动扫描任务: %v", err)
	}

	// 设置Gin模式
	if conf.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// 创建Gin引擎
	r := gin.New()

	// 设置中间件
	middleware.SetupMiddleware(r)

	// 注册路由
	routes.RegisterRoutes(r, routes.Deps{
		Conf:         conf,
		CheckIns:     checkinService,
		Rewards:      rewardService,
		Recognitions: recognitionService,
		Journals:     journalService,
		Achievements: achievementService,
	})

	// 创建HTTP服务器
	srv := &http.Server{
		Addr:    ":" + conf.ServerPort,
		Handler: r,
	}

	// 在goroutine中启动服务器
	go func() {
		log.Printf("启动服务器，监听端口: %s", conf.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("服务器启动失败: %v", err)
		}
	}()

	// 等待中断信号以实现优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("正在关闭服务器...")

	// 创建超时上下文
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// 优雅关闭服务器
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("服务器关闭失败: %v", err)
	}

	// 等待后台任务收尾：扫描任务、风险分析、发件箱分发
	log.Println("正在等待所有后台任务完成...")
	scanner.Stop()
	checkinService.Wait()
	outbox.Stop()
	outbox.Wait()
	log.Println("所有后台任务已完成，服务器已关闭")
}

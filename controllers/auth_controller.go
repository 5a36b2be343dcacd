package controllers

import (
	"WellnessGo/config"
	"WellnessGo/models"
	"WellnessGo/utils"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type AuthController struct {
	RequireEmailVerification bool
}

// Register 注册新用户，wellness聚合从零值开始
func (ac *AuthController) Register(c *gin.Context) {
	var req models.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("无效的请求: "+err.Error()))
		return
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		config.Logger.Errorw("密码哈希失败", "error", err)
		c.JSON(http.StatusInternalServerError, models.Fail("注册失败"))
		return
	}

	user := models.User{
		ID:            utils.GenerateID(),
		Username:      req.Username,
		Email:         req.Email,
		PasswordHash:  hash,
		Department:    req.Department,
		Role:          "employee",
		EmailVerified: !ac.RequireEmailVerification,
		RiskLevel:     models.RiskLevelLow,
		CreatedAt:     time.Now().UTC(),
	}
	// 邮箱唯一索引兜底：并发注册只有一个能插入成功
	if err := config.DB.Create(&user).Error; err != nil {
		if models.IsDuplicateKeyError(err) {
			c.JSON(http.StatusConflict, models.Fail("邮箱已被注册"))
			return
		}
		config.Logger.Errorw("创建用户失败", "error", err)
		c.JSON(http.StatusInternalServerError, models.Fail("注册失败"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		config.Logger.Errorw("生成令牌失败", "error", err)
		c.JSON(http.StatusInternalServerError, models.Fail("注册失败"))
		return
	}

	c.JSON(http.StatusCreated, models.OK("注册成功", models.AuthResult{Token: token, User: &user}))
}

// Login 邮箱密码登录
func (ac *AuthController) Login(c *gin.Context) {
	var req models.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("无效的请求: "+err.Error()))
		return
	}

	var user models.User
	if err := config.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusUnauthorized, models.Fail("邮箱或密码错误"))
			return
		}
		config.Logger.Errorw("查询用户失败", "error", err)
		c.JSON(http.StatusInternalServerError, models.Fail("登录失败"))
		return
	}

	if !utils.CheckPassword(user.PasswordHash, req.Password) {
		c.JSON(http.StatusUnauthorized, models.Fail("邮箱或密码错误"))
		return
	}

	if ac.RequireEmailVerification && !user.EmailVerified {
		c.JSON(http.StatusForbidden, models.Fail("邮箱尚未验证"))
		return
	}

	now := time.Now().UTC()
	config.DB.Model(&user).Update("last_login", now)

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		config.Logger.Errorw("生成令牌失败", "error", err)
		c.JSON(http.StatusInternalServerError, models.Fail("登录失败"))
		return
	}

	c.JSON(http.StatusOK, models.OK("登录成功", models.AuthResult{Token: token, User: &user}))
}

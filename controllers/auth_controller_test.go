package controllers

import (
	"WellnessGo/config"
	"WellnessGo/models"
	"WellnessGo/utils"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newAuthTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	config.InitTestLogger()
	utils.InitJWT("测试密钥")

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared",
		strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	require.NoError(t, config.MigrateDB(db))
	config.DB = db

	r := gin.New()
	ac := AuthController{}
	r.POST("/register", ac.Register)
	r.POST("/login", ac.Login)
	return r
}

func postJSON(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// 重复邮箱注册：唯一索引冲突转为409，不是500
func TestRegisterDuplicateEmail(t *testing.T) {
	r := newAuthTestRouter(t)

	body := `{"username":"张三","email":"zhangsan@example.com","password":"password123"}`
	w := postJSON(r, "/register", body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = postJSON(r, "/register", body)
	assert.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	// 只有一条用户记录
	var count int64
	require.NoError(t, config.DB.Model(&models.User{}).
		Where("email = ?", "zhangsan@example.com").Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestRegisterThenLogin(t *testing.T) {
	r := newAuthTestRouter(t)

	w := postJSON(r, "/register",
		`{"username":"李四","email":"lisi@example.com","password":"password123"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = postJSON(r, "/login",
		`{"email":"lisi@example.com","password":"password123"}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = postJSON(r, "/login",
		`{"email":"lisi@example.com","password":"wrongpassword"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

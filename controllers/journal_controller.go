package controllers

import (
	"WellnessGo/models"
	"WellnessGo/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type JournalController struct {
	journals *services.JournalService
}

func NewJournalController(journals *services.JournalService) *JournalController {
	return &JournalController{journals: journals}
}

// Create 写日记
func (jc *JournalController) Create(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.JournalCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("无效的请求: "+err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
		return
	}

	entry, err := jc.journals.Create(uid, &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, models.OK("日记已保存", entry))
}

// Update 编辑日记（24小时内）
func (jc *JournalController) Update(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.JournalUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("无效的请求: "+err.Error()))
		return
	}

	entry, err := jc.journals.Update(uid, c.Param("id"), &req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("日记已更新", entry))
}

// Delete 删除日记（软删除）
func (jc *JournalController) Delete(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	if err := jc.journals.Delete(uid, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("日记已删除", nil))
}

// List 日记列表
func (jc *JournalController) List(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))

	entries, total, err := jc.journals.List(uid, page, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("查询成功", gin.H{
		"items": entries,
		"total": total,
		"page":  page,
		"limit": limit,
	}))
}

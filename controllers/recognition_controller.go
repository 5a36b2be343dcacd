package controllers

import (
	"WellnessGo/models"
	"WellnessGo/services"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

type RecognitionController struct {
	recognitions *services.RecognitionService
}

func NewRecognitionController(recognitions *services.RecognitionService) *RecognitionController {
	return &RecognitionController{recognitions: recognitions}
}

// Send 发送同事认可
func (rc *RecognitionController) Send(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var req models.RecognitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail("无效的请求: "+err.Error()))
		return
	}
	if err := req.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.Fail(err.Error()))
		return
	}

	recognition, err := rc.recognitions.Send(uid, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.OK("认可已发送", recognition))
}

// ListReceived 收到的认可
func (rc *RecognitionController) ListReceived(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := rc.recognitions.ListReceived(uid, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("查询成功", items))
}

// ListSent 发出的认可
func (rc *RecognitionController) ListSent(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	items, err := rc.recognitions.ListSent(uid, limit)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, models.OK("查询成功", items))
}

package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/restoflow/internal/utils"
)

// FeedbackReport 反馈汇总报表
func (h *Handler) FeedbackReport(c *gin.Context) {
	rep, err := h.Feedback.Report(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, rep)
}

// FeedbackRatingBreakdown 各评分档位最新反馈的分析
func (h *Handler) FeedbackRatingBreakdown(c *gin.Context) {
	samples, err := h.Feedback.RatingBreakdown(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Success(c, samples)
}

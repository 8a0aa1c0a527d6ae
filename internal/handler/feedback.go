package handler

import (
	"encoding/json"
	"log/slog"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/user/restoflow/internal/model"
	"github.com/user/restoflow/internal/sentiment"
	"github.com/user/restoflow/internal/utils"
)

const (
	defaultPageSize = 20
	maxBatchSize    = 100
)

// FeedbackRequest 顾客提交的反馈。comment 不是字符串时按空评论处理。
type FeedbackRequest struct {
	Comment json.RawMessage `json:"comment"`
	Rating  int             `json:"rating" binding:"required,rating"`
}

func (r FeedbackRequest) input() sentiment.Input {
	return sentiment.Input{Comment: commentText(r.Comment), Rating: r.Rating}
}

// commentText 解析评论文本，null / 非字符串一律视为空串
func commentText(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return ""
	}
	return s
}

// SubmitFeedback 提交反馈
func (h *Handler) SubmitFeedback(c *gin.Context) {
	var req FeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "评分必须在 1-5 之间")
		return
	}

	f, err := h.Feedback.Submit(c.Request.Context(), req.input())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Created(c, f)
}

// AnalyzeRequest 批量预览请求
type AnalyzeRequest struct {
	Items []FeedbackRequest `json:"items" binding:"required,min=1,dive"`
}

// AnalyzeFeedback 批量预览分析结果（不保存）
func (h *Handler) AnalyzeFeedback(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "参数错误")
		return
	}
	if len(req.Items) > maxBatchSize {
		utils.BadRequest(c, "单次最多分析 "+strconv.Itoa(maxBatchSize)+" 条")
		return
	}

	inputs := make([]sentiment.Input, len(req.Items))
	for i, item := range req.Items {
		inputs[i] = item.input()
	}

	results, err := h.Feedback.AnalyzeBatch(c.Request.Context(), inputs)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.Success(c, results)
}

// ListFeedbackQuery 反馈列表筛选参数
type ListFeedbackQuery struct {
	Sentiment string `form:"sentiment" binding:"omitempty,oneof=positive neutral negative"`
	Rating    int    `form:"rating" binding:"omitempty,rating"`
	Page      int    `form:"page" binding:"omitempty,min=1"`
	PageSize  int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// ListFeedback 反馈列表（管理后台用）
func (h *Handler) ListFeedback(c *gin.Context) {
	var q ListFeedbackQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		utils.BadRequest(c, "参数错误")
		return
	}
	if q.Page == 0 {
		q.Page = 1
	}
	if q.PageSize == 0 {
		q.PageSize = defaultPageSize
	}

	filter := model.FeedbackFilter{
		Sentiment: sentiment.Label(q.Sentiment),
		Rating:    q.Rating,
		Limit:     q.PageSize,
		Offset:    (q.Page - 1) * q.PageSize,
	}
	feedbacks, err := h.Feedbacks.List(c.Request.Context(), filter)
	if err != nil {
		slog.Error("获取反馈列表失败", "error", err)
		utils.InternalServerError(c, "获取反馈列表失败")
		return
	}
	total, err := h.Feedbacks.Count(c.Request.Context(), filter)
	if err != nil {
		slog.Error("统计反馈数量失败", "error", err)
		utils.InternalServerError(c, "获取反馈列表失败")
		return
	}
	if feedbacks == nil {
		feedbacks = []model.Feedback{}
	}

	utils.Success(c, gin.H{
		"items":     feedbacks,
		"total":     total,
		"page":      q.Page,
		"page_size": q.PageSize,
	})
}

// GetFeedback 反馈详情
func (h *Handler) GetFeedback(c *gin.Context) {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		utils.BadRequest(c, "无效的 ID")
		return
	}

	f, err := h.Feedbacks.FindByID(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	if f == nil {
		utils.NotFound(c, "反馈不存在")
		return
	}

	utils.Success(c, f)
}

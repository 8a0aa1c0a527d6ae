package handler

import (
	"context"
	"errors"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/user/restoflow/internal/config"
	"github.com/user/restoflow/internal/model"
	"github.com/user/restoflow/internal/report"
	"github.com/user/restoflow/internal/repository"
	"github.com/user/restoflow/internal/sentiment"
	"github.com/user/restoflow/internal/utils"
)

// FeedbackService 反馈业务（由 service.FeedbackService 实现）
type FeedbackService interface {
	Submit(ctx context.Context, in sentiment.Input) (*model.Feedback, error)
	Report(ctx context.Context) (report.Report, error)
	RatingBreakdown(ctx context.Context) ([]report.RatingSample, error)
	AnalyzeBatch(ctx context.Context, inputs []sentiment.Input) ([]sentiment.Result, error)
}

// FeedbackReader 反馈查询（由 repository.FeedbackRepository 实现）
type FeedbackReader interface {
	List(ctx context.Context, filter model.FeedbackFilter) ([]model.Feedback, error)
	FindByID(ctx context.Context, id int) (*model.Feedback, error)
	Count(ctx context.Context, filter model.FeedbackFilter) (int64, error)
}

// UserStore 员工账号（由 repository.UserRepository 实现）
type UserStore interface {
	Create(ctx context.Context, email, username, password, role string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	FindByID(ctx context.Context, id int) (*model.User, error)
	CheckPassword(user *model.User, password string) bool
	ListAll(ctx context.Context) ([]*model.User, error)
}

// Handler HTTP 处理器
type Handler struct {
	Feedback  FeedbackService
	Feedbacks FeedbackReader
	Users     UserStore
	Config    *config.Config
}

// NewHandler 创建处理器
func NewHandler(feedback FeedbackService, feedbacks FeedbackReader, users UserStore, cfg *config.Config) *Handler {
	registerValidators()
	return &Handler{
		Feedback:  feedback,
		Feedbacks: feedbacks,
		Users:     users,
		Config:    cfg,
	}
}

var validatorsOnce sync.Once

// registerValidators 在 gin 的校验引擎上注册自定义规则
func registerValidators() {
	validatorsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		_ = v.RegisterValidation("rating", func(fl validator.FieldLevel) bool {
			return sentiment.ValidateRating(int(fl.Field().Int())) == nil
		})
	})
}

// respondError 把业务错误映射为统一响应
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, sentiment.ErrInvalidRating):
		utils.BadRequest(c, "评分必须在 1-5 之间")
	case errors.Is(err, repository.ErrUserExists):
		utils.Conflict(c, err.Error())
	case errors.Is(err, repository.ErrInvalidRole):
		utils.BadRequest(c, err.Error())
	default:
		_ = c.Error(err)
		utils.InternalServerError(c, "")
	}
}

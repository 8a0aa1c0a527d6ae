package repository

import (
	"context"
	"errors"
	"unicode/utf8"

	"github.com/jonboulle/clockwork"
	"github.com/user/restoflow/internal/model"
	"github.com/user/restoflow/internal/sentiment"
	"gorm.io/gorm"
)

type FeedbackRepository struct {
	db       *gorm.DB
	analyzer *sentiment.Analyzer
	clock    clockwork.Clock
}

func NewFeedbackRepository(db *gorm.DB, analyzer *sentiment.Analyzer, clock clockwork.Clock) *FeedbackRepository {
	if analyzer == nil {
		analyzer = sentiment.DefaultAnalyzer()
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &FeedbackRepository{db: db, analyzer: analyzer, clock: clock}
}

// Create 分析并保存反馈，评分非法时直接拒绝
func (r *FeedbackRepository) Create(ctx context.Context, in sentiment.Input) (*model.Feedback, error) {
	res, err := r.analyzer.Analyze(in)
	if err != nil {
		return nil, err
	}

	// 无法解码的评论按空串分析，也按空串保存
	comment := in.Comment
	if !utf8.ValidString(comment) {
		comment = ""
	}

	f := &model.Feedback{
		Rating:    in.Rating,
		Comment:   comment,
		Sentiment: res.Analysis.Sentiment,
		Analysis:  res.Analysis,
		CreatedAt: r.clock.Now(),
	}
	if err := r.db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, err
	}
	return f, nil
}

// ListAll 获取全部反馈（报表用）
func (r *FeedbackRepository) ListAll(ctx context.Context) ([]model.Feedback, error) {
	var feedbacks []model.Feedback
	err := r.db.WithContext(ctx).Order("id ASC").Find(&feedbacks).Error
	return feedbacks, err
}

// List 获取反馈列表（管理后台用）
func (r *FeedbackRepository) List(ctx context.Context, filter model.FeedbackFilter) ([]model.Feedback, error) {
	query := r.filtered(ctx, filter)
	if filter.Limit > 0 {
		query = query.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		query = query.Offset(filter.Offset)
	}

	var feedbacks []model.Feedback
	err := query.Order("created_at DESC").Order("id DESC").Find(&feedbacks).Error
	return feedbacks, err
}

// FindByID 根据 ID 查找反馈，不存在时返回 nil
func (r *FeedbackRepository) FindByID(ctx context.Context, id int) (*model.Feedback, error) {
	var f model.Feedback
	err := r.db.WithContext(ctx).First(&f, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Count 符合筛选条件的反馈总数，忽略分页参数
func (r *FeedbackRepository) Count(ctx context.Context, filter model.FeedbackFilter) (int64, error) {
	var count int64
	err := r.filtered(ctx, filter).Count(&count).Error
	return count, err
}

func (r *FeedbackRepository) filtered(ctx context.Context, filter model.FeedbackFilter) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.Feedback{})
	if filter.Sentiment != "" {
		query = query.Where("sentiment = ?", filter.Sentiment)
	}
	if filter.Rating != 0 {
		query = query.Where("rating = ?", filter.Rating)
	}
	return query
}

package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/user/restoflow/internal/metrics"
	"github.com/user/restoflow/internal/model"
	"github.com/user/restoflow/internal/report"
	"github.com/user/restoflow/internal/sentiment"
	"github.com/user/restoflow/internal/utils"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

const reportCacheKey = "feedback:report"

// FeedbackStore 反馈存储（由 repository.FeedbackRepository 实现）
type FeedbackStore interface {
	Create(ctx context.Context, in sentiment.Input) (*model.Feedback, error)
	ListAll(ctx context.Context) ([]model.Feedback, error)
}

// Snapshot 同一次读取得到的汇总和分档样本
type Snapshot struct {
	Report  report.Report
	Samples []report.RatingSample

	// 读取前观察到的写入代数
	generation uint64
}

// Options FeedbackService 可选参数
type Options struct {
	ReportCacheTTL    time.Duration
	AnalysisCacheSize int
	Workers           int
}

// FeedbackService 反馈提交、预览与报表
type FeedbackService struct {
	store    FeedbackStore
	analyzer *sentiment.Analyzer
	reports  *cache.Cache
	previews *utils.LRUCache[sentiment.Input, sentiment.Result]
	workers  int

	sf singleflight.Group
	// generation 每次成功写入加一；mu 保证“比较代数 + 写缓存”与“加代数 + 删缓存”互斥
	generation atomic.Uint64
	mu         sync.Mutex
}

// NewFeedbackService 创建反馈服务
func NewFeedbackService(store FeedbackStore, analyzer *sentiment.Analyzer, opts Options) *FeedbackService {
	if analyzer == nil {
		analyzer = sentiment.DefaultAnalyzer()
	}
	if opts.ReportCacheTTL <= 0 {
		opts.ReportCacheTTL = 5 * time.Minute
	}
	if opts.AnalysisCacheSize <= 0 {
		opts.AnalysisCacheSize = 1000
	}
	if opts.Workers <= 0 {
		opts.Workers = 4
	}

	return &FeedbackService{
		store:    store,
		analyzer: analyzer,
		reports:  cache.New(opts.ReportCacheTTL, 2*opts.ReportCacheTTL),
		previews: utils.NewLRUCache[sentiment.Input, sentiment.Result](opts.AnalysisCacheSize, 0),
		workers:  opts.Workers,
	}
}

// Submit 保存一条反馈，成功后使报表缓存失效
func (s *FeedbackService) Submit(ctx context.Context, in sentiment.Input) (*model.Feedback, error) {
	f, err := s.store.Create(ctx, in)
	if err != nil {
		if errors.Is(err, sentiment.ErrInvalidRating) {
			metrics.FeedbackRejectedTotal.WithLabelValues("invalid_rating").Inc()
		}
		return nil, err
	}

	s.mu.Lock()
	s.generation.Add(1)
	s.reports.Delete(reportCacheKey)
	s.mu.Unlock()

	metrics.FeedbackSubmittedTotal.WithLabelValues(string(f.Sentiment)).Inc()
	slog.Info("反馈已保存",
		"feedback_id", f.ID,
		"rating", f.Rating,
		"sentiment", f.Sentiment,
		"praises", len(f.Analysis.KeyPraises),
		"issues", len(f.Analysis.KeyIssues),
	)
	return f, nil
}

// Snapshot 获取汇总快照（带缓存）
func (s *FeedbackService) Snapshot(ctx context.Context) (*Snapshot, error) {
	if cached, found := s.reports.Get(reportCacheKey); found {
		if snap, ok := cached.(*Snapshot); ok {
			metrics.CacheOpsTotal.WithLabelValues("report", "hit").Inc()
			return snap, nil
		}
	}
	metrics.CacheOpsTotal.WithLabelValues("report", "miss").Inc()
	return s.RefreshSnapshot(ctx)
}

// RefreshSnapshot 重新读取全部反馈并刷新缓存。
// 并发请求合并为一次读取；返回的快照一定包含调用前已完成的写入。
func (s *FeedbackService) RefreshSnapshot(ctx context.Context) (*Snapshot, error) {
	want := s.generation.Load()
	for {
		// 使用 singleflight 避免并发请求重复读库
		val, err, _ := s.sf.Do(reportCacheKey, func() (interface{}, error) {
			return s.loadSnapshot(ctx)
		})
		if err != nil {
			return nil, err
		}
		snap := val.(*Snapshot)
		// 合并到了调用前就已开始的读取，重新读一次
		if snap.generation >= want {
			return snap, nil
		}
	}
}

func (s *FeedbackService) loadSnapshot(ctx context.Context) (*Snapshot, error) {
	gen := s.generation.Load()
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("读取反馈失败: %w", err)
	}

	snap := &Snapshot{
		Report:     report.Build(records),
		Samples:    report.ByRating(records),
		generation: gen,
	}

	// 读取期间有新写入时不缓存，下次请求重新计算
	s.mu.Lock()
	if s.generation.Load() == gen {
		s.reports.SetDefault(reportCacheKey, snap)
	}
	s.mu.Unlock()
	return snap, nil
}

// Report 汇总报表
func (s *FeedbackService) Report(ctx context.Context) (report.Report, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return report.Report{}, err
	}
	return snap.Report, nil
}

// RatingBreakdown 各评分档位最新一条反馈的分析
func (s *FeedbackService) RatingBreakdown(ctx context.Context) ([]report.RatingSample, error) {
	snap, err := s.Snapshot(ctx)
	if err != nil {
		return nil, err
	}
	return snap.Samples, nil
}

// Preview 只分析不保存，相同输入直接命中缓存
func (s *FeedbackService) Preview(in sentiment.Input) (sentiment.Result, error) {
	if res, ok := s.previews.Get(in); ok {
		metrics.CacheOpsTotal.WithLabelValues("analysis", "hit").Inc()
		return res, nil
	}
	metrics.CacheOpsTotal.WithLabelValues("analysis", "miss").Inc()

	start := time.Now()
	res, err := s.analyzer.Analyze(in)
	metrics.AnalysisDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		return sentiment.Result{}, err
	}

	s.previews.Set(in, res)
	return res, nil
}

// AnalyzeBatch 并发分析一批输入，结果顺序与输入一致；任一评分非法即返回错误
func (s *FeedbackService) AnalyzeBatch(ctx context.Context, inputs []sentiment.Input) ([]sentiment.Result, error) {
	results := make([]sentiment.Result, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for i, in := range inputs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			res, err := s.Preview(in)
			if err != nil {
				return fmt.Errorf("第 %d 条: %w", i+1, err)
			}
			results[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
)

// ReportJob 定时刷新反馈报表并记录摘要
type ReportJob struct {
	feedback *FeedbackService
	clock    clockwork.Clock
	interval time.Duration
}

// NewReportJob 创建报表任务
func NewReportJob(feedback *FeedbackService, clock clockwork.Clock, interval time.Duration) *ReportJob {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if interval <= 0 {
		interval = 24 * time.Hour
	}
	return &ReportJob{feedback: feedback, clock: clock, interval: interval}
}

// Start 启动定时任务，ctx 取消后退出
func (j *ReportJob) Start(ctx context.Context) {
	ticker := j.clock.NewTicker(j.interval)

	go func() {
		defer ticker.Stop()

		// 启动时先运行一次
		j.run(ctx)

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.Chan():
				j.run(ctx)
			}
		}
	}()
}

func (j *ReportJob) run(ctx context.Context) {
	snap, err := j.feedback.RefreshSnapshot(ctx)
	if err != nil {
		slog.Error("[ReportJob] 刷新反馈报表失败", "error", err)
		return
	}

	rep := snap.Report
	if rep.Empty() {
		slog.Info("[ReportJob] 暂无反馈")
		return
	}
	slog.Info("[ReportJob] 反馈报表已刷新",
		"total", rep.Total,
		"positive", rep.PositiveCount,
		"positive_pct", *rep.PositivePercentage,
		"neutral", rep.NeutralCount,
		"negative", rep.NegativeCount,
		"tiers", len(snap.Samples),
	)
}

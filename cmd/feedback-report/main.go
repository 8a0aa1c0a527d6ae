// feedback-report 从数据库读取全部反馈并在终端输出汇总报表
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/user/restoflow/internal/config"
	"github.com/user/restoflow/internal/logging"
	"github.com/user/restoflow/internal/model"
	"github.com/user/restoflow/internal/report"
	"github.com/user/restoflow/internal/repository"
	"github.com/user/restoflow/internal/sentiment"
)

func main() {
	asJSON := flag.Bool("json", false, "以 JSON 输出")
	timeout := flag.Duration("timeout", 30*time.Second, "查询超时")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.Load()
	slog.SetDefault(logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat))

	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("数据库连接失败", "error", err)
		os.Exit(1)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	repos := repository.NewRepositories(db, sentiment.DefaultAnalyzer(), clockwork.NewRealClock())

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	records, err := repos.Feedback.ListAll(ctx)
	if err != nil {
		slog.Error("读取反馈失败", "error", err)
		os.Exit(1)
	}

	if err := write(os.Stdout, records, *asJSON); err != nil {
		slog.Error("输出报表失败", "error", err)
		os.Exit(1)
	}
}

func write(w io.Writer, records []model.Feedback, asJSON bool) error {
	rep := report.Build(records)
	samples := report.ByRating(records)

	if !asJSON {
		return report.Format(w, rep, samples)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(struct {
		Report  report.Report         `json:"report"`
		Ratings []report.RatingSample `json:"ratings"`
	}{rep, samples}); err != nil {
		return fmt.Errorf("编码 JSON 失败: %w", err)
	}
	return nil
}

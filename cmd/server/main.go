package main

import (
	"context"
	"encoding/gob"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata" // 确保在精简镜像中也能识别时区

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/user/restoflow/internal/config"
	"github.com/user/restoflow/internal/handler"
	"github.com/user/restoflow/internal/logging"
	"github.com/user/restoflow/internal/model"
	"github.com/user/restoflow/internal/repository"
	"github.com/user/restoflow/internal/router"
	"github.com/user/restoflow/internal/sentiment"
	"github.com/user/restoflow/internal/service"
)

func main() {
	// 注册 Session 模型
	gob.Register(model.SessionUser{})

	// 加载环境变量
	envErr := godotenv.Load()

	// 加载配置
	cfg := config.Load()
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	if envErr != nil {
		slog.Info("未找到 .env 文件，使用系统环境变量")
	}

	// 初始化数据库
	db, err := repository.InitDB(cfg.DatabaseURL)
	if err != nil {
		slog.Error("数据库连接失败", "error", err)
		os.Exit(1)
	}
	sqlDB, _ := db.DB()
	defer sqlDB.Close()

	if err := repository.AutoMigrate(db); err != nil {
		slog.Error("数据库迁移失败", "error", err)
		os.Exit(1)
	}

	clock := clockwork.NewRealClock()
	analyzer := sentiment.DefaultAnalyzer()

	// 初始化仓库
	repos := repository.NewRepositories(db, analyzer, clock)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if cfg.AdminPassword != "" {
		created, err := repos.User.EnsureAdmin(ctx, cfg.AdminEmail, cfg.AdminPassword)
		if err != nil {
			slog.Error("初始化管理员失败", "error", err)
			os.Exit(1)
		}
		if created {
			slog.Info("已创建管理员账号", "email", cfg.AdminEmail)
		}
	}

	feedbackSvc := service.NewFeedbackService(repos.Feedback, analyzer, service.Options{
		ReportCacheTTL:    cfg.ReportCacheTTL,
		AnalysisCacheSize: cfg.AnalysisCacheSize,
		Workers:           cfg.AnalyzeWorkers,
	})

	// 启动定时报表任务
	service.NewReportJob(feedbackSvc, clock, cfg.ReportInterval).Start(ctx)

	// 初始化 Handler 和路由
	h := handler.NewHandler(feedbackSvc, repos.Feedback, repos.User, cfg)
	r := router.New(h)

	srv := &http.Server{
		Addr:           ":" + cfg.Port,
		Handler:        r,
		ReadTimeout:    10 * time.Second,
		WriteTimeout:   10 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	// 在 goroutine 中启动服务器，这样我们就可以监听信号
	go func() {
		slog.Info("服务器启动", "addr", "http://localhost:"+cfg.Port, "env", cfg.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("服务器启动失败", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	slog.Info("正在关闭服务器...")

	// 5 秒超时上下文用于关闭过程
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("服务器强制关闭", "error", err)
		return
	}

	slog.Info("服务器已退出")
}

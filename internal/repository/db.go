package repository

import (
	"database/sql"
	"fmt"

	"github.com/jonboulle/clockwork"
	_ "github.com/lib/pq"
	"github.com/user/restoflow/internal/model"
	"github.com/user/restoflow/internal/sentiment"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// InitDB 初始化数据库连接
func InitDB(databaseURL string) (*gorm.DB, error) {
	sqlDB, err := sql.Open("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("无法连接数据库: %w", err)
	}

	// 测试连接
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("数据库 ping 失败: %w", err)
	}

	// 设置连接池
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("初始化 gorm 失败: %w", err)
	}

	return db, nil
}

// AutoMigrate 同步表结构
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.User{}, &model.Feedback{})
}

// Repositories 仓库集合
type Repositories struct {
	DB       *gorm.DB
	User     *UserRepository
	Feedback *FeedbackRepository
}

// NewRepositories 创建仓库集合
func NewRepositories(db *gorm.DB, analyzer *sentiment.Analyzer, clock clockwork.Clock) *Repositories {
	return &Repositories{
		DB:       db,
		User:     NewUserRepository(db, clock),
		Feedback: NewFeedbackRepository(db, analyzer, clock),
	}
}

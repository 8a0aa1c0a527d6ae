package model

import (
	"time"

	"github.com/user/restoflow/internal/sentiment"
)

// Feedback 顾客反馈（提交时完成情感分析，之后只读）
type Feedback struct {
	ID        int                `json:"id" gorm:"primaryKey"`
	Rating    int                `json:"rating" gorm:"not null;index"`
	Comment   string             `json:"comment" gorm:"type:text"`
	Sentiment sentiment.Label    `json:"sentiment" gorm:"size:16;index"`
	Analysis  sentiment.Analysis `json:"analysis" gorm:"serializer:json;type:jsonb"`
	CreatedAt time.Time          `json:"created_at" gorm:"index"`
}

// FeedbackFilter 反馈列表筛选条件
type FeedbackFilter struct {
	Sentiment sentiment.Label
	Rating    int
	Limit     int
	Offset    int
}

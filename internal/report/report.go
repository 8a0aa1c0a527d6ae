// Package report 对已保存的反馈做只读汇总，供运营查看。
package report

import (
	"sort"

	"github.com/user/restoflow/internal/model"
	"github.com/user/restoflow/internal/sentiment"
)

// Report 反馈汇总。Total 为 0 时 PositivePercentage 为 nil。
type Report struct {
	Total              int              `json:"total"`
	PositiveCount      int              `json:"positive_count"`
	NeutralCount       int              `json:"neutral_count"`
	NegativeCount      int              `json:"negative_count"`
	PositivePercentage *int             `json:"positive_percentage"`
	SortedListing      []model.Feedback `json:"sorted_listing"`
}

// Empty 是否没有任何反馈
func (r Report) Empty() bool {
	return r.Total == 0
}

// Build 计算汇总，不修改入参
func Build(records []model.Feedback) Report {
	rep := Report{
		Total:         len(records),
		SortedListing: Sorted(records),
	}
	if rep.Total == 0 {
		return rep
	}

	for _, r := range records {
		switch r.Sentiment {
		case sentiment.Positive:
			rep.PositiveCount++
		case sentiment.Negative:
			rep.NegativeCount++
		default:
			rep.NeutralCount++
		}
	}

	pct := percentage(rep.PositiveCount, rep.Total)
	rep.PositivePercentage = &pct
	return rep
}

// Sorted 按评分降序、ID 降序排列，返回新切片
func Sorted(records []model.Feedback) []model.Feedback {
	out := make([]model.Feedback, len(records))
	copy(out, records)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].ID > out[j].ID
	})
	return out
}

// percentage 四舍五入（半数进位）的整数百分比，total 必须大于 0
func percentage(part, total int) int {
	return (part*200 + total) / (2 * total)
}

// RatingSample 某个评分档位的代表性反馈
type RatingSample struct {
	Rating   int                `json:"rating"`
	Feedback model.Feedback     `json:"feedback"`
	Analysis sentiment.Analysis `json:"analysis"`
}

// ByRating 取每个评分档位（1-5）最新的一条反馈；没有反馈的档位直接省略
func ByRating(records []model.Feedback) []RatingSample {
	var latest [sentiment.MaxRating + 1]*model.Feedback
	for i := range records {
		r := &records[i]
		if r.Rating < sentiment.MinRating || r.Rating > sentiment.MaxRating {
			continue
		}
		cur := latest[r.Rating]
		if cur == nil || newer(r, cur) {
			latest[r.Rating] = r
		}
	}

	samples := make([]RatingSample, 0, sentiment.MaxRating)
	for rating := sentiment.MinRating; rating <= sentiment.MaxRating; rating++ {
		if f := latest[rating]; f != nil {
			samples = append(samples, RatingSample{
				Rating:   rating,
				Feedback: *f,
				Analysis: f.Analysis,
			})
		}
	}
	return samples
}

func newer(a, b *model.Feedback) bool {
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

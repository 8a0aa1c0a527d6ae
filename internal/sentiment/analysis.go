package sentiment

import "fmt"

const (
	MinRating = 1
	MaxRating = 5
)

// Narratives 评分档位对应的固定反馈文案，下标 0 对应 1 星
type Narratives [MaxRating]string

// DefaultNarratives 内置文案
var DefaultNarratives = Narratives{
	"We're sorry your visit fell short. Your feedback has been passed to the manager so we can make it right.",
	"Thank you for telling us what went wrong. We'll review these points with the kitchen and floor team.",
	"Thanks for your feedback. We're glad parts of your visit went well and we'll work on the rest.",
	"Thank you for the great rating! We're happy you enjoyed your meal and hope to see you again soon.",
	"Thank you for the outstanding rating! The whole team will be delighted to hear you loved your visit.",
}

// For 返回某个评分档位的文案
func (n Narratives) For(rating int) string {
	if rating < MinRating || rating > MaxRating {
		return ""
	}
	return n[rating-1]
}

// Analysis 单条反馈的结构化分析结果，四个字段始终存在
type Analysis struct {
	Sentiment      Label    `json:"sentiment"`
	RatingFeedback string   `json:"rating_feedback"`
	KeyPraises     []string `json:"key_praises"`
	KeyIssues      []string `json:"key_issues"`
}

// BuildAnalysis 组装分析结果
func BuildAnalysis(rating int, label Label, score Score, narratives Narratives) Analysis {
	return Analysis{
		Sentiment:      label,
		RatingFeedback: narratives.For(rating),
		KeyPraises:     dedupe(score.MatchedPositive),
		KeyIssues:      dedupe(score.MatchedNegative),
	}
}

// ValidateRating 评分必须在 1-5 之间，不做截断
func ValidateRating(rating int) error {
	if rating < MinRating || rating > MaxRating {
		return fmt.Errorf("%w: %d", ErrInvalidRating, rating)
	}
	return nil
}

func dedupe(items []string) []string {
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it]; ok {
			continue
		}
		seen[it] = struct{}{}
		out = append(out, it)
	}
	return out
}

package sentiment

import "fmt"

// Label 情感标签
type Label string

const (
	Negative Label = "negative"
	Neutral  Label = "neutral"
	Positive Label = "positive"
)

// Rank 标签排序值：negative < neutral < positive
func (l Label) Rank() int {
	switch l {
	case Negative:
		return -1
	case Positive:
		return 1
	default:
		return 0
	}
}

// Valid 是否为合法标签
func (l Label) Valid() bool {
	return l == Negative || l == Neutral || l == Positive
}

// ParseLabel 解析标签字符串
func ParseLabel(s string) (Label, error) {
	l := Label(s)
	if !l.Valid() {
		return "", fmt.Errorf("unknown sentiment label %q", s)
	}
	return l, nil
}

// Classify 按阈值把得分映射为标签：>=1 正面，<=-1 负面，0 中性
func Classify(value int) Label {
	switch {
	case value >= 1:
		return Positive
	case value <= -1:
		return Negative
	default:
		return Neutral
	}
}

// Resolve 协调文本情感与星级评分。
// 文本给出明确倾向时以文本为准；文本中性时由评分决定。
func Resolve(text Label, rating int) Label {
	if text != Neutral {
		return text
	}
	switch {
	case rating >= 4:
		return Positive
	case rating <= 2:
		return Negative
	default:
		return Neutral
	}
}

package sentiment

import (
	"strings"
	"unicode/utf8"
)

// MatchResult 单个词条的匹配结果
type MatchResult struct {
	Term        string   `json:"term"`
	Occurrences int      `json:"occurrences"`
	Polarity    Polarity `json:"polarity"`
}

// Score 文本情感得分
type Score struct {
	Value           int      `json:"value"`
	MatchedPositive []string `json:"matched_positive"`
	MatchedNegative []string `json:"matched_negative"`
}

// Scorer 基于词库的打分器
type Scorer struct {
	lexicon *Lexicon
}

// NewScorer 创建打分器，lexicon 为 nil 时使用内置词库
func NewScorer(lexicon *Lexicon) *Scorer {
	if lexicon == nil {
		lexicon = DefaultLexicon()
	}
	return &Scorer{lexicon: lexicon}
}

// Score 计算评论得分：正面词条出现次数之和减去负面词条出现次数之和
func (s *Scorer) Score(comment string) Score {
	score := Score{
		MatchedPositive: []string{},
		MatchedNegative: []string{},
	}
	for _, m := range s.Matches(comment) {
		switch m.Polarity {
		case PolarityPositive:
			score.Value += m.Occurrences
			score.MatchedPositive = append(score.MatchedPositive, m.Term)
		case PolarityNegative:
			score.Value -= m.Occurrences
			score.MatchedNegative = append(score.MatchedNegative, m.Term)
		}
	}
	return score
}

// Matches 返回所有命中的词条（正面在前，各自按词库声明顺序）
func (s *Scorer) Matches(comment string) []MatchResult {
	text := normalizeComment(comment)
	if text == "" {
		return nil
	}

	var results []MatchResult
	for _, t := range s.lexicon.positive {
		if n := t.count(text); n > 0 {
			results = append(results, MatchResult{Term: t.text, Occurrences: n, Polarity: PolarityPositive})
		}
	}
	for _, t := range s.lexicon.negative {
		if n := t.count(text); n > 0 {
			results = append(results, MatchResult{Term: t.text, Occurrences: n, Polarity: PolarityNegative})
		}
	}
	return results
}

// normalizeComment 转小写；无法解码的文本按空串处理
func normalizeComment(comment string) string {
	if !utf8.ValidString(comment) {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(comment))
}

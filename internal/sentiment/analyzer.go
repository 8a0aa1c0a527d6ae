// Package sentiment 基于关键词词库的评论情感分析，并与星级评分做一致性协调。
//
// 流程：Scorer 打分 -> Classify 分类 -> Resolve 结合评分 -> BuildAnalysis 生成分析结果。
// 所有组件构建后只读，可在多个 goroutine 中并发调用。
package sentiment

import "errors"

// ErrInvalidRating 评分超出 1-5
var ErrInvalidRating = errors.New("rating must be between 1 and 5")

// Input 分析输入
type Input struct {
	Comment string `json:"comment"`
	Rating  int    `json:"rating"`
}

// Result 分析输出
type Result struct {
	Score     Score    `json:"score"`
	TextLabel Label    `json:"text_label"`
	Analysis  Analysis `json:"analysis"`
}

// Analyzer 情感分析引擎
type Analyzer struct {
	scorer     *Scorer
	narratives Narratives
}

// NewAnalyzer 创建分析引擎，lexicon 为 nil 时使用内置词库
func NewAnalyzer(lexicon *Lexicon, narratives Narratives) *Analyzer {
	return &Analyzer{
		scorer:     NewScorer(lexicon),
		narratives: narratives,
	}
}

// DefaultAnalyzer 使用内置词库和文案
func DefaultAnalyzer() *Analyzer {
	return NewAnalyzer(DefaultLexicon(), DefaultNarratives)
}

// Analyze 分析一条反馈
func (a *Analyzer) Analyze(in Input) (Result, error) {
	if err := ValidateRating(in.Rating); err != nil {
		return Result{}, err
	}

	score := a.scorer.Score(in.Comment)
	textLabel := Classify(score.Value)
	final := Resolve(textLabel, in.Rating)

	return Result{
		Score:     score,
		TextLabel: textLabel,
		Analysis:  BuildAnalysis(in.Rating, final, score, a.narratives),
	}, nil
}

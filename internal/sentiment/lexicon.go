package sentiment

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// 内置词库，声明顺序决定 KeyPraises / KeyIssues 的输出顺序
var (
	defaultPositiveTerms = []string{
		"good", "great", "excellent", "amazing", "awesome", "delicious", "tasty",
		"fresh", "friendly", "polite", "helpful", "fast", "quick", "clean",
		"cozy", "cool", "nice", "perfect", "wonderful", "fantastic", "best",
		"love", "loved", "recommend", "worth it", "will come back",
	}
	defaultNegativeTerms = []string{
		"bad", "poor", "terrible", "awful", "horrible", "disgusting", "bland",
		"stale", "cold", "raw", "rude", "unfriendly", "slow", "late", "dirty",
		"noisy", "overpriced", "expensive", "wrong", "worst", "disappointing",
		"disappointed", "hate", "not worth", "never again",
	}
)

var defaultLexicon = NewLexicon(defaultPositiveTerms, defaultNegativeTerms)

// Polarity 词条极性
type Polarity int

const (
	PolarityNegative Polarity = -1
	PolarityPositive Polarity = 1
)

// term 预编译的词条
type term struct {
	text    string
	pattern *regexp.Regexp
}

// Lexicon 关键词词库（构建后只读，可并发使用）
type Lexicon struct {
	positive []term
	negative []term
}

// NewLexicon 创建词库。词条统一转小写，重复词条只保留第一次出现的位置。
func NewLexicon(positive, negative []string) *Lexicon {
	return &Lexicon{
		positive: compileTerms(positive),
		negative: compileTerms(negative),
	}
}

// DefaultLexicon 返回内置词库
func DefaultLexicon() *Lexicon {
	return defaultLexicon
}

// Positive 正面词条（声明顺序）
func (l *Lexicon) Positive() []string {
	return termTexts(l.positive)
}

// Negative 负面词条（声明顺序）
func (l *Lexicon) Negative() []string {
	return termTexts(l.negative)
}

func compileTerms(words []string) []term {
	seen := make(map[string]struct{}, len(words))
	terms := make([]term, 0, len(words))
	for _, w := range words {
		w = strings.Join(strings.Fields(strings.ToLower(w)), " ")
		if w == "" {
			continue
		}
		if _, ok := seen[w]; ok {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, term{text: w, pattern: wordPattern(w)})
	}
	return terms
}

// wordPattern 构造词条本体的正则，短语内部允许任意空白。
// 整词边界由 count 按 Unicode 字母数字判断，regexp 的 \b 只认 ASCII。
func wordPattern(word string) *regexp.Regexp {
	parts := strings.Fields(strings.ToLower(word))
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return regexp.MustCompile(strings.Join(parts, `\s+`))
}

// count 统计词条在文本中以整词形式出现的次数
func (t term) count(text string) int {
	n := 0
	for _, loc := range t.pattern.FindAllStringIndex(text, -1) {
		before, _ := utf8.DecodeLastRuneInString(text[:loc[0]])
		after, _ := utf8.DecodeRuneInString(text[loc[1]:])
		if isWordRune(before) || isWordRune(after) {
			continue
		}
		n++
	}
	return n
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

func termTexts(terms []term) []string {
	out := make([]string, len(terms))
	for i, t := range terms {
		out[i] = t.text
	}
	return out
}

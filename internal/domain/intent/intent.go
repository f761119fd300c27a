// Package intent detects shop-seeking and proximity intent from a question.
package intent

import (
	"regexp"
	"strings"
	"unicode"
)

// CannedSelfIntroduction is returned verbatim for "who are you" questions,
// without touching any upstream service.
const CannedSelfIntroduction = "わたしはこの商店街の案内係「まちあるきアシスタント」です。" +
	"お店探しやおすすめの品、市場のご案内まで、気軽に話しかけてくださいね。"

// Flags are the derived intent of a single question.
type Flags struct {
	Shop bool
	Near bool
}

// Classifier is a keyword classifier over normalized text.
// Japanese keywords are substring-matched on normalized text; English words
// only match whole words so "great" never hits "eat".
type Classifier struct {
	// store, product, recommendation, food, craft and recipe vocabulary
	shopKeywords []string
	shopWords    *regexp.Regexp
	// nearby / close / around
	nearKeywords []string
	nearWords    *regexp.Regexp
	selfPatterns []*regexp.Regexp
}

// NewClassifier creates a Classifier with the default Japanese and English vocabulary.
func NewClassifier() *Classifier {
	return &Classifier{
		shopKeywords: []string{
			// stores and buying
			"店", "ショップ", "屋さん", "売って", "売り場", "買", "購入", "探", "どこで",
			"おすすめ", "オススメ", "お勧め", "お薦め", "人気",
			// produce and food
			"野菜", "果物", "くだもの", "フルーツ", "魚", "鮮魚", "肉", "精肉", "卵", "米",
			"パン", "惣菜", "弁当", "漬物", "豆腐", "お茶", "コーヒー", "酒",
			// crafts and tools
			"雑貨", "工具", "道具", "刃物", "包丁", "器", "手作り", "工芸", "花",
			// recipes and snacks
			"レシピ", "料理", "作り方", "おやつ", "お菓子", "菓子", "スイーツ", "食べ", "ランチ",
		},
		nearKeywords: []string{
			"近く", "近い", "近所", "付近", "周辺", "周り", "そば", "この辺", "徒歩",
		},
		shopWords: wordPattern(
			"store", "shop", "stall", "vendor", "recommend", "buy", "purchase", "find", "where",
			"vegetable", "fruit", "fish", "meat", "bread", "coffee", "tea", "food",
			"craft", "tool", "knife", "knives", "handmade", "flower",
			"recipe", "cook", "cooking", "snack", "sweet", "lunch", "eat", "eating",
		),
		nearWords: wordPattern(
			"near", "nearby", "nearest", "close to", "close by", "closest",
			"around here", "around me", "walking distance",
		),
		selfPatterns: []*regexp.Regexp{
			regexp.MustCompile(`^(あなた|君|きみ|おまえ)(は|って)(誰|だれ|何者|なにもの|なに|何)(ですか|なの|なん)?$`),
			regexp.MustCompile(`^(誰|だれ)(ですか)?$`),
			regexp.MustCompile(`^(whoareyou|whatareyou)$`),
		},
	}
}

// Normalize lowercases the text and strips whitespace and punctuation.
func Normalize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range strings.ToLower(text) {
		if unicode.IsSpace(r) || unicode.IsPunct(r) || unicode.IsSymbol(r) {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Classify derives intent flags from the question.
func (c *Classifier) Classify(text string) Flags {
	norm := Normalize(text)
	lower := strings.ToLower(text)
	return Flags{
		Shop: containsAny(norm, c.shopKeywords) || c.shopWords.MatchString(lower),
		Near: containsAny(norm, c.nearKeywords) || c.nearWords.MatchString(lower),
	}
}

// IsSelfIdentification reports whether the question only asks who the assistant is.
func (c *Classifier) IsSelfIdentification(text string) bool {
	norm := Normalize(text)
	for _, p := range c.selfPatterns {
		if p.MatchString(norm) {
			return true
		}
	}
	return false
}

func containsAny(s string, keywords []string) bool {
	for _, k := range keywords {
		if strings.Contains(s, k) {
			return true
		}
	}
	return false
}

// wordPattern matches any of words as a whole word, allowing a plural "s"/"es".
// Spaces inside a phrase match any run of whitespace.
func wordPattern(words ...string) *regexp.Regexp {
	alts := make([]string, len(words))
	for i, w := range words {
		alts[i] = strings.ReplaceAll(regexp.QuoteMeta(w), " ", `\s+`)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(alts, "|") + `)(?:e?s)?\b`)
}

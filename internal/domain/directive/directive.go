// Package directive extracts the structured trailer the model embeds in its reply.
//
// Grammar v1, one optional occurrence of each token, matched case-insensitively:
//
//	IMAGE_URL: <url>
//	SHOP_IDS: <int>[, <int>...]
//
// The prompt text produced by Instructions is the canonical description of this
// grammar; the parser below accepts exactly what it describes.
package directive

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

// GrammarVersion identifies the directive grammar the prompt and parser share.
const GrammarVersion = "1"

// Directive tokens.
const (
	TokenImageURL = "IMAGE_URL:"
	TokenShopIDs  = "SHOP_IDS:"
)

const (
	idToken     = `[0-9A-Za-z０-９Ａ-Ｚａ-ｚ.+\-]+`
	idSeparator = `[ \t]*[,，、､][ \t]*`
)

var (
	imageURLPattern = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(TokenImageURL) + `[ \t]*(\S*)`)
	// The id list is a run of comma-joined tokens; prose after it is left in the reply.
	// Tokens are alphanumeric so a malformed entry like "abc" is captured and rejected.
	shopIDsPattern = regexp.MustCompile(`(?i)` + regexp.QuoteMeta(TokenShopIDs) +
		`[ \t]*((?:` + idToken + `)?(?:` + idSeparator + `(?:` + idToken + `)?)*)`)

	idSeparators = strings.NewReplacer("、", ",", "､", ",", "，", ",")
)

// Parsed is the reply split into visible prose and directive values.
type Parsed struct {
	// Reply is the model text with the matched directives removed.
	Reply    string
	ImageURL string
	// ShopIDs are the model-supplied ids in order, duplicates included.
	ShopIDs []int
	// Rejected is set when a SHOP_IDS directive was present but malformed.
	Rejected       bool
	RejectedTokens []string
}

// Parse extracts IMAGE_URL and SHOP_IDS from raw model text.
// Absent directives are not an error.
func Parse(raw string) Parsed {
	var p Parsed
	text := raw

	// IMAGE_URL first so a same-line SHOP_IDS list does not swallow it.
	if loc := imageURLPattern.FindStringSubmatchIndex(text); loc != nil {
		if u := strings.TrimSpace(text[loc[2]:loc[3]]); validURL(u) {
			p.ImageURL = u
		}
		text = cut(text, loc[0], loc[1])
	}

	if loc := shopIDsPattern.FindStringSubmatchIndex(text); loc != nil {
		ids, bad := parseIDs(text[loc[2]:loc[3]])
		if len(bad) > 0 {
			p.Rejected = true
			p.RejectedTokens = bad
		} else {
			p.ShopIDs = ids
		}
		text = cut(text, loc[0], loc[1])
	}

	p.Reply = tidy(text)
	return p
}

// parseIDs splits a comma list into integers. Any token that is not an integer
// is returned in bad; empty tokens from stray commas are ignored.
// A trailing sentence period after the last id is ignored.
func parseIDs(list string) (ids []int, bad []string) {
	list = strings.TrimRight(idSeparators.Replace(width.Narrow.String(list)), ".")
	for _, tok := range strings.Split(list, ",") {
		tok = strings.TrimSpace(tok)
		if tok == "" {
			continue
		}
		n, err := strconv.Atoi(tok)
		if err != nil {
			bad = append(bad, tok)
			continue
		}
		ids = append(ids, n)
	}
	return ids, bad
}

// cut removes text[start:end] and collapses the spaces around the gap to one.
func cut(text string, start, end int) string {
	left := strings.TrimRight(text[:start], " \t")
	right := strings.TrimLeft(text[end:], " \t")
	if left == "" || right == "" || strings.HasSuffix(left, "\n") || strings.HasPrefix(right, "\n") ||
		strings.HasPrefix(right, "\r") {
		return left + right
	}
	return left + " " + right
}

// validURL accepts absolute http(s) URLs only.
func validURL(s string) bool {
	u, err := url.Parse(s)
	if err != nil {
		return false
	}
	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// tidy trims the reply and drops lines left empty by directive removal.
func tidy(text string) string {
	lines := strings.Split(text, "\n")
	out := lines[:0]
	blank := 0
	for _, l := range lines {
		l = strings.TrimRight(l, " \t\r")
		if l == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, l)
	}
	return strings.TrimSpace(strings.Join(out, "\n"))
}

// Instructions is the response-format section of the system prompt.
func Instructions() string {
	return fmt.Sprintf(`# 出力形式 (directive grammar v%s)
- 本文は日本語の自然な文章で、3〜5文程度に簡潔にまとめてください。
- 知識情報に画像URLがあり回答に役立つ場合のみ、本文の後に1行で「%s <URL>」と書いてください。
- お店をおすすめする場合のみ、本文の後に1行で「%s <id>, <id>」と書き、店舗情報の id を最大3件まで、おすすめ順にカンマ区切りの半角整数で並べてください。
- それぞれの行は1回までとし、行内に他の文字を書かないでください。該当しない場合はその行自体を省略してください。`,
		GrammarVersion, TokenImageURL, TokenShopIDs)
}

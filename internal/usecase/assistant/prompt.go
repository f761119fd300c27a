package assistant

import (
	"strconv"
	"strings"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/domain/directive"
)

// UnknownLocation is sent when the caller gave no usable coordinates.
const UnknownLocation = "unknown"

const persona = `あなたは商店街の案内係「まちあるきアシスタント」です。
来訪者の質問に、親しみやすく丁寧な口調で答えてください。

# ルール
- 回答は「店舗情報」と「知識情報」に書かれている内容だけを根拠にしてください。
- 情報にないことは推測せず、わからないと正直に伝えてください。
- 店舗を紹介するときは店名を本文に含めてください。
- 利用者の位置がわかり、近くのお店を尋ねられた場合は、近さも考慮してください。
`

// SystemPrompt is the fixed instruction block. The directive section comes
// from the parser package so the model is told exactly what gets parsed.
func SystemPrompt() string {
	return persona + "\n" + directive.Instructions()
}

// FormatLocation renders "lat, lng" or the unknown sentinel.
func FormatLocation(loc *domain.Location) string {
	if loc == nil {
		return UnknownLocation
	}
	return strconv.FormatFloat(loc.Lat, 'f', -1, 64) + ", " + strconv.FormatFloat(loc.Lng, 'f', -1, 64)
}

// UserMessage assembles the question with its location and both context blocks.
func UserMessage(q domain.Query, shopContext, knowledgeContext string) string {
	var sb strings.Builder
	sb.WriteString("# 質問\n")
	sb.WriteString(q.Text)
	sb.WriteString("\n\n# 利用者の位置\n")
	sb.WriteString(FormatLocation(q.Location))
	sb.WriteString("\n\n# 店舗情報\n")
	sb.WriteString(shopContext)
	sb.WriteString("\n\n# 知識情報\n")
	sb.WriteString(knowledgeContext)
	return sb.String()
}

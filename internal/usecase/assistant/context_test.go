package assistant

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kailas-cloud/shopassist/internal/domain"
	"github.com/kailas-cloud/shopassist/internal/domain/knowledge"
	"github.com/kailas-cloud/shopassist/internal/domain/shop"
)

func TestShopContext(t *testing.T) {
	records := []shop.Record{
		{
			ID:            "internal-1",
			LegacyID:      intPtr(12),
			Name:          "まるや青果",
			Category:      "青果",
			Products:      []string{"トマト", "なす"},
			SpecialtyDish: "",
			Description:   "朝採れ野菜",
			AboutVendor:   "not rendered",
		},
		{ID: "internal-2", Name: "  ", Message: "いらっしゃい"},
	}

	want := "id:12 | name:まるや青果 | category:青果 | products:トマト / なす | description:朝採れ野菜\n" +
		"message:いらっしゃい"
	assert.Equal(t, want, ShopContext(records))
}

func TestKnowledgeContext(t *testing.T) {
	records := []knowledge.Record{{ID: "k1", Category: "案内", Title: "トイレ", ImageURL: "https://e.x/m.png"}}
	assert.Equal(t, "id:k1 | category:案内 | title:トイレ | image_url:https://e.x/m.png", KnowledgeContext(records))
}

func TestContext_MultiLineValuesStayOnOneLine(t *testing.T) {
	records := []knowledge.Record{
		{ID: "k1", Title: "営業時間", Content: "平日は朝7時から。\r\n土日は\n\n朝6時から。"},
		{ID: "k2", Title: "駐車場"},
	}

	got := KnowledgeContext(records)
	assert.Equal(t, "id:k1 | title:営業時間 | content:平日は朝7時から。 土日は 朝6時から。\nid:k2 | title:駐車場", got)

	shops := []shop.Record{{ID: "s", LegacyID: intPtr(3), Description: "老舗の\n八百屋"}}
	assert.Equal(t, "id:3 | description:老舗の 八百屋", ShopContext(shops))
}

func TestContext_EmptyIsSentinel(t *testing.T) {
	assert.Equal(t, NoMatches, ShopContext(nil))
	assert.Equal(t, NoMatches, KnowledgeContext([]knowledge.Record{}))
	assert.Equal(t, NoMatches, KnowledgeContext([]knowledge.Record{{}}))
}

func TestFormatLocation(t *testing.T) {
	assert.Equal(t, UnknownLocation, FormatLocation(nil))
	assert.Equal(t, "35.6812, 139.7671", FormatLocation(&domain.Location{Lat: 35.6812, Lng: 139.7671}))
}

func TestUserMessage(t *testing.T) {
	msg := UserMessage(domain.Query{Text: "質問"}, "S", "K")
	assert.Equal(t, "# 質問\n質問\n\n# 利用者の位置\nunknown\n\n# 店舗情報\nS\n\n# 知識情報\nK", msg)
}

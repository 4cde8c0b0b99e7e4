package caption

import "github.com/shouni/go-caption-kit/pkg/domain"

// placeholders は修復に失敗したパネルへ差し込む固定文です。パネルごとに異なります。
var placeholders = domain.PanelCaptions{
	A: "זהו הפאנל הראשון בסיפור המיוחד",
	B: "כאן רואים את הפאנל השני",
	C: "עכשיו הגענו אל הפאנל השלישי",
	D: "ולסיום הנה הפאנל הרביעי בדף",
}

// fallbackSet はページ全体の再生成に失敗した場合の固定文です。
var fallbackSet = domain.PanelCaptions{
	A: "תמונה ראשונה מרגשת ויפה מאוד",
	B: "תמונה שנייה שממשיכה את הסיפור",
	C: "תמונה חמודה שמראה שלב נוסף",
	D: "תמונה רביעית שמסיימת את הדף",
}

// verboseFallbackSet はページ全体の語数が不足したままの場合に使います。
var verboseFallbackSet = domain.PanelCaptions{
	A: "זהו הפאנל הראשון בסיפור המיוחד והמרתק שלנו",
	B: "כאן רואים את הפאנל השני המלא בפעולה",
	C: "עכשיו הגענו אל הפאנל השלישי המעניין מאוד",
	D: "ולסיום הנה הפאנל הרביעי והאחרון בדף",
}

// Placeholder はパネル ID ごとの固定プレースホルダを返します。
func Placeholder(id domain.PanelID) string {
	return placeholders.Get(id)
}

// Placeholders は 4 コマ分のプレースホルダを返します。
func Placeholders() domain.PanelCaptions {
	return placeholders
}

// FallbackSet は再生成失敗時の固定キャプションを返します。
func FallbackSet() domain.PanelCaptions {
	return fallbackSet
}

// VerboseFallbackSet は語数不足時の固定キャプションを返します。
func VerboseFallbackSet() domain.PanelCaptions {
	return verboseFallbackSet
}

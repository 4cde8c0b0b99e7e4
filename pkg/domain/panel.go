package domain

import "fmt"

// PanelID は 2x2 グリッド内のパネルを識別する固定 ID です。
type PanelID string

const (
	PanelA PanelID = "A"
	PanelB PanelID = "B"
	PanelC PanelID = "C"
	PanelD PanelID = "D"
)

// PanelCount は 1 ページあたりのパネル数です。
const PanelCount = 4

// ReadingOrder は右から左へ読む順序 (A -> B -> C -> D) です。
var ReadingOrder = [PanelCount]PanelID{PanelA, PanelB, PanelC, PanelD}

// Quadrant はグリッド上の位置です。Row 0 が上段、Col 0 が左列を表します。
type Quadrant struct {
	Row int
	Col int
}

// quadrants は ID と描画位置の固定対応表です。
var quadrants = map[PanelID]Quadrant{
	PanelA: {Row: 0, Col: 1}, // 右上
	PanelB: {Row: 0, Col: 0}, // 左上
	PanelC: {Row: 1, Col: 1}, // 右下
	PanelD: {Row: 1, Col: 0}, // 左下
}

// Quadrant はパネルの描画位置を返します。
func (id PanelID) Quadrant() Quadrant {
	return quadrants[id]
}

// Index は読み順での 0 始まりの位置を返します。不明な ID の場合は -1 です。
func (id PanelID) Index() int {
	for i, p := range ReadingOrder {
		if p == id {
			return i
		}
	}
	return -1
}

// Valid は ID が A-D のいずれかであるかを判定します。
func (id PanelID) Valid() bool {
	return id.Index() >= 0
}

// ParsePanelID は "A" や "b" のような文字列を PanelID に変換します。
func ParsePanelID(s string) (PanelID, error) {
	if len(s) == 1 {
		c := s[0]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		if id := PanelID(string(c)); id.Valid() {
			return id, nil
		}
	}
	return "", fmt.Errorf("unknown panel id: %q", s)
}

// PanelScene は 1 コマに割り当てられた視覚的な内容です。
type PanelScene struct {
	ID          PanelID `json:"id"`
	ScenePrompt string  `json:"scene_prompt"`
}

// PanelCaptions は 4 コマ分のキャプションを固定キーで保持します。
type PanelCaptions struct {
	A string `json:"A"`
	B string `json:"B"`
	C string `json:"C"`
	D string `json:"D"`
}

// Get は指定パネルのキャプションを返します。
func (pc PanelCaptions) Get(id PanelID) string {
	switch id {
	case PanelA:
		return pc.A
	case PanelB:
		return pc.B
	case PanelC:
		return pc.C
	case PanelD:
		return pc.D
	}
	return ""
}

// Set は指定パネルのキャプションを更新します。
func (pc *PanelCaptions) Set(id PanelID, text string) {
	switch id {
	case PanelA:
		pc.A = text
	case PanelB:
		pc.B = text
	case PanelC:
		pc.C = text
	case PanelD:
		pc.D = text
	}
}

// Ordered は読み順 (A, B, C, D) に並べたキャプションを返します。
func (pc PanelCaptions) Ordered() [PanelCount]string {
	return [PanelCount]string{pc.A, pc.B, pc.C, pc.D}
}

// CaptionsFromOrdered は読み順の配列から PanelCaptions を組み立てます。
func CaptionsFromOrdered(texts [PanelCount]string) PanelCaptions {
	return PanelCaptions{A: texts[0], B: texts[1], C: texts[2], D: texts[3]}
}

package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/invopop/jsonschema"

	"github.com/shouni/go-caption-kit/pkg/domain"
)

// jsonBlockRegex は応答内の ```json ... ``` ブロックを抽出します。
var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// batchCaptions は一括生成応答のパネル部分です。欠落を検出するためポインタで受けます。
type batchCaptions struct {
	A *string `json:"A" jsonschema:"description=Top-right panel, read first"`
	B *string `json:"B" jsonschema:"description=Top-left panel"`
	C *string `json:"C" jsonschema:"description=Bottom-right panel"`
	D *string `json:"D" jsonschema:"description=Bottom-left panel"`
}

// batchResponse は一括生成で要求する応答の形です。
type batchResponse struct {
	PageID        string        `json:"pageId"`
	PanelCaptions batchCaptions `json:"panelCaptions"`
}

// batchResponseSchema は batchResponse から生成した JSON Schema です。
var batchResponseSchema = reflectSchema[batchResponse]()

func reflectSchema[T any]() *jsonschema.Schema {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	var v T
	s := r.Reflect(v)
	// "$schema" は genai 側で受け付けられないため外す
	s.Version = ""
	return s
}

// extractJSON は応答テキストから JSON 部分を取り出します。
func extractJSON(raw string) string {
	if m := jsonBlockRegex.FindStringSubmatch(raw); len(m) > 1 {
		return m[1]
	}
	first := strings.Index(raw, "{")
	last := strings.LastIndex(raw, "}")
	if first != -1 && last > first {
		return raw[first : last+1]
	}
	return raw
}

// parseBatchResponse は一括生成の応答を検証しながら PanelCaptions に変換します。
// いずれかのキーが欠けていれば ErrMalformedResponse を返します。
func parseBatchResponse(raw string) (domain.PanelCaptions, error) {
	var resp batchResponse
	if err := json.Unmarshal([]byte(extractJSON(raw)), &resp); err != nil {
		return domain.PanelCaptions{}, fmt.Errorf("%w: %w (応答抜粋: %q)", ErrMalformedResponse, err, truncateString(raw, 200))
	}

	fields := map[domain.PanelID]*string{
		domain.PanelA: resp.PanelCaptions.A,
		domain.PanelB: resp.PanelCaptions.B,
		domain.PanelC: resp.PanelCaptions.C,
		domain.PanelD: resp.PanelCaptions.D,
	}
	var pc domain.PanelCaptions
	for _, id := range domain.ReadingOrder {
		v := fields[id]
		if v == nil {
			return domain.PanelCaptions{}, fmt.Errorf("%w: panelCaptions.%s が存在しません", ErrMalformedResponse, id)
		}
		pc.Set(id, *v)
	}
	return pc, nil
}

// cleanSingleResponse は単体生成の応答から引用符やコードブロックを取り除きます。
func cleanSingleResponse(raw string) string {
	s := strings.TrimSpace(raw)
	if m := jsonBlockRegex.FindStringSubmatch(s); len(m) > 1 {
		s = m[1]
	}
	return strings.Trim(s, "\"'` \n")
}

func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	return string(r[:maxLen]) + "..."
}

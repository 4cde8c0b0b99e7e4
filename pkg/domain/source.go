package domain

// CaptionSource はコンポジタに渡すキャプションの出所です。
// StructuredCaptions と FreeTextCaptions のどちらか一方だけを取ります。
type CaptionSource interface {
	captionSource()
}

// StructuredCaptions はパネル単位のキャプションです。常に自由テキストより優先されます。
type StructuredCaptions struct {
	Captions PanelCaptions
}

// FreeTextCaptions は構造化キャプションが存在しない場合の旧来の入力です。
type FreeTextCaptions struct {
	Text string
}

func (StructuredCaptions) captionSource() {}
func (FreeTextCaptions) captionSource()   {}

// NewCaptionSource は API の境界で一度だけソースを決定します。
// captions が nil でなければ freeText は破棄されます。
func NewCaptionSource(captions *PanelCaptions, freeText string) CaptionSource {
	if captions != nil {
		return StructuredCaptions{Captions: *captions}
	}
	return FreeTextCaptions{Text: freeText}
}

package prompts

import (
	_ "embed"
)

// Mode はプロンプトの種類です。
type Mode string

const (
	// ModeBatch は 4 コマ分を一括で生成するプロンプトです。
	ModeBatch Mode = "batch"
	// ModeSingle は 1 コマだけを修復生成するプロンプトです。
	ModeSingle Mode = "single"
)

// SceneData はテンプレート内で 1 コマ分のシーンを表します。
type SceneData struct {
	ID       string
	Position string
	Scene    string
}

// TemplateData はキャプション生成プロンプトに渡すデータ構造です。
type TemplateData struct {
	PageID     string
	PanelID    string
	TargetAge  string
	Theme      string
	Scene      string
	Scenes     []SceneData
	MaxLength  int
	MinWords   int
	MaxWords   int
	Connectors []string
}

var (
	//go:embed batch.md
	BatchPrompt string
	//go:embed single.md
	SinglePrompt string
)

// allTemplates はモードとテンプレート文字列を紐づけるマップです。
var allTemplates = map[Mode]string{
	ModeBatch:  BatchPrompt,
	ModeSingle: SinglePrompt,
}

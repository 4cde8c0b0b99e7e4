package prompts

import (
	"errors"
	"fmt"
	"strings"
	"text/template"
)

var (
	// ErrUnknownMode は登録されていないモードが指定された場合のエラーです。
	ErrUnknownMode = errors.New("unknown prompt mode")
	// ErrMissingScene はプロンプトに必要なシーン情報が欠けている場合のエラーです。
	ErrMissingScene = errors.New("scene data is missing")
)

// PromptBuilder は、キャプション生成用のプロンプトを組み立てる契約です。
type PromptBuilder interface {
	Build(mode Mode, data TemplateData) (string, error)
}

// CaptionPromptBuilder は一括生成と 1 コマ修復のテンプレートを保持します。
type CaptionPromptBuilder struct {
	templates map[Mode]*template.Template
}

var funcs = template.FuncMap{
	"join": strings.Join,
}

// NewCaptionPromptBuilder は埋め込みテンプレートを解析して CaptionPromptBuilder を初期化します。
func NewCaptionPromptBuilder() (*CaptionPromptBuilder, error) {
	parsed := make(map[Mode]*template.Template, len(allTemplates))
	for mode, content := range allTemplates {
		if strings.TrimSpace(content) == "" {
			return nil, fmt.Errorf("キャプションプロンプト '%s' (go:embed) が空です", mode)
		}

		tmpl, err := template.New(string(mode)).Funcs(funcs).Option("missingkey=error").Parse(content)
		if err != nil {
			return nil, fmt.Errorf("キャプションプロンプト '%s' の解析に失敗: %w", mode, err)
		}
		parsed[mode] = tmpl
	}

	return &CaptionPromptBuilder{templates: parsed}, nil
}

// Build は、モードに必要なシーン情報を確認してからテンプレートを実行します。
func (b *CaptionPromptBuilder) Build(mode Mode, data TemplateData) (string, error) {
	tmpl, ok := b.templates[mode]
	if !ok {
		return "", fmt.Errorf("%w: '%s'", ErrUnknownMode, mode)
	}
	if err := checkScenes(mode, data); err != nil {
		return "", err
	}

	var sb strings.Builder
	if err := tmpl.Execute(&sb, data); err != nil {
		return "", fmt.Errorf("キャプションプロンプト '%s' の実行に失敗しました: %w", mode, err)
	}
	return sb.String(), nil
}

// checkScenes は一括生成なら全コマのシーン、修復なら対象コマの ID を要求します。
func checkScenes(mode Mode, data TemplateData) error {
	switch mode {
	case ModeBatch:
		if len(data.Scenes) == 0 {
			return fmt.Errorf("%w: 一括生成にはコマのシーンが必要です", ErrMissingScene)
		}
	case ModeSingle:
		if data.PanelID == "" {
			return fmt.Errorf("%w: 修復対象のコマが指定されていません", ErrMissingScene)
		}
	}
	return nil
}

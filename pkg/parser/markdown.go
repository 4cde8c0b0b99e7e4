package parser

import (
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/shouni/go-caption-kit/pkg/asset"
	"github.com/shouni/go-caption-kit/pkg/domain"
)

const (
	fieldKeyScene       = "scene"
	fieldKeyCaption     = "caption"
	fieldKeyImage       = "image"
	fieldKeyText        = "text"
	fieldKeyImagePrompt = "image_prompt"
	fieldKeyAge         = "age"
	fieldKeyTheme       = "theme"
)

// MarkdownParser は Markdown 形式のページ台本を解析し、PageRecord に変換します。
//
//	# ページタイトル
//	- image: page1.png
//	- theme: 友情
//	## Panel A
//	- scene: a girl finds a red balloon
//	- caption: ילדה מוצאת בלון אדום ליד הבית
type MarkdownParser struct{}

// NewMarkdownParser は MarkdownParser を初期化します。
func NewMarkdownParser() *MarkdownParser {
	return &MarkdownParser{}
}

// Parse は scriptURL を基準に画像パスを解決しながら、Markdown テキストを解析します。
func (p *MarkdownParser) Parse(scriptURL string, input string) (*domain.PageRecord, error) {
	baseURL := ""
	if scriptURL != "" {
		baseURL = asset.ResolveBaseURL(scriptURL)
	}

	page := &domain.PageRecord{}
	var current *domain.PanelDraft

	flush := func() {
		if current != nil && (current.ScenePrompt != "" || current.Caption != "") {
			page.Panels = append(page.Panels, *current)
		}
		current = nil
	}

	for _, line := range strings.Split(input, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if m := PanelRegex.FindStringSubmatch(trimmed); m != nil {
			flush()
			id, err := p.panelID(m[1], len(page.Panels))
			if err != nil {
				return nil, err
			}
			current = &domain.PanelDraft{ID: id}
			continue
		}

		if m := TitleRegex.FindStringSubmatch(trimmed); m != nil {
			page.Title = strings.TrimSpace(m[1])
			continue
		}

		m := FieldRegex.FindStringSubmatch(trimmed)
		if m == nil {
			continue
		}
		key, val := strings.ToLower(m[1]), strings.TrimSpace(m[2])

		if current != nil {
			switch key {
			case fieldKeyScene:
				current.ScenePrompt = val
			case fieldKeyCaption:
				current.Caption = val
			default:
				slog.Debug("パネル内に未知のフィールドキーが見つかりました", "panel", current.ID, "key", key)
			}
			continue
		}

		switch key {
		case fieldKeyImage:
			page.ImageURL = resolveFullPath(baseURL, val)
		case fieldKeyText:
			page.Text = val
		case fieldKeyImagePrompt:
			page.ImagePrompt = val
		case fieldKeyAge:
			page.TargetAge = val
		case fieldKeyTheme:
			page.Theme = val
		default:
			slog.Debug("ページ見出しに未知のフィールドキーが見つかりました", "key", key)
		}
	}
	flush()

	if !page.HasPanels() && page.Text == "" && page.ImagePrompt == "" {
		return nil, fmt.Errorf("有効なパネル情報が見つかりませんでした")
	}
	if len(page.Panels) > domain.PanelCount {
		return nil, fmt.Errorf("パネル数が多すぎます: %d (最大 %d)", len(page.Panels), domain.PanelCount)
	}
	return page, nil
}

// panelID は見出しの ID を解釈し、省略時は出現順に A から割り当てます。
func (p *MarkdownParser) panelID(raw string, seen int) (domain.PanelID, error) {
	if raw != "" {
		return domain.ParsePanelID(raw)
	}
	if seen >= domain.PanelCount {
		return "", fmt.Errorf("パネル数が多すぎます: %d 件目", seen+1)
	}
	return domain.ReadingOrder[seen], nil
}

// resolveFullPath はベースURLと相対パスから絶対パスを構築します。
func resolveFullPath(baseURL string, refPath string) string {
	if refPath == "" {
		return ""
	}
	if strings.HasPrefix(refPath, "data:") || strings.HasPrefix(refPath, "/") {
		return refPath
	}
	u, err := url.Parse(refPath)
	if err == nil && u.Scheme != "" && u.Host != "" {
		return refPath
	}
	return baseURL + refPath
}

package domain

// PanelDraft は上流の絵本生成工程から渡される 1 コマ分のデータです。
type PanelDraft struct {
	ID          PanelID `json:"id"`
	ScenePrompt string  `json:"scene_prompt"`
	Caption     string  `json:"caption,omitempty"`
}

// PageRecord は 1 ページ分の入力と、確定したキャプションを保持します。
type PageRecord struct {
	ID          string         `json:"id"`
	Title       string         `json:"title,omitempty"`
	TargetAge   string         `json:"target_age,omitempty"`
	Theme       string         `json:"theme,omitempty"`
	Text        string         `json:"text,omitempty"`
	ImagePrompt string         `json:"image_prompt,omitempty"`
	ImageURL    string         `json:"image_url,omitempty"`
	Panels      []PanelDraft   `json:"panels,omitempty"`
	Captions    *PanelCaptions `json:"captions,omitempty"`
}

// HasPanels は上流のパネルデータが揃っているかを判定します。
func (p *PageRecord) HasPanels() bool {
	return len(p.Panels) > 0
}

// Scenes は Panels を読み順の 4 シーンに揃えます。欠けた ID は空のシーンになります。
func (p *PageRecord) Scenes() [PanelCount]PanelScene {
	var scenes [PanelCount]PanelScene
	for i, id := range ReadingOrder {
		scenes[i] = PanelScene{ID: id}
	}
	for _, d := range p.Panels {
		if i := d.ID.Index(); i >= 0 {
			scenes[i].ScenePrompt = d.ScenePrompt
		}
	}
	return scenes
}

// DraftCaptions は Panels に含まれる下書きキャプションを PanelCaptions にまとめます。
func (p *PageRecord) DraftCaptions() PanelCaptions {
	var pc PanelCaptions
	for _, d := range p.Panels {
		pc.Set(d.ID, d.Caption)
	}
	return pc
}

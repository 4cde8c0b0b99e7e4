package caption

import (
	"fmt"
	"strings"
)

// Rules はキャプション検証と正規化が共有する制約値です。
// 検証の上限と正規化の切り詰め長は常に同じ MaxLength を参照します。
type Rules struct {
	Name      string
	MaxLength int // 文字数 (rune) の上限
	MinWords  int
	MaxWords  int
}

const (
	ProfileStandard = "standard"
	ProfileCompact  = "compact"
)

var (
	// StandardRules はパネル単位の修復プロンプトと同じ制約 (65 文字、5-10 語) です。
	StandardRules = Rules{Name: ProfileStandard, MaxLength: 65, MinWords: 5, MaxWords: 10}
	// CompactRules は一括生成プロンプト側の制約 (55 文字、3-12 語) です。
	CompactRules = Rules{Name: ProfileCompact, MaxLength: 55, MinWords: 3, MaxWords: 12}
)

// DefaultRules は StandardRules を返します。
func DefaultRules() Rules {
	return StandardRules
}

// RulesByName はプロファイル名から Rules を返します。空文字列は既定値です。
func RulesByName(name string) (Rules, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", ProfileStandard:
		return StandardRules, nil
	case ProfileCompact:
		return CompactRules, nil
	default:
		return Rules{}, fmt.Errorf("unknown caption profile: %q", name)
	}
}

// Check は制約値そのものの整合性を確認します。
func (r Rules) Check() error {
	if r.MaxLength <= 0 {
		return fmt.Errorf("MaxLength must be positive: %d", r.MaxLength)
	}
	if r.MinWords <= 0 || r.MaxWords < r.MinWords {
		return fmt.Errorf("invalid word bounds: %d-%d", r.MinWords, r.MaxWords)
	}
	return nil
}

package caption

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shouni/go-caption-kit/pkg/domain"
)

func TestRules_Normalize(t *testing.T) {
	r := StandardRules

	tests := []struct {
		name string
		in   string
		want string
	}{
		{"前後の空白を除去すること", "  שלום עולם  ", "שלום עולם"},
		{"連続する空白を 1 つにすること", "שלום \t\n  עולם", "שלום עולם"},
		{"連続するピリオドを省略記号にすること", "רגע....", "רגע…"},
		{"連続する感嘆符を 1 つにすること", "וואו!!!", "וואו!"},
		{"連続する疑問符を 1 つにすること", "מה???", "מה?"},
		{"空文字列は空のままであること", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.Normalize(tt.in))
		})
	}

	t.Run("上限で切り詰め省略記号は付けないこと", func(t *testing.T) {
		in := strings.Repeat("א", 100)
		got := r.Normalize(in)
		assert.Equal(t, strings.Repeat("א", r.MaxLength), got)
	})
}

func TestRules_Normalize_Idempotent(t *testing.T) {
	inputs := []string{
		"",
		"   ",
		"שלום.. עולם!! מה??",
		strings.Repeat("אב ", 40),
		strings.Repeat("א", 64) + " ב",
		"ABC " + strings.Repeat("word ", 20),
		"...!!!???",
		"a  b",
	}
	for _, r := range []Rules{StandardRules, CompactRules} {
		for _, in := range inputs {
			once := r.Normalize(in)
			assert.Equal(t, once, r.Normalize(once), "profile=%s input=%q", r.Name, in)
		}
	}
}

func TestRules_NormalizeAll(t *testing.T) {
	pc := StandardRules.NormalizeAll(domain.PanelCaptions{A: " א ", B: "ב!!", C: "ג", D: "ד.."})
	assert.Equal(t, domain.PanelCaptions{A: "א", B: "ב!", C: "ג", D: "ד…"}, pc)
}

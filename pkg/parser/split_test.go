package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitIntoFour(t *testing.T) {
	t.Run("空入力でも 4 要素の空文字列を返すこと", func(t *testing.T) {
		assert.Equal(t, [4]string{}, SplitIntoFour(""))
		assert.Equal(t, [4]string{}, SplitIntoFour("   \n "))
	})

	t.Run("4 文ちょうどなら 1 文ずつ割り当てること", func(t *testing.T) {
		got := SplitIntoFour("אחת. שתיים! שלוש? ארבע…")
		assert.Equal(t, [4]string{"אחת.", "שתיים!", "שלוש?", "ארבע…"}, got)
	})

	t.Run("文が多い場合は連続したグループにまとめること", func(t *testing.T) {
		got := SplitIntoFour("a. b. c. d. e. f.")
		// per = ceil(6/4) = 2
		assert.Equal(t, [4]string{"a. b.", "c. d.", "e. f.", ""}, got)
	})

	t.Run("割り切れない場合は最後のグループが小さくなること", func(t *testing.T) {
		got := SplitIntoFour(strings.Repeat("x. ", 13))
		// per = ceil(13/4) = 4
		assert.Equal(t, "x. x. x. x.", got[0])
		assert.Equal(t, "x. x. x. x.", got[2])
		assert.Equal(t, "x.", got[3])
	})

	t.Run("文が 4 未満なら語単位で分割すること", func(t *testing.T) {
		got := SplitIntoFour("one two three four five six seven")
		// per = ceil(7/4) = 2
		assert.Equal(t, [4]string{"one two", "three four", "five six", "seven"}, got)
	})

	t.Run("語数が少なければ後ろのグループは空になること", func(t *testing.T) {
		got := SplitIntoFour("one two")
		assert.Equal(t, [4]string{"one", "two", "", ""}, got)
	})

	t.Run("空白を伴わない句点では分割しないこと", func(t *testing.T) {
		assert.Equal(t, []string{"a.b", "c."}, splitSentences("a.b c."))
	})
}

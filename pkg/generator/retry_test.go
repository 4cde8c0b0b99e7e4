package generator

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want ErrorClass
	}{
		{"429 はクォータ扱い", genai.APIError{Code: 429, Message: "slow down"}, ClassFatal},
		{"RESOURCE_EXHAUSTED ステータス", genai.APIError{Code: 400, Status: "RESOURCE_EXHAUSTED"}, ClassFatal},
		{"limit: 0 メッセージ", errors.New("Quota exceeded, limit: 0"), ClassFatal},
		{"403 は認証エラー", genai.APIError{Code: 403, Message: "forbidden"}, ClassFatal},
		{"API キーの期限切れ", errors.New("API key expired. Please renew"), ClassFatal},
		{"500 は一時的", genai.APIError{Code: 500, Message: "oops"}, ClassTransient},
		{"503 は一時的", fmt.Errorf("wrapped: %w", genai.APIError{Code: 503}), ClassTransient},
		{"overloaded メッセージ", errors.New("The model is overloaded"), ClassTransient},
		{"タイムアウト", context.DeadlineExceeded, ClassTransient},
		{"その他は再試行しない", errors.New("bad request"), ClassPermanent},
		{"ErrFatal はそのまま致命的", fmt.Errorf("x: %w", ErrFatal), ClassFatal},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.err))
		})
	}
}

func fastPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 3, BaseDelay: time.Millisecond, MaxDelay: 2 * time.Millisecond}
}

func TestRetryPolicy_Do(t *testing.T) {
	ctx := context.Background()

	t.Run("一時的なエラーは再試行して成功すること", func(t *testing.T) {
		calls := 0
		out, err := fastPolicy().Do(ctx, "test", func() (string, error) {
			calls++
			if calls < 3 {
				return "", genai.APIError{Code: 503}
			}
			return "ok", nil
		})
		require.NoError(t, err)
		assert.Equal(t, "ok", out)
		assert.Equal(t, 3, calls)
	})

	t.Run("再試行回数の上限で諦めること", func(t *testing.T) {
		calls := 0
		_, err := fastPolicy().Do(ctx, "test", func() (string, error) {
			calls++
			return "", errors.New("internal error")
		})
		assert.Error(t, err)
		assert.Equal(t, 4, calls)
	})

	t.Run("致命的なエラーは再試行せず ErrFatal を返すこと", func(t *testing.T) {
		calls := 0
		_, err := fastPolicy().Do(ctx, "test", func() (string, error) {
			calls++
			return "", genai.APIError{Code: 429}
		})
		assert.ErrorIs(t, err, ErrFatal)
		assert.Equal(t, 1, calls)
	})

	t.Run("通常のエラーは再試行しないこと", func(t *testing.T) {
		calls := 0
		_, err := fastPolicy().Do(ctx, "test", func() (string, error) {
			calls++
			return "", ErrEmptyResponse
		})
		assert.ErrorIs(t, err, ErrEmptyResponse)
		assert.NotErrorIs(t, err, ErrFatal)
		assert.Equal(t, 1, calls)
	})
}

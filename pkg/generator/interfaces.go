package generator

import (
	"context"
	"errors"
)

var (
	// ErrEmptyResponse はモデルが空の応答を返した場合のエラーです。
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrMalformedResponse は構造化応答が期待した形をしていない場合のエラーです。
	ErrMalformedResponse = errors.New("malformed structured response")
	// ErrFatal は認証・クォータ系など、再試行しても回復しないエラーです。
	ErrFatal = errors.New("fatal generation error")
)

// TextGenerator はテキスト生成サービスの契約です。
type TextGenerator interface {
	// GenerateJSON は schema に従う JSON テキストを生成します。
	GenerateJSON(ctx context.Context, prompt string, schema any) (string, error)
	// GenerateText はプレーンテキストを生成します。
	GenerateText(ctx context.Context, prompt string) (string, error)
}

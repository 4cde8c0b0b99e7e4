package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"google.golang.org/genai"
)

// ErrorClass は生成エラーの分類です。
type ErrorClass int

const (
	// ClassPermanent は再試行しない通常のエラーです。
	ClassPermanent ErrorClass = iota
	// ClassTransient は 5xx や過負荷など、待てば回復しうるエラーです。
	ClassTransient
	// ClassFatal はクォータ超過や認証エラーです。
	ClassFatal
)

func (c ErrorClass) String() string {
	switch c {
	case ClassTransient:
		return "transient"
	case ClassFatal:
		return "fatal"
	default:
		return "permanent"
	}
}

var (
	quotaMarkers     = []string{"quota", "resource_exhausted", "limit: 0"}
	authMarkers      = []string{"api key", "unauthenticated", "permission denied", "requested entity was not found", "expired"}
	transientMarkers = []string{"internal", "overloaded", "timeout"}
)

// Classify はエラーを再試行可否で分類します。
func Classify(err error) ErrorClass {
	if err == nil {
		return ClassPermanent
	}
	if errors.Is(err, ErrFatal) {
		return ClassFatal
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTransient
	}

	code := 0
	status := ""
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		code = apiErr.Code
		status = strings.ToUpper(apiErr.Status)
	}
	msg := strings.ToLower(err.Error())

	switch {
	case code == http.StatusTooManyRequests, strings.Contains(status, "RESOURCE_EXHAUSTED"), containsAny(msg, quotaMarkers):
		return ClassFatal
	case code == http.StatusUnauthorized, code == http.StatusForbidden, containsAny(msg, authMarkers):
		return ClassFatal
	case code == http.StatusInternalServerError, code == http.StatusServiceUnavailable, containsAny(msg, transientMarkers):
		return ClassTransient
	}
	return ClassPermanent
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

// RetryPolicy は生成呼び出し 1 回あたりの再試行方針です。
type RetryPolicy struct {
	MaxRetries uint64
	BaseDelay  time.Duration
	MaxDelay   time.Duration
}

// DefaultRetryPolicy は 1 秒から倍々に待つ最大 3 回の再試行です。
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries: 3,
		BaseDelay:  time.Second,
		MaxDelay:   8 * time.Second,
	}
}

func (p RetryPolicy) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = p.BaseDelay
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxInterval = p.MaxDelay
	b.MaxElapsedTime = 0
	return backoff.WithContext(backoff.WithMaxRetries(b, p.MaxRetries), ctx)
}

// Do は op を実行し、一時的なエラーのときだけ指数バックオフで再試行します。
// 致命的なエラーは ErrFatal でラップして即座に返します。
func (p RetryPolicy) Do(ctx context.Context, name string, op func() (string, error)) (string, error) {
	attempt := 0
	return backoff.RetryNotifyWithData(func() (string, error) {
		attempt++
		out, err := op()
		if err == nil {
			return out, nil
		}
		switch Classify(err) {
		case ClassTransient:
			return "", err
		case ClassFatal:
			if errors.Is(err, ErrFatal) {
				return "", backoff.Permanent(err)
			}
			return "", backoff.Permanent(fmt.Errorf("%w: %w", ErrFatal, err))
		default:
			return "", backoff.Permanent(err)
		}
	}, p.backOff(ctx), func(err error, wait time.Duration) {
		slog.WarnContext(ctx, "一時的なエラーのため再試行します", "op", name, "attempt", attempt, "wait", wait, "error", err)
	})
}

package domain

import "fmt"

// ViolationCode はキャプション規則違反の種類です。
type ViolationCode string

const (
	ViolationEmpty          ViolationCode = "empty"
	ViolationCharset        ViolationCode = "non-native characters"
	ViolationMultiline      ViolationCode = "multiline"
	ViolationTooLong        ViolationCode = "too long"
	ViolationTooFewWords    ViolationCode = "too few words"
	ViolationTooManyWords   ViolationCode = "too many words"
	ViolationForbiddenStart ViolationCode = "forbidden start"
	ViolationForbiddenEnd   ViolationCode = "forbidden end"
	ViolationDanglingStart  ViolationCode = "dangling punctuation start"
)

// Violation は 1 件の規則違反です。
type Violation struct {
	Panel  PanelID
	Code   ViolationCode
	Detail string
}

// String は "Panel A: too long (70 > 65)" 形式のメッセージを返します。
func (v Violation) String() string {
	if v.Detail == "" {
		return fmt.Sprintf("Panel %s: %s", v.Panel, v.Code)
	}
	return fmt.Sprintf("Panel %s: %s (%s)", v.Panel, v.Code, v.Detail)
}

// ValidationResult は検証結果です。永続化はされません。
type ValidationResult struct {
	Valid      bool        `json:"valid"`
	Errors     []string    `json:"errors"`
	Violations []Violation `json:"-"`
}

// NewValidationResult は違反リストから結果を組み立てます。
func NewValidationResult(violations []Violation) ValidationResult {
	errs := make([]string, 0, len(violations))
	for _, v := range violations {
		errs = append(errs, v.String())
	}
	return ValidationResult{
		Valid:      len(violations) == 0,
		Errors:     errs,
		Violations: violations,
	}
}

// Has は指定コードの違反が含まれるかを判定します。
func (r ValidationResult) Has(code ViolationCode) bool {
	for _, v := range r.Violations {
		if v.Code == code {
			return true
		}
	}
	return false
}

// FailedPanels は違反のあったパネルを読み順で重複なく返します。
func (r ValidationResult) FailedPanels() []PanelID {
	var failed []PanelID
	for _, id := range ReadingOrder {
		for _, v := range r.Violations {
			if v.Panel == id {
				failed = append(failed, id)
				break
			}
		}
	}
	return failed
}

package i18n

import "sync"

// Translator retrieves localized messages for error codes.
// data provides optional metadata to embed in the message (for example,
// "expected" or "field").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	switch t.lang {
	case "ja":
		switch code {
		case "schema_mismatch":
			return "スキーマと一致しません"
		case "numeric_range":
			return "数値が範囲外です"
		case "decimal_scale":
			return "decimal の精度が不正です"
		case "datetime_parse":
			return "日付/時刻を解析できません"
		case "missing_required":
			return "必須フィールドが不足しています"
		case "parse_error":
			return "解析エラー"
		case "encode_error":
			return "エンコードエラー"
		}
	default: // "en"
		switch code {
		case "schema_mismatch":
			return "schema mismatch"
		case "numeric_range":
			return "numeric value out of range"
		case "decimal_scale":
			return "decimal scale violation"
		case "datetime_parse":
			return "date/time parse failure"
		case "missing_required":
			return "missing required field"
		case "parse_error":
			return "parse error"
		case "encode_error":
			return "encode error"
		}
	}
	return code
}

var (
	mu                sync.RWMutex
	currentTranslator Translator = dictTranslator{lang: "en"}
)

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	mu.Lock()
	currentTranslator = dictTranslator{lang: lang}
	mu.Unlock()
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		tr = dictTranslator{lang: "en"}
	}
	mu.Lock()
	currentTranslator = tr
	mu.Unlock()
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	tr := currentTranslator
	mu.RUnlock()
	return tr.Message(code, data)
}

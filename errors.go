package relaxavro

import (
	"errors"
	"fmt"

	"github.com/reoring/relaxavro/i18n"
)

// Error codes (exported consts for IDE completion and type safety by convention)
const (
	CodeSchemaMismatch  = "schema_mismatch"
	CodeNumericRange    = "numeric_range"
	CodeDecimalScale    = "decimal_scale"
	CodeDateTimeParse   = "datetime_parse"
	CodeMissingRequired = "missing_required"
	CodeParseError      = "parse_error"
	CodeEncode          = "encode_error"
)

// Sentinel kinds matched with errors.Is against a *DecodeError.
var (
	ErrSchemaMismatch       = errors.New("relaxavro: schema mismatch")
	ErrNumericRange         = errors.New("relaxavro: numeric value out of range")
	ErrDecimalScale         = errors.New("relaxavro: decimal scale violation")
	ErrDateTimeParse        = errors.New("relaxavro: date/time parse failure")
	ErrMissingRequiredField = errors.New("relaxavro: missing required field")
	ErrMalformedJSON        = errors.New("relaxavro: malformed JSON")
	ErrEncode               = errors.New("relaxavro: encode failure")
	ErrRecordSchemaRequired = errors.New("relaxavro: record schema required")
	ErrNilSchema            = errors.New("relaxavro: schema is nil")
	ErrInvalidBindingTarget = errors.New("relaxavro: binding target must be a non-nil pointer to a struct")
)

var sentinels = map[string]error{
	CodeSchemaMismatch:  ErrSchemaMismatch,
	CodeNumericRange:    ErrNumericRange,
	CodeDecimalScale:    ErrDecimalScale,
	CodeDateTimeParse:   ErrDateTimeParse,
	CodeMissingRequired: ErrMissingRequiredField,
	CodeParseError:      ErrMalformedJSON,
	CodeEncode:          ErrEncode,
}

// DecodeError is the single error type returned by decode and encode calls.
type DecodeError struct {
	Path    string // JSON Pointer from the document root (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Cause   error // Optional: underlying error.
}

func (e *DecodeError) Error() string {
	path := e.Path
	if path == "" {
		path = "/"
	}
	if e.Message == "" {
		return fmt.Sprintf("%s at %s", i18n.T(e.Code, nil), path)
	}
	return fmt.Sprintf("%s at %s: %s", i18n.T(e.Code, nil), path, e.Message)
}

func (e *DecodeError) Unwrap() error { return e.Cause }

// Is matches the sentinel kind for e.Code.
func (e *DecodeError) Is(target error) bool {
	s, ok := sentinels[e.Code]
	return ok && s == target
}

// AsDecodeError extracts a *DecodeError from an error chain.
func AsDecodeError(err error) (*DecodeError, bool) {
	if err == nil {
		return nil, false
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de, true
	}
	return nil, false
}

func newError(code, msg string, cause error) *DecodeError {
	return &DecodeError{Code: code, Message: msg, Cause: cause}
}

func errorf(code, format string, a ...any) *DecodeError {
	return &DecodeError{Code: code, Message: fmt.Sprintf(format, a...)}
}

// atPath stamps p on decode errors that do not carry a location yet.
func atPath(err error, p *path) error {
	if err == nil {
		return nil
	}
	if de, ok := AsDecodeError(err); ok {
		if de.Path == "" {
			de.Path = p.pointer()
		}
		return err
	}
	return &DecodeError{Path: p.pointer(), Code: CodeSchemaMismatch, Message: err.Error(), Cause: err}
}

func isCode(err error, code string) bool {
	de, ok := AsDecodeError(err)
	return ok && de.Code == code
}

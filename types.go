package relaxavro

import (
	"fmt"
	"strings"
)

// Mode selects how INT, LONG and BYTES slots accept non-canonical input.
type Mode int

const (
	// ModeStrict accepts only the canonical JSON representation.
	ModeStrict Mode = iota
	// ModeRelaxed retries a mismatching token as its raw string or number and
	// lets logical conversions parse lenient ISO-8601 text.
	ModeRelaxed
	// ModeEnhanced is ModeRelaxed with strict ISO-8601 parsing and integer
	// tokens accepted as scaled decimals.
	ModeEnhanced
)

func (m Mode) String() string {
	switch m {
	case ModeStrict:
		return "strict"
	case ModeRelaxed:
		return "relaxed"
	case ModeEnhanced:
		return "enhanced"
	}
	return fmt.Sprintf("Mode(%d)", int(m))
}

// ParseMode maps "strict", "relaxed" or "enhanced" to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict":
		return ModeStrict, nil
	case "relaxed", "":
		return ModeRelaxed, nil
	case "enhanced":
		return ModeEnhanced, nil
	}
	return 0, fmt.Errorf("relaxavro: unknown mode %q (want strict, relaxed or enhanced)", s)
}

// MarshalText implements encoding.TextMarshaler.
func (m Mode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

// UnmarshalText implements encoding.TextUnmarshaler.
func (m *Mode) UnmarshalText(b []byte) error {
	v, err := ParseMode(string(b))
	if err != nil {
		return err
	}
	*m = v
	return nil
}

// Representation names the shape of a raw primitive value handed to a logical
// conversion.
type Representation int

const (
	RepNull    Representation = iota
	RepBoolean                // bool
	RepInt                    // int32
	RepLong                   // int64
	RepFloat                  // float32
	RepDouble                 // float64
	RepBytes                  // []byte
	RepString                 // string
	RepFixed                  // []byte of the fixed size
)

var repNames = [...]string{
	RepNull:    "null",
	RepBoolean: "boolean",
	RepInt:     "int",
	RepLong:    "long",
	RepFloat:   "float",
	RepDouble:  "double",
	RepBytes:   "bytes",
	RepString:  "string",
	RepFixed:   "fixed",
}

func (r Representation) String() string {
	if r < 0 || int(r) >= len(repNames) {
		return "unknown"
	}
	return repNames[r]
}

// Raw is an undecoded primitive together with its representation.
type Raw struct {
	Rep   Representation
	Value any
}

// PrimitiveKind enumerates the primitive slots routed through a
// PrimitiveStrategy.
type PrimitiveKind int

const (
	PrimitiveInt PrimitiveKind = iota
	PrimitiveLong
	PrimitiveBytes
)

func (k PrimitiveKind) String() string {
	switch k {
	case PrimitiveInt:
		return "int"
	case PrimitiveLong:
		return "long"
	case PrimitiveBytes:
		return "bytes"
	}
	return "unknown"
}

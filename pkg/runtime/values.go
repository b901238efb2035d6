package runtime

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNone Kind = iota
	KindString
	KindNumber
)

func (k Kind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindString:
		return "string"
	case KindNumber:
		return "number"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values. The set of
// implementations is closed: NoneValue, StringValue and NumberValue.
type Value interface {
	Kind() Kind
	isValue()
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NoneValue struct{}

func (NoneValue) Kind() Kind { return KindNone }
func (NoneValue) isValue()   {}

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }
func (StringValue) isValue()     {}

type NumberValue struct {
	Val float64
}

func (v NumberValue) Kind() Kind { return KindNumber }
func (NumberValue) isValue()     {}

// None is the shared absent value.
var None Value = NoneValue{}

func Str(s string) Value { return StringValue{Val: s} }

func Num(n float64) Value { return NumberValue{Val: n} }

//-----------------------------------------------------------------------------
// Coercions
//-----------------------------------------------------------------------------

// ToNumber coerces a value to a float. Text that is not a float literal
// becomes 0.
func ToNumber(v Value) float64 {
	switch val := v.(type) {
	case NumberValue:
		return val.Val
	case StringValue:
		return parseNumber(val.Val)
	default:
		return 0
	}
}

func parseNumber(text string) float64 {
	if !isDecimalLiteral(text) {
		return 0
	}
	n, err := strconv.ParseFloat(text, 64)
	if err == nil {
		return n
	}
	var numErr *strconv.NumError
	if errors.As(err, &numErr) && errors.Is(numErr.Err, strconv.ErrRange) {
		// Overflow saturates to ±Inf and underflow rounds to zero.
		return n
	}
	return 0
}

// isDecimalLiteral rejects the Go-only forms ParseFloat accepts: digit
// separators and hexadecimal mantissas.
func isDecimalLiteral(text string) bool {
	if strings.Contains(text, "_") {
		return false
	}
	unsigned := text
	if len(unsigned) > 0 && (unsigned[0] == '+' || unsigned[0] == '-') {
		unsigned = unsigned[1:]
	}
	return !strings.HasPrefix(unsigned, "0x") && !strings.HasPrefix(unsigned, "0X")
}

// ToText renders a value as text. None renders as the empty string.
func ToText(v Value) string {
	switch val := v.(type) {
	case StringValue:
		return val.Val
	case NumberValue:
		return formatNumber(val.Val)
	default:
		return ""
	}
}

func formatNumber(n float64) string {
	switch {
	case math.IsNaN(n):
		return "NaN"
	case math.IsInf(n, 1):
		return "inf"
	case math.IsInf(n, -1):
		return "-inf"
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// ToBool reports the truthiness of a value. Numbers are truthy only when
// strictly positive.
func ToBool(v Value) bool {
	switch val := v.(type) {
	case StringValue:
		return val.Val != ""
	case NumberValue:
		return val.Val > 0
	default:
		return false
	}
}

// FromBool encodes a boolean as Number(1) or Number(0).
func FromBool(b bool) Value {
	if b {
		return NumberValue{Val: 1}
	}
	return NumberValue{Val: 0}
}

// Equal compares variant and payload. Values of different kinds are never
// equal.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case StringValue:
		bv, ok := b.(StringValue)
		return ok && av.Val == bv.Val
	case NumberValue:
		bv, ok := b.(NumberValue)
		return ok && av.Val == bv.Val
	default:
		return kindOf(a) == KindNone && kindOf(b) == KindNone
	}
}

func kindOf(v Value) Kind {
	if v == nil {
		return KindNone
	}
	return v.Kind()
}

// Describe renders a value for diagnostics, quoting strings.
func Describe(v Value) string {
	switch val := v.(type) {
	case StringValue:
		return strconv.Quote(val.Val)
	case NumberValue:
		return formatNumber(val.Val)
	default:
		return "none"
	}
}

package prefs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// ValueKind enumerates the closed set of preference value variants.
type ValueKind int

const (
	KindBool ValueKind = iota
	KindInteger
	KindFloat
	KindString
	KindNull
)

func (k ValueKind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindNull:
		return "null"
	default:
		return fmt.Sprintf("unknown value kind %d", int(k))
	}
}

// PrefValue is a tagged union over the value types a preference statement can
// carry. The zero value is Bool(false); use the constructors.
type PrefValue struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
}

// BoolValue returns a boolean preference value.
func BoolValue(b bool) PrefValue { return PrefValue{kind: KindBool, b: b} }

// IntValue returns an integer preference value.
func IntValue(i int64) PrefValue { return PrefValue{kind: KindInteger, i: i} }

// FloatValue returns a float preference value without integer disambiguation.
func FloatValue(f float64) PrefValue { return PrefValue{kind: KindFloat, f: f} }

// StringValue returns a string preference value.
func StringValue(s string) PrefValue { return PrefValue{kind: KindString, s: s} }

// NullValue returns the null preference value.
func NullValue() PrefValue { return PrefValue{kind: KindNull} }

// exactInt64Bound is 2^63 as a float64. Floats in [-2^63, 2^63) convert to
// int64 without overflow.
const exactInt64Bound = float64(1 << 63)

// NumberValue converts a decoded numeric literal into Integer or Float form:
// a finite value with zero fractional part inside 64-bit integer range becomes
// Integer, everything else stays Float. Downstream equality and formatting
// depend on this split, so every number from the parser goes through here.
func NumberValue(f float64) PrefValue {
	if f == math.Trunc(f) && !math.IsInf(f, 0) && f >= -exactInt64Bound && f < exactInt64Bound {
		return IntValue(int64(f))
	}
	return FloatValue(f)
}

// Kind reports which variant the value holds.
func (v PrefValue) Kind() ValueKind { return v.kind }

// AsBool returns the boolean payload; ok is false for other kinds.
func (v PrefValue) AsBool() (b, ok bool) { return v.b, v.kind == KindBool }

// AsInt returns the integer payload; ok is false for other kinds.
func (v PrefValue) AsInt() (int64, bool) { return v.i, v.kind == KindInteger }

// AsFloat returns the float payload; ok is false for other kinds.
func (v PrefValue) AsFloat() (float64, bool) { return v.f, v.kind == KindFloat }

// AsString returns the string payload; ok is false for other kinds.
func (v PrefValue) AsString() (string, bool) { return v.s, v.kind == KindString }

// IsNull reports whether the value is the null variant.
func (v PrefValue) IsNull() bool { return v.kind == KindNull }

// Equal reports exact equality: kind and payload must both match, so
// Integer(3) and Float(3.0) are not equal.
func (v PrefValue) Equal(o PrefValue) bool { return v == o }

// String renders the value the way it would appear in a preference file.
func (v PrefValue) String() string {
	switch v.kind {
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindInteger:
		return strconv.FormatInt(v.i, 10)
	case KindFloat:
		return strconv.FormatFloat(v.f, 'g', -1, 64)
	case KindString:
		return v.s
	case KindNull:
		return "null"
	default:
		return ""
	}
}

// MarshalJSON encodes the payload directly, preserving the integer/float
// distinction in the output.
func (v PrefValue) MarshalJSON() ([]byte, error) {
	switch v.kind {
	case KindBool:
		return json.Marshal(v.b)
	case KindInteger:
		return json.Marshal(v.i)
	case KindFloat:
		return json.Marshal(v.f)
	case KindString:
		return json.Marshal(v.s)
	case KindNull:
		return []byte("null"), nil
	default:
		return nil, fmt.Errorf("cannot marshal value of kind %v", v.kind)
	}
}

// UnmarshalJSON decodes a JSON scalar, applying the same integer/float
// disambiguation as parsing: a number without a fractional part becomes an
// Integer.
func (v *PrefValue) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	switch x := raw.(type) {
	case bool:
		*v = BoolValue(x)
	case string:
		*v = StringValue(x)
	case nil:
		*v = NullValue()
	case json.Number:
		if i, err := x.Int64(); err == nil {
			*v = IntValue(i)
			return nil
		}
		f, err := x.Float64()
		if err != nil {
			return err
		}
		*v = FloatValue(f)
	default:
		return fmt.Errorf("cannot decode %s as a preference value", data)
	}
	return nil
}

// PrefType identifies which preference function declared an entry.
type PrefType int

const (
	// PrefTypeUser marks entries declared with user_pref().
	PrefTypeUser PrefType = iota
	// PrefTypeDefault marks entries declared with pref().
	PrefTypeDefault
	// PrefTypeLocked marks entries declared with lock_pref().
	PrefTypeLocked
	// PrefTypeSticky marks entries declared with sticky_pref().
	PrefTypeSticky
)

func (t PrefType) String() string {
	switch t {
	case PrefTypeUser:
		return "user"
	case PrefTypeDefault:
		return "default"
	case PrefTypeLocked:
		return "locked"
	case PrefTypeSticky:
		return "sticky"
	default:
		return fmt.Sprintf("unknown pref type %d", int(t))
	}
}

func (t PrefType) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.String())
}

func (t *PrefType) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "user":
		*t = PrefTypeUser
	case "default":
		*t = PrefTypeDefault
	case "locked":
		*t = PrefTypeLocked
	case "sticky":
		*t = PrefTypeSticky
	default:
		return fmt.Errorf("unknown pref type %q", name)
	}
	return nil
}

// PrefSource records the provenance tier an entry was loaded from. The
// numeric order encodes merge precedence: BuiltIn < GlobalDefault < User.
// SourceUnset is the zero value for entries not yet stamped by a tier.
type PrefSource int

const (
	SourceUnset PrefSource = iota
	SourceBuiltIn
	SourceGlobalDefault
	SourceUser
	// SourceSystemPolicy is reserved for enterprise policy files; the merge
	// pipeline does not populate it.
	SourceSystemPolicy
)

func (s PrefSource) String() string {
	switch s {
	case SourceUnset:
		return ""
	case SourceBuiltIn:
		return "builtin"
	case SourceGlobalDefault:
		return "global_default"
	case SourceUser:
		return "user"
	case SourceSystemPolicy:
		return "system_policy"
	default:
		return fmt.Sprintf("unknown source %d", int(s))
	}
}

func (s PrefSource) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *PrefSource) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	switch name {
	case "":
		*s = SourceUnset
	case "builtin":
		*s = SourceBuiltIn
	case "global_default":
		*s = SourceGlobalDefault
	case "user":
		*s = SourceUser
	case "system_policy":
		*s = SourceSystemPolicy
	default:
		return fmt.Errorf("unknown pref source %q", name)
	}
	return nil
}

// Rewind - Media Server Watch History Statistics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/rewind

package models

import (
	"bytes"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// FlexKind tags the JSON scalar type a FlexValue was decoded from.
type FlexKind uint8

const (
	FlexNull FlexKind = iota
	FlexString
	FlexNumber
	FlexBool
)

func (k FlexKind) String() string {
	switch k {
	case FlexString:
		return "string"
	case FlexNumber:
		return "number"
	case FlexBool:
		return "bool"
	default:
		return "null"
	}
}

// FlexValue is a JSON scalar whose type varies between server versions.
// Plex reports ids as numbers or strings and timestamps as numbers or numeric
// strings depending on version, so wire structs decode those fields into a
// FlexValue and convert with one of the As* rules below.
//
// Arrays and objects are rejected with an error.
type FlexValue struct {
	Kind FlexKind
	str  string
	num  json.Number
	b    bool
}

// FlexFromString builds a string-kinded value.
func FlexFromString(s string) FlexValue {
	return FlexValue{Kind: FlexString, str: s}
}

// FlexFromInt builds a number-kinded value.
func FlexFromInt(n int64) FlexValue {
	return FlexValue{Kind: FlexNumber, num: json.Number(strconv.FormatInt(n, 10))}
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexValue) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		*f = FlexValue{}
		return nil
	}
	switch data[0] {
	case 'n':
		*f = FlexValue{}
		return nil
	case 't', 'f':
		var b bool
		if err := json.Unmarshal(data, &b); err != nil {
			return err
		}
		*f = FlexValue{Kind: FlexBool, b: b}
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexValue{Kind: FlexString, str: s}
		return nil
	case '[', '{':
		return fmt.Errorf("flex value: unexpected %s", string(data[:1]))
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return err
		}
		*f = FlexValue{Kind: FlexNumber, num: n}
		return nil
	}
}

// MarshalJSON implements json.Marshaler, preserving the decoded kind.
func (f FlexValue) MarshalJSON() ([]byte, error) {
	switch f.Kind {
	case FlexString:
		return json.Marshal(f.str)
	case FlexNumber:
		return []byte(f.num.String()), nil
	case FlexBool:
		return json.Marshal(f.b)
	default:
		return []byte("null"), nil
	}
}

// AsID applies the identifier rule: strings as-is, numbers in base 10
// without exponent, bool and null as "".
func (f FlexValue) AsID() string {
	switch f.Kind {
	case FlexString:
		return strings.TrimSpace(f.str)
	case FlexNumber:
		if i, err := f.num.Int64(); err == nil {
			return strconv.FormatInt(i, 10)
		}
		if v, err := f.num.Float64(); err == nil && !math.IsInf(v, 0) && !math.IsNaN(v) {
			return strconv.FormatFloat(v, 'f', -1, 64)
		}
		return f.num.String()
	default:
		return ""
	}
}

// AsText applies the display text rule: strings as-is, numbers formatted,
// bool and null as "".
func (f FlexValue) AsText() string {
	switch f.Kind {
	case FlexString:
		return f.str
	case FlexNumber:
		return f.num.String()
	default:
		return ""
	}
}

// AsInt64 applies the integer rule: numbers truncated toward zero, numeric
// strings parsed as int or float, everything else 0.
func (f FlexValue) AsInt64() int64 {
	var raw string
	switch f.Kind {
	case FlexNumber:
		raw = f.num.String()
	case FlexString:
		raw = strings.TrimSpace(f.str)
	default:
		return 0
	}
	if raw == "" {
		return 0
	}
	if i, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return i
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	if v > math.MaxInt64 || v < math.MinInt64 {
		return 0
	}
	return int64(v)
}

// AsInt is AsInt64 narrowed to int.
func (f FlexValue) AsInt() int {
	return int(f.AsInt64())
}

// IsZero reports whether the value is null or absent.
func (f FlexValue) IsZero() bool {
	return f.Kind == FlexNull
}

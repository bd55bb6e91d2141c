package io

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// valueMap is a params or metadata map whose values keep their Go types
// through JSON. Floats are always written with a fraction or exponent
// ("1.0"), so a number without one is read back as int. Non-empty lists of
// strings are read back as []string.
type valueMap map[string]any

func (m valueMap) MarshalJSON() ([]byte, error) {
	return json.Marshal(encodeValue(map[string]any(m)))
}

func (m *valueMap) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw map[string]any
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	if raw == nil {
		*m = nil
		return nil
	}
	*m = decodeValue(raw).(map[string]any)
	return nil
}

func encodeValue(v any) any {
	switch v := v.(type) {
	case float64:
		return floatNumber(v, 64)
	case float32:
		return floatNumber(float64(v), 32)
	case map[string]any:
		out := make(map[string]any, len(v))
		for k, x := range v {
			out[k] = encodeValue(x)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, x := range v {
			out[i] = encodeValue(x)
		}
		return out
	default:
		return v
	}
}

// floatNumber formats f so that it always reads back as a float. NaN and
// infinities are left as floats and fail in the encoder as usual.
func floatNumber(f float64, bits int) any {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return f
	}
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return json.Number(s)
}

func decodeValue(v any) any {
	switch v := v.(type) {
	case json.Number:
		return decodeNumber(v)
	case map[string]any:
		for k, x := range v {
			v[k] = decodeValue(x)
		}
		return v
	case []any:
		strs := make([]string, 0, len(v))
		for i, x := range v {
			v[i] = decodeValue(x)
			if s, ok := v[i].(string); ok {
				strs = append(strs, s)
			}
		}
		if len(v) > 0 && len(strs) == len(v) {
			return strs
		}
		return v
	default:
		return v
	}
}

func decodeNumber(n json.Number) any {
	s := n.String()
	if !strings.ContainsAny(s, ".eE") {
		if i, err := strconv.ParseInt(s, 10, strconv.IntSize); err == nil {
			return int(i)
		}
	}
	f, _ := n.Float64()
	return f
}

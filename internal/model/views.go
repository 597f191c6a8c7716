package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
)

// Views is a monotonic view counter.
//
// The public API has historically sent views either as a number or as an
// array of visitor interactions. Both decode into the same counter (the
// array contributes its length) and Views always encodes as a number.
type Views int64

func (v *Views) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*v = 0
		return nil
	}

	switch trimmed[0] {
	case '[':
		var items []json.RawMessage
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return fmt.Errorf("views: %w", err)
		}
		*v = Views(len(items))
		return nil
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return fmt.Errorf("views: %w", err)
		}
		n, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return fmt.Errorf("views: %q is not a number", s)
		}
		*v = clampViews(n)
		return nil
	default:
		var n float64
		if err := json.Unmarshal(trimmed, &n); err != nil {
			return fmt.Errorf("views: %w", err)
		}
		*v = clampViews(n)
		return nil
	}
}

func (v Views) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatInt(int64(v), 10)), nil
}

func (v Views) Int() int64 { return int64(v) }

// clampViews keeps the counter within [0, MaxInt64].
func clampViews(n float64) Views {
	switch {
	case math.IsNaN(n) || n < 0:
		return 0
	case n >= math.MaxInt64:
		return math.MaxInt64
	}
	return Views(n)
}

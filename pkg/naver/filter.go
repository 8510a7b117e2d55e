package naver

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"
)

// Filter restricts geocoding results to administrative or legal codes.
// It is either a raw wire string ("HCODE@4113554500;4113555000") or a
// structured type plus code list.
type Filter struct {
	Type  string   `json:"type,omitempty"`
	Codes []string `json:"codes,omitempty"`
	raw   string
}

// RawFilter wraps an already-encoded filter string.
func RawFilter(s string) Filter {
	return Filter{raw: strings.TrimSpace(s)}
}

// ParseFilter accepts a string, a {type, codes} map or a Filter.
func ParseFilter(v any) (Filter, error) {
	switch t := v.(type) {
	case nil:
		return Filter{}, nil
	case Filter:
		return t, nil
	case string:
		return RawFilter(t), nil
	}

	m, err := cast.ToStringMapE(v)
	if err != nil {
		return Filter{}, fmt.Errorf("filter must be a string or an object with type and codes: %w", err)
	}
	f := Filter{Type: strings.TrimSpace(cast.ToString(m["type"]))}
	if codes, ok := m["codes"]; ok {
		if s, isString := codes.(string); isString {
			f.Codes = splitCodes(s)
		} else {
			list, err := cast.ToStringSliceE(codes)
			if err != nil {
				return Filter{}, fmt.Errorf("filter codes: %w", err)
			}
			f.Codes = list
		}
	}
	if f.Type == "" {
		return Filter{}, fmt.Errorf("filter type must not be empty")
	}
	if len(f.Codes) == 0 {
		return Filter{}, fmt.Errorf("filter codes must not be empty")
	}
	return f, nil
}

// IsZero reports whether no filter is set.
func (f Filter) IsZero() bool {
	return f.raw == "" && f.Type == "" && len(f.Codes) == 0
}

// String returns the wire form "type@code1;code2".
func (f Filter) String() string {
	if f.raw != "" {
		return f.raw
	}
	if f.Type == "" {
		return ""
	}
	return f.Type + "@" + strings.Join(f.Codes, ";")
}

func splitCodes(s string) []string {
	var codes []string
	for _, c := range strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == ',' }) {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes
}

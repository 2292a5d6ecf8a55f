package models

import (
	"bytes"
	"fmt"
	"strings"
	"unicode"

	"github.com/goccy/go-json"
	"github.com/spf13/cast"
)

// ID is an opaque backend identifier. The backend emits integers, but the
// portal never does arithmetic on them, so they are carried as strings.
type ID string

func (id ID) String() string { return string(id) }

func (id ID) IsZero() bool { return id == "" }

func (id *ID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		*id = ""
		return nil
	}
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	s, err := cast.ToStringE(raw)
	if err != nil {
		return fmt.Errorf("invalid id %s: %w", string(b), err)
	}
	*id = ID(s)
	return nil
}

// FlexInt decodes numbers that the backend may send as numbers, numeric
// strings or free text such as "5 years". Anything unreadable becomes 0.
type FlexInt int64

func (f *FlexInt) UnmarshalJSON(b []byte) error {
	var raw any
	if err := json.Unmarshal(b, &raw); err != nil {
		*f = 0
		return nil
	}
	switch v := raw.(type) {
	case nil:
		*f = 0
	case string:
		*f = FlexInt(leadingInt(v))
	default:
		*f = FlexInt(cast.ToInt64(v))
	}
	return nil
}

func leadingInt(s string) int64 {
	s = strings.TrimSpace(s)
	end := strings.IndexFunc(s, func(r rune) bool { return !unicode.IsDigit(r) })
	if end == 0 {
		return 0
	}
	if end > 0 {
		s = s[:end]
	}
	return cast.ToInt64(s)
}

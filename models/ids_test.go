package models

import (
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIDAcceptsNumbersAndStrings(t *testing.T) {
	var v struct {
		A ID `json:"a"`
		B ID `json:"b"`
		C ID `json:"c"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":42,"b":"t-7","c":null}`), &v))
	assert.Equal(t, ID("42"), v.A)
	assert.Equal(t, ID("t-7"), v.B)
	assert.True(t, v.C.IsZero())
}

func TestFlexIntIsLenient(t *testing.T) {
	cases := map[string]FlexInt{
		`7`:         7,
		`"12"`:      12,
		`"5 years"`: 5,
		`"n/a"`:     0,
		`null`:      0,
		`3.0`:       3,
	}
	for in, want := range cases {
		var got FlexInt
		require.NoError(t, json.Unmarshal([]byte(in), &got), in)
		assert.Equal(t, want, got, in)
	}
}

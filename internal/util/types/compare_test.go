package types

import (
	"encoding/json"
	"testing"
	"time"

	"gotest.tools/v3/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want any
	}{
		{"int", 3, int64(3)},
		{"int32", int32(3), int64(3)},
		{"whole float", 3.0, int64(3)},
		{"fraction", 3.5, 3.5},
		{"json int", json.Number("42"), int64(42)},
		{"json float", json.Number("4.2"), 4.2},
		{"string", "x", "x"},
		{"nil", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Normalize(tt.in), tt.want)
		})
	}
}

func TestCompare(t *testing.T) {
	c, err := Compare(1, int64(2))
	assert.NilError(t, err)
	assert.Equal(t, c, -1)

	c, err = Compare(2.5, 2)
	assert.NilError(t, err)
	assert.Equal(t, c, 1)

	c, err = Compare("b", "a")
	assert.NilError(t, err)
	assert.Equal(t, c, 1)

	c, err = Compare(false, true)
	assert.NilError(t, err)
	assert.Equal(t, c, -1)

	now := time.Now()
	c, err = Compare(now, now.Add(time.Second))
	assert.NilError(t, err)
	assert.Equal(t, c, -1)

	c, err = Compare(nil, "a")
	assert.NilError(t, err)
	assert.Equal(t, c, -1)

	_, err = Compare("a", 1)
	assert.ErrorContains(t, err, "cannot compare")
}

func TestEqual(t *testing.T) {
	assert.Assert(t, Equal(1, int64(1)))
	assert.Assert(t, Equal(2.0, 2))
	assert.Assert(t, !Equal("1", 1))
	assert.Assert(t, Equal(nil, nil))
	assert.Assert(t, !Equal(nil, 0))
}

func TestCompareValues(t *testing.T) {
	assert.Assert(t, CompareValues(5, ">", 3))
	assert.Assert(t, CompareValues(5, ">=", 5))
	assert.Assert(t, CompareValues("a", "<", "b"))
	assert.Assert(t, CompareValues("a", "<>", 1))
	assert.Assert(t, !CompareValues("a", "=", 1))
}

func TestParseScalar(t *testing.T) {
	assert.Equal(t, ParseScalar("12"), any(int64(12)))
	assert.Equal(t, ParseScalar("1.5"), any(1.5))
	assert.Equal(t, ParseScalar("true"), any(true))
	assert.Equal(t, ParseScalar("alice"), any("alice"))
}

func TestParseCanonical(t *testing.T) {
	assert.Equal(t, ParseCanonical("12"), any(int64(12)))
	assert.Equal(t, ParseCanonical("-3"), any(int64(-3)))
	assert.Equal(t, ParseCanonical("1.5"), any(1.5))
	assert.Equal(t, ParseCanonical("false"), any(false))
	assert.Equal(t, ParseCanonical("007"), any("007"))
	assert.Equal(t, ParseCanonical("1.50"), any("1.50"))
	assert.Equal(t, ParseCanonical("2.0"), any("2.0"))
	assert.Equal(t, ParseCanonical(""), any(""))
}

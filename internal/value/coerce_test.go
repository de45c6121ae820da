package value

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestToBoolean_Total(t *testing.T) {
	cases := []struct {
		v    Value
		want bool
	}{
		{NewBoolean(false), false},
		{NewBoolean(true), true},
		{NewNumber(decimal.Zero), false},
		{NewNumber(decimal.New(1, 0)), true},
		{NewString(""), false},
		{NewString(" "), true},
		{NewVersion(Version{Parts: [4]int64{1, 0}, Count: 2}), true},
		{NewArray(nil), true},
		{NewObject(nil), true},
		{NewNull(), false},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, ToBoolean(c.v, nil, 0))
	}
}

func TestToNumber_StringPermissive(t *testing.T) {
	d, ok := ToNumber(NewString(" +123,456.789 "), nil, 0)
	assert.True(t, ok)
	assert.True(t, decimal.RequireFromString("123456.789").Equal(d))

	_, ok = ToNumber(NewString(""), nil, 0)
	assert.True(t, ok)

	_, ok = ToNumber(NewString("not a number"), nil, 0)
	assert.False(t, ok)

	_, ok = ToNumber(NewArray(nil), nil, 0)
	assert.False(t, ok)
}

func TestToString_NumberFormatting(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"1", "1"},
		{"0.5", "0.5"},
		{"-0", "0"},
		{"123456.7890", "123456.789"},
		{"123456.000", "123456"},
	}
	for _, c := range cases {
		d := decimal.RequireFromString(c.raw)
		s, ok := ToString(NewNumber(d), nil, 0)
		assert.True(t, ok)
		assert.Equal(t, c.want, s)
	}
}

func TestToString_Boolean(t *testing.T) {
	s, ok := ToString(NewBoolean(true), nil, 0)
	assert.True(t, ok)
	assert.Equal(t, "True", s)

	s, ok = ToString(NewBoolean(false), nil, 0)
	assert.True(t, ok)
	assert.Equal(t, "False", s)
}

func TestToString_ArrayObjectFail(t *testing.T) {
	_, ok := ToString(NewArray(nil), nil, 0)
	assert.False(t, ok)
	_, ok = ToString(NewObject(nil), nil, 0)
	assert.False(t, ok)
}

func TestToVersion_FromNumber(t *testing.T) {
	ver, ok := ToVersion(NewNumber(decimal.RequireFromString("1.2")), nil, 0)
	assert.True(t, ok)
	assert.Equal(t, Version{Parts: [4]int64{1, 2}, Count: 2}, ver)

	_, ok = ToVersion(NewNumber(decimal.RequireFromString("2147483648.1")), nil, 0)
	assert.False(t, ok)
}

func TestEqual_LeftKindDrivesCoercion(t *testing.T) {
	assert.True(t, Equal(NewNumber(decimal.New(1, 0)), NewBoolean(true), nil, 0))
	assert.False(t, Equal(NewNumber(decimal.New(2, 0)), NewBoolean(true), nil, 0))
	assert.True(t, Equal(NewString("TRue"), NewBoolean(true), nil, 0))
	assert.True(t, Equal(NewString(""), NewNull(), nil, 0))
}

func TestEqual_ArrayObjectReferenceIdentity(t *testing.T) {
	arr := []interface{}{"a"}
	assert.True(t, Equal(NewArray(arr), NewArray(arr), nil, 0))
	assert.False(t, Equal(NewArray(arr), NewArray([]interface{}{"a"}), nil, 0))
}

func TestVersionEqualRequiresSameArity(t *testing.T) {
	a := Version{Parts: [4]int64{1, 2, 3}, Count: 3}
	b := Version{Parts: [4]int64{1, 2, 3, 0}, Count: 4}
	assert.False(t, Equal(NewVersion(a), NewVersion(b), nil, 0))
}

func TestCompare_Ordering(t *testing.T) {
	cmp, err := Compare(NewNumber(decimal.New(1, 0)), NewNumber(decimal.New(2, 0)), nil, 0)
	assert.NoError(t, err)
	assert.Equal(t, -1, cmp)

	cmp, err = Compare(NewBoolean(false), NewBoolean(true), nil, 0)
	assert.NoError(t, err)
	assert.Equal(t, -1, cmp)
}

func TestCompare_VersionArityMismatchIsUnordered(t *testing.T) {
	a := Version{Parts: [4]int64{1, 2, 3}, Count: 3}
	b := Version{Parts: [4]int64{1, 2, 3, 0}, Count: 4}
	cmp, err := Compare(NewVersion(a), NewVersion(b), nil, 0)
	assert.NoError(t, err)
	assert.Equal(t, 0, cmp)
}

func TestCompare_VersionConvertError(t *testing.T) {
	left := NewNumber(decimal.RequireFromString("1.2"))
	right := NewVersion(Version{Parts: [4]int64{1, 2, 0, 0}, Count: 4})
	_, err := Compare(left, right, nil, 0)
	if assert.Error(t, err) {
		var convErr *ConvertError
		assert.ErrorAs(t, err, &convErr)
		assert.Equal(t, VersionKind, convErr.From)
		assert.Equal(t, Number, convErr.To)
	}
}

func TestFoldHelpers(t *testing.T) {
	assert.True(t, FoldEqual("ABC", "abc"))
	assert.True(t, FoldContains("Hello World", "LLO wo"))
	assert.True(t, FoldHasPrefix("Hello", "he"))
	assert.True(t, FoldHasSuffix("Hello", "LO"))
	assert.False(t, FoldHasPrefix("Hi", "hello"))
}

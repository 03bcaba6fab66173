package ikuai

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"json float vs toml int", float64(1), int64(1), true},
		{"numeric string vs int", "1", int64(1), true},
		{"int vs numeric string", 0, "0", true},
		{"different numbers", float64(1), int64(0), false},
		{"two strings compare as text", "1.0", "1", false},
		{"equal strings", "yes", "yes", true},
		{"string vs non-numeric", "yes", int64(1), false},
		{"percent string is not a number", "1%", int64(1), false},
		{"bools", true, true, true},
		{"bool vs number", true, int64(1), false},
		{"nil vs nil", nil, nil, true},
		{"nil vs zero", nil, int64(0), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, equalValues(tt.a, tt.b))
		})
	}
}

func TestAsFloat(t *testing.T) {
	f, ok := asFloat("12.50%")
	assert.True(t, ok)
	assert.Equal(t, 12.5, f)

	f, ok = asFloat(" 7 ")
	assert.True(t, ok)
	assert.Equal(t, 7.0, f)

	_, ok = asFloat("n/a")
	assert.False(t, ok)

	_, ok = asFloat(nil)
	assert.False(t, ok)
}

func TestFirstString(t *testing.T) {
	m := map[string]any{
		"list":   []any{"a", "b"},
		"empty":  []any{},
		"scalar": float64(3),
	}
	assert.Equal(t, "a", firstString(m, "list"))
	assert.Equal(t, "", firstString(m, "empty"))
	assert.Equal(t, "3", firstString(m, "scalar"))
	assert.Equal(t, "", firstString(m, "missing"))
}

func TestGetObjects_SkipsNonObjects(t *testing.T) {
	m := map[string]any{
		"data": []any{map[string]any{"id": 1}, "junk", nil, map[string]any{"id": 2}},
	}
	objs := getObjects(m, "data")
	assert.Len(t, objs, 2)
	assert.Nil(t, getObjects(nil, "data"))
}

func TestRound(t *testing.T) {
	assert.Equal(t, 1.235, round(1.23456, 3))
	assert.Equal(t, 5.0, round(5.0, 2))
}

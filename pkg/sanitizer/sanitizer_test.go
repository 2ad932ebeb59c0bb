package sanitizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimAndNormalize(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", ""},
		{"   ", ""},
		{"  sick   leave ", "sick leave"},
		{"line\n\tbreak", "line break"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, TrimAndNormalize(tt.in), "input %q", tt.in)
	}
}

func TestNormalizeID(t *testing.T) {
	assert.Equal(t, "staff-1", NormalizeID("  staff-1 "))
	assert.Equal(t, "staff-1", NormalizeID("staff\x00-1"))
	assert.Equal(t, "", NormalizeID(" \t "))
}

func TestNormalizeText(t *testing.T) {
	assert.Equal(t, "bring x-rays", NormalizeText(" bring\x07  x-rays\n"))
}

func TestNormalizers_Idempotent(t *testing.T) {
	for _, in := range []string{"  a  b ", "x\x00y", "\tnotes\n here"} {
		once := NormalizeText(in)
		assert.Equal(t, once, NormalizeText(once))
		id := NormalizeID(in)
		assert.Equal(t, id, NormalizeID(id))
	}
}

package normalization

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInputString(t *testing.T) {
	assert.Equal(t, "somchai jaidee", ParseInputString("  somchai   jaidee  "))
	assert.Equal(t, "", ParseInputString("   "))
	assert.Equal(t, "a b", ParseInputString("a\t\nb"))
}

func TestParseInputStringPtr(t *testing.T) {
	assert.Nil(t, ParseInputStringPtr(nil))

	empty := "   "
	assert.Nil(t, ParseInputStringPtr(&empty))

	padded := "  hello "
	got := ParseInputStringPtr(&padded)
	if assert.NotNil(t, got) {
		assert.Equal(t, "hello", *got)
	}
}

func TestParseEmail(t *testing.T) {
	assert.Equal(t, "somchai@nsru.ac.th", ParseEmail("  Somchai@NSRU.ac.th "))
}

func TestParsePhone(t *testing.T) {
	assert.Equal(t, "0812345678", ParsePhone("081-234-5678"))
	assert.Equal(t, "0812345678", ParsePhone("081 234 5678"))
}

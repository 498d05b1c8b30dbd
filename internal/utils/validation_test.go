package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsValidPhone(t *testing.T) {
	valid := []string{"0791234567", "+962791234567", "1234567"}
	for _, phone := range valid {
		assert.True(t, IsValidPhone(phone), phone)
	}

	invalid := []string{"", "123456", "phone", "+", "079-123-4567", "12345678901234567"}
	for _, phone := range invalid {
		assert.False(t, IsValidPhone(phone), phone)
	}
}

func TestIsLetters(t *testing.T) {
	assert.True(t, IsLetters("Lina"))
	assert.True(t, IsLetters("  Lina  "))
	assert.True(t, IsLetters("محمد"))

	assert.False(t, IsLetters(""))
	assert.False(t, IsLetters("   "))
	assert.False(t, IsLetters("Lina2"))
	assert.False(t, IsLetters("Abu Zayd")) // inner space is the caller's problem
}

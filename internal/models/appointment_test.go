package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatusAcceptsEnglishAndArabic(t *testing.T) {
	cases := map[string]AppointmentStatus{
		"pending":    StatusPending,
		"Confirmed":  StatusConfirmed,
		" completed": StatusCompleted,
		"CANCELLED":  StatusCancelled,
		"معلق":       StatusPending,
		"مؤكد":       StatusConfirmed,
		"منجز":       StatusCompleted,
		"ملغي":       StatusCancelled,
	}
	for input, want := range cases {
		got, err := ParseStatus(input)
		require.NoError(t, err, "input %q", input)
		assert.Equal(t, want, got, "input %q", input)
	}
}

func TestParseStatusRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "unknown", "pende", "ملغى"} {
		_, err := ParseStatus(input)
		assert.Error(t, err, "input %q", input)
	}
}

func TestStatusArabicLabels(t *testing.T) {
	assert.Equal(t, "معلق", StatusPending.ArabicLabel())
	assert.Equal(t, "مؤكد", StatusConfirmed.ArabicLabel())
	assert.Equal(t, "منجز", StatusCompleted.ArabicLabel())
	assert.Equal(t, "ملغي", StatusCancelled.ArabicLabel())
}

func TestStatusIsActive(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusConfirmed.IsActive())
	assert.False(t, StatusCompleted.IsActive())
	assert.False(t, StatusCancelled.IsActive())
}

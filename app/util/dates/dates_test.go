package dates

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	// 2024-03-04 is a Monday
	ref := time.Date(2024, 3, 4, 15, 30, 0, 0, time.UTC)

	assert.Equal(t, "2024-03-04", Normalize("today", ref))
	assert.Equal(t, "2024-03-04", Normalize("  Today ", ref))
	assert.Equal(t, "2024-03-05", Normalize("tomorrow", ref))
	assert.Equal(t, "2024-03-11", Normalize("sometime next week", ref))
}

func TestNormalizeMondayNeverSameDay(t *testing.T) {
	monday := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-11", Normalize("monday", monday))

	tuesday := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-11", Normalize("on Monday", tuesday))

	sunday := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-03-11", Normalize("monday", sunday))
}

func TestNormalizeFallbackParser(t *testing.T) {
	ref := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "2024-05-01", Normalize("2024-05-01", ref))
	assert.Equal(t, "2024-04-12", Normalize("April 12, 2024", ref))
}

func TestNormalizeUnparseablePassthrough(t *testing.T) {
	ref := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

	assert.Equal(t, "whenever works", Normalize("whenever works", ref))
	assert.Equal(t, "", Normalize("", ref))
}

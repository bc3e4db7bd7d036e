package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCivilProjection(t *testing.T) {
	// 18:45 UTC is 00:15 the next day in the +5:30 zone.
	utc := time.Date(2025, 3, 10, 18, 45, 0, 0, time.UTC)
	civil := Fixed{Instant: utc}.Civil()

	assert.Equal(t, "2025-03-11", civil.Date())
	assert.Equal(t, "00:15:00", civil.TimeOfDay())
}

func TestCivilOfKeepsInstant(t *testing.T) {
	utc := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	civil := CivilOf(utc)

	assert.True(t, civil.At().Equal(utc))
	assert.Equal(t, "17:30:00", civil.TimeOfDay())
}

package clock

import "time"

// The portal serves a single region; every deadline comparison uses a fixed
// +5:30 civil offset regardless of where the process runs.
var civilZone = time.FixedZone("IST", 5*3600+30*60)

// CivilTime is an instant projected into the portal's civil timezone.
type CivilTime struct {
	at time.Time
}

// At returns the underlying instant in the civil zone.
func (c CivilTime) At() time.Time { return c.at }

// Date returns the civil calendar date as "2006-01-02".
func (c CivilTime) Date() string { return c.at.Format("2006-01-02") }

// TimeOfDay returns the civil wall-clock time as "15:04:05".
func (c CivilTime) TimeOfDay() string { return c.at.Format("15:04:05") }

// Clock supplies the canonical current time.
type Clock interface {
	Now() time.Time
	Civil() CivilTime
}

// System reads the wall clock.
type System struct{}

func (System) Now() time.Time { return time.Now() }

func (System) Civil() CivilTime { return CivilTime{at: time.Now().In(civilZone)} }

// Fixed always reports the same instant. Test helper.
type Fixed struct {
	Instant time.Time
}

func (f Fixed) Now() time.Time { return f.Instant }

func (f Fixed) Civil() CivilTime { return CivilTime{at: f.Instant.In(civilZone)} }

// CivilOf projects an arbitrary instant into the civil zone.
func CivilOf(t time.Time) CivilTime { return CivilTime{at: t.In(civilZone)} }
